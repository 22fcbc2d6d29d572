// Package importer loads documents with precomputed embeddings from JSON Lines into the store.
package importer

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/cespare/xxhash/v2"
	"github.com/charmbracelet/log"

	"github.com/nickcecere/vecdoc/internal/store"
	"github.com/nickcecere/vecdoc/internal/vector"
)

// maxLineSize bounds a single JSONL record.
const maxLineSize = 16 << 20

// Record is one line of an import file.
type Record struct {
	Content   *string   `json:"content"`
	Embedding []float32 `json:"embedding"`
}

// Progress tracks import progress.
type Progress struct {
	Lines      int
	Inserted   int
	Duplicates int
	Invalid    int
	Failed     int
	StartTime  time.Time
}

// ProgressFunc is called after every processed record.
type ProgressFunc func(Progress)

// Options configures an import.
type Options struct {
	// SkipDuplicates drops records identical to one seen earlier in the same import.
	SkipDuplicates bool

	// MaxContentLength rejects records whose content is longer, in characters. 0 disables the check.
	MaxContentLength int

	// OnProgress is called to report progress.
	OnProgress ProgressFunc
}

// Importer inserts records one at a time. There is no multi-document transaction:
// a failed record does not undo the ones before it.
type Importer struct {
	store store.Store

	// Progress tracking
	progress Progress
	mu       sync.Mutex
}

// New creates a new Importer.
func New(st store.Store) *Importer {
	return &Importer{store: st}
}

// ImportFile imports the JSONL file at path.
func (im *Importer) ImportFile(ctx context.Context, path string, opts Options) (Progress, error) {
	f, err := os.Open(path)
	if err != nil {
		return Progress{}, fmt.Errorf("failed to open import file: %w", err)
	}
	defer f.Close()

	return im.Import(ctx, f, opts)
}

// Import reads JSONL records from r and inserts each valid one.
// Malformed or invalid lines are counted and skipped. The import stops early
// only when the context is cancelled, the input cannot be read, or the store
// is no longer open.
func (im *Importer) Import(ctx context.Context, r io.Reader, opts Options) (Progress, error) {
	im.mu.Lock()
	im.progress = Progress{StartTime: time.Now()}
	im.mu.Unlock()

	seen := make(map[uint64]struct{})

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return im.Progress(), ctx.Err()
		default:
		}

		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		im.mu.Lock()
		im.progress.Lines++
		lineNo := im.progress.Lines
		im.mu.Unlock()

		if err := im.importLine(line, lineNo, seen, opts); err != nil {
			return im.Progress(), err
		}

		im.mu.Lock()
		if opts.OnProgress != nil {
			opts.OnProgress(im.progress)
		}
		im.mu.Unlock()
	}
	if err := scanner.Err(); err != nil {
		return im.Progress(), fmt.Errorf("failed to read import: %w", err)
	}

	p := im.Progress()
	log.Info("Import complete",
		"lines", p.Lines,
		"inserted", p.Inserted,
		"duplicates", p.Duplicates,
		"invalid", p.Invalid,
		"failed", p.Failed,
		"duration", time.Since(p.StartTime).Round(time.Millisecond),
	)
	return p, nil
}

// importLine handles one record. Only fatal errors are returned.
func (im *Importer) importLine(line []byte, lineNo int, seen map[uint64]struct{}, opts Options) error {
	var rec Record
	if err := json.Unmarshal(line, &rec); err != nil {
		log.Warn("Skipping malformed line", "line", lineNo, "error", err)
		im.count(func(p *Progress) { p.Invalid++ })
		return nil
	}
	if rec.Content == nil || rec.Embedding == nil {
		log.Warn("Skipping record without content or embedding", "line", lineNo)
		im.count(func(p *Progress) { p.Invalid++ })
		return nil
	}
	if opts.MaxContentLength > 0 && utf8.RuneCountInString(*rec.Content) > opts.MaxContentLength {
		log.Warn("Skipping record with content too long", "line", lineNo, "max", opts.MaxContentLength)
		im.count(func(p *Progress) { p.Invalid++ })
		return nil
	}

	if opts.SkipDuplicates {
		fp := Fingerprint(*rec.Content, rec.Embedding)
		if _, ok := seen[fp]; ok {
			log.Debug("Duplicate record, skipping", "line", lineNo)
			im.count(func(p *Progress) { p.Duplicates++ })
			return nil
		}
		seen[fp] = struct{}{}
	}

	ref, err := im.store.Insert(*rec.Content, rec.Embedding)
	switch {
	case err == nil:
		log.Debug("Imported record", "line", lineNo, "id", ref.ID)
		im.count(func(p *Progress) { p.Inserted++ })
	case errors.Is(err, store.ErrNotReady):
		return fmt.Errorf("line %d: %w", lineNo, err)
	case errors.Is(err, store.ErrValidation):
		log.Warn("Skipping invalid record", "line", lineNo, "error", err)
		im.count(func(p *Progress) { p.Invalid++ })
	default:
		log.Warn("Failed to insert record", "line", lineNo, "error", err)
		im.count(func(p *Progress) { p.Failed++ })
	}
	return nil
}

func (im *Importer) count(update func(*Progress)) {
	im.mu.Lock()
	update(&im.progress)
	im.mu.Unlock()
}

// Progress returns the current import progress.
func (im *Importer) Progress() Progress {
	im.mu.Lock()
	defer im.mu.Unlock()
	return im.progress
}

// Fingerprint identifies a record by its content and encoded embedding.
func Fingerprint(content string, embedding []float32) uint64 {
	h := xxhash.New()
	h.WriteString(content)
	h.Write([]byte{0})
	h.WriteString(vector.Encode(embedding))
	return h.Sum64()
}
