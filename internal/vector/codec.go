// Package vector converts embeddings to and from the textual vector literal
// understood by sqlite-vec.
package vector

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var (
	// ErrEmpty is returned when a vector has no components.
	ErrEmpty = errors.New("vector is empty")

	// ErrDimensionMismatch is returned when a vector's length differs from the store dimension.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")

	// ErrNonFinite is returned when a vector contains NaN or Inf.
	ErrNonFinite = errors.New("vector contains non-finite value")

	// ErrMalformed is returned when a literal cannot be parsed.
	ErrMalformed = errors.New("malformed vector literal")
)

// Encode renders vec as a bracketed, comma-separated literal with no
// whitespace, e.g. [1,0.5,-2e-07]. Every component uses the shortest
// decimal form that parses back to the same float32.
func Encode(vec []float32) string {
	var sb strings.Builder
	// ~10 bytes per component covers most embeddings without regrowth
	sb.Grow(2 + len(vec)*10)

	sb.WriteByte('[')
	for i, v := range vec {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.FormatFloat(float64(v), 'g', -1, 32))
	}
	sb.WriteByte(']')

	return sb.String()
}

// Decode parses a literal produced by Encode (or any JSON array of numbers)
// back into a float32 slice.
func Decode(literal string) ([]float32, error) {
	literal = strings.TrimSpace(literal)
	if !strings.HasPrefix(literal, "[") || !strings.HasSuffix(literal, "]") {
		return nil, fmt.Errorf("%w: expected [..], got %q", ErrMalformed, truncate(literal, 32))
	}

	var vec []float32
	if err := json.Unmarshal([]byte(literal), &vec); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if vec == nil {
		vec = []float32{}
	}

	return vec, nil
}

// Validate checks that vec is non-empty, has exactly dimensions components
// and holds only finite values.
func Validate(vec []float32, dimensions int) error {
	if len(vec) == 0 {
		return ErrEmpty
	}
	if len(vec) != dimensions {
		return fmt.Errorf("%w: expected %d, got %d", ErrDimensionMismatch, dimensions, len(vec))
	}
	for i, v := range vec {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Errorf("%w at index %d", ErrNonFinite, i)
		}
	}
	return nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
