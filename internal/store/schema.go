package store

import (
	"database/sql"
	"fmt"
	"regexp"
	"strconv"

	"github.com/charmbracelet/log"
)

const (
	currentSchemaVersion = 1

	documentsTable = "vec_documents"
)

// Schema definitions
const schemaVersionTable = `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER PRIMARY KEY
);
`

// vec0 column definitions accept no constraints; the store always supplies
// a timestamp and ids come from vec0's AUTOINCREMENT rowid table.
const documentsTableTemplate = `
CREATE VIRTUAL TABLE IF NOT EXISTS vec_documents USING vec0(
	id integer primary key,
	embedding float[%d] distance_metric=%s,
	+content text,
	+timestamp integer
);
`

var (
	declaredDimensions = regexp.MustCompile(`(?i)float\[(\d+)\]`)
	declaredMetric     = regexp.MustCompile(`(?i)distance_metric\s*=\s*(\w+)`)
)

// SchemaState is the lifecycle state of the documents table.
type SchemaState int

const (
	SchemaUninitialized SchemaState = iota
	SchemaReady
)

// String returns the state name.
func (s SchemaState) String() string {
	switch s {
	case SchemaUninitialized:
		return "uninitialized"
	case SchemaReady:
		return "ready"
	default:
		return fmt.Sprintf("SchemaState(%d)", int(s))
	}
}

// schemaManager creates, validates and upgrades the documents table.
type schemaManager struct {
	db         *sql.DB
	dimensions int
	metric     DistanceMetric
	version    int // target version requested by the host
	state      SchemaState

	sqliteVersion string
	vecVersion    string
}

func newSchemaManager(db *sql.DB, dimensions int, metric DistanceMetric, version int) *schemaManager {
	return &schemaManager{
		db:         db,
		dimensions: dimensions,
		metric:     metric,
		version:    version,
		state:      SchemaUninitialized,
	}
}

// ensure moves the schema to READY, creating or upgrading the table as needed.
func (m *schemaManager) ensure() error {
	m.state = SchemaUninitialized

	if err := m.checkVersions(); err != nil {
		return err
	}

	if _, err := m.db.Exec(schemaVersionTable); err != nil {
		return fmt.Errorf("failed to create schema_version table: %w", err)
	}

	stored, err := m.storedVersion()
	if err != nil {
		return err
	}

	switch {
	case stored > m.version:
		return fmt.Errorf("database schema version %d is newer than requested version %d", stored, m.version)

	case stored == 0:
		log.Debug("Creating documents table", "dimensions", m.dimensions, "metric", m.metric)
		if err := m.createTable(); err != nil {
			return err
		}
		if err := m.recordVersion(); err != nil {
			return err
		}

	case stored < m.version:
		log.Warn("Upgrading schema, existing documents will be dropped", "from", stored, "to", m.version)
		if err := m.recreateTable(); err != nil {
			return err
		}
		if err := m.recordVersion(); err != nil {
			return err
		}

	default:
		log.Debug("Schema is up to date", "version", stored)
		if err := m.createTable(); err != nil {
			return err
		}
	}

	if err := m.validateTable(); err != nil {
		return err
	}

	m.state = SchemaReady
	return nil
}

// checkVersions confirms the sqlite-vec extension is loaded.
func (m *schemaManager) checkVersions() error {
	err := m.db.QueryRow("SELECT sqlite_version(), vec_version()").Scan(&m.sqliteVersion, &m.vecVersion)
	if err != nil {
		return fmt.Errorf("sqlite-vec extension unavailable: %w", err)
	}

	log.Debug("SQLite versions", "sqlite", m.sqliteVersion, "vec", m.vecVersion)
	return nil
}

func (m *schemaManager) storedVersion() (int, error) {
	var version int
	err := m.db.QueryRow("SELECT version FROM schema_version ORDER BY version DESC LIMIT 1").Scan(&version)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to check schema version: %w", err)
	}
	return version, nil
}

func (m *schemaManager) recordVersion() error {
	if _, err := m.db.Exec("DELETE FROM schema_version"); err != nil {
		return fmt.Errorf("failed to clear schema version: %w", err)
	}
	if _, err := m.db.Exec("INSERT INTO schema_version (version) VALUES (?)", m.version); err != nil {
		return fmt.Errorf("failed to update schema version: %w", err)
	}
	return nil
}

func (m *schemaManager) createTable() error {
	query := fmt.Sprintf(documentsTableTemplate, m.dimensions, m.metric)
	if _, err := m.db.Exec(query); err != nil {
		return fmt.Errorf("failed to create %s: %w", documentsTable, err)
	}
	return nil
}

// recreateTable drops the documents table and creates it again. Data is not preserved.
func (m *schemaManager) recreateTable() error {
	if _, err := m.db.Exec("DROP TABLE IF EXISTS " + documentsTable); err != nil {
		return fmt.Errorf("failed to drop %s: %w", documentsTable, err)
	}
	return m.createTable()
}

// validateTable checks that an existing table was declared with the configured dimensions.
func (m *schemaManager) validateTable() error {
	var ddl string
	err := m.db.QueryRow(`
		SELECT sql FROM sqlite_master
		WHERE type='table' AND name=?
	`, documentsTable).Scan(&ddl)
	if err == sql.ErrNoRows {
		return fmt.Errorf("%s does not exist after creation", documentsTable)
	}
	if err != nil {
		return fmt.Errorf("failed to inspect %s: %w", documentsTable, err)
	}

	match := declaredDimensions.FindStringSubmatch(ddl)
	if match == nil {
		return fmt.Errorf("%s has no float vector column", documentsTable)
	}
	dims, _ := strconv.Atoi(match[1])
	if dims != m.dimensions {
		return fmt.Errorf("%s was created with %d dimensions, configured %d", documentsTable, dims, m.dimensions)
	}

	if match := declaredMetric.FindStringSubmatch(ddl); match != nil && DistanceMetric(match[1]) != m.metric {
		log.Warn("Existing table uses a different distance metric", "table", match[1], "configured", m.metric)
		m.metric = DistanceMetric(match[1])
	}

	return nil
}
