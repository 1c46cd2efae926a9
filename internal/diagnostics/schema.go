package diagnostics

import (
	"database/sql"

	"github.com/mutker/coolantd/internal/errors"
	"github.com/mutker/coolantd/internal/logger"
)

const (
	SchemaVersion = 1

	createTablesSQL = `
	CREATE TABLE IF NOT EXISTS schema_versions (
		version    INTEGER PRIMARY KEY,
		applied_at TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS events (
		timestamp  INTEGER NOT NULL,
		kind       TEXT NOT NULL CHECK (kind IN ('state_transition', 'safety_event', 'bus_counters')),
		from_state TEXT NOT NULL DEFAULT '',
		to_state   TEXT NOT NULL DEFAULT '',
		event      TEXT NOT NULL DEFAULT '',
		started    INTEGER NOT NULL DEFAULT 0 CHECK (started IN (0, 1)),
		tx_count   INTEGER NOT NULL DEFAULT 0,
		rx_count   INTEGER NOT NULL DEFAULT 0,
		drop_count INTEGER NOT NULL DEFAULT 0
	);`

	insertEventSQL = `
	INSERT INTO events (
		timestamp, kind, from_state, to_state, event, started, tx_count, rx_count, drop_count
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
)

// InitSchema creates the events and schema_versions tables and records the
// current schema version, inside a single transaction.
func InitSchema(db *sql.DB, log logger.Logger) error {
	errFactory := errors.New()

	tx, err := db.Begin()
	if err != nil {
		return errFactory.Wrap(errors.ErrSchemaInitFailed, err)
	}

	committed := false
	defer func() {
		if !committed {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				log.Debug().Err(rbErr).Msg("failed to rollback schema init")
			}
		}
	}()

	if _, err := tx.Exec(createTablesSQL); err != nil {
		return errFactory.WithData(errors.ErrSchemaInitFailed, struct {
			Phase string
			Error string
		}{Phase: "create_tables", Error: err.Error()})
	}

	if _, err := tx.Exec(
		`INSERT INTO schema_versions (version, applied_at) VALUES (?, datetime('now'))`,
		SchemaVersion,
	); err != nil {
		return errFactory.WithData(errors.ErrSchemaInitFailed, struct {
			Phase string
			Error string
		}{Phase: "record_version", Error: err.Error()})
	}

	if err := tx.Commit(); err != nil {
		return errFactory.Wrap(errors.ErrSchemaInitFailed, err)
	}
	committed = true

	log.Info().Int("version", SchemaVersion).Msg("diagnostics schema initialized")
	return nil
}

// GetSchemaVersion returns the highest recorded schema version, or 0 if the
// schema_versions table does not exist yet or is empty.
func GetSchemaVersion(db *sql.DB) (int, error) {
	errFactory := errors.New()

	exists, err := tableExists(db, "schema_versions")
	if err != nil {
		return 0, errFactory.Wrap(errors.ErrSchemaValidationFailed, err)
	}
	if !exists {
		return 0, nil
	}

	var version int
	err = db.QueryRow(`SELECT version FROM schema_versions ORDER BY version DESC LIMIT 1`).Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, errFactory.Wrap(errors.ErrSchemaValidationFailed, err)
	}

	return version, nil
}

func tableExists(db *sql.DB, name string) (bool, error) {
	errFactory := errors.New()

	var exists bool
	err := db.QueryRow(
		`SELECT EXISTS (SELECT 1 FROM sqlite_master WHERE type = 'table' AND name = ?)`,
		name,
	).Scan(&exists)
	if err != nil {
		return false, errFactory.Wrap(errors.ErrSchemaValidationFailed, err)
	}
	return exists, nil
}

// ValidateAndUpdateSchema drops and recreates the schema if the on-disk
// version does not match SchemaVersion, otherwise it is a no-op. Rows in
// the dropped tables are not backed up.
func ValidateAndUpdateSchema(db *sql.DB, log logger.Logger) error {
	errFactory := errors.New()

	version, err := GetSchemaVersion(db)
	if err != nil {
		return errFactory.Wrap(errors.ErrSchemaValidationFailed, err)
	}

	if version == SchemaVersion {
		log.Debug().Int("version", version).Msg("diagnostics schema is current")
		return nil
	}

	if version != 0 {
		if err := dropTables(db, log); err != nil {
			return err
		}
	}

	return InitSchema(db, log)
}

func dropTables(db *sql.DB, log logger.Logger) error {
	errFactory := errors.New()

	tx, err := db.Begin()
	if err != nil {
		return errFactory.Wrap(errors.ErrSchemaMigrationFailed, err)
	}

	committed := false
	defer func() {
		if !committed {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				log.Debug().Err(rbErr).Msg("failed to rollback drop tables")
			}
		}
	}()

	for _, table := range []string{"events", "schema_versions"} {
		if _, err := tx.Exec("DROP TABLE IF EXISTS " + table); err != nil {
			return errFactory.WithData(errors.ErrSchemaMigrationFailed, struct {
				Table string
				Error string
			}{Table: table, Error: err.Error()})
		}
	}

	if err := tx.Commit(); err != nil {
		return errFactory.Wrap(errors.ErrSchemaMigrationFailed, err)
	}
	committed = true

	return nil
}
