package diagnostics

import (
	"database/sql"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/mutker/coolantd/internal/errors"
	"github.com/mutker/coolantd/internal/logger"
	_ "github.com/mattn/go-sqlite3"
)

type repository struct {
	db     *sql.DB
	logger logger.Logger
	cfg    Config

	mu            sync.Mutex
	buffer        []Record
	flushTicker   *time.Ticker
	shutdownChan  chan struct{}
	flushDoneChan chan struct{}
}

func newRepository(cfg Config, log logger.Logger) (*repository, error) {
	errFactory := errors.New()

	if err := os.MkdirAll(filepath.Dir(cfg.Path), defaultDirPerm); err != nil {
		return nil, errFactory.WithData(errors.ErrDiagnosticsInit, struct {
			Path  string
			Error string
		}{Path: cfg.Path, Error: err.Error()})
	}

	dsn := cfg.Path + "?_journal=WAL&_auto_vacuum=2"
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, errFactory.Wrap(errors.ErrDiagnosticsInit, err)
	}

	if err := ValidateAndUpdateSchema(db, log); err != nil {
		db.Close()
		return nil, errFactory.Wrap(errors.ErrDiagnosticsInit, err)
	}

	log.Info().Str("path", cfg.Path).Int("schema_version", SchemaVersion).Msg("diagnostics journal opened")

	repo := &repository{
		db:            db,
		logger:        log,
		cfg:           cfg,
		buffer:        make([]Record, 0, cfg.BatchSize),
		shutdownChan:  make(chan struct{}),
		flushDoneChan: make(chan struct{}),
	}

	if cfg.BatchSize > 0 && cfg.BatchTimeout > 0 {
		repo.flushTicker = time.NewTicker(time.Duration(cfg.BatchTimeout) * time.Second)
		go repo.flusher()
	}

	return repo, nil
}

func (r *repository) append(rec Record) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.buffer = append(r.buffer, rec)
	if len(r.buffer) >= r.cfg.BatchSize {
		r.flushLocked()
	}
}

func (r *repository) flusher() {
	defer close(r.flushDoneChan)

	for {
		select {
		case <-r.flushTicker.C:
			r.mu.Lock()
			r.flushLocked()
			r.mu.Unlock()
		case <-r.shutdownChan:
			r.mu.Lock()
			r.flushLocked()
			r.mu.Unlock()
			return
		}
	}
}

func (r *repository) flushLocked() {
	if len(r.buffer) == 0 {
		return
	}

	tx, err := r.db.Begin()
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin diagnostics transaction")
		return
	}

	stmt, err := tx.Prepare(insertEventSQL)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to prepare diagnostics insert")
		_ = tx.Rollback()
		return
	}
	defer stmt.Close()

	for _, rec := range r.buffer {
		if _, err := stmt.Exec(
			rec.Timestamp.Unix(), rec.Kind, rec.From, rec.To, rec.Event,
			boolToInt(rec.Started), int64(rec.TxCount), int64(rec.RxCount), int64(rec.DropCount),
		); err != nil {
			r.logger.Error().Err(err).Msg("failed to insert diagnostics record")
			_ = tx.Rollback()
			return
		}
	}

	if err := tx.Commit(); err != nil {
		r.logger.Error().Err(err).Msg("failed to commit diagnostics transaction")
		return
	}

	r.buffer = r.buffer[:0]
}

func (r *repository) close() error {
	errFactory := errors.New()

	close(r.shutdownChan)
	if r.flushTicker != nil {
		r.flushTicker.Stop()
		<-r.flushDoneChan
	}

	if _, err := r.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		return errFactory.Wrap(errors.ErrDiagnosticsClose, err)
	}
	if err := r.db.Close(); err != nil {
		return errFactory.Wrap(errors.ErrDiagnosticsClose, err)
	}

	r.logger.Info().Msg("diagnostics journal closed")
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
