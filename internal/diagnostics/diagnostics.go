// Package diagnostics is the on-disk event journal for the cooling core: a
// local SQLite log of state transitions, safety-check triggers and
// periodic bus counter snapshots, kept for post-incident review. It has no
// bearing on control decisions; the supervisor runs unaffected if this
// package is disabled.
package diagnostics

import (
	"time"

	"github.com/mutker/coolantd/internal/errors"
	"github.com/mutker/coolantd/internal/logger"
)

type journal struct {
	repo *repository
}

type noopCollector struct{}

// New returns a Collector backed by a SQLite journal at cfg.Path, or a
// no-op collector if cfg.Enabled is false.
func New(cfg Config, log logger.Logger) (Collector, error) {
	errFactory := errors.New()

	if err := cfg.Validate(); err != nil {
		return nil, errFactory.Wrap(errors.ErrInvalidConfig, err)
	}

	if !cfg.Enabled {
		log.Debug().Msg("diagnostics journal disabled, using no-op collector")
		return noopCollector{}, nil
	}

	repo, err := newRepository(cfg, log)
	if err != nil {
		return nil, err
	}

	return &journal{repo: repo}, nil
}

func (j *journal) RecordTransition(from, to string, event string) {
	j.repo.append(Record{
		Timestamp: time.Now(),
		Kind:      KindStateTransition,
		From:      from,
		To:        to,
		Event:     event,
	})
}

func (j *journal) RecordSafetyEvent(kind string, started bool) {
	j.repo.append(Record{
		Timestamp: time.Now(),
		Kind:      KindSafetyEvent,
		Event:     kind,
		Started:   started,
	})
}

func (j *journal) RecordBusCounters(tx, rx, drop uint64) {
	j.repo.append(Record{
		Timestamp: time.Now(),
		Kind:      KindBusCounters,
		TxCount:   tx,
		RxCount:   rx,
		DropCount: drop,
	})
}

func (j *journal) Close() error {
	return j.repo.close()
}

func (noopCollector) RecordTransition(string, string, string) {
}

func (noopCollector) RecordSafetyEvent(string, bool) {
}

func (noopCollector) RecordBusCounters(uint64, uint64, uint64) {
}

func (noopCollector) Close() error {
	return nil
}
