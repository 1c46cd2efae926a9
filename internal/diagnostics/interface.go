package diagnostics

import "time"

// Collector is the recording surface the supervisor drives. In the SQLite
// journal a Record* call appends to an in-memory buffer; the buffer is
// written to disk by a periodic flusher, or by the Record* call itself when
// that call fills the batch.
type Collector interface {
	RecordTransition(from, to string, event string)
	RecordSafetyEvent(kind string, started bool)
	RecordBusCounters(tx, rx, drop uint64)
	Close() error
}

// Record is a single journaled row, flattened to the shape the schema
// stores regardless of kind.
type Record struct {
	Timestamp time.Time
	Kind      string
	From      string
	To        string
	Event     string
	Started   bool
	TxCount   uint64
	RxCount   uint64
	DropCount uint64
}

const (
	KindStateTransition = "state_transition"
	KindSafetyEvent     = "safety_event"
	KindBusCounters     = "bus_counters"
)
