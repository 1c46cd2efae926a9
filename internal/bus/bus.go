// Package bus implements a message-bus abstraction modeled on CAN: a
// bounded-queue transmit path, receive dispatch to registered handlers, and
// TX/RX/DROP counters. It is the core's only boundary with sensors and
// actuators.
package bus

import (
	"math/rand"
	"sync"
	"sync/atomic"
	"time"
)

// txQueueCapacity bounds the transmit queue; beyond this, SendMessage
// refuses and the drop counter increments.
const txQueueCapacity = 1024

// transmitDelay simulates the time a real CAN transceiver would take to put
// a frame on the wire.
const transmitDelay = 100 * time.Microsecond

// receiveIntervalMin and receiveIntervalMax bound the pseudo-random gap
// between synthesized temperature frames.
const (
	receiveIntervalMin = 100 * time.Millisecond
	receiveIntervalMax = 500 * time.Millisecond
)

// TemperatureFrameID is the identifier the receive worker synthesizes
// temperature readings on.
const TemperatureFrameID = 0x100

// Bus is a single logical node on the message bus. The zero value is not
// usable; construct with New.
type Bus struct {
	nodeID uint32

	running atomic.Bool
	done    chan struct{}
	wg      sync.WaitGroup

	txQueue chan Frame

	handlerMu sync.Mutex
	handlers  map[uint16]HandlerFunc

	txCount   atomic.Uint64
	rxCount   atomic.Uint64
	dropCount atomic.Uint64

	rngMu sync.Mutex
	rng   *rand.Rand
}

// New constructs an idle Bus with zeroed counters, an empty queue and an
// empty handler table.
func New(nodeID uint32) *Bus {
	return &Bus{
		nodeID:   nodeID,
		txQueue:  make(chan Frame, txQueueCapacity),
		handlers: make(map[uint16]HandlerFunc),
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Start is idempotent: it spawns a receive worker and a transmit worker the
// first time it is called while idle; a second call while running is a
// no-op. Safe to call from any goroutine.
func (b *Bus) Start() {
	if !b.running.CompareAndSwap(false, true) {
		return
	}

	b.done = make(chan struct{})
	b.wg.Add(2)
	go b.receiveWorker()
	go b.transmitWorker()
}

// Stop is idempotent: it signals both workers to exit and joins them.
// After Stop, Start may be called again to run the bus anew.
func (b *Bus) Stop() {
	if !b.running.CompareAndSwap(true, false) {
		return
	}

	close(b.done)
	b.wg.Wait()
}

// SendMessage validates length and that the bus is running, timestamps the
// frame, and enqueues it. It returns false without effect if length is out
// of range or the bus is not running, and false with DROP incremented if
// the queue is at capacity. It never blocks on the transmit worker beyond a
// non-blocking channel send.
func (b *Bus) SendMessage(id uint16, payload []byte, length int) bool {
	if length < 0 || length > MaxPayloadLength || !b.running.Load() {
		return false
	}

	var frame Frame
	frame.ID = id
	frame.Length = length
	frame.Timestamp = time.Now()
	copy(frame.Data[:length], payload[:length])

	select {
	case b.txQueue <- frame:
		return true
	default:
		b.dropCount.Add(1)
		return false
	}
}

// RegisterHandler installs or replaces the handler for id. Safe to call
// from any goroutine, including reentrantly from within a handler
// invocation: dispatch never holds handlerMu across a handler call.
func (b *Bus) RegisterHandler(id uint16, handler HandlerFunc) {
	b.handlerMu.Lock()
	b.handlers[id] = handler
	b.handlerMu.Unlock()
}

// TxCount returns the number of frames actually transmitted.
func (b *Bus) TxCount() uint64 { return b.txCount.Load() }

// RxCount returns the number of frames successfully dispatched to a handler.
func (b *Bus) RxCount() uint64 { return b.rxCount.Load() }

// DropCount returns the number of SendMessage calls refused for a full
// queue.
func (b *Bus) DropCount() uint64 { return b.dropCount.Load() }

// Inject delivers frame to its registered handler as if it had arrived on
// the receive worker, incrementing RxCount on a successful dispatch. It
// exists for driving the core with synthetic input outside the randomized
// receive worker: scripted test scenarios and unit tests.
func (b *Bus) Inject(frame Frame) {
	b.dispatch(frame)
}

// dispatch copies the handler for frame.ID out of the table under lock,
// releases the lock, then invokes the copy. This is the reentrancy rule: a
// handler may call RegisterHandler or SendMessage on this Bus without
// deadlocking, because the handler table lock is never held during
// invocation.
func (b *Bus) dispatch(frame Frame) {
	b.handlerMu.Lock()
	handler, ok := b.handlers[frame.ID]
	b.handlerMu.Unlock()

	if !ok {
		return
	}

	handler(frame)
	b.rxCount.Add(1)
}

func (b *Bus) transmitWorker() {
	defer b.wg.Done()

	for {
		select {
		case frame := <-b.txQueue:
			_ = frame
			time.Sleep(transmitDelay)
			b.txCount.Add(1)
		case <-b.done:
			return
		}
	}
}

func (b *Bus) receiveWorker() {
	defer b.wg.Done()

	for {
		interval := b.randomReceiveInterval()
		timer := time.NewTimer(interval)

		select {
		case <-b.done:
			timer.Stop()
			return
		case <-timer.C:
		}

		frame := b.synthesizeTemperatureFrame()
		b.dispatch(frame)
	}
}

func (b *Bus) randomReceiveInterval() time.Duration {
	b.rngMu.Lock()
	defer b.rngMu.Unlock()

	span := int64(receiveIntervalMax - receiveIntervalMin)
	return receiveIntervalMin + time.Duration(b.rng.Int63n(span+1))
}

// synthesizeTemperatureFrame builds a 0x100 temperature reading in the
// range 65.0..69.9 degrees Celsius, matching the original simulator's test
// fixture range.
func (b *Bus) synthesizeTemperatureFrame() Frame {
	b.rngMu.Lock()
	tempTenths := uint16(650 + b.rng.Intn(50))
	b.rngMu.Unlock()

	var frame Frame
	frame.ID = TemperatureFrameID
	frame.Length = 2
	frame.Data[0] = byte(tempTenths >> 8)
	frame.Data[1] = byte(tempTenths & 0xFF)
	frame.Timestamp = time.Now()

	return frame
}
