package fileplugin

import (
	"log"
	"sync"
	"time"

	"github.com/lcavalli/ADCore/ndarray"
	"github.com/lcavalli/ADCore/util"
)

// Stats is a snapshot of pump activity for the stats route.
type Stats struct {
	// Written is the number of completed write cycles
	Written int `json:"written"`

	// Dropped is the number of arrays discarded because the queue was full
	Dropped int `json:"dropped"`

	// Failures is the number of cycles that errored
	Failures int `json:"failures"`

	// QueueDepth is the number of arrays waiting in the queue
	QueueDepth int `json:"queueDepth"`

	// QueueCap is the capacity of the queue
	QueueCap int `json:"queueCap"`

	// MeanCycleMS is the mean wall time of recent cycles in milliseconds
	MeanCycleMS float64 `json:"meanCycleMs"`

	// RateHz is the recent completion rate in frames per second
	RateHz float64 `json:"rateHz"`

	// LastFile is the most recently completed file
	LastFile string `json:"lastFile"`

	// Enabled mirrors the recorder gate
	Enabled bool `json:"enabled"`

	// Pending is the number of outstanding one-shot captures
	Pending int `json:"pending"`
}

// Pump feeds arrays from a source to a Recorder.  In queued mode a single
// worker goroutine drains a bounded channel and a full channel drops the
// array; in blocking mode Offer runs the cycle on the caller.
type Pump struct {
	sync.Mutex

	rec      *Recorder
	queue    chan *ndarray.Array
	stop     chan struct{}
	blocking bool

	written  int
	dropped  int
	failures int
	pending  int

	cycleMS *util.RingF64
	stamps  *util.RingTime
}

// NewPump wraps rec.  depth is the queue capacity; blocking selects
// caller-thread cycles and leaves the queue unused.
func NewPump(rec *Recorder, depth int, blocking bool) *Pump {
	if depth < 1 {
		depth = 1
	}
	return &Pump{
		rec:      rec,
		queue:    make(chan *ndarray.Array, depth),
		stop:     make(chan struct{}),
		blocking: blocking,
		cycleMS:  util.NewRingF64(32),
		stamps:   util.NewRingTime(32),
	}
}

// Offer submits an array for recording.  The return is false when the array
// was discarded, either because recording is gated off or the queue is full.
func (p *Pump) Offer(arr *ndarray.Array) bool {
	if !p.takeTicket() {
		return false
	}
	if p.blocking {
		p.capture(arr)
		return true
	}
	select {
	case p.queue <- arr:
		return true
	default:
		p.Lock()
		p.dropped++
		p.Unlock()
		return false
	}
}

// takeTicket decides whether this array records, consuming a one-shot
// capture slot when the recorder is disabled.
func (p *Pump) takeTicket() bool {
	p.Lock()
	defer p.Unlock()
	if p.rec.Enabled {
		return true
	}
	if p.pending > 0 {
		p.pending--
		return true
	}
	return false
}

// RequestCapture arms n one-shot captures that run even while the recorder
// is disabled.
func (p *Pump) RequestCapture(n int) {
	if n < 1 {
		return
	}
	p.Lock()
	p.pending += n
	p.Unlock()
}

// Run drains the queue until Stop.  Call it on its own goroutine; blocking
// pumps do not need it.
func (p *Pump) Run() {
	for {
		select {
		case arr := <-p.queue:
			p.capture(arr)
		case <-p.stop:
			return
		}
	}
}

// Stop terminates Run.  Arrays still queued are abandoned.
func (p *Pump) Stop() { close(p.stop) }

func (p *Pump) capture(arr *ndarray.Array) {
	start := time.Now()
	pth, err := p.rec.Capture(arr)
	if err != nil {
		log.Printf("fileplugin: cycle for %s failed: %v", pth, err)
		p.Lock()
		p.failures++
		p.Unlock()
		return
	}
	ms := float64(time.Since(start).Microseconds()) / 1000
	p.Lock()
	p.written++
	p.cycleMS.Push(ms)
	p.stamps.Push(time.Now())
	p.Unlock()
}

// Stats snapshots the counters.
func (p *Pump) Stats() Stats {
	p.Lock()
	defer p.Unlock()
	return Stats{
		Written:     p.written,
		Dropped:     p.dropped,
		Failures:    p.failures,
		QueueDepth:  len(p.queue),
		QueueCap:    cap(p.queue),
		MeanCycleMS: p.cycleMS.Mean(),
		RateHz:      p.stamps.Rate(),
		LastFile:    p.rec.LastPath(),
		Enabled:     p.rec.Enabled,
		Pending:     p.pending,
	}
}

// Recorder exposes the wrapped recorder for HTTP configuration.
func (p *Pump) Recorder() *Recorder { return p.rec }
