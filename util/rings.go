package util

import "time"

// RingF64 is a fixed-capacity ring of float64 samples; pushes past capacity
// overwrite the oldest entry.  Not safe for concurrent use.
type RingF64 struct {
	buf    []float64
	cursor int
	count  int
}

// NewRingF64 returns a ring holding up to capacity samples.
func NewRingF64(capacity int) *RingF64 {
	return &RingF64{buf: make([]float64, capacity)}
}

// Push adds a sample.
func (r *RingF64) Push(v float64) {
	r.buf[r.cursor] = v
	r.cursor = (r.cursor + 1) % len(r.buf)
	if r.count < len(r.buf) {
		r.count++
	}
}

// Len returns the number of live samples.
func (r *RingF64) Len() int { return r.count }

// Mean returns the average of the live samples, 0 when empty.
func (r *RingF64) Mean() float64 {
	if r.count == 0 {
		return 0
	}
	var sum float64
	for i := 0; i < r.count; i++ {
		sum += r.buf[i]
	}
	return sum / float64(r.count)
}

// RingTime is a fixed-capacity ring of timestamps; pushes past capacity
// overwrite the oldest entry.  Not safe for concurrent use.
type RingTime struct {
	buf    []time.Time
	cursor int
	count  int
}

// NewRingTime returns a ring holding up to capacity timestamps.
func NewRingTime(capacity int) *RingTime {
	return &RingTime{buf: make([]time.Time, capacity)}
}

// Push adds a timestamp.
func (r *RingTime) Push(t time.Time) {
	r.buf[r.cursor] = t
	r.cursor = (r.cursor + 1) % len(r.buf)
	if r.count < len(r.buf) {
		r.count++
	}
}

// Len returns the number of live timestamps.
func (r *RingTime) Len() int { return r.count }

// Rate returns events per second over the live window, 0 with fewer than
// two timestamps.
func (r *RingTime) Rate() float64 {
	if r.count < 2 {
		return 0
	}
	oldest := r.buf[0]
	newest := r.buf[r.count-1]
	if r.count == len(r.buf) {
		// cursor points at the oldest once wrapped
		oldest = r.buf[r.cursor]
		newest = r.buf[(r.cursor-1+len(r.buf))%len(r.buf)]
	}
	dt := newest.Sub(oldest).Seconds()
	if dt <= 0 {
		return 0
	}
	return float64(r.count-1) / dt
}
