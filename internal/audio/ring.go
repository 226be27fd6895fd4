package audio

import (
	"sync"

	"github.com/autokit/carlink/internal/logging"
	"go.uber.org/zap"
)

// DefaultBufferSeconds is how much PCM the ring holds before the oldest
// samples are overwritten. Sized for long navigation prompts.
const DefaultBufferSeconds = 20

// Ring is a fixed-capacity circular PCM buffer decoupling the USB read loop
// (producer) from the playback thread (consumer) with bounded latency.
//
// Write never blocks: when the ring is full the oldest unread samples are
// overwritten, so the producer always wins over consumer lag. Read never
// blocks either: it returns whatever contiguous span is available, which may
// be shorter than requested. The ring logically always holds the most recent
// capacity samples; anything older is unrecoverable.
type Ring struct {
	mu         sync.Mutex
	buf        []int16
	readPos    int
	writePos   int
	count      int // valid samples between readPos and writePos
	sampleRate int
	channels   int
	written    uint64 // total samples ever written, for diagnostics
	dropped    uint64 // samples overwritten before being read
}

// NewRing allocates a ring holding seconds worth of PCM at the given rate
// and channel count. seconds <= 0 falls back to DefaultBufferSeconds.
func NewRing(seconds, sampleRate, channels int) *Ring {
	if seconds <= 0 {
		seconds = DefaultBufferSeconds
	}
	if channels <= 0 {
		channels = 2
	}
	if sampleRate <= 0 {
		sampleRate = 44100
	}
	return &Ring{
		buf:        make([]int16, seconds*sampleRate*channels),
		sampleRate: sampleRate,
		channels:   channels,
	}
}

// SampleRate returns the PCM sample rate the ring was sized for.
func (r *Ring) SampleRate() int { return r.sampleRate }

// Channels returns the channel count the ring was sized for.
func (r *Ring) Channels() int { return r.channels }

// Capacity returns the total sample capacity of the ring.
func (r *Ring) Capacity() int { return len(r.buf) }

// Write appends samples, overwriting the oldest unread data when full.
// Never blocks.
func (r *Ring) Write(samples []int16) {
	if len(samples) == 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	// A burst larger than the whole ring reduces to its tail.
	if len(samples) > len(r.buf) {
		r.dropped += uint64(len(samples) - len(r.buf))
		samples = samples[len(samples)-len(r.buf):]
	}

	n := copy(r.buf[r.writePos:], samples)
	if n < len(samples) {
		copy(r.buf, samples[n:])
	}
	r.writePos = (r.writePos + len(samples)) % len(r.buf)
	r.written += uint64(len(samples))

	overrun := r.count + len(samples) - len(r.buf)
	if overrun > 0 {
		// Oldest unread samples were just overwritten; advance the
		// read position past them.
		r.readPos = (r.readPos + overrun) % len(r.buf)
		r.count = len(r.buf)
		r.dropped += uint64(overrun)
	} else {
		r.count += len(samples)
	}
}

// Read copies up to len(dst) of the oldest unread samples into dst and
// returns the number copied. Returns what exists without blocking; 0 when
// the ring is empty.
func (r *Ring) Read(dst []int16) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	want := len(dst)
	if want > r.count {
		want = r.count
	}
	if want == 0 {
		return 0
	}

	n := copy(dst[:want], r.buf[r.readPos:])
	if n < want {
		copy(dst[n:want], r.buf)
	}
	r.readPos = (r.readPos + want) % len(r.buf)
	r.count -= want
	return want
}

// Len returns the number of unread samples.
func (r *Ring) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

// Reset discards all buffered samples, keeping the allocation.
func (r *Ring) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.dropped > 0 {
		logging.Debug("Audio ring reset",
			zap.Uint64("written", r.written),
			zap.Uint64("dropped", r.dropped),
		)
	}
	r.readPos = 0
	r.writePos = 0
	r.count = 0
}

// Dropped returns the number of samples overwritten before being read.
func (r *Ring) Dropped() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dropped
}
