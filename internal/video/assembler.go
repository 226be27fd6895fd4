package video

import (
	"github.com/autokit/carlink/internal/logging"
	"go.uber.org/zap"
)

// Chunk flag bits reported by the dongle.
const (
	FlagKeyframe = 0x01 // chunk starts an IDR access unit
	FlagFrameEnd = 0x02 // chunk completes the current access unit
)

// Chunk is one fragment of an H.264 access unit as delivered by a VideoData
// message. FrameNum increments monotonically per chunk; a gap means USB
// transfers were dropped.
type Chunk struct {
	Data     []byte
	Width    int
	Height   int
	Flags    uint32
	FrameNum uint32
}

// Keyframe reports whether the chunk starts an IDR access unit.
func (c Chunk) Keyframe() bool { return c.Flags&FlagKeyframe != 0 }

// FrameEnd reports whether the chunk completes the current access unit.
func (c Chunk) FrameEnd() bool { return c.Flags&FlagFrameEnd != 0 }

// AccessUnit is a complete decodable unit of video (one frame's worth of
// Annex B NAL data) ready for the external decoder.
type AccessUnit struct {
	Data     []byte
	Width    int
	Height   int
	Keyframe bool
	FrameNum uint32 // counter of the chunk that completed the unit
}

// Assembler reassembles fragmented video chunks into access units. It owns
// the in-progress unit until the end-of-frame flag hands it to the emit
// callback. Counter gaps discard the partial unit and accumulation resumes
// at the next keyframe-flagged chunk; a resolution change flushes any
// partial. The assembler never fails: corrupt sequences cost frames, not the
// connection.
//
// Not safe for concurrent use; the driver read loop is the only producer.
type Assembler struct {
	emit func(AccessUnit)

	buf      []byte
	width    int
	height   int
	keyframe bool
	lastNum  uint32

	started  bool // accumulating a unit
	hasLast  bool // lastNum holds a previously observed counter
	awaitKey bool // discard until the next keyframe chunk

	gaps    uint64
	emitted uint64
}

// NewAssembler creates an assembler delivering completed units to emit.
func NewAssembler(emit func(AccessUnit)) *Assembler {
	return &Assembler{emit: emit}
}

// Push accumulates one chunk, emitting an access unit when the chunk's
// end-of-frame flag is set.
func (a *Assembler) Push(c Chunk) {
	// Continuity is checked against the last chunk seen, not the current
	// unit: a drop on a unit boundary otherwise passes unnoticed and the
	// next unit assembles from mid-stream NALs.
	if a.hasLast && c.FrameNum != a.lastNum+1 {
		logging.Warn("Video frame counter gap, discarding partial unit",
			zap.Uint32("expected", a.lastNum+1),
			zap.Uint32("got", c.FrameNum),
			zap.Int("discarded_bytes", len(a.buf)),
		)
		a.gaps++
		a.reset()
		a.awaitKey = true
	}

	if a.started && (c.Width != a.width || c.Height != a.height) {
		logging.Info("Video resolution changed, flushing partial unit",
			zap.Int("old_width", a.width),
			zap.Int("old_height", a.height),
			zap.Int("new_width", c.Width),
			zap.Int("new_height", c.Height),
		)
		a.reset()
	}

	if a.awaitKey {
		if !c.Keyframe() {
			a.lastNum = c.FrameNum
			a.hasLast = true
			return
		}
		a.awaitKey = false
	}

	if !a.started {
		a.started = true
		a.width = c.Width
		a.height = c.Height
		a.keyframe = c.Keyframe()
		a.buf = a.buf[:0]
	}
	a.buf = append(a.buf, c.Data...)
	a.lastNum = c.FrameNum
	a.hasLast = true

	if c.FrameEnd() {
		unit := AccessUnit{
			Data:     append([]byte(nil), a.buf...),
			Width:    a.width,
			Height:   a.height,
			Keyframe: a.keyframe,
			FrameNum: c.FrameNum,
		}
		a.reset()
		a.emitted++
		a.emit(unit)
	}
}

// Flush discards any partial unit, typically on an out-of-band resolution
// change or session teardown.
func (a *Assembler) Flush() {
	if a.started && len(a.buf) > 0 {
		logging.Debug("Flushing partial access unit",
			zap.Int("bytes", len(a.buf)),
		)
	}
	a.reset()
}

// Gaps returns how many counter gaps have been observed.
func (a *Assembler) Gaps() uint64 { return a.gaps }

func (a *Assembler) reset() {
	a.started = false
	a.keyframe = false
	a.buf = a.buf[:0]
}
