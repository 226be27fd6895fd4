package video

import (
	"bytes"
	"testing"
)

func collect(units *[]AccessUnit) func(AccessUnit) {
	return func(u AccessUnit) { *units = append(*units, u) }
}

func TestAssemblerTwoChunkUnit(t *testing.T) {
	var units []AccessUnit
	a := NewAssembler(collect(&units))

	a.Push(Chunk{Data: []byte{0x00, 0x00, 0x00, 0x01, 0x65}, Width: 1280, Height: 720, Flags: FlagKeyframe, FrameNum: 1})
	a.Push(Chunk{Data: []byte{0x88, 0x84}, Width: 1280, Height: 720, Flags: FlagFrameEnd, FrameNum: 2})

	if len(units) != 1 {
		t.Fatalf("emitted %d units, want 1", len(units))
	}
	want := []byte{0x00, 0x00, 0x00, 0x01, 0x65, 0x88, 0x84}
	if !bytes.Equal(units[0].Data, want) {
		t.Errorf("unit data = %x, want %x", units[0].Data, want)
	}
	if !units[0].Keyframe {
		t.Error("unit not marked keyframe")
	}
	if units[0].Width != 1280 || units[0].Height != 720 {
		t.Errorf("unit size = %dx%d, want 1280x720", units[0].Width, units[0].Height)
	}
	if units[0].FrameNum != 2 {
		t.Errorf("unit frameNum = %d, want 2", units[0].FrameNum)
	}
}

func TestAssemblerSingleChunkUnit(t *testing.T) {
	var units []AccessUnit
	a := NewAssembler(collect(&units))

	a.Push(Chunk{Data: []byte{1, 2, 3}, Width: 800, Height: 480, Flags: FlagKeyframe | FlagFrameEnd, FrameNum: 10})

	if len(units) != 1 {
		t.Fatalf("emitted %d units, want 1", len(units))
	}
	if len(units[0].Data) != 3 {
		t.Errorf("unit has %d bytes, want 3", len(units[0].Data))
	}
}

func TestAssemblerGapDiscardsPartial(t *testing.T) {
	var units []AccessUnit
	a := NewAssembler(collect(&units))

	a.Push(Chunk{Data: []byte{1, 2}, Flags: FlagKeyframe, FrameNum: 5})
	// Counter jumps 5 -> 8: the partial unit must be discarded.
	a.Push(Chunk{Data: []byte{3, 4}, Flags: FlagFrameEnd, FrameNum: 8})

	if len(units) != 0 {
		t.Fatalf("emitted %d units after gap, want 0", len(units))
	}
	if a.Gaps() != 1 {
		t.Errorf("Gaps() = %d, want 1", a.Gaps())
	}
}

func TestAssemblerResumesAtKeyframeAfterGap(t *testing.T) {
	var units []AccessUnit
	a := NewAssembler(collect(&units))

	a.Push(Chunk{Data: []byte{1}, Flags: FlagKeyframe, FrameNum: 1})
	a.Push(Chunk{Data: []byte{2}, Flags: 0, FrameNum: 3}) // gap

	// Non-keyframe chunks after the gap are skipped.
	a.Push(Chunk{Data: []byte{3}, Flags: FlagFrameEnd, FrameNum: 4})
	if len(units) != 0 {
		t.Fatalf("emitted %d units before keyframe, want 0", len(units))
	}

	// Accumulation resumes at the next keyframe chunk.
	a.Push(Chunk{Data: []byte{9}, Flags: FlagKeyframe, FrameNum: 5})
	a.Push(Chunk{Data: []byte{10}, Flags: FlagFrameEnd, FrameNum: 6})

	if len(units) != 1 {
		t.Fatalf("emitted %d units, want 1", len(units))
	}
	want := []byte{9, 10}
	if !bytes.Equal(units[0].Data, want) {
		t.Errorf("unit data = %v, want %v", units[0].Data, want)
	}
}

func TestAssemblerGapAcrossUnitBoundary(t *testing.T) {
	var units []AccessUnit
	a := NewAssembler(collect(&units))

	a.Push(Chunk{Data: []byte{1}, Flags: FlagKeyframe | FlagFrameEnd, FrameNum: 1})
	if len(units) != 1 {
		t.Fatalf("emitted %d units, want 1", len(units))
	}

	// Counter jumps 1 -> 3 with no unit in progress: the dropped chunk was
	// the head of the next unit, so its remainder must not be emitted.
	a.Push(Chunk{Data: []byte{3}, Flags: 0, FrameNum: 3})
	a.Push(Chunk{Data: []byte{4}, Flags: FlagFrameEnd, FrameNum: 4})

	if a.Gaps() != 1 {
		t.Errorf("Gaps() = %d, want 1", a.Gaps())
	}
	if len(units) != 1 {
		t.Fatalf("emitted %d units, want 1 (headless unit must be dropped)", len(units))
	}

	// A fresh keyframe resumes emission.
	a.Push(Chunk{Data: []byte{5}, Flags: FlagKeyframe | FlagFrameEnd, FrameNum: 5})
	if len(units) != 2 {
		t.Fatalf("emitted %d units, want 2", len(units))
	}
	if !bytes.Equal(units[1].Data, []byte{5}) {
		t.Errorf("unit data = %v, want [5]", units[1].Data)
	}
}

func TestAssemblerResolutionChangeFlushesPartial(t *testing.T) {
	var units []AccessUnit
	a := NewAssembler(collect(&units))

	a.Push(Chunk{Data: []byte{1, 2}, Width: 800, Height: 480, Flags: FlagKeyframe, FrameNum: 1})
	a.Push(Chunk{Data: []byte{3}, Width: 1280, Height: 720, Flags: FlagKeyframe | FlagFrameEnd, FrameNum: 2})

	if len(units) != 1 {
		t.Fatalf("emitted %d units, want 1", len(units))
	}
	// Only the new-resolution chunk survives.
	if !bytes.Equal(units[0].Data, []byte{3}) {
		t.Errorf("unit data = %v, want [3]", units[0].Data)
	}
	if units[0].Width != 1280 {
		t.Errorf("unit width = %d, want 1280", units[0].Width)
	}
}

func TestAssemblerFlush(t *testing.T) {
	var units []AccessUnit
	a := NewAssembler(collect(&units))

	a.Push(Chunk{Data: []byte{1, 2}, Flags: FlagKeyframe, FrameNum: 1})
	a.Flush()
	a.Push(Chunk{Data: []byte{7}, Flags: FlagKeyframe | FlagFrameEnd, FrameNum: 2})

	if len(units) != 1 {
		t.Fatalf("emitted %d units, want 1", len(units))
	}
	if !bytes.Equal(units[0].Data, []byte{7}) {
		t.Errorf("unit data contains stale bytes: %v", units[0].Data)
	}
}
