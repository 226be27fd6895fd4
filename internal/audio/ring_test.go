package audio

import "testing"

// tinyRing builds a ring with an exact sample capacity for tests.
func tinyRing(capacity int) *Ring {
	return NewRing(1, capacity, 1)
}

func TestRingWriteRead(t *testing.T) {
	r := tinyRing(8)

	r.Write([]int16{1, 2, 3})
	if r.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", r.Len())
	}

	dst := make([]int16, 2)
	if n := r.Read(dst); n != 2 {
		t.Fatalf("Read() = %d, want 2", n)
	}
	if dst[0] != 1 || dst[1] != 2 {
		t.Errorf("read %v, want [1 2]", dst)
	}
	if r.Len() != 1 {
		t.Errorf("Len() = %d after read, want 1", r.Len())
	}
}

func TestRingReadShortWhenEmpty(t *testing.T) {
	r := tinyRing(4)

	dst := make([]int16, 4)
	if n := r.Read(dst); n != 0 {
		t.Errorf("Read() on empty ring = %d, want 0", n)
	}

	r.Write([]int16{7})
	if n := r.Read(dst); n != 1 {
		t.Errorf("Read() = %d, want the 1 available sample", n)
	}
}

func TestRingOverwritesOldest(t *testing.T) {
	r := tinyRing(4)

	// 6 samples into a 4-sample ring: the oldest two are gone.
	r.Write([]int16{1, 2, 3, 4})
	r.Write([]int16{5, 6})

	dst := make([]int16, 8)
	n := r.Read(dst)
	if n != 4 {
		t.Fatalf("Read() = %d, want exactly capacity (4)", n)
	}
	want := []int16{3, 4, 5, 6}
	for i, w := range want {
		if dst[i] != w {
			t.Errorf("dst[%d] = %d, want %d", i, dst[i], w)
		}
	}
	if r.Dropped() != 2 {
		t.Errorf("Dropped() = %d, want 2", r.Dropped())
	}
}

func TestRingBurstLargerThanCapacity(t *testing.T) {
	r := tinyRing(4)

	r.Write([]int16{1, 2, 3, 4, 5, 6, 7, 8, 9, 10})

	dst := make([]int16, 10)
	n := r.Read(dst)
	if n != 4 {
		t.Fatalf("Read() = %d, want 4", n)
	}
	want := []int16{7, 8, 9, 10}
	for i, w := range want {
		if dst[i] != w {
			t.Errorf("dst[%d] = %d, want %d", i, dst[i], w)
		}
	}
}

func TestRingWrapAround(t *testing.T) {
	r := tinyRing(4)

	r.Write([]int16{1, 2, 3})
	dst := make([]int16, 2)
	r.Read(dst) // readPos now 2

	r.Write([]int16{4, 5, 6}) // writes wrap past the end

	got := make([]int16, 4)
	n := r.Read(got)
	if n != 4 {
		t.Fatalf("Read() = %d, want 4", n)
	}
	want := []int16{3, 4, 5, 6}
	for i, w := range want {
		if got[i] != w {
			t.Errorf("got[%d] = %d, want %d", i, got[i], w)
		}
	}
}

func TestRingReset(t *testing.T) {
	r := tinyRing(4)
	r.Write([]int16{1, 2, 3})
	r.Reset()
	if r.Len() != 0 {
		t.Errorf("Len() after reset = %d, want 0", r.Len())
	}
	r.Write([]int16{9})
	dst := make([]int16, 1)
	if n := r.Read(dst); n != 1 || dst[0] != 9 {
		t.Errorf("post-reset read = %d %v", n, dst)
	}
}

func TestRingConcurrentAccess(t *testing.T) {
	r := NewRing(1, 4800, 2)
	done := make(chan struct{})

	go func() {
		defer close(done)
		chunk := make([]int16, 64)
		for i := 0; i < 500; i++ {
			r.Write(chunk)
		}
	}()

	dst := make([]int16, 128)
	for i := 0; i < 500; i++ {
		r.Read(dst)
	}
	<-done
}

func TestNewRingDefaults(t *testing.T) {
	r := NewRing(0, 48000, 2)
	if r.Capacity() != DefaultBufferSeconds*48000*2 {
		t.Errorf("Capacity() = %d, want %d", r.Capacity(), DefaultBufferSeconds*48000*2)
	}
	if r.SampleRate() != 48000 || r.Channels() != 2 {
		t.Errorf("format = %d/%d, want 48000/2", r.SampleRate(), r.Channels())
	}
}
