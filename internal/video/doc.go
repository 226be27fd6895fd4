// Package video reassembles the dongle's fragmented H.264 chunks into
// complete access units for an external decoder.
//
// VideoData messages fragment access units across USB transfers. The
// Assembler appends chunk bytes until a chunk carries the end-of-frame flag,
// then hands the completed unit to its emit callback. The decoder itself is
// a black box at this boundary; the assembler guarantees only that emitted
// units are contiguous byte sequences with no internal gaps.
//
// Dropped transfers show up as frame-counter gaps. The assembler discards
// the in-progress partial unit, logs the gap, and resumes at the next
// keyframe so the decoder never sees a spliced unit. Resolution changes
// flush any partial. None of these conditions are fatal.
package video
