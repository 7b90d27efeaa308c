package ax25

import "fmt"

/*------------------------------------------------------------------
 *
 * Name:	bitstream
 *
 * Purpose:	C1 — scan an incoming byte stream for AX.25 flag octets,
 *		delimit frame bit ranges, undo zero-bit stuffing, and emit
 *		octet-aligned frame buffers.
 *
 *		Grounded on the original
 *		build/test_modules/gnuradio/hwu/ax25_extract_frame.py
 *		two-state (active_frame bool) bit-accumulator, rewritten
 *		as an explicit Go state machine over []bool history/body
 *		buffers instead of Python list slicing.
 *
 *------------------------------------------------------------------*/

// flagBits is the 8-bit flag pattern 01111110, used as the sync word
// both extractor states look for.
var flagBits = bitsFromBytes([]byte{Flag})

// ExtractedFrame is one delimited, destuffed frame body as produced by
// the BitStream Extractor, or a delimiting error (non-octet-aligned
// residue) for the bit range between two flags.
type ExtractedFrame struct {
	Data []byte
	Err  error
}

// BitStreamExtractor implements C1. It is not safe for concurrent use;
// callers feed it bytes from a single reader goroutine (the Engine's
// frame-in path does this for callers who don't already have an
// octet-aligned, destuffed frame).
type BitStreamExtractor struct {
	history []bool // trailing window, at most 8 bits, most recent last
	active  bool   // OUTSIDE (false) / INSIDE (true), per spec.md §4.1
	body    []bool // bits accumulated since the last flag, while active
}

// NewBitStreamExtractor returns an extractor ready to scan a fresh
// stream (OUTSIDE state, empty buffers).
func NewBitStreamExtractor() *BitStreamExtractor {
	return &BitStreamExtractor{}
}

// Feed consumes a chunk of incoming octets and returns every frame (or
// delimiting error) fully delimited within this call. Partial frames
// straddling a call boundary are buffered internally for the next Feed.
func (e *BitStreamExtractor) Feed(data []byte) []ExtractedFrame {
	var out []ExtractedFrame
	for _, b := range data {
		for i := 7; i >= 0; i-- {
			bit := b&(1<<uint(i)) != 0
			if frame, ok := e.pushBit(bit); ok {
				out = append(out, frame)
			}
		}
	}
	return out
}

// pushBit advances the state machine by one bit, per spec.md §4.1.
func (e *BitStreamExtractor) pushBit(bit bool) (ExtractedFrame, bool) {
	e.history = append(e.history, bit)
	if len(e.history) > 8 {
		e.history = e.history[1:]
	}
	if len(e.history) < 8 {
		return ExtractedFrame{}, false
	}

	isFlag := sameBits(e.history, flagBits)

	if e.active {
		if isFlag {
			if len(e.body) > 7 {
				// Bits prior to the match, minus the partial flag
				// (its first 7 bits already landed in body on
				// earlier iterations) are the frame body.
				frameBits := e.body[:len(e.body)-7]
				e.body = nil
				return e.finishFrame(frameBits), true
			}
			// Nothing between this flag and the previous one: no
			// zero-length frame is emitted, this flag just opens
			// the next frame.
			e.body = nil
			return ExtractedFrame{}, false
		}
		e.body = append(e.body, bit)
		return ExtractedFrame{}, false
	}

	if isFlag {
		e.active = true
		e.body = nil
	}
	return ExtractedFrame{}, false
}

// finishFrame undoes bit stuffing and packs the residue into octets,
// reporting a delimiting error for non-octet-aligned results per
// spec.md §4.1 "Output alignment".
func (e *BitStreamExtractor) finishFrame(frameBits []bool) ExtractedFrame {
	destuffed := unstuffBits(frameBits)
	if len(destuffed)%8 != 0 {
		return ExtractedFrame{Err: fmt.Errorf("ax25: extracted frame not octet-aligned: %d bits", len(destuffed))}
	}
	return ExtractedFrame{Data: bytesFromBits(destuffed)}
}

func sameBits(a, b []bool) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
