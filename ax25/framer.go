package ax25

import "fmt"

/*------------------------------------------------------------------
 *
 * Name:	framer
 *
 * Purpose:	C2 frame build — assemble a bit-exact outbound AX.25 frame
 *		from a BuildParams value.
 *
 *		Grounded on original_source/python/hwu/ax25_framer.py's
 *		Framer.frame()/__build_I_frame()/__build_S_frame()/
 *		__build_U_frame(), restructured as one function over a kind
 *		switch instead of three private methods plus a dispatcher,
 *		per spec.md §9's "direct match on a tagged-union kind"
 *		redesign note.
 *
 *------------------------------------------------------------------*/

// BuildParams carries everything the Framer needs to build one frame.
// NS and NR are always supplied by the caller (the Link State Machine):
// for a fresh I-frame NS is V(S) and NR is V(R); for a retransmission NS
// is the backlog slot's original sequence number.
type BuildParams struct {
	Src, Dest Address
	Kind      FrameKind
	Poll      bool
	CR        CommandResponse
	Modulo    uint16
	NS, NR    uint16
	PID       byte
	Payload   []byte
}

// Build produces the complete wire byte sequence for one frame,
// including both bounding flags. It is pure: callers are responsible
// for any backlog/V(S) side effects spec.md §4.2.1 attaches to a
// successful I-frame build (see link.go).
func Build(p BuildParams) ([]byte, error) {
	controlBytes, err := buildControlBytes(p.Kind, p.Poll, p.NS, p.NR, p.Modulo)
	if err != nil {
		return nil, err
	}

	body := make([]byte, 0, 16+len(p.Payload))
	destBytes := p.Dest.encode(true, p.CR)
	srcBytes := p.Src.encode(false, p.CR)
	body = append(body, destBytes[:]...)
	body = append(body, srcBytes[:]...)
	body = append(body, controlBytes...)
	if p.Kind == FrameI || p.Kind == FrameUI {
		body = append(body, p.PID)
		body = append(body, p.Payload...)
	}

	// FCS is computed over the un-mirrored body, per spec.md §4.2.1.
	fcs := crcKermit(body)
	fcsBytes := crcBytes(fcs)

	// Mirror everything the CRC was computed over; the FCS bytes
	// themselves are transmitted in the form the KERMIT algorithm
	// already produces (spec.md §9 open question 1).
	mirrored := mirrorBytes(body)

	stuffInput := bitsFromBytes(append(append([]byte{}, mirrored...), fcsBytes[:]...))
	stuffed := stuffBits(stuffInput)

	frameBits := make([]bool, 0, 8+len(stuffed)+8)
	frameBits = append(frameBits, bitsFromBytes([]byte{Flag})...)
	frameBits = append(frameBits, stuffed...)
	frameBits = append(frameBits, bitsFromBytes([]byte{Flag})...)

	return bytesFromBits(frameBits), nil
}

// BuildIFrame is a convenience wrapper for the one build call the
// Uplinker makes for data-carrying frames: it fixes Kind/PID and
// requires a non-nil payload slice (possibly empty).
func BuildIFrame(src, dest Address, cr CommandResponse, modulo, ns, nr uint16, poll bool, payload []byte) ([]byte, error) {
	if payload == nil {
		return nil, fmt.Errorf("ax25: I-frame payload must not be nil")
	}
	return Build(BuildParams{
		Src: src, Dest: dest, Kind: FrameI, Poll: poll, CR: cr,
		Modulo: modulo, NS: ns, NR: nr, PID: PIDNoLayer3, Payload: payload,
	})
}
