package ax25

import (
	"errors"
	"fmt"
)

/*------------------------------------------------------------------
 *
 * Name:	deframer
 *
 * Purpose:	C2 frame parse — turn a flag-delimited, destuffed byte
 *		vector (as produced by the BitStream Extractor) into a
 *		DecodedFrame, per spec.md §4.2.2.
 *
 *		Grounded on ax25_framer.py's Framer.deframe(), restructured
 *		the same way framer.go restructures frame(): one function,
 *		explicit steps, no reflective dispatch.
 *
 *------------------------------------------------------------------*/

// ErrWrongDestination distinguishes an address mismatch from other
// malformed-frame causes, so the Downlinker can apply spec.md §7's
// "dropped silently, no log" treatment specifically to this case.
var ErrWrongDestination = errors.New("ax25: destination address mismatch")

const minFrameBodyLen = 7 + 7 + 1 + 2 // dest + src + shortest control + FCS

// Deframe parses one delimited frame body. vr is the link's current
// V(R), needed to classify an I-frame as in-order (FrameI) or a
// sequence break (FrameRecovery) per spec.md §4.2.2 step 7.
func Deframe(data []byte, local Address, modulo uint16, vr uint16) DecodedFrame {
	if len(data) < minFrameBodyLen {
		return DecodedFrame{Kind: FrameError, Err: fmt.Errorf("ax25: frame too short: %d bytes", len(data))}
	}

	fcsBytes := data[len(data)-2:]
	natural := mirrorBytes(data[:len(data)-2])

	destRaw := natural[0:7]
	srcRaw := natural[7:14]

	dest, destHigh, err := decodeAddress(destRaw)
	if err != nil {
		return DecodedFrame{Kind: FrameError, Err: fmt.Errorf("ax25: destination address: %w", err)}
	}
	src, srcHigh, err := decodeAddress(srcRaw)
	if err != nil {
		return DecodedFrame{Kind: FrameError, Err: fmt.Errorf("ax25: source address: %w", err)}
	}

	if dest.Call != local.Call || dest.SSID != local.SSID {
		return DecodedFrame{Kind: FrameError, Err: ErrWrongDestination}
	}
	_ = src // parsed for symmetry/future digipeater use; not otherwise consulted

	cr := Response
	if destHigh && !srcHigh {
		cr = Command
	}

	expected := crcFromBytes(fcsBytes)
	computed := crcKermit(natural)
	if computed != expected {
		return DecodedFrame{Kind: FrameError, Err: fmt.Errorf("ax25: FCS mismatch: got %#04x want %#04x", computed, expected)}
	}

	kind, poll, ns, nr, consumed, err := parseControlBytes(natural[14:], modulo)
	if err != nil {
		return DecodedFrame{Kind: FrameError, Err: err}
	}

	decoded := DecodedFrame{Kind: kind, Poll: poll, CR: cr, NR: nr, NS: ns}

	if kind == FrameI {
		pidInfo := natural[14+consumed:]
		if len(pidInfo) == 0 {
			return DecodedFrame{Kind: FrameError, Err: fmt.Errorf("ax25: I-frame missing PID byte")}
		}
		decoded.PIDInfo = pidInfo
		if ns != vr {
			decoded.Kind = FrameRecovery
		}
	}

	return decoded
}
