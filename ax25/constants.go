package ax25

/*------------------------------------------------------------------
 *
 * Name:	constants
 *
 * Purpose:	Wire-level constants and the FrameKind enumeration shared
 *		by the Framer, Deframer and Link State Machine.
 *
 *------------------------------------------------------------------*/

// Flag is the HDLC flag octet that opens and closes every AX.25 frame.
const Flag byte = 0x7e

// PIDNoLayer3 is the PID byte meaning "no layer 3 protocol", used for
// every I-frame this engine originates.
const PIDNoLayer3 byte = 0xf0

// FrameKind identifies the category (and, for S/U frames, the subtype)
// of an AX.25 frame, per spec.md §3 "FrameRequest" / "DecodedFrame".
type FrameKind int

const (
	FrameUnknown FrameKind = iota
	FrameI
	FrameRR
	FrameRNR
	FrameREJ
	FrameSREJ
	FrameSABM
	FrameSABME
	FrameDISC
	FrameDM
	FrameUA
	FrameFRMR
	FrameUI
	FrameXID
	FrameTEST

	// FrameRecovery is not a wire encoding: the Deframer reports it when
	// a syntactically valid I-frame arrives with N(S) != V(R).
	FrameRecovery

	// FrameError is not a wire encoding: malformed/undecodable input.
	FrameError
)

func (k FrameKind) String() string {
	switch k {
	case FrameI:
		return "I"
	case FrameRR:
		return "RR"
	case FrameRNR:
		return "RNR"
	case FrameREJ:
		return "REJ"
	case FrameSREJ:
		return "SREJ"
	case FrameSABM:
		return "SABM"
	case FrameSABME:
		return "SABME"
	case FrameDISC:
		return "DISC"
	case FrameDM:
		return "DM"
	case FrameUA:
		return "UA"
	case FrameFRMR:
		return "FRMR"
	case FrameUI:
		return "UI"
	case FrameXID:
		return "XID"
	case FrameTEST:
		return "TEST"
	case FrameRecovery:
		return "RECOVERY"
	case FrameError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// isSFrame reports whether kind is one of the four supervisory kinds.
func (k FrameKind) isSFrame() bool {
	switch k {
	case FrameRR, FrameRNR, FrameREJ, FrameSREJ:
		return true
	default:
		return false
	}
}

// isUFrame reports whether kind is one of the unnumbered kinds. All of
// them except FRMR have an entry in uFrameControl and can be built and
// parsed; FRMR has no control encoding there, so building it fails and
// parsing never yields it.
func (k FrameKind) isUFrame() bool {
	switch k {
	case FrameSABM, FrameSABME, FrameDISC, FrameDM, FrameUA, FrameFRMR, FrameUI, FrameXID, FrameTEST:
		return true
	default:
		return false
	}
}

// sFrameBits holds the two-bit SS subfield for each supervisory kind,
// per spec.md §4.2.1's control byte layout table.
var sFrameBits = map[FrameKind]byte{
	FrameRR:   0b00,
	FrameRNR:  0b01,
	FrameREJ:  0b10,
	FrameSREJ: 0b11,
}

var sFrameBitsInverse = map[byte]FrameKind{
	0b00: FrameRR,
	0b01: FrameRNR,
	0b10: FrameREJ,
	0b11: FrameSREJ,
}

// uFrameControl holds, for each U-frame kind, the 5-bit MM...MM
// subfield (bits 7-5 and bits 3-2) plus the 11 trailer, per spec.md's
// table (x marks the poll/final bit, bit 4):
//
//	SABME=0b011x1111, SABM=0b001x1111, DISC=0b010x0011,
//	DM=0b000x1111, UA=0b011x0011, UI=0b000x0011,
//	XID=0b101x1111, TEST=0b111x0011
//
// Represented here as the full control byte with the poll/final bit
// cleared (bit 4), so building/parsing only has to OR/mask that one bit.
var uFrameControl = map[FrameKind]byte{
	FrameSABME: 0b01101111,
	FrameSABM:  0b00101111,
	FrameDISC:  0b01000011,
	FrameDM:    0b00001111,
	FrameUA:    0b01100011,
	FrameUI:    0b00000011,
	FrameXID:   0b10101111,
	FrameTEST:  0b11100011,
}

var uFrameControlInverse = func() map[byte]FrameKind {
	m := make(map[byte]FrameKind, len(uFrameControl))
	for kind, bits := range uFrameControl {
		m[bits] = kind
	}
	return m
}()

// CommandResponse distinguishes the two possible values of the AX.25
// command/response indication.
type CommandResponse int

const (
	Command CommandResponse = iota
	Response
)

// RejectMode selects go-back-N (REJ) or selective-reject (SREJ)
// recovery, per spec.md §6 "rej" config parameter.
type RejectMode int

const (
	RejModeREJ RejectMode = iota
	RejModeSREJ
)

// LinkStateKind is the coarse connection state from spec.md §3/§4.7.
type LinkStateKind int

const (
	StateDisconnected LinkStateKind = iota
	StateConnected
	StateBusy
)

func (s LinkStateKind) String() string {
	switch s {
	case StateDisconnected:
		return "DISC"
	case StateConnected:
		return "CONN"
	case StateBusy:
		return "BUSY"
	default:
		return "UNKNOWN"
	}
}
