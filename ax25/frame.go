package ax25

/*------------------------------------------------------------------
 *
 * Name:	frame
 *
 * Purpose:	The typed request/decode records the Framer and Deframer
 *		build from and parse into, per spec.md §3 "FrameRequest" /
 *		"DecodedFrame".
 *
 *------------------------------------------------------------------*/

// FrameRequest is an outbound framing intent: produced by upper-layer
// input or by a Downlinker handler, consumed exactly once by the
// Uplinker (retransmissions re-enqueue a request synthesized from the
// backlog rather than mutating this one in place).
type FrameRequest struct {
	Dest Address
	Kind FrameKind
	Poll bool
	// NS/NR are only meaningful for I-frames being retransmitted from
	// the backlog, where the original sequence number must survive
	// unchanged across re-framing. A fresh I-frame request leaves NS
	// unset; the Framer fills it in from V(S) at build time. Supervisory
	// requests synthesized by a Downlinker handler (REJ/SREJ/RR/RNR
	// responses) carry the specific N(R) to send in NR.
	NS, NR  uint16
	Payload []byte
	CR      CommandResponse
}

// DecodedFrame is what the Deframer produces from a delimited inbound
// byte vector.
type DecodedFrame struct {
	Kind FrameKind
	Poll bool
	CR   CommandResponse

	// PIDInfo holds the PID byte followed by the information field,
	// populated for I-frames only (and the RECOVERY classification,
	// which reclassifies a syntactically valid I-frame).
	PIDInfo []byte

	NR uint16 // valid for I, RECOVERY, and all S-frame kinds
	NS uint16 // valid for I and RECOVERY only

	Err error // set iff Kind == FrameError
}
