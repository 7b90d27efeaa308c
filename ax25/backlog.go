package ax25

/*------------------------------------------------------------------
 *
 * Name:	backlog
 *
 * Purpose:	C3 Send Buffer — holds the FrameRequest behind every
 *		outstanding (unacknowledged) I-frame, indexed by N(S), so a
 *		REJ/SREJ/poll-final recovery can re-frame it without asking
 *		the upper layer to resend.
 *
 *		Grounded on ax25_transceiver.py's frame_backlog list and
 *		its "frame_backlog[(Nr+iters) % modulo]" indexing in
 *		ax25_connectors.py. The original sizes the list to
 *		receive_window_k while indexing it modulo N — safe only
 *		when k == N; sized here to modulo instead, so "indexed by
 *		N(S) mod N" (spec.md §4.3) holds unconditionally regardless
 *		of how k and N relate (see DESIGN.md).
 *
 *------------------------------------------------------------------*/

// backlog is a fixed-size ring of in-flight I-frame requests, one slot
// per possible N(S) value. It carries no lock of its own: every access
// happens under the Link's single mutex (link.go), matching spec.md §5.
type backlog struct {
	modulo uint16
	slots  []FrameRequest
	filled []bool
}

func newBacklog(modulo uint16) *backlog {
	return &backlog{
		modulo: modulo,
		slots:  make([]FrameRequest, modulo),
		filled: make([]bool, modulo),
	}
}

// put stores req at N(S)=ns, overwriting any previous occupant. Safe
// per spec.md §4.3 because the window invariant never lets V(S) lap
// V(A) by more than k.
func (b *backlog) put(ns uint16, req FrameRequest) {
	i := ns % b.modulo
	b.slots[i] = req
	b.filled[i] = true
}

// get returns the request stored at N(S)=ns and whether a slot was
// ever filled there.
func (b *backlog) get(ns uint16) (FrameRequest, bool) {
	i := ns % b.modulo
	return b.slots[i], b.filled[i]
}
