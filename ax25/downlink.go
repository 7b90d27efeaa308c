package ax25

import "errors"

/*------------------------------------------------------------------
 *
 * Name:	downlink
 *
 * Purpose:	C6 Downlinker/Dispatcher — drains the inbound frame queue,
 *		deframes each buffer, and routes it by decoded kind to the
 *		handlers spec.md §4.6 describes.
 *
 *		Grounded on ax25_connectors.py's Downlinker._run() and its
 *		__I_frame_handler/__RECOVERY_frame_handler/__REJ_frame_handler/
 *		__SREJ_frame_handler/__RR_frame_handler/__RNR_frame_handler/
 *		__acknowledgement_handler methods, restructured per spec.md
 *		§9 as a direct switch on FrameKind instead of reflective
 *		method-name dispatch.
 *
 *------------------------------------------------------------------*/

// Downlinker drains l's inbound queue, deframes, and dispatches.
type Downlinker struct {
	link       *Link
	payloadOut func([]byte)
}

func newDownlinker(link *Link, payloadOut func([]byte)) *Downlinker {
	return &Downlinker{link: link, payloadOut: payloadOut}
}

func (d *Downlinker) run() {
	for {
		data, ok := d.link.dequeueIn()
		if !ok {
			return
		}
		d.dispatch(data)
	}
}

func (d *Downlinker) dispatch(data []byte) {
	l := d.link
	_, vr, _, _ := l.snapshot()

	decoded := Deframe(data, l.cfg.localAddr(), l.cfg.Modulo, vr)

	if decoded.Kind != FrameError {
		l.mu.Lock()
		l.t3TryCount = 0
		l.mu.Unlock()
	}

	switch decoded.Kind {
	case FrameError:
		if errors.Is(decoded.Err, ErrWrongDestination) {
			return // wrong-destination: dropped silently, no log
		}
		l.logf("malformed frame dropped: %v", decoded.Err)
	case FrameI:
		d.handleI(decoded)
	case FrameRecovery:
		d.handleRecovery(decoded)
	case FrameREJ:
		d.handleREJ(decoded)
	case FrameSREJ:
		d.handleSREJ(decoded)
	case FrameRR:
		d.handleRR(decoded)
	case FrameRNR:
		d.handleRNR(decoded)
	default:
		l.logf("no handler for frame kind %s, dropping", decoded.Kind)
	}
}

// handleI implements spec.md §4.6's I-handler.
func (d *Downlinker) handleI(f DecodedFrame) {
	l := d.link

	if !f.Poll {
		l.mu.Lock()
		action := l.applyAckLocked(f.NR)
		l.mu.Unlock()
		l.runTimerAction(action)
	}

	if d.payloadOut != nil && len(f.PIDInfo) >= 1 {
		d.payloadOut(f.PIDInfo[1:])
	}

	l.mu.Lock()
	l.vr = (l.vr + 1) % l.cfg.Modulo
	newVR := l.vr
	clearRej := l.rejActive && modDiff(int(f.NS), int(l.nsBeforeSeqBreak)-1, int(l.cfg.Modulo)) == 0
	if clearRej {
		l.rejActive = false
	}
	queueEmpty := len(l.frameQueue) == 0
	windowAppearsFull := int(l.vs) == (int(l.va)+int(l.cfg.ReceiveWindowK))%int(l.cfg.Modulo)
	state := l.state
	l.mu.Unlock()

	if queueEmpty || windowAppearsFull {
		kind := FrameRR
		if state == StateBusy {
			kind = FrameRNR
		}
		l.enqueueOut(FrameRequest{Kind: kind, Poll: f.Poll, CR: Command, NR: newVR})
	}
}

// handleRecovery implements spec.md §4.6's RECOVERY-handler.
func (d *Downlinker) handleRecovery(f DecodedFrame) {
	l := d.link

	l.mu.Lock()
	rejActive := l.rejActive
	vr := l.vr
	mode := l.cfg.Reject
	l.mu.Unlock()

	if rejActive && f.Poll {
		kind := FrameREJ
		if mode == RejModeSREJ {
			kind = FrameSREJ
		}
		l.enqueueOut(FrameRequest{Kind: kind, Poll: true, CR: Response, NR: vr})
		return
	}

	if !rejActive {
		l.mu.Lock()
		l.nsBeforeSeqBreak = f.NS
		l.rejActive = true
		l.mu.Unlock()

		kind := FrameREJ
		if mode == RejModeSREJ {
			kind = FrameSREJ
		}
		l.enqueueOut(FrameRequest{Kind: kind, Poll: f.Poll, CR: Response, NR: vr})
	}
}

// handleREJ implements spec.md §4.6's REJ-handler.
func (d *Downlinker) handleREJ(f DecodedFrame) {
	l := d.link

	l.mu.Lock()
	action := l.applyAckLocked(f.NR)
	l.remoteBusy = false
	l.mu.Unlock()
	l.runTimerAction(action)

	l.rewindForRetransmit(f.NR)
}

// handleSREJ implements spec.md §4.6's SREJ-handler.
func (d *Downlinker) handleSREJ(f DecodedFrame) {
	l := d.link

	l.mu.Lock()
	action := l.applyAckLocked(f.NR)
	req, ok := l.backlog.get(f.NR)
	l.mu.Unlock()
	l.runTimerAction(action)

	if ok {
		l.requeueOutFront(req)
	}
	l.timers.resetT1(l.cfg.AckTimer)
}

// handleRR implements spec.md §4.6's RR-handler.
func (d *Downlinker) handleRR(f DecodedFrame) {
	l := d.link

	l.mu.Lock()
	l.remoteBusy = false
	action := l.applyAckLocked(f.NR)
	tryCount := l.t1TryCount
	l.mu.Unlock()
	l.runTimerAction(action)

	if !f.Poll {
		return
	}

	if tryCount == 0 {
		_, vr, _, state := l.snapshot()
		kind := FrameRR
		if state == StateBusy {
			kind = FrameRNR
		}
		l.enqueueOut(FrameRequest{Kind: kind, Poll: true, CR: Response, NR: vr})
		return
	}

	l.mu.Lock()
	l.t1TryCount = 0
	va := l.va
	vs := l.vs
	l.mu.Unlock()
	if va == vs {
		return
	}
	l.rewindForRetransmit(f.NR)
}

// handleRNR implements spec.md §4.6's RNR-handler: the same shape as
// RR but it marks remote_busy and does not restart T1.
func (d *Downlinker) handleRNR(f DecodedFrame) {
	l := d.link

	l.mu.Lock()
	l.remoteBusy = true
	l.va = f.NR
	tryCount := l.t1TryCount
	l.mu.Unlock()

	if !f.Poll {
		return
	}

	if tryCount == 0 {
		_, vr, _, state := l.snapshot()
		kind := FrameRR
		if state == StateBusy {
			kind = FrameRNR
		}
		l.enqueueOut(FrameRequest{Kind: kind, Poll: true, CR: Response, NR: vr})
		return
	}

	l.mu.Lock()
	l.t1TryCount = 0
	va := l.va
	vs := l.vs
	l.mu.Unlock()
	if va == vs {
		return
	}
	l.rewindForRetransmit(f.NR)
}
