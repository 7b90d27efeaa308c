package ax25

import "time"

/*------------------------------------------------------------------
 *
 * Name:	uplink
 *
 * Purpose:	C5 Uplinker — drains the outbound request queue, frames
 *		each request, and publishes the resulting bytes, per
 *		spec.md §4.5.
 *
 *		Grounded on ax25_connectors.py's Uplinker._run(), which
 *		loops on a polling sleep when the window is full; this
 *		rewrite keeps the same window-full re-queue-and-backoff
 *		shape but uses a bounded time.Sleep backoff rather than the
 *		original's busy poll, per spec.md §5's "≤100 ms" bound.
 *
 *------------------------------------------------------------------*/

const windowFullBackoff = 50 * time.Millisecond

// Uplinker drains l's outbound queue onto frameOut.
type Uplinker struct {
	link     *Link
	frameOut func([]byte)
}

func newUplinker(link *Link, frameOut func([]byte)) *Uplinker {
	return &Uplinker{link: link, frameOut: frameOut}
}

// run is the Uplinker's worker loop; call it in its own goroutine.
func (u *Uplinker) run() {
	for {
		req, ok := u.link.dequeueOut()
		if !ok {
			return // link killed, queue drained
		}
		u.handle(req)
	}
}

func (u *Uplinker) handle(req FrameRequest) {
	if req.Kind == FrameI {
		if u.link.windowFull() {
			u.link.requeueOutFront(req)
			time.Sleep(windowFullBackoff)
			return
		}
		u.sendIFrame(req)
		return
	}
	u.sendControlFrame(req)
}

func (u *Uplinker) sendIFrame(req FrameRequest) {
	ns, nr := u.link.beginIFrameSend()
	cfg := u.link.cfg

	bytes, err := BuildIFrame(cfg.localAddr(), req.Dest, req.CR, cfg.Modulo, ns, nr, req.Poll, req.Payload)
	if err != nil {
		u.link.logf("framing failure, dropping I-frame request: %v", err)
		return
	}

	u.link.completeIFrameSend(ns, req)
	u.frameOut(bytes)
	u.link.timers.resetT1(cfg.AckTimer)
}

func (u *Uplinker) sendControlFrame(req FrameRequest) {
	cfg := u.link.cfg

	bytes, err := Build(BuildParams{
		Src: cfg.localAddr(), Dest: req.Dest, Kind: req.Kind, Poll: req.Poll,
		CR: req.CR, Modulo: cfg.Modulo, NR: req.NR, PID: PIDNoLayer3,
	})
	if err != nil {
		u.link.logf("framing failure, dropping %s request: %v", req.Kind, err)
		return
	}
	u.frameOut(bytes)
}
