package ax25

import (
	"sync"

	"github.com/charmbracelet/log"
)

/*------------------------------------------------------------------
 *
 * Name:	link
 *
 * Purpose:	C7 Link State Machine — owns V(S)/V(R)/V(A), connection
 *		state, the busy/recovery flags, the outbound request queue,
 *		the inbound frame queue, the send backlog, and the T1/T3
 *		timers, all behind one mutex. Exposes small getters/setters
 *		plus the handful of compound operations spec.md's handlers
 *		(§4.6) need to execute atomically.
 *
 *		Grounded on ax25_transceiver.py, which holds the same set of
 *		fields behind one threading.Lock and polls framequeue/
 *		frame_input_queue with sleeps; per spec.md §9's "use
 *		condition signalling ... rather than polling sleeps" note,
 *		queue waits here use sync.Cond instead.
 *
 *------------------------------------------------------------------*/

// Link is the per-connection state machine, C7 combined with C3 and C4
// into one lock-guarded object (C3's backlog and C4's timers are
// embedded rather than standalone, since nothing outside Link ever
// touches them directly). The C5 Uplinker and C6 Downlinker are
// separate workers that hold a reference to the Link.
type Link struct {
	mu        sync.Mutex
	queueCond *sync.Cond // signaled on frameQueue changes
	inCond    *sync.Cond // signaled on inputQueue changes

	cfg    Config
	logger *log.Logger

	// timingLogger is the original's separate self.timing_logger stream
	// (ax25_transceiver.py), generalized per SPEC_FULL.md §C.2: a
	// distinct sink for timer/ack events, independent of the main
	// structured logger, nil (discard) unless the caller supplies one.
	timingLogger *log.Logger

	vs, vr, va       uint16
	state            LinkStateKind
	rejActive        bool
	nsBeforeSeqBreak uint16
	remoteBusy       bool
	t1TryCount       int
	t3TryCount       int // observability only; see SPEC_FULL.md §C
	fatalRaised      bool

	backlog *backlog

	frameQueue []FrameRequest
	inputQueue [][]byte

	timers *timers

	killed bool

	onFatal func(error)
}

// NewLink constructs a Link in the DISC state with V(S)=V(R)=V(A)=0.
func NewLink(cfg Config, logger *log.Logger, onFatal func(error)) *Link {
	return newLinkWithTiming(cfg, logger, nil, onFatal)
}

// newLinkWithTiming is NewLink plus an optional separate timing-event
// logger (SPEC_FULL.md §C.2); Engine's Options.TimingLog writer reaches
// the Link through this constructor.
func newLinkWithTiming(cfg Config, logger, timingLogger *log.Logger, onFatal func(error)) *Link {
	l := &Link{
		cfg:          cfg,
		logger:       logger,
		timingLogger: timingLogger,
		state:        StateDisconnected,
		backlog:      newBacklog(cfg.Modulo),
		onFatal:      onFatal,
	}
	l.queueCond = sync.NewCond(&l.mu)
	l.inCond = sync.NewCond(&l.mu)
	l.timers = newTimers(l.fireT1, l.fireT3)
	return l
}

// logf logs at debug level through the link's logger, a no-op if none
// was configured (e.g. in tests that don't care about log output).
func (l *Link) logf(format string, args ...interface{}) {
	if l.logger == nil {
		return
	}
	l.logger.Debugf(format, args...)
}

// timingf logs a timer/ack event to the timing sub-logger, a no-op if
// none was configured.
func (l *Link) timingf(format string, args ...interface{}) {
	if l.timingLogger == nil {
		return
	}
	l.timingLogger.Infof(format, args...)
}

// ---- queue primitives -------------------------------------------------

// enqueueOut appends req to the tail of the outbound request queue.
func (l *Link) enqueueOut(req FrameRequest) {
	l.mu.Lock()
	l.frameQueue = append(l.frameQueue, req)
	l.mu.Unlock()
	l.queueCond.Signal()
}

// requeueOutFront re-inserts req at the head of the outbound queue —
// used for window-full backoff and T1/T3 supervisory polls.
func (l *Link) requeueOutFront(req FrameRequest) {
	l.mu.Lock()
	l.frameQueue = append([]FrameRequest{req}, l.frameQueue...)
	l.mu.Unlock()
	l.queueCond.Signal()
}

// requeueOutFrontMany re-inserts reqs, in order, at the head of the
// outbound queue — used by the REJ and RR/RNR final-answer backlog
// rewind (rewindForRetransmit, spec.md §4.6).
func (l *Link) requeueOutFrontMany(reqs []FrameRequest) {
	if len(reqs) == 0 {
		return
	}
	l.mu.Lock()
	l.frameQueue = append(append([]FrameRequest{}, reqs...), l.frameQueue...)
	l.mu.Unlock()
	l.queueCond.Broadcast()
}

// dequeueOut blocks until the outbound queue is non-empty or the link
// is killed, then pops and returns its head.
func (l *Link) dequeueOut() (FrameRequest, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for len(l.frameQueue) == 0 && !l.killed {
		l.queueCond.Wait()
	}
	if l.killed && len(l.frameQueue) == 0 {
		return FrameRequest{}, false
	}
	req := l.frameQueue[0]
	l.frameQueue = l.frameQueue[1:]
	return req, true
}

// outQueueEmpty reports whether the outbound queue currently has no
// pending requests (spec.md §4.6 I-handler step 5).
func (l *Link) outQueueEmpty() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.frameQueue) == 0
}

// enqueueIn appends a raw inbound frame buffer for the Downlinker.
func (l *Link) enqueueIn(data []byte) {
	l.mu.Lock()
	l.inputQueue = append(l.inputQueue, data)
	l.mu.Unlock()
	l.inCond.Signal()
}

// dequeueIn blocks until the inbound queue is non-empty or the link is
// killed, then pops and returns its head.
func (l *Link) dequeueIn() ([]byte, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for len(l.inputQueue) == 0 && !l.killed {
		l.inCond.Wait()
	}
	if l.killed && len(l.inputQueue) == 0 {
		return nil, false
	}
	data := l.inputQueue[0]
	l.inputQueue = l.inputQueue[1:]
	return data, true
}

// kill wakes both queue waiters so their workers can observe shutdown.
func (l *Link) kill() {
	l.mu.Lock()
	l.killed = true
	l.mu.Unlock()
	l.queueCond.Broadcast()
	l.inCond.Broadcast()
	l.timers.stop()
}

// ---- state getters/setters --------------------------------------------

func (l *Link) snapshot() (vs, vr, va uint16, state LinkStateKind) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.vs, l.vr, l.va, l.state
}

func (l *Link) getState() LinkStateKind {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

func (l *Link) setState(s LinkStateKind) {
	l.mu.Lock()
	l.state = s
	l.mu.Unlock()
}

func (l *Link) getRemoteBusy() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.remoteBusy
}

func (l *Link) getT1TryCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.t1TryCount
}

// ---- windowing helpers --------------------------------------------------

// modDiff returns (a-b) mod n for n > 0, always in [0, n).
func modDiff(a, b, n int) int {
	d := (a - b) % n
	if d < 0 {
		d += n
	}
	return d
}

// windowFull reports spec.md invariant 1's boundary condition:
// V(S) == (V(A)+k) mod N.
func (l *Link) windowFull() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := int(l.cfg.Modulo)
	return int(l.vs) == (int(l.va)+int(l.cfg.ReceiveWindowK))%n
}

// isNewAckLocked reports whether newNR lies in the window V(A)..V(S)
// inclusive, per spec.md §3's window-relative "was acknowledged" test.
// Caller must hold l.mu.
func (l *Link) isNewAckLocked(newNR uint16) bool {
	n := int(l.cfg.Modulo)
	return modDiff(int(newNR), int(l.va), n) <= modDiff(int(l.vs), int(l.va), n)
}

// ---- I-frame send side effect (open question 2) ------------------------

// beginIFrameSend snapshots the sequence numbers an I-frame send will
// carry (NS=V(S), NR=V(R)) without mutating any state yet; framing
// happens outside the lock per spec.md §5.
func (l *Link) beginIFrameSend() (ns, nr uint16) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.vs, l.vr
}

// completeIFrameSend performs the atomic backlog-insert-then-V(S)-
// advance pair spec.md §4.2.1/§9 open question 2 specifies: write
// backlog[ns] first, then advance V(S), so a concurrent reader that
// observes the new V(S) also observes the populated slot.
func (l *Link) completeIFrameSend(ns uint16, req FrameRequest) {
	l.mu.Lock()
	l.backlog.put(ns, req)
	l.vs = (l.vs + 1) % l.cfg.Modulo
	l.mu.Unlock()
}

// ---- acknowledgement handling (shared by REJ/SREJ/RR/RNR/I) -----------

// timerAction is what applyAckLocked, the Ack-handler (spec.md §4.6),
// returns: the T1 action the caller should perform after releasing
// the lock.
type timerAction int

const (
	timerActionNone timerAction = iota
	timerActionReset
	timerActionCancel
)

func (l *Link) applyAckLocked(nr uint16) timerAction {
	action := timerActionNone
	switch {
	case nr == l.va:
		// no new acknowledgement
	case nr == l.vs:
		action = timerActionCancel
	default:
		action = timerActionReset
	}
	l.va = nr
	l.timingf("ack nr=%d action=%d", nr, action)
	return action
}

func (l *Link) runTimerAction(action timerAction) {
	switch action {
	case timerActionReset:
		l.timers.resetT1(l.cfg.AckTimer)
	case timerActionCancel:
		l.timers.cancelT1()
	}
}

// rewindForRetransmit implements the backlog-rewind shared by the
// REJ-handler and the RR-handler's final-answer path: it sets V(S) :=
// nr and re-enqueues backlog[nr..prevVS) at the head of the outbound
// queue, in order.
func (l *Link) rewindForRetransmit(nr uint16) {
	l.mu.Lock()
	n := int(l.cfg.Modulo)
	prevVS := l.vs
	count := modDiff(int(prevVS), int(nr), n)
	reqs := make([]FrameRequest, 0, count)
	for i := 0; i < count; i++ {
		idx := (int(nr) + i) % n
		if req, ok := l.backlog.get(uint16(idx)); ok {
			reqs = append(reqs, req)
		}
	}
	l.vs = nr
	l.mu.Unlock()
	l.requeueOutFrontMany(reqs)
}

// ---- timer fire handlers (C4, invoked off the runtime's timer goroutine) --

// fireT1 implements spec.md §4.4's T1 expiration: enqueue a
// supervisory poll, count the retry, escalate to fatal if exhausted,
// restart T1.
func (l *Link) fireT1() {
	l.mu.Lock()
	if l.killed {
		l.mu.Unlock()
		return
	}
	l.t1TryCount++
	tryCount := l.t1TryCount
	retries := l.cfg.Retries
	kind := FrameRR
	if l.state == StateBusy {
		kind = FrameRNR
	}
	nr := l.vr
	raiseFatal := tryCount > retries && !l.fatalRaised
	if raiseFatal {
		l.fatalRaised = true
	}
	l.mu.Unlock()

	l.timingf("t1 fire try=%d/%d kind=%v", tryCount, retries, kind)

	if tryCount > retries {
		if raiseFatal {
			if l.logger != nil {
				l.logger.Error("T1 retries exhausted, link failed", "retries", retries)
			}
			if l.onFatal != nil {
				l.onFatal(errRetryExhausted)
			}
		}
		return
	}

	l.requeueOutFront(FrameRequest{Kind: kind, Poll: true, CR: Command, NR: nr})
	l.timers.resetT1(l.cfg.AckTimer)
}

// fireT3 implements spec.md §4.4's T3 expiration: an RR poll for
// link-integrity checking, treated equivalently to a T1 poll.
func (l *Link) fireT3() {
	l.mu.Lock()
	if l.killed {
		l.mu.Unlock()
		return
	}
	l.t3TryCount++
	try := l.t3TryCount
	nr := l.vr
	l.mu.Unlock()

	l.timingf("t3 fire try=%d", try)

	l.requeueOutFront(FrameRequest{Kind: FrameRR, Poll: true, CR: Command, NR: nr})
	l.timers.resetT3(l.cfg.T3Timer)
}

var errRetryExhausted = &LinkError{Msg: "ax25: T1 retry count exceeded configured retries, link failed"}

// LinkError is the fatal error surfaced upward per spec.md §7's
// "Retry-exhaustion" policy — the only error kind allowed to escape a
// worker.
type LinkError struct{ Msg string }

func (e *LinkError) Error() string { return e.Msg }
