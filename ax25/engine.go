package ax25

import (
	"io"

	"github.com/charmbracelet/log"
)

/*------------------------------------------------------------------
 *
 * Name:	engine
 *
 * Purpose:	C8 Engine facade — owns one Link, starts its Uplinker,
 *		Downlinker, and (implicitly, via Link's embedded timers)
 *		its timer worker, and exposes the four external interfaces
 *		spec.md §6 names: payload-in, frame-in, payload-out,
 *		frame-out.
 *
 *------------------------------------------------------------------*/

// Engine is the package's external entry point.
type Engine struct {
	link       *Link
	uplinker   *Uplinker
	downlinker *Downlinker
	extractor  *BitStreamExtractor

	logger *log.Logger
}

// Options configures an Engine at construction.
type Options struct {
	Config Config

	// FrameOut receives every wire byte sequence the Uplinker
	// produces (the lower-layer "frame out" interface).
	FrameOut func([]byte)

	// PayloadOut receives every in-order I-frame's payload (the
	// upper-layer "payload out" interface).
	PayloadOut func([]byte)

	// OnFatal is invoked, at most once, when T1 retry exhaustion
	// forces the link to stop retransmitting (spec.md §7).
	OnFatal func(error)

	// Logger receives this Engine's diagnostic output; a logger
	// writing to os.Stderr is used if nil.
	Logger *log.Logger

	// TimingLog, if non-nil, receives a separate stream of timer/ack
	// events (SPEC_FULL.md §C.2), the Go equivalent of the original
	// transceiver's self.timing_logger. Discarded if nil.
	TimingLog io.Writer
}

// NewEngine builds a Link from opts.Config and starts its two worker
// goroutines, Uplinker and Downlinker. The Link's own timer set starts
// on demand via time.AfterFunc, so there is no separate timer worker
// to launch.
func NewEngine(opts Options) *Engine {
	cfg := opts.Config
	cfg.Normalize(opts.Logger)

	logger := opts.Logger
	if logger == nil {
		logger = NewLogger(nil, "ax25")
	}
	logger = logger.With("link", cfg.SrcAddr)

	var timingLogger *log.Logger
	if opts.TimingLog != nil {
		timingLogger = NewLogger(opts.TimingLog, "timing")
	}
	link := newLinkWithTiming(cfg, logger, timingLogger, opts.OnFatal)

	frameOut := opts.FrameOut
	if frameOut == nil {
		frameOut = func([]byte) {}
	}
	payloadOut := opts.PayloadOut
	if payloadOut == nil {
		payloadOut = func([]byte) {}
	}

	e := &Engine{
		link:       link,
		uplinker:   newUplinker(link, frameOut),
		downlinker: newDownlinker(link, payloadOut),
		extractor:  NewBitStreamExtractor(),
		logger:     logger,
	}

	go e.uplinker.run()
	go e.downlinker.run()

	return e
}

// SubmitPayload is the upper-layer "payload in" interface: it becomes
// one I-frame request with Poll=false, destined for the configured
// remote address, marked as a command.
func (e *Engine) SubmitPayload(payload []byte) {
	e.link.enqueueOut(FrameRequest{
		Dest:    e.link.cfg.remoteAddr(),
		Kind:    FrameI,
		CR:      Command,
		Payload: payload,
	})
}

// SubmitFrame is the lower-layer "frame in" interface for a caller
// that already has a flag-delimited, destuffed frame buffer (e.g. one
// produced upstream by its own BitStream Extractor).
func (e *Engine) SubmitFrame(frame []byte) {
	e.link.enqueueIn(frame)
}

// SubmitRawBytes is the lower-layer "frame in" interface for a caller
// that hands over an undelimited byte stream; the Engine runs its own
// BitStreamExtractor (C1) over it, per spec.md §6's fallback clause.
func (e *Engine) SubmitRawBytes(data []byte) {
	for _, f := range e.extractor.Feed(data) {
		if f.Err != nil {
			e.logger.Debugf("bitstream extraction error: %v", f.Err)
			continue
		}
		e.link.enqueueIn(f.Data)
	}
}

// State returns the link's current coarse connection state.
func (e *Engine) State() LinkStateKind {
	return e.link.getState()
}

// SetState sets the link's coarse connection state directly. Exposed
// per spec.md §4.7's note that only the CONN state is required for
// the core I-frame exchange; link-establishment transitions (§9 open
// question 3) are left to the caller until a future U-frame handshake
// lands.
func (e *Engine) SetState(s LinkStateKind) {
	e.link.setState(s)
}

// Close stops the Uplinker, Downlinker, and the link's timers.
func (e *Engine) Close() {
	e.link.kill()
}
