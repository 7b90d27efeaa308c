package ax25

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLink(t *testing.T) *Link {
	t.Helper()
	cfg := DefaultConfig()
	cfg.DestAddr = "HWUSAT"
	cfg.DestSSID = 1
	cfg.Normalize(nil)
	return NewLink(cfg, nil, nil)
}

func fillBacklog(l *Link, from, to uint16) {
	for i := from; i != to; i = (i + 1) % l.cfg.Modulo {
		l.backlog.put(i, FrameRequest{Payload: []byte{byte(i)}})
	}
}

// TestLinkS3REJRecovery is S3 from spec.md §8.
func TestLinkS3REJRecovery(t *testing.T) {
	l := testLink(t)
	l.va = 0
	l.vs = 4
	fillBacklog(l, 0, 4)

	d := newDownlinker(l, nil)
	d.handleREJ(DecodedFrame{Kind: FrameREJ, NR: 2})

	assert.Equal(t, uint16(2), l.vs)
	require.Len(t, l.frameQueue, 2)
	assert.Equal(t, []byte{2}, l.frameQueue[0].Payload)
	assert.Equal(t, []byte{3}, l.frameQueue[1].Payload)
}

// TestLinkS4SREJRecovery is S4 from spec.md §8.
func TestLinkS4SREJRecovery(t *testing.T) {
	l := testLink(t)
	l.cfg.Reject = RejModeSREJ
	l.va = 0
	l.vs = 4
	fillBacklog(l, 0, 4)

	d := newDownlinker(l, nil)
	d.handleSREJ(DecodedFrame{Kind: FrameSREJ, NR: 2})

	assert.Equal(t, uint16(4), l.vs, "V(S) must not move for SREJ")
	require.Len(t, l.frameQueue, 1)
	assert.Equal(t, []byte{2}, l.frameQueue[0].Payload)

	l.timers.mu.Lock()
	t1Running := l.timers.t1 != nil
	l.timers.mu.Unlock()
	assert.True(t, t1Running, "T1 must be reset after SREJ recovery")
}

// TestLinkS6WindowFull is S6 from spec.md §8.
func TestLinkS6WindowFull(t *testing.T) {
	l := testLink(t)
	l.cfg.ReceiveWindowK = 7
	l.cfg.Modulo = 8
	l.va = 0
	l.vs = 7

	req := FrameRequest{Kind: FrameI, Dest: l.cfg.remoteAddr(), CR: Command, Payload: []byte{0x01}}
	l.frameQueue = append(l.frameQueue, req)

	u := newUplinker(l, func([]byte) {
		t.Fatal("a full window must not be framed or published")
	})

	popped, ok := l.dequeueOut()
	require.True(t, ok)

	done := make(chan struct{})
	go func() {
		u.handle(popped)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("handle did not return")
	}

	require.Len(t, l.frameQueue, 1)
	assert.Equal(t, req.Payload, l.frameQueue[0].Payload)
	assert.Equal(t, uint16(7), l.vs, "V(S) must not advance while the window is full")
}

func TestWindowFullBoundary(t *testing.T) {
	l := testLink(t)
	l.cfg.Modulo = 8
	l.cfg.ReceiveWindowK = 7
	l.va = 0

	l.vs = 6
	assert.False(t, l.windowFull())
	l.vs = 7
	assert.True(t, l.windowFull())
}

func TestApplyAckLockedTimerActions(t *testing.T) {
	l := testLink(t)
	l.va, l.vs = 2, 2

	l.mu.Lock()
	action := l.applyAckLocked(2) // nr == va: no new ack
	l.mu.Unlock()
	assert.Equal(t, timerActionNone, action)

	l.va, l.vs = 2, 5
	l.mu.Lock()
	action = l.applyAckLocked(5) // nr == vs: fully acknowledged
	l.mu.Unlock()
	assert.Equal(t, timerActionCancel, action)
	assert.Equal(t, uint16(5), l.va)

	l.va, l.vs = 2, 5
	l.mu.Lock()
	action = l.applyAckLocked(3) // partial ack
	l.mu.Unlock()
	assert.Equal(t, timerActionReset, action)
	assert.Equal(t, uint16(3), l.va)
}

func TestIsNewAckLockedWindowRelative(t *testing.T) {
	l := testLink(t)
	l.cfg.Modulo = 8
	l.va, l.vs = 2, 5

	l.mu.Lock()
	defer l.mu.Unlock()
	assert.True(t, l.isNewAckLocked(4))
	assert.True(t, l.isNewAckLocked(5))
	assert.False(t, l.isNewAckLocked(6))
}
