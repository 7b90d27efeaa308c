package ax25

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLinkS5T1Expiration is S5 from spec.md §8.
func TestLinkS5T1Expiration(t *testing.T) {
	l := testLink(t)
	l.vr = 3
	l.cfg.AckTimer = 20 * time.Millisecond

	l.timers.resetT1(l.cfg.AckTimer)

	req, ok := l.dequeueOut()
	require.True(t, ok)
	assert.Equal(t, FrameRR, req.Kind)
	assert.True(t, req.Poll)
	assert.Equal(t, Command, req.CR)
	assert.Equal(t, uint16(3), req.NR)
	assert.Equal(t, 1, l.getT1TryCount())
}

func TestLinkT1ExpirationSendsRNRWhenBusy(t *testing.T) {
	l := testLink(t)
	l.setState(StateBusy)
	l.cfg.AckTimer = 20 * time.Millisecond

	l.timers.resetT1(l.cfg.AckTimer)

	req, ok := l.dequeueOut()
	require.True(t, ok)
	assert.Equal(t, FrameRNR, req.Kind)
}

func TestLinkT1RetryExhaustionIsFatal(t *testing.T) {
	fatal := make(chan error, 1)
	l := testLink(t)
	l.onFatal = func(err error) { fatal <- err }
	l.cfg.Retries = 2

	l.t1TryCount = 2 // already at the configured limit
	l.fireT1()

	select {
	case err := <-fatal:
		assert.Error(t, err)
	case <-time.After(time.Second):
		t.Fatal("expected a fatal callback on retry exhaustion")
	}
}

func TestLinkTimingLoggerRecordsAckAndT1Fire(t *testing.T) {
	var buf bytes.Buffer
	cfg := DefaultConfig()
	cfg.DestAddr, cfg.DestSSID = "HWUSAT", 1
	cfg.Normalize(nil)
	l := newLinkWithTiming(cfg, nil, NewLogger(&buf, "timing"), nil)

	l.mu.Lock()
	l.vs = 3
	action := l.applyAckLocked(2)
	l.mu.Unlock()
	assert.Equal(t, timerActionReset, action)

	l.cfg.AckTimer = 20 * time.Millisecond
	l.timers.resetT1(l.cfg.AckTimer)
	l.dequeueOut()

	out := buf.String()
	assert.Contains(t, out, "ack nr=2")
	assert.Contains(t, out, "t1 fire")
}

func TestTimersResetCancel(t *testing.T) {
	fired := make(chan struct{}, 1)
	ts := newTimers(func() { fired <- struct{}{} }, func() {})

	ts.resetT1(10 * time.Millisecond)
	ts.cancelT1()

	select {
	case <-fired:
		t.Fatal("T1 fired after being cancelled")
	case <-time.After(50 * time.Millisecond):
	}
}
