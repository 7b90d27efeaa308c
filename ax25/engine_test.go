package ax25

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestEngineLoopbackPayloadDelivery wires two engines back to back —
// A's frame-out feeds B's frame-in and vice versa — and checks that a
// payload submitted on one side is delivered on the other.
func TestEngineLoopbackPayloadDelivery(t *testing.T) {
	delivered := make(chan []byte, 1)

	cfgA := DefaultConfig()
	cfgA.SrcAddr, cfgA.SrcSSID = "HWUGND", 1
	cfgA.DestAddr, cfgA.DestSSID = "HWUSAT", 1

	cfgB := DefaultConfig()
	cfgB.SrcAddr, cfgB.SrcSSID = "HWUSAT", 1
	cfgB.DestAddr, cfgB.DestSSID = "HWUGND", 1

	var engB *Engine
	engA := NewEngine(Options{
		Config: cfgA,
		FrameOut: func(b []byte) {
			engB.SubmitRawBytes(b)
		},
	})
	defer engA.Close()

	engB = NewEngine(Options{
		Config: cfgB,
		FrameOut: func(b []byte) {
			engA.SubmitRawBytes(b)
		},
		PayloadOut: func(p []byte) {
			delivered <- p
		},
	})
	defer engB.Close()

	engA.SubmitPayload([]byte{0xde, 0xad, 0xbe, 0xef})

	select {
	case got := <-delivered:
		assert.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef}, got)
	case <-time.After(2 * time.Second):
		t.Fatal("payload was never delivered across the loopback")
	}
}

func TestEngineStateDefaultsDisconnected(t *testing.T) {
	e := NewEngine(Options{Config: DefaultConfig()})
	defer e.Close()
	assert.Equal(t, StateDisconnected, e.State())
	e.SetState(StateConnected)
	assert.Equal(t, StateConnected, e.State())
}

func TestEngineSubmitFrameMalformedIsDropped(t *testing.T) {
	e := NewEngine(Options{Config: DefaultConfig()})
	defer e.Close()
	e.SubmitFrame([]byte{0x01}) // too short to be a real frame
	// No assertion beyond "doesn't panic or deadlock" — malformed
	// frames are dropped silently per spec.md §7.
	require.NotNil(t, e)
}
