package ax25

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// TestBuildS1SingleIFrameRoundTrip is S1 from spec.md §8.
func TestBuildS1SingleIFrameRoundTrip(t *testing.T) {
	src := Address{Call: "HWUGND", SSID: 1}
	dest := Address{Call: "HWUSAT", SSID: 1}

	got, err := BuildIFrame(src, dest, Command, 8, 0, 0, false, []byte{0x01, 0x02, 0x03})
	require.NoError(t, err)

	want := []byte{
		0x7e, 0x12, 0xea, 0xaa, 0xca, 0x82, 0x2a, 0x47,
		0x12, 0xea, 0xaa, 0xe2, 0x72, 0x22, 0xc6, 0x00,
		0x0f, 0x80, 0x20, 0x60, 0x7d, 0xf4, 0xcf, 0xc0,
	}
	assert.Equal(t, want, got)
}

// TestFrameRoundTripI is P1, restricted to I-frames (the only kind the
// Deframer can classify a payload out of).
func TestFrameRoundTripI(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		modulo := rapid.SampledFrom([]uint16{8, 128}).Draw(t, "modulo")
		poll := rapid.Bool().Draw(t, "poll")
		ns := rapid.Uint16Range(0, modulo-1).Draw(t, "ns")
		nr := rapid.Uint16Range(0, modulo-1).Draw(t, "nr")
		payload := rapid.SliceOfN(rapid.Byte(), 0, 64).Draw(t, "payload")

		src := Address{Call: "HWUGND", SSID: 1}
		dest := Address{Call: "HWUSAT", SSID: 1}

		built, err := Build(BuildParams{
			Src: src, Dest: dest, Kind: FrameI, Poll: poll, CR: Command,
			Modulo: modulo, NS: ns, NR: nr, PID: PIDNoLayer3, Payload: payload,
		})
		require.NoError(t, err)

		extractor := NewBitStreamExtractor()
		frames := extractor.Feed(built)
		require.Len(t, frames, 1)
		require.NoError(t, frames[0].Err)

		decoded := Deframe(frames[0].Data, dest, modulo, ns)
		require.NoError(t, decoded.Err)
		assert.Equal(t, FrameI, decoded.Kind)
		assert.Equal(t, poll, decoded.Poll)
		assert.Equal(t, Command, decoded.CR)
		assert.Equal(t, ns, decoded.NS)
		assert.Equal(t, nr, decoded.NR)
		assert.Equal(t, append([]byte{PIDNoLayer3}, payload...), decoded.PIDInfo)
	})
}

func TestBuildUnknownKindFails(t *testing.T) {
	_, err := Build(BuildParams{Kind: FrameRecovery, Modulo: 8})
	assert.Error(t, err)
}

func TestBuildIFrameRejectsNilPayload(t *testing.T) {
	_, err := BuildIFrame(Address{Call: "A"}, Address{Call: "B"}, Command, 8, 0, 0, false, nil)
	assert.Error(t, err)
}
