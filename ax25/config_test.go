package ax25

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfigMatchesSpecTable(t *testing.T) {
	c := DefaultConfig()
	assert.Equal(t, "HWUGND", c.SrcAddr)
	assert.Equal(t, byte(1), c.SrcSSID)
	assert.False(t, c.FullDuplex)
	assert.Equal(t, RejModeSREJ, c.Reject)
	assert.Equal(t, uint16(8), c.Modulo)
	assert.Equal(t, 2048, c.InformationFieldLength)
	assert.Equal(t, uint16(7), c.ReceiveWindowK)
	assert.Equal(t, 3*time.Second, c.AckTimer)
	assert.Equal(t, 10, c.Retries)
	assert.Equal(t, 10*time.Second, c.T3Timer)
}

func TestNormalizeClampsInvalidModulo(t *testing.T) {
	c := Config{Modulo: 17, RejectName: "SREJ"}
	c.Normalize(nil)
	assert.Equal(t, uint16(8), c.Modulo)
}

func TestNormalizeClampsWindowKToModulo(t *testing.T) {
	c := Config{Modulo: 8, ReceiveWindowK: 8, RejectName: "SREJ"}
	c.Normalize(nil)
	assert.Less(t, c.ReceiveWindowK, c.Modulo)
}

func TestNormalizeDefaultsUnknownRejectMode(t *testing.T) {
	c := Config{Modulo: 8, ReceiveWindowK: 7, RejectName: "BOGUS"}
	c.Normalize(nil)
	assert.Equal(t, RejModeSREJ, c.Reject)
}

func TestNormalizeConvertsSecondsToDuration(t *testing.T) {
	c := Config{Modulo: 8, ReceiveWindowK: 7, AckTimerSec: 1.5, T3TimerSec: 2.5}
	c.Normalize(nil)
	assert.Equal(t, 1500*time.Millisecond, c.AckTimer)
	assert.Equal(t, 2500*time.Millisecond, c.T3Timer)
}

func TestLoadConfigFileMissingFile(t *testing.T) {
	_, err := LoadConfigFile("/nonexistent/ax25-link.yaml")
	assert.Error(t, err)
}
