package ax25

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"
)

/*------------------------------------------------------------------
 *
 * Name:	config
 *
 * Purpose:	Link configuration parameters, per spec.md §6's table, and
 *		the window clamping for spec.md invariant 2 (k < modulo).
 *
 *------------------------------------------------------------------*/

// Config holds everything spec.md §6 lists as a configuration parameter.
type Config struct {
	SrcAddr  string `yaml:"src_addr"`
	SrcSSID  byte   `yaml:"src_ssid"`
	DestAddr string `yaml:"dest_addr"`
	DestSSID byte   `yaml:"dest_ssid"`

	FullDuplex bool `yaml:"full_duplex"`

	Reject RejectMode `yaml:"-"`
	// RejectName is the YAML-facing form of Reject ("REJ" or "SREJ").
	RejectName string `yaml:"rej"`

	Modulo uint16 `yaml:"modulo"`

	InformationFieldLength int `yaml:"information_field_length"`
	ReceiveWindowK         uint16 `yaml:"receive_window_k"`

	AckTimer      time.Duration `yaml:"-"`
	AckTimerSec   float64       `yaml:"ack_timer"`
	Retries       int           `yaml:"retries"`
	T3Timer       time.Duration `yaml:"-"`
	T3TimerSec    float64       `yaml:"timer_t3_seconds"`
}

// DefaultConfig returns the defaults enumerated in spec.md §6.
func DefaultConfig() Config {
	return Config{
		SrcAddr:                "HWUGND",
		SrcSSID:                1,
		FullDuplex:             false,
		Reject:                 RejModeSREJ,
		RejectName:             "SREJ",
		Modulo:                 8,
		InformationFieldLength: 2048,
		ReceiveWindowK:         7,
		AckTimer:               3 * time.Second,
		AckTimerSec:            3,
		Retries:                10,
		T3Timer:                10 * time.Second,
		T3TimerSec:             10,
	}
}

// Normalize applies spec.md invariant 2 (k must be non-zero and below
// modulo, clamped to a safe default otherwise) and resolves the YAML-facing duration/string
// fields into their typed equivalents. Call after loading a Config from
// any external source; DefaultConfig() is already normalized.
func (c *Config) Normalize(logger *log.Logger) {
	if c.Modulo != 8 && c.Modulo != 128 {
		if logger != nil {
			logger.Warn("unsupported modulo, defaulting to 8", "requested", c.Modulo)
		}
		c.Modulo = 8
	}

	if c.ReceiveWindowK == 0 || c.ReceiveWindowK >= c.Modulo {
		if logger != nil {
			logger.Warn("receive window k invalid for modulo, reverting to default",
				"requested_k", c.ReceiveWindowK, "modulo", c.Modulo)
		}
		c.ReceiveWindowK = 7
		if c.ReceiveWindowK >= c.Modulo {
			c.ReceiveWindowK = c.Modulo - 1
		}
	}

	switch c.RejectName {
	case "REJ":
		c.Reject = RejModeREJ
	case "SREJ", "":
		c.Reject = RejModeSREJ
	default:
		if logger != nil {
			logger.Warn("unknown rej mode, defaulting to SREJ", "requested", c.RejectName)
		}
		c.Reject = RejModeSREJ
	}

	if c.AckTimerSec <= 0 {
		c.AckTimerSec = 3
	}
	c.AckTimer = time.Duration(c.AckTimerSec * float64(time.Second))

	if c.T3TimerSec <= 0 {
		c.T3TimerSec = 10
	}
	c.T3Timer = time.Duration(c.T3TimerSec * float64(time.Second))

	if c.Retries <= 0 {
		c.Retries = 10
	}
	if c.InformationFieldLength <= 0 {
		c.InformationFieldLength = 2048
	}
}

// localAddr returns the configured local station address.
func (c Config) localAddr() Address {
	return Address{Call: c.SrcAddr, SSID: c.SrcSSID}
}

// remoteAddr returns the configured remote station address.
func (c Config) remoteAddr() Address {
	return Address{Call: c.DestAddr, SSID: c.DestSSID}
}

// LoadConfigFile reads a YAML link-configuration file, applying
// DefaultConfig() for anything the file omits. Grounded on the
// reference project's deviceid.go, which loads its tocalls table the
// same way (yaml.Unmarshal over an os.ReadFile'd buffer).
func LoadConfigFile(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("ax25: reading config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("ax25: parsing config file %s: %w", path, err)
	}

	cfg.Normalize(nil)
	return cfg, nil
}
