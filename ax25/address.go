package ax25

import (
	"fmt"
	"strings"
)

/*------------------------------------------------------------------
 *
 * Name:	address
 *
 * Purpose:	AX.25 station address: a six-character call sign, blank
 *		padded, plus a 4-bit SSID and the three control bits packed
 *		into the seventh octet, per spec.md §3 "Address".
 *
 *------------------------------------------------------------------*/

// ssidLastMask marks the final address in an address field, set on the
// source address since this engine never encodes a digipeater chain.
const ssidLastMask = 0x01

// Address is a station call sign plus SSID.
type Address struct {
	Call string // up to 6 upper-case letters/digits, no padding stored
	SSID byte   // 0-15
}

// String renders an address the conventional "CALL-SSID" way, omitting
// "-0" since that's the default substation.
func (a Address) String() string {
	if a.SSID == 0 {
		return a.Call
	}
	return fmt.Sprintf("%s-%d", a.Call, a.SSID)
}

// padded returns the call sign space-padded to exactly 6 characters,
// upper-cased, per spec.md §3.
func (a Address) padded() string {
	call := strings.ToUpper(a.Call)
	if len(call) > 6 {
		call = call[:6]
	}
	for len(call) < 6 {
		call += " "
	}
	return call
}

// encode packs the address into its seven-octet wire form. The call
// sign bytes are plain 7-bit ASCII at this stage (the LSB-first mirror
// happens later, uniformly, over the whole frame body — see bits.go);
// the SSID octet carries the command/response bit appropriate to
// whether this is a destination or source address and to whether the
// frame is a command or a response, per spec.md §4.2.1.
func (a Address) encode(isDestination bool, cr CommandResponse) [7]byte {
	var out [7]byte
	copy(out[:6], []byte(a.padded()))

	// Reserved bits (RR) are conventionally both set to 1. The
	// extension bit (bit0) marks the final address in the field: clear
	// on the destination, set on the source, since this engine never
	// encodes a digipeater chain between them.
	ssidOctet := byte(0b01100000) | (a.SSID << 1)
	if !isDestination {
		ssidOctet |= ssidLastMask
	}

	highBit := false
	if isDestination {
		highBit = cr == Command
	} else {
		highBit = cr == Response
	}
	if highBit {
		ssidOctet |= 0x80
	} else {
		ssidOctet &^= 0x80
	}

	out[6] = ssidOctet
	return out
}

// decodeAddress unpacks a seven-octet wire address back into an
// Address and its high (command/response) bit.
func decodeAddress(b []byte) (Address, bool, error) {
	if len(b) != 7 {
		return Address{}, false, fmt.Errorf("ax25: address field must be 7 bytes, got %d", len(b))
	}
	call := strings.TrimRight(string(b[:6]), " ")
	for _, r := range call {
		if r < 0x20 || r > 0x7e {
			return Address{}, false, fmt.Errorf("ax25: non-ASCII byte in call sign")
		}
	}
	ssid := (b[6] >> 1) & 0x0f
	highBit := b[6]&0x80 != 0
	return Address{Call: call, SSID: ssid}, highBit, nil
}
