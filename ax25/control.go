package ax25

import "fmt"

/*------------------------------------------------------------------
 *
 * Name:	control
 *
 * Purpose:	Build and parse the AX.25 control field, in the natural
 *		(pre-mirror) MSB-first byte order spec.md §4.2.1 lays the
 *		bit layout out in. mirrorBytes is applied uniformly to the
 *		whole frame body afterward, so this file never reverses a
 *		bit itself.
 *
 *		The mod-8 layouts come straight from spec.md's table. The
 *		mod-128 (extended) layouts generalize the same roles across
 *		two octets, N(S) in the first and N(R)+P/F in the second,
 *		the structure real AX.25 extended addressing uses; spec.md
 *		gives only the mod-8 bit table, so this is this engine's
 *		own extension of it, noted in DESIGN.md.
 *
 *------------------------------------------------------------------*/

// buildControlBytes encodes kind/poll/ns/nr into the 1-byte (modulo 8)
// or 2-byte (modulo 128) control field, per spec.md §4.2.1.
func buildControlBytes(kind FrameKind, poll bool, ns, nr uint16, modulo uint16) ([]byte, error) {
	switch {
	case kind == FrameI:
		if modulo == 8 {
			b := byte(nr&0x7) << 5
			if poll {
				b |= 1 << 4
			}
			b |= byte(ns&0x7) << 1
			return []byte{b}, nil
		}
		b0 := byte(ns&0x7f) << 1
		b1 := byte(nr&0x7f) << 1
		if poll {
			b1 |= 1
		}
		return []byte{b0, b1}, nil

	case kind.isSFrame():
		ss, ok := sFrameBits[kind]
		if !ok {
			return nil, fmt.Errorf("ax25: unknown S-frame kind %s", kind)
		}
		if modulo == 8 {
			b := byte(nr&0x7) << 5
			if poll {
				b |= 1 << 4
			}
			b |= ss << 2
			b |= 0b01
			return []byte{b}, nil
		}
		b0 := ss<<2 | 0b01
		b1 := byte(nr&0x7f) << 1
		if poll {
			b1 |= 1
		}
		return []byte{b0, b1}, nil

	case kind.isUFrame():
		ctl, ok := uFrameControl[kind]
		if !ok {
			return nil, fmt.Errorf("ax25: unknown U-frame kind %s", kind)
		}
		if poll {
			ctl |= 1 << 4
		}
		return []byte{ctl}, nil

	default:
		return nil, fmt.Errorf("ax25: cannot build control field for frame kind %s", kind)
	}
}

// parseControlBytes decodes a control field starting at data[0], returning
// the number of bytes consumed (1 or 2).
func parseControlBytes(data []byte, modulo uint16) (kind FrameKind, poll bool, ns, nr uint16, consumed int, err error) {
	if len(data) < 1 {
		return FrameError, false, 0, 0, 0, fmt.Errorf("ax25: empty control field")
	}
	b0 := data[0]

	switch {
	case b0&0x01 == 0: // I-frame
		if modulo == 8 {
			nr = uint16((b0 >> 5) & 0x7)
			poll = b0&(1<<4) != 0
			ns = uint16((b0 >> 1) & 0x7)
			return FrameI, poll, ns, nr, 1, nil
		}
		if len(data) < 2 {
			return FrameError, false, 0, 0, 0, fmt.Errorf("ax25: truncated extended I control field")
		}
		ns = uint16(b0>>1) & 0x7f
		b1 := data[1]
		nr = uint16(b1>>1) & 0x7f
		poll = b1&0x01 != 0
		return FrameI, poll, ns, nr, 2, nil

	case b0&0x03 == 0x01: // S-frame
		ss := (b0 >> 2) & 0x3
		kind, ok := sFrameBitsInverse[ss]
		if !ok {
			return FrameError, false, 0, 0, 1, fmt.Errorf("ax25: unknown S-frame subtype %02b", ss)
		}
		if modulo == 8 {
			nr = uint16((b0 >> 5) & 0x7)
			poll = b0&(1<<4) != 0
			return kind, poll, 0, nr, 1, nil
		}
		if len(data) < 2 {
			return FrameError, false, 0, 0, 0, fmt.Errorf("ax25: truncated extended S control field")
		}
		b1 := data[1]
		nr = uint16(b1>>1) & 0x7f
		poll = b1&0x01 != 0
		return kind, poll, 0, nr, 2, nil

	default: // b0&0x03 == 0x03, U-frame
		poll = b0&(1<<4) != 0
		masked := b0 &^ (1 << 4)
		kind, ok := uFrameControlInverse[masked]
		if !ok {
			return FrameError, false, 0, 0, 1, fmt.Errorf("ax25: unknown U-frame control byte %#02x", b0)
		}
		return kind, poll, 0, 0, 1, nil
	}
}
