package nbt

import "strings"

// Modified UTF-8 as used by the NBT wire format. It differs from standard
// UTF-8 in two ways: U+0000 is encoded as the two-byte overlong form C0 80,
// and code points above the Basic Multilingual Plane are encoded as a
// surrogate pair with each pair member carried in a three-byte sequence.

// appendMUTF8 appends the modified UTF-8 encoding of s to dst.
func appendMUTF8(dst []byte, s string) []byte {
	for _, c := range s {
		switch {
		case c == 0:
			dst = append(dst, 0xC0, 0x80)
		case c < 0x80:
			dst = append(dst, byte(c))
		case c < 0x800:
			dst = append(dst, 0xC0|byte(c>>6), 0x80|byte(c&0x3F))
		case c < 0x10000:
			dst = append(dst, 0xE0|byte(c>>12), 0x80|byte((c>>6)&0x3F), 0x80|byte(c&0x3F))
		default:
			dst = append(dst,
				0xED, 0xA0|byte((c>>16)&0x0F), 0x80|byte((c>>10)&0x3F),
				0xED, 0xB0|byte((c>>6)&0x0F), 0x80|byte(c&0x3F))
		}
	}
	return dst
}

// decodeMUTF8 decodes a modified UTF-8 byte sequence.
func decodeMUTF8(data []byte) (string, error) {
	var sb strings.Builder
	for i := 0; i < len(data); {
		b := data[i]
		switch {
		case b&0x80 == 0:
			sb.WriteRune(rune(b))
			i++
		case b == 0xED && i+5 < len(data) &&
			data[i+1]&0xF0 == 0xA0 && data[i+3] == 0xED && data[i+4]&0xF0 == 0xB0:
			// Surrogate pair: six bytes carrying one supplementary code point.
			c := rune(data[i+1]&0x0F)<<16 |
				rune(data[i+2]&0x3F)<<10 |
				rune(data[i+4]&0x0F)<<6 |
				rune(data[i+5]&0x3F)
			sb.WriteRune(c)
			i += 6
		case b&0xE0 == 0xC0:
			if i+1 >= len(data) || data[i+1]&0xC0 != 0x80 {
				return "", typeErrorf("invalid modified UTF-8: truncated two-byte sequence at offset %d", i)
			}
			sb.WriteRune(rune(b&0x1F)<<6 | rune(data[i+1]&0x3F))
			i += 2
		case b&0xF0 == 0xE0:
			if i+2 >= len(data) || data[i+1]&0xC0 != 0x80 || data[i+2]&0xC0 != 0x80 {
				return "", typeErrorf("invalid modified UTF-8: truncated three-byte sequence at offset %d", i)
			}
			sb.WriteRune(rune(b&0x0F)<<12 | rune(data[i+1]&0x3F)<<6 | rune(data[i+2]&0x3F))
			i += 3
		default:
			return "", typeErrorf("invalid modified UTF-8 byte 0x%02x at offset %d", b, i)
		}
	}
	return sb.String(), nil
}
