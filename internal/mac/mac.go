// Package mac converts between the colon-hex text form of an IEEE 802
// hardware address and its 6-byte binary form.
package mac

import (
	"errors"
	"fmt"
)

// Addr is the binary form of a hardware address.
type Addr [6]byte

// textLen is the length of the canonical form XX:XX:XX:XX:XX:XX.
const textLen = 17

// ErrInvalid is returned by Parse for any string that is not a
// well-formed colon-hex address.
var ErrInvalid = errors.New("mac: invalid address")

// Parse converts a colon-hex string into an Addr. The string must be
// exactly 17 characters with colons at positions 2, 5, 8, 11 and 14 and
// hex digits everywhere else. Anything else is rejected whole; no
// partial conversion happens.
func Parse(s string) (Addr, error) {
	var a Addr
	if len(s) != textLen {
		return a, ErrInvalid
	}
	for i := 0; i < textLen; i++ {
		if i%3 == 2 {
			if s[i] != ':' {
				return a, ErrInvalid
			}
		} else if hexVal(s[i]) < 0 {
			return a, ErrInvalid
		}
	}
	for i, bi := 0, 0; i < textLen; i, bi = i+3, bi+1 {
		a[bi] = byte(hexVal(s[i])<<4 | hexVal(s[i+1]))
	}
	return a, nil
}

// Valid reports whether s parses as a hardware address.
func Valid(s string) bool {
	_, err := Parse(s)
	return err == nil
}

// String returns the canonical uppercase colon-hex form. It is the
// inverse of Parse for valid input.
func (a Addr) String() string {
	return fmt.Sprintf("%02X:%02X:%02X:%02X:%02X:%02X", a[0], a[1], a[2], a[3], a[4], a[5])
}

func hexVal(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10
	}
	return -1
}
