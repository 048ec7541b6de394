package booking

import (
	"crypto/rand"
	"encoding/hex"
)

// codeAlphabet excludes 0/O and 1/I to keep short codes readable over
// the phone and at the door.
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// NewCode returns an 8 character human-readable booking code. Codes
// are random, not sequential, and the reservations.code column carries
// a unique index; the caller retries on the rare collision.
func NewCode() (string, error) {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	out := make([]byte, len(buf))
	for i, b := range buf {
		out[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return string(out), nil
}

// NewQRToken returns the opaque token embedded in the reservation QR
// payload. 32 random bytes hex-encoded (64 chars) makes check-in
// tokens infeasible to enumerate at the scanner.
func NewQRToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
