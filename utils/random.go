// utils/random.go
package utils

import "crypto/rand"

const orderIDCharset = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// GenerateRandomString returns n characters from an unambiguous uppercase
// alphabet, used for the human-readable order sequence suffix.
func GenerateRandomString(n int) string {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		panic("failed to read random bytes")
	}
	for i := range b {
		b[i] = orderIDCharset[int(b[i])%len(orderIDCharset)]
	}
	return string(b)
}
