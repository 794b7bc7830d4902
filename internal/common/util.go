package common

import (
	"crypto/rand"
	"encoding/hex"
	"regexp"
	"strings"
)

// MakeRandHexString generates a random hexadecimal string from size random
// bytes; the resulting string is twice as long.
func MakeRandHexString(size int) (string, error) {

	b := make([]byte, size)
	_, err := rand.Read(b)
	if err != nil {
		return "", err
	}

	return hex.EncodeToString(b), nil
}

var slugStrip = regexp.MustCompile(`[^a-z0-9/._-]+`)

// Slugify lowers a path segment into the restricted character set used for
// asset and folder identifiers. Client and server must agree on these rules
// or derived ids stop colliding predictably.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, " ", "-")
	s = slugStrip.ReplaceAllString(s, "")
	return strings.Trim(s, "-")
}

// WipeByteArray overwrites the contents of the provided byte slice with
// zeros. Used to remove passwords from memory after use.
func WipeByteArray(b []byte) {
	if b == nil {
		return
	}
	for i := range b {
		b[i] = 0
	}
}
