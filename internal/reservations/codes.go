package reservations

import (
	"crypto/rand"
	"fmt"
)

const (
	codePrefix    = "R"
	codeSuffixLen = 9
)

var codeCharset = []byte("ABCDEFGHJKLMNPQRSTUVWXYZ23456789")

// GenerateConfirmationCode returns a fresh confirmation code: the "R"
// prefix plus nine random characters. The charset drops lookalike
// characters since customers read these codes back over the phone.
func GenerateConfirmationCode() (string, error) {
	buf := make([]byte, codeSuffixLen)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate confirmation code: %w", err)
	}
	out := make([]byte, 0, codeSuffixLen+1)
	out = append(out, codePrefix...)
	for _, b := range buf {
		out = append(out, codeCharset[int(b)%len(codeCharset)])
	}
	return string(out), nil
}
