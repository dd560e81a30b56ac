package utils

import (
	"crypto/rand"
	"fmt"
	"io"

	"github.com/yukikurage/earth-fighter-api/internal/constants"
)

const inviteCodeAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// InviteCodeGenerator produces organization invite codes.
type InviteCodeGenerator interface {
	Generate() (string, error)
}

// LetterCodeGenerator builds fixed-length codes of ASCII letters from a random source.
type LetterCodeGenerator struct {
	source io.Reader
	length int
}

// NewInviteCodeGenerator returns a generator reading from crypto/rand.
func NewInviteCodeGenerator() *LetterCodeGenerator {
	return NewLetterCodeGenerator(rand.Reader, constants.InviteCodeLength)
}

// NewLetterCodeGenerator returns a generator reading from source.
func NewLetterCodeGenerator(source io.Reader, length int) *LetterCodeGenerator {
	return &LetterCodeGenerator{source: source, length: length}
}

// Generate returns a new invite code. Collisions are not checked.
func (g *LetterCodeGenerator) Generate() (string, error) {
	buf := make([]byte, g.length)
	if _, err := io.ReadFull(g.source, buf); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	// 256 is not a multiple of 52; the slight bias is fine for a convenience token.
	for i, b := range buf {
		buf[i] = inviteCodeAlphabet[int(b)%len(inviteCodeAlphabet)]
	}
	return string(buf), nil
}
