package generator

import (
	"crypto/rand"
	"fmt"
	"io"
)

// Alphabet holds the 62 symbols a short code is drawn from,
// ordered lowercase letters, uppercase letters, digits.
const Alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// CodeLength is the fixed length of every short code. 62^6 gives
// roughly 56.8 billion distinct codes.
const CodeLength = 6

// GenerateCode returns a random short code of CodeLength symbols,
// each drawn uniformly and independently from Alphabet.
func GenerateCode() (string, error) {
	return generateCode(rand.Reader)
}

func generateCode(src io.Reader) (string, error) {
	// 248 is the largest multiple of 62 that fits in a byte; bytes at or
	// above it are rejected to keep the per-position draw uniform.
	const limit = 248

	code := make([]byte, CodeLength)
	buf := make([]byte, CodeLength)

	filled := 0
	for filled < CodeLength {
		if _, err := io.ReadFull(src, buf[:CodeLength-filled]); err != nil {
			return "", fmt.Errorf("error reading random bytes: %w", err)
		}
		for _, b := range buf[:CodeLength-filled] {
			if b >= limit {
				continue
			}
			code[filled] = Alphabet[int(b)%len(Alphabet)]
			filled++
		}
	}

	return string(code), nil
}
