// Package util provides utility functions for the EpicChat application.
package util

import (
	"math/rand/v2"
	"strings"
)

// GenerateRandomID generates a random ID with the specified prefix and hex length.
// The returned ID will be in the format: "{prefix}{hex_string}".
func GenerateRandomID(prefix string, hexLength int) string {
	return prefix + GenerateRandomHex(hexLength)
}

// GenerateRandomHex generates a random hexadecimal string of the specified length.
// Uses math/rand/v2; not for cryptographic purposes.
func GenerateRandomHex(length int) string {
	if length <= 0 {
		return ""
	}

	const hexChars = "0123456789abcdef"
	var builder strings.Builder
	builder.Grow(length)

	for i := 0; i < length; i++ {
		builder.WriteByte(hexChars[rand.IntN(16)])
	}

	return builder.String()
}

// GenerateMediaItemID generates a unique media playlist item ID with "m_" prefix.
func GenerateMediaItemID() string {
	return GenerateRandomID("m_", 12)
}

// RollDie returns a uniform random die face in [1, sides].
// Sides below 1 are treated as a one-sided die.
func RollDie(sides int) int {
	if sides < 1 {
		return 1
	}
	return 1 + rand.IntN(sides)
}

// FlipCoin returns true for heads, false for tails.
func FlipCoin() bool {
	return rand.IntN(2) == 0
}
