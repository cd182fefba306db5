package model

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidPlayerIDAcceptsTwentyDigits(t *testing.T) {
	assert.True(t, IsValidPlayerID("01234567890123456789"))
	assert.True(t, IsValidPlayerID("99999999999999999999"))
	assert.True(t, IsValidPlayerID("00000000000000000000"))
}

func TestIsValidPlayerIDRejectsWrongLength(t *testing.T) {
	assert.False(t, IsValidPlayerID(""))
	assert.False(t, IsValidPlayerID("1234567890123456789"))
	assert.False(t, IsValidPlayerID("123456789012345678901"))
}

func TestIsValidPlayerIDRejectsNonDigits(t *testing.T) {
	assert.False(t, IsValidPlayerID("0123456789012345678a"))
	assert.False(t, IsValidPlayerID("0123456789 123456789"))
	assert.False(t, IsValidPlayerID("0123456789/123456789"))
	assert.False(t, IsValidPlayerID("0123456789:123456789"))
	// '/' and ':' sit directly outside the 0x30-0x39 digit range
}

func TestIsValidPlayerIDProperty(t *testing.T) {
	// For arbitrary strings the predicate must agree with the
	// definition: length exactly 20 and every byte an ASCII digit.
	rng := rand.New(rand.NewSource(1))
	alphabet := "0123456789abcXYZ -_./:é"

	for i := 0; i < 5000; i++ {
		length := rng.Intn(30)
		var sb strings.Builder
		for j := 0; j < length; j++ {
			sb.WriteByte(alphabet[rng.Intn(len(alphabet))])
		}
		id := sb.String()

		want := len(id) == 20
		for j := 0; want && j < len(id); j++ {
			if id[j] < '0' || id[j] > '9' {
				want = false
			}
		}

		assert.Equal(t, want, IsValidPlayerID(PlayerID(id)), "id %q", id)
	}
}
