package service

import (
	"math/rand"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var ticketCodePattern = regexp.MustCompile(`^RES-\d{6}[0-9A-Z]{4}$`)

func TestGenerateFormat(t *testing.T) {
	g := NewCodeGenerator(nil, nil)
	for i := 0; i < 200; i++ {
		assert.Regexp(t, ticketCodePattern, g.Generate())
	}
}

func TestGenerateUsesLastSixMillisDigits(t *testing.T) {
	at := time.UnixMilli(1_700_000_123_456)
	g := NewCodeGenerator(func() time.Time { return at }, rand.NewSource(1))

	code := g.Generate()
	assert.Equal(t, "RES-123456", code[:10])
}

func TestGenerateZeroPadsMillis(t *testing.T) {
	at := time.UnixMilli(1_700_000_000_042)
	g := NewCodeGenerator(func() time.Time { return at }, rand.NewSource(1))

	assert.Equal(t, "RES-000042", g.Generate()[:10])
}

func TestGenerateIsDeterministicForSeed(t *testing.T) {
	at := time.UnixMilli(1_700_000_000_000)
	clock := func() time.Time { return at }

	a := NewCodeGenerator(clock, rand.NewSource(42))
	b := NewCodeGenerator(clock, rand.NewSource(42))
	assert.Equal(t, a.Generate(), b.Generate())
}
