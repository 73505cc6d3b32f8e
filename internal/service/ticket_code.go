package service

import (
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"
)

const (
	ticketCodePrefix   = "RES-"
	ticketCodeAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	ticketCodeSuffix   = 4
)

// CodeGenerator produces human-readable ticket codes of the form
// RES-<last 6 digits of unix millis><4 base36 chars>. Codes are not
// guaranteed unique; the store's unique constraint catches collisions.
type CodeGenerator struct {
	now func() time.Time

	mu  sync.Mutex
	rnd *rand.Rand
}

// NewCodeGenerator builds a generator. A nil clock uses time.Now and a nil
// source is seeded from the clock.
func NewCodeGenerator(now func() time.Time, src rand.Source) *CodeGenerator {
	if now == nil {
		now = time.Now
	}
	if src == nil {
		src = rand.NewSource(time.Now().UnixNano())
	}
	return &CodeGenerator{now: now, rnd: rand.New(src)}
}

// Generate returns a fresh code.
func (g *CodeGenerator) Generate() string {
	millis := g.now().UnixMilli() % 1_000_000
	if millis < 0 {
		millis = -millis
	}

	var b strings.Builder
	b.Grow(len(ticketCodePrefix) + 6 + ticketCodeSuffix)
	b.WriteString(ticketCodePrefix)
	b.WriteString(fmt.Sprintf("%06d", millis))

	g.mu.Lock()
	for i := 0; i < ticketCodeSuffix; i++ {
		b.WriteByte(ticketCodeAlphabet[g.rnd.Intn(len(ticketCodeAlphabet))])
	}
	g.mu.Unlock()
	return b.String()
}
