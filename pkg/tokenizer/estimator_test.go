package tokenizer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEstimateEmpty(t *testing.T) {
	assert.Equal(t, 0, Estimate(""))
}

func TestEstimateRoundsUp(t *testing.T) {
	assert.Equal(t, 1, Estimate("a"))
	assert.Equal(t, 1, Estimate("abcd"))
	assert.Equal(t, 2, Estimate("abcde"))
}

func TestEstimateApproximation(t *testing.T) {
	// 4000 chars should land around 1000 tokens.
	text := strings.Repeat("word ", 800)
	assert.Equal(t, 1000, Estimate(text))
}

func TestEstimateMonotone(t *testing.T) {
	short := strings.Repeat("x", 100)
	long := strings.Repeat("x", 200)
	assert.LessOrEqual(t, Estimate(short), Estimate(long))
}

func TestEstimateCountsRunesNotBytes(t *testing.T) {
	// Multi-byte runes count once each.
	assert.Equal(t, 1, Estimate("日本語あ"))
}
