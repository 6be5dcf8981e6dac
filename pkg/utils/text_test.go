package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCapWords(t *testing.T) {
	assert.Equal(t, "", CapWords("", 8))
	assert.Equal(t, "explore the worst case", CapWords("explore the worst case", 8))
	assert.Equal(t, "one two three…", CapWords("one two three four five", 3))
	assert.Equal(t, "collapses   whitespace", CapWords("collapses   whitespace", 0))
	assert.Equal(t, "collapses whitespace", CapWords("collapses   whitespace", 5))
}
