package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWindowLimiter_AllowsUpToLimit(t *testing.T) {
	l := NewWindowLimiter(time.Minute, 3)

	assert.True(t, l.Allow("g1", "c1"))
	assert.True(t, l.Allow("g1", "c1"))
	assert.True(t, l.Allow("g1", "c1"))
	assert.False(t, l.Allow("g1", "c1"))
	assert.Equal(t, 0, l.Remaining("g1", "c1"))
}

func TestWindowLimiter_KeysAreIndependent(t *testing.T) {
	l := NewWindowLimiter(time.Minute, 1)

	assert.True(t, l.Allow("g1", "c1"))
	assert.False(t, l.Allow("g1", "c1"))
	assert.True(t, l.Allow("g1", "c2"))
	assert.True(t, l.Allow("g2", "c1"))
}

func TestWindowLimiter_WindowSlides(t *testing.T) {
	l := NewWindowLimiter(50*time.Millisecond, 1)

	assert.True(t, l.Allow("g1", "c1"))
	assert.False(t, l.Allow("g1", "c1"))

	time.Sleep(60 * time.Millisecond)
	assert.True(t, l.Allow("g1", "c1"))
}
