package circuit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBreaker_StartsClosed(t *testing.T) {
	b := New("spi-adapter")
	assert.Equal(t, StateClosed, b.State())
	assert.False(t, b.IsOpen())
	assert.Equal(t, "spi-adapter", b.Name())
}

func TestBreaker_OpensOnConsecutiveFailures(t *testing.T) {
	b := New("spi-adapter", WithFailureThreshold(3))

	for i := 0; i < 2; i++ {
		useFallback, change := b.RecordFailure()
		assert.False(t, useFallback)
		assert.False(t, change.Opened)
	}

	useFallback, change := b.RecordFailure()
	assert.True(t, useFallback)
	assert.True(t, change.Opened)
	assert.True(t, b.IsOpen())

	// Further failures keep it open without reporting another transition.
	useFallback, change = b.RecordFailure()
	assert.True(t, useFallback)
	assert.False(t, change.Opened)
}

func TestBreaker_InterleavedSuccessResetsFailureCount(t *testing.T) {
	b := New("spi-adapter", WithFailureThreshold(2))

	b.RecordFailure()
	b.RecordSuccess()
	b.RecordFailure()
	assert.False(t, b.IsOpen(), "non-consecutive failures must not open the circuit")

	b.RecordFailure()
	assert.True(t, b.IsOpen())
}

func TestBreaker_ClosesAfterSuccessThreshold(t *testing.T) {
	b := New("spi-adapter", WithFailureThreshold(1), WithSuccessThreshold(2))

	b.RecordFailure()
	assert.True(t, b.IsOpen())

	usePrimary, change := b.RecordSuccess()
	assert.False(t, usePrimary)
	assert.False(t, change.Closed)

	usePrimary, change = b.RecordSuccess()
	assert.True(t, usePrimary)
	assert.True(t, change.Closed)
	assert.False(t, b.IsOpen())
}

func TestBreaker_FailureWhileOpenResetsSuccessProgress(t *testing.T) {
	b := New("spi-adapter", WithFailureThreshold(1), WithSuccessThreshold(3))

	b.RecordFailure()
	b.RecordSuccess()
	b.RecordSuccess()

	// A failure during recovery restarts the count.
	b.RecordFailure()
	b.RecordSuccess()
	b.RecordSuccess()
	assert.True(t, b.IsOpen())
	b.RecordSuccess()
	assert.False(t, b.IsOpen())
}

func TestBreaker_Reset(t *testing.T) {
	b := New("spi-adapter", WithFailureThreshold(1))

	b.RecordFailure()
	assert.True(t, b.IsOpen())

	b.Reset()
	assert.False(t, b.IsOpen())
	assert.Equal(t, StateClosed, b.State())
}
