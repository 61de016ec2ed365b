package stm32

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stm32mic/micmon/pkg/config"
)

func fastMockConfig() *config.MockConfig {
	return &config.MockConfig{
		SampleRate: 2 * time.Millisecond,
		Amplitude:  250.0,
		NoiseLevel: 1.0,
		Period:     time.Second,
	}
}

func TestMock_EmitsFullFrames(t *testing.T) {
	dev := NewMock(fastMockConfig(), nil)
	require.NoError(t, dev.Connect())
	defer dev.Close()

	assert.True(t, dev.IsConnected())
	assert.Equal(t, Connected, dev.Status().State)

	var seen [NumChannels]bool
	remaining := NumChannels
	timeout := time.After(2 * time.Second)
	for remaining > 0 {
		select {
		case s, ok := <-dev.Samples():
			require.True(t, ok, "samples channel closed early")
			require.GreaterOrEqual(t, s.Channel, 0)
			require.Less(t, s.Channel, NumChannels)
			assert.LessOrEqual(t, s.Min, s.Max)
			assert.GreaterOrEqual(t, s.Amplitude, Microvolts(0))
			assert.GreaterOrEqual(t, s.RMS, Microvolts(0))
			assert.False(t, s.Timestamp.IsZero())
			if !seen[s.Channel] {
				seen[s.Channel] = true
				remaining--
			}
		case <-timeout:
			t.Fatalf("timed out waiting for all channels, seen: %v", seen)
		}
	}
}

func TestMock_ConnectTwice(t *testing.T) {
	dev := NewMock(fastMockConfig(), nil)
	require.NoError(t, dev.Connect())
	defer dev.Close()

	assert.Error(t, dev.Connect())
}

// Closing the mock must close the samples channel so downstream consumers
// drain and exit.
func TestMock_GracefulShutdown(t *testing.T) {
	dev := NewMock(fastMockConfig(), nil)
	require.NoError(t, dev.Connect())

	// Let the generator produce a little
	time.Sleep(10 * time.Millisecond)

	require.NoError(t, dev.Close())
	assert.False(t, dev.IsConnected())
	assert.Equal(t, Disconnected, dev.Status().State)

	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-dev.Samples():
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("samples channel did not close after Close")
		}
	}
}

func TestMock_CloseIdempotent(t *testing.T) {
	dev := NewMock(fastMockConfig(), nil)
	require.NoError(t, dev.Connect())
	require.NoError(t, dev.Close())
	assert.NoError(t, dev.Close())
	assert.Zero(t, dev.Dropped())
}
