package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "/dev/ttyUSB0", cfg.Serial.Port)
	assert.Equal(t, 115200, cfg.Serial.BaudRate)
	assert.Equal(t, 100, cfg.History.Points)
	assert.Equal(t, 100*time.Millisecond, cfg.Mock.SampleRate)
	assert.Equal(t, 250.0, cfg.Mock.Amplitude)
	assert.Equal(t, 2.0, cfg.Mock.NoiseLevel)
	assert.Equal(t, 10*time.Second, cfg.Mock.Period)
}

func TestLoad_NonexistentFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "no-such-file.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_ValidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
serial:
  port: /dev/ttyACM0
  baud_rate: 9600
history:
  points: 500
mock:
  sample_rate: 50ms
  amplitude: 100.0
  noise_level: 5.0
  period: 2s
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/dev/ttyACM0", cfg.Serial.Port)
	assert.Equal(t, 9600, cfg.Serial.BaudRate)
	assert.Equal(t, 500, cfg.History.Points)
	assert.Equal(t, 50*time.Millisecond, cfg.Mock.SampleRate)
	assert.Equal(t, 100.0, cfg.Mock.Amplitude)
	assert.Equal(t, 5.0, cfg.Mock.NoiseLevel)
	assert.Equal(t, 2*time.Second, cfg.Mock.Period)
}

func TestLoad_PartialFileFillsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
serial:
  port: COM7
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "COM7", cfg.Serial.Port)
	assert.Equal(t, 115200, cfg.Serial.BaudRate)
	assert.Equal(t, 100, cfg.History.Points)
	assert.Equal(t, 100*time.Millisecond, cfg.Mock.SampleRate)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("serial: [not: valid"), 0644))

	cfg, err := Load(path)
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestSaveAndLoadRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg := Default()
	cfg.Serial.Port = "/dev/ttyS3"
	cfg.Serial.BaudRate = 230400
	cfg.History.Points = 42
	cfg.Mock.Amplitude = 123.5

	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
