package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 10, cfg.Waveform.Resolution)
	assert.Equal(t, 100*time.Millisecond, cfg.Waveform.ShapeThreshold)
	assert.Equal(t, PolicySuppress, cfg.Actuator.Policy)
	assert.Equal(t, []string{"haptic", "vibe", "rumble"}, cfg.Actuator.Ports)
	assert.Equal(t, FallbackNone, cfg.Actuator.Fallback)
	assert.Equal(t, 500*time.Millisecond, cfg.Durations["medium"])
}

func TestLoadFileMissingReturnsDefaults(t *testing.T) {
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := writeFile(t, `
actuator:
  ports: ["pager", "haptic"]
  policy: attempt
  fallback: launchpad-led
waveform:
  resolution: 20
  shapeThreshold: 0s
durations:
  fast: 120ms
  glacial: 3s
`)

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"pager", "haptic"}, cfg.Actuator.Ports)
	assert.Equal(t, PolicyAttempt, cfg.Actuator.Policy)
	assert.Equal(t, FallbackLaunchpadLED, cfg.Actuator.Fallback)
	assert.Equal(t, 20, cfg.Waveform.Resolution)
	assert.Equal(t, time.Duration(0), cfg.Waveform.ShapeThreshold)

	assert.Equal(t, 120*time.Millisecond, cfg.Durations["fast"])
	assert.Equal(t, 3*time.Second, cfg.Durations["glacial"])
	assert.Equal(t, 1000*time.Millisecond, cfg.Durations["slow"], "untouched keys keep defaults")

	// untouched sections keep defaults
	assert.Equal(t, uint8(60), cfg.Actuator.Note)
	assert.Equal(t, []string{"launchpad", "keyboard"}, cfg.Input.Ports)
}

func TestLoadFileRejectsInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantMsg string
	}{
		{"resolution", "waveform:\n  resolution: 0\n", "resolution"},
		{"threshold", "waveform:\n  shapeThreshold: -5ms\n", "shapeThreshold"},
		{"policy", "actuator:\n  policy: maybe\n", "policy"},
		{"fallback", "actuator:\n  fallback: smoke\n", "fallback"},
		{"duration", "durations:\n  slow: -1s\n", "slow"},
		{"yaml", "actuator: [", "parsing config file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFile(writeFile(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestSaveFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.UI.LastEffect = "clunk"
	cfg.UI.LastDuration = 750 * time.Millisecond
	cfg.Debug = true
	require.NoError(t, cfg.SaveFile(path))

	loaded, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
