package simulator

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mobile-access/readers-go/pkg/sdk"
)

const shortScenario = `
name: short
scanning: true
initialStates: [errorNoCredentials]
steps:
  - after: 1ms
    type: reader
    reader:
      id: r1
      name: Door
      distance: 2.5
      attributes:
        rssi: -60
  - type: access
    id: r1
    event: succeeded
    message: Welcome
  - after: 1ms
    type: states
    scanning: false
    states: [nfcErrorDisabled]
  - type: lost
    id: r1
`

func TestParseScenario(t *testing.T) {
	sc, err := ParseScenario([]byte(shortScenario))
	require.NoError(t, err)

	assert.Equal(t, "short", sc.Name)
	assert.True(t, sc.Scanning)
	assert.Equal(t, []string{"errorNoCredentials"}, sc.InitialStates)
	require.Len(t, sc.Steps, 4)
	assert.Equal(t, Duration(time.Millisecond), sc.Steps[0].After)
	require.NotNil(t, sc.Steps[0].Reader)
	assert.Equal(t, 2.5, *sc.Steps[0].Reader.Distance)
	assert.Equal(t, Duration(0), sc.Steps[1].After)
	require.NotNil(t, sc.Steps[2].Scanning)
	assert.False(t, *sc.Steps[2].Scanning)
}

func TestParseScenarioErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"bad yaml", "steps: [", "failed to parse YAML"},
		{"bad duration", "steps:\n  - after: soon\n    type: states", "invalid duration"},
		{"unknown type", "steps:\n  - type: teleport", "unknown type"},
		{"reader without id", "steps:\n  - type: reader\n    reader:\n      name: x", "reader.id"},
		{"lost without id", "steps:\n  - type: lost", "needs id"},
		{"access without event", "steps:\n  - type: access\n    id: r1", "needs id and event"},
		{"loop without delay", "loop: true\nsteps:\n  - type: states", "non-zero delay"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml))
			require.Error(t, err)
			var le *LoadError
			assert.True(t, errors.As(err, &le))
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadScenarioFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "short.yaml")
	require.NoError(t, os.WriteFile(path, []byte(shortScenario), 0o600))

	sc, err := LoadScenario(path)
	require.NoError(t, err)
	assert.Equal(t, "short", sc.Name)
}

func TestLoadScenarioBuiltin(t *testing.T) {
	assert.Contains(t, Builtin(), "lobby")

	for _, name := range Builtin() {
		sc, err := LoadScenario(name)
		require.NoError(t, err, name)
		assert.Equal(t, name, sc.Name)
	}
}

func TestLoadScenarioMissing(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	var le *LoadError
	require.True(t, errors.As(err, &le))
	assert.Contains(t, le.File, "nope.yaml")
}

func TestRunScenario(t *testing.T) {
	sc, err := ParseScenario([]byte(shortScenario))
	require.NoError(t, err)

	sim := New(Config{})
	var updates []sdk.ReaderUpdated
	var access []sdk.AccessEvent
	var states []sdk.SdkStateChanged
	sim.OnReaderUpdated(func(ev sdk.ReaderUpdated) { updates = append(updates, ev) })
	sim.OnAccess(func(ev sdk.AccessEvent) { access = append(access, ev) })
	sim.OnSdkStateChanged(func(ev sdk.SdkStateChanged) { states = append(states, ev) })

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, sim.Run(ctx, sc))

	require.Len(t, states, 2)
	assert.Equal(t, []string{"errorNoCredentials"}, states[0].States)
	assert.True(t, states[0].IsScanning)
	assert.Equal(t, []string{"nfcErrorDisabled"}, states[1].States)
	assert.False(t, states[1].IsScanning)

	require.Len(t, updates, 2)
	assert.Equal(t, sdk.AttributesChanged, updates[0].UpdateType)
	assert.Equal(t, -60, updates[0].Reader.Attributes["rssi"])
	assert.Equal(t, sdk.ReaderUnavailable, updates[1].UpdateType)

	require.Len(t, access, 1)
	assert.Equal(t, "Welcome", access[0].Message)
	assert.Equal(t, "Door", access[0].Reader.Name)

	assert.Empty(t, sim.Readers())
}

func TestRunScenarioCancelled(t *testing.T) {
	sc, err := LoadScenario("lobby")
	require.NoError(t, err)
	require.True(t, sc.Loop)

	sim := New(Config{})
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- sim.Run(ctx, sc) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
