package session

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func weekdayGate(t *testing.T) *Gate {
	t.Helper()
	cfg, err := ParseConfig([]string{"07:00-10:00"}, []string{"saturday", "sunday"})
	require.NoError(t, err)
	return NewGate(cfg)
}

func TestGateWeekdayWindow(t *testing.T) {
	g := weekdayGate(t)

	// Wednesday inside the window
	assert.True(t, g.Active(time.Date(2024, 1, 3, 8, 0, 0, 0, time.UTC)))
	// Saturday, same hour
	assert.False(t, g.Active(time.Date(2024, 1, 6, 8, 0, 0, 0, time.UTC)))
	// Wednesday after the window
	assert.False(t, g.Active(time.Date(2024, 1, 3, 11, 0, 0, 0, time.UTC)))
	// inclusive bounds
	assert.True(t, g.Active(time.Date(2024, 1, 3, 7, 0, 0, 0, time.UTC)))
	assert.True(t, g.Active(time.Date(2024, 1, 3, 10, 0, 0, 0, time.UTC)))
}

func TestGateWrappingWindow(t *testing.T) {
	cfg, err := ParseConfig([]string{"23:00-06:00"}, nil)
	require.NoError(t, err)
	g := NewGate(cfg)

	assert.True(t, g.Active(time.Date(2024, 1, 3, 23, 30, 0, 0, time.UTC)))
	assert.True(t, g.Active(time.Date(2024, 1, 4, 2, 0, 0, 0, time.UTC)))
	assert.False(t, g.Active(time.Date(2024, 1, 4, 12, 0, 0, 0, time.UTC)))
}

func TestGateOverlappingWindowsUnion(t *testing.T) {
	cfg, err := ParseConfig([]string{"07:00-15:00", "12:00-20:00"}, nil)
	require.NoError(t, err)
	g := NewGate(cfg)

	assert.True(t, g.Active(time.Date(2024, 1, 3, 13, 0, 0, 0, time.UTC)))
	assert.True(t, g.Active(time.Date(2024, 1, 3, 19, 0, 0, 0, time.UTC)))
	assert.False(t, g.Active(time.Date(2024, 1, 3, 21, 0, 0, 0, time.UTC)))
}

func TestGateNoWindowsAlwaysClosed(t *testing.T) {
	g := NewGate(Config{})
	assert.False(t, g.Active(time.Now()))
}

func TestGateNonUTCInput(t *testing.T) {
	g := weekdayGate(t)
	loc := time.FixedZone("UTC+3", 3*3600)
	// 11:00 local is 08:00 UTC
	assert.True(t, g.Active(time.Date(2024, 1, 3, 11, 0, 0, 0, loc)))
}

func TestParseWindowErrors(t *testing.T) {
	for _, bad := range []string{"", "07:00", "7-10", "25:00-26:00", "07:61-08:00"} {
		_, err := ParseWindow(bad)
		assert.Error(t, err, "input %q", bad)
	}
	w, err := ParseWindow("07:30-10:15")
	require.NoError(t, err)
	assert.Equal(t, 7*60+30, w.Start)
	assert.Equal(t, 10*60+15, w.End)
	assert.Equal(t, "07:30-10:15", w.String())
}

func TestRegistryLoadAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.yaml")
	write := func(body string) {
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	}
	write("windows:\n  - \"07:00-10:00\"\nexcluded_weekdays:\n  - saturday\n  - sunday\n")

	r, err := NewRegistry(path)
	require.NoError(t, err)
	wednesday := time.Date(2024, 1, 3, 8, 0, 0, 0, time.UTC)
	assert.True(t, r.Active(wednesday))

	write("windows:\n  - \"12:00-14:00\"\n")
	require.NoError(t, r.reload())
	assert.False(t, r.Active(wednesday))
}

func TestRegistryKeepsSnapshotOnBadReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.yaml")
	require.NoError(t, os.WriteFile(path, []byte("windows:\n  - \"07:00-10:00\"\n"), 0o644))

	r, err := NewRegistry(path)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("windows:\n  - \"nonsense\"\n"), 0o644))
	assert.Error(t, r.reload())
	// previous snapshot still serves
	assert.True(t, r.Active(time.Date(2024, 1, 3, 8, 0, 0, 0, time.UTC)))
}

func TestStaticRegistry(t *testing.T) {
	cfg, err := ParseConfig([]string{"00:00-23:59"}, nil)
	require.NoError(t, err)
	r := NewStaticRegistry(cfg)
	assert.True(t, r.Active(time.Now()))
}
