package auditlog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMemStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestMigrationsApplied(t *testing.T) {
	s := newMemStore(t)

	var count int
	require.NoError(t, s.db.QueryRow(`SELECT COUNT(*) FROM schema_migrations`).Scan(&count))
	assert.Equal(t, len(migrations), count)
}

func TestRecordAndRecent(t *testing.T) {
	s := newMemStore(t)

	s.Record("10.0.0.5:7222", "/input/1/gain 12.0", "ok")
	s.Record("10.0.0.5:7222", "/input/1/nope 1", "error: unknown path")

	entries, err := s.Recent(10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "/input/1/nope 1", entries[0].Command)
	assert.Equal(t, "error: unknown path", entries[0].Outcome)
}

func TestRecentRespectsLimit(t *testing.T) {
	s := newMemStore(t)
	for i := 0; i < 5; i++ {
		s.Record("test", "cmd", "ok")
	}
	entries, err := s.Recent(2)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestTouchDeviceProfileUpserts(t *testing.T) {
	s := newMemStore(t)

	require.NoError(t, s.TouchDeviceProfile("UCX II", 0x10))
	require.NoError(t, s.TouchDeviceProfile("UCX II", 0x11))

	profiles, err := s.DeviceProfiles()
	require.NoError(t, err)
	require.Len(t, profiles, 1)
	assert.Equal(t, byte(0x11), profiles[0].DeviceID)
}
