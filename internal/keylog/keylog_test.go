package keylog

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestJournal(t *testing.T) *Journal {
	t.Helper()

	journal, err := Open(filepath.Join(t.TempDir(), "keylog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { journal.Close() })
	return journal
}

func TestJournal_RecordAndRead(t *testing.T) {
	journal := openTestJournal(t)
	ctx := context.Background()

	rotatedAt := time.Date(2026, 3, 15, 10, 30, 0, 0, time.UTC)
	require.NoError(t, journal.RecordRotation(ctx, 2, rotatedAt, nil))
	require.NoError(t, journal.RecordRotation(ctx, 3, rotatedAt.Add(90*24*time.Hour), []uint16{1}))

	rotations, err := journal.Rotations(ctx)
	require.NoError(t, err)
	require.Len(t, rotations, 3)

	assert.Equal(t, uint16(2), rotations[0].KeyVersion)
	assert.Zero(t, rotations[0].EvictedVersion)
	assert.True(t, rotations[0].RotatedAt.Equal(rotatedAt))

	assert.Equal(t, uint16(3), rotations[1].KeyVersion)
	assert.Zero(t, rotations[1].EvictedVersion)

	assert.Equal(t, uint16(3), rotations[2].KeyVersion)
	assert.Equal(t, uint16(1), rotations[2].EvictedVersion)
}

func TestJournal_Empty(t *testing.T) {
	journal := openTestJournal(t)

	rotations, err := journal.Rotations(context.Background())
	require.NoError(t, err)
	assert.Empty(t, rotations)
}

func TestJournal_ReopenKeepsRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keylog.db")
	ctx := context.Background()

	journal, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, journal.RecordRotation(ctx, 2, time.Now().UTC(), nil))
	require.NoError(t, journal.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	rotations, err := reopened.Rotations(ctx)
	require.NoError(t, err)
	assert.Len(t, rotations, 1)
}
