package journal

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFile(t *testing.T) {
	j := New(t.TempDir())
	require.NoError(t, j.Load())
	assert.Zero(t, j.Len())
	assert.Nil(t, j.Last())
}

func TestSaveLoadRoundtrip(t *testing.T) {
	dir := t.TempDir()

	j := New(dir)
	require.NoError(t, j.Load())
	j.Record(Entry{
		Time:         time.Date(2026, 8, 29, 9, 0, 0, 0, time.UTC),
		Recipient:    "someone@example.com",
		MessageID:    "msg-123",
		ArticleCount: 7,
		UpdatedRange: "Sheet1!A12:E19",
	})
	require.NoError(t, j.Save())

	reloaded := New(dir)
	require.NoError(t, reloaded.Load())
	require.Equal(t, 1, reloaded.Len())

	last := reloaded.Last()
	require.NotNil(t, last)
	assert.Equal(t, "someone@example.com", last.Recipient)
	assert.Equal(t, "msg-123", last.MessageID)
	assert.Equal(t, 7, last.ArticleCount)
	assert.Equal(t, "Sheet1!A12:E19", last.UpdatedRange)
	assert.True(t, last.Time.Equal(time.Date(2026, 8, 29, 9, 0, 0, 0, time.UTC)))
}

func TestRecordTrimsOldEntries(t *testing.T) {
	j := New(t.TempDir())
	for i := 0; i < maxEntries+20; i++ {
		j.Record(Entry{MessageID: fmt.Sprintf("msg-%d", i)})
	}

	assert.Equal(t, maxEntries, j.Len())
	assert.Equal(t, fmt.Sprintf("msg-%d", maxEntries+19), j.Last().MessageID)
	assert.Equal(t, "msg-20", j.Entries[0].MessageID, "oldest entries are dropped first")
}

func TestTail(t *testing.T) {
	j := New(t.TempDir())
	for i := 0; i < 5; i++ {
		j.Record(Entry{MessageID: fmt.Sprintf("msg-%d", i)})
	}

	tail := j.Tail(3)
	require.Len(t, tail, 3)
	assert.Equal(t, "msg-2", tail[0].MessageID)
	assert.Equal(t, "msg-4", tail[2].MessageID)

	assert.Len(t, j.Tail(10), 5, "tail larger than journal returns everything")
	assert.Nil(t, j.Tail(0))
}
