package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"igcomments/pkg/instagram"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewManagerCreatesSubdirectories(t *testing.T) {
	base := filepath.Join(t.TempDir(), "out")

	_, err := NewManager(base)
	require.NoError(t, err)

	for _, sub := range []string{"txt", "json"} {
		info, err := os.Stat(filepath.Join(base, sub))
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}

func TestWriteOutputs(t *testing.T) {
	m, err := NewManager(t.TempDir())
	require.NoError(t, err)

	comments := []instagram.Comment{
		{Username: "alice", Text: "first!", CreatedAt: 1700000001},
		{Username: "bob", Text: "second: with punctuation", CreatedAt: 1700000002},
	}

	txtPath, jsonPath, err := m.WriteOutputs("reel_comments_20260831_120000", comments)
	require.NoError(t, err)

	txt, err := os.ReadFile(txtPath)
	require.NoError(t, err)
	assert.Equal(t, "alice: first!\nbob: second: with punctuation", string(txt))

	data, err := os.ReadFile(jsonPath)
	require.NoError(t, err)

	var doc struct {
		GeneratedAt int64               `json:"generated_at"`
		Count       int                 `json:"count"`
		Comments    []instagram.Comment `json:"comments"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, 2, doc.Count)
	assert.Equal(t, comments, doc.Comments)
	assert.NotZero(t, doc.GeneratedAt)
}

func TestWriteOutputsEmpty(t *testing.T) {
	m, err := NewManager(t.TempDir())
	require.NoError(t, err)

	txtPath, jsonPath, err := m.WriteOutputs("reel_comments_20260831_120000", nil)
	require.NoError(t, err)

	txt, err := os.ReadFile(txtPath)
	require.NoError(t, err)
	assert.Empty(t, txt)

	data, err := os.ReadFile(jsonPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"count": 0`)
}

func TestWriteOutputsLeavesNoTempFiles(t *testing.T) {
	base := t.TempDir()
	m, err := NewManager(base)
	require.NoError(t, err)

	_, _, err = m.WriteOutputs("run", []instagram.Comment{{Username: "a", Text: "b"}})
	require.NoError(t, err)

	for _, sub := range []string{"txt", "json"} {
		entries, err := os.ReadDir(filepath.Join(base, sub))
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.NotContains(t, entries[0].Name(), ".tmp")
	}
}

func TestBaseName(t *testing.T) {
	at := time.Date(2026, 8, 31, 15, 4, 5, 0, time.UTC)
	assert.Equal(t, "reel_comments_20260831_150405", BaseName(at))
}
