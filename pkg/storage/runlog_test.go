package storage

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenRunLogCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "out")

	runLog, err := OpenRunLog(dir, "sina", "42", "run-1")
	require.NoError(t, err)
	defer runLog.Discard()

	assert.Equal(t, filepath.Join(dir, "tmp-sina-42-run-1.ndjson"), runLog.Path())
	_, err = os.Stat(runLog.Path())
	assert.NoError(t, err)
}

func TestOpenRunLogRefusesExistingFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, RunLogName("sina", "42", "dup")), nil, 0644))

	_, err := OpenRunLog(dir, "sina", "42", "dup")
	assert.Error(t, err)
}

func TestAppendWritesOneLinePerRecord(t *testing.T) {
	runLog, err := OpenRunLog(t.TempDir(), "sina", "42", "run-2")
	require.NoError(t, err)

	require.NoError(t, runLog.Append(map[string]interface{}{"status_id": "a", "text": "<b>x</b>"}))
	require.NoError(t, runLog.Append(map[string]interface{}{"status_id": "b"}))
	require.NoError(t, runLog.Close())
	assert.Equal(t, 2, runLog.Count())

	f, err := os.Open(runLog.Path())
	require.NoError(t, err)
	defer f.Close()

	var lines []map[string]interface{}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var m map[string]interface{}
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &m))
		lines = append(lines, m)
	}
	require.Len(t, lines, 2)
	assert.Equal(t, "a", lines[0]["status_id"])
	assert.Equal(t, "<b>x</b>", lines[0]["text"])
	assert.Equal(t, "b", lines[1]["status_id"])
}

func TestAppendAfterClose(t *testing.T) {
	runLog, err := OpenRunLog(t.TempDir(), "sina", "42", "run-3")
	require.NoError(t, err)
	require.NoError(t, runLog.Close())
	require.NoError(t, runLog.Close())

	assert.Error(t, runLog.Append(map[string]string{"a": "b"}))
}

func TestDiscardRemovesFile(t *testing.T) {
	runLog, err := OpenRunLog(t.TempDir(), "sina", "42", "run-4")
	require.NoError(t, err)
	require.NoError(t, runLog.Append(map[string]string{"a": "b"}))

	require.NoError(t, runLog.Discard())
	require.NoError(t, runLog.Discard())

	_, err = os.Stat(runLog.Path())
	assert.True(t, os.IsNotExist(err))
}
