/*
Copyright 2024 Blnk Finance Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package files

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListJSONFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.json", "a.json", "notes.txt", "UPPER.JSON"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("{}"), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.json"), 0o755))

	paths, ignored, err := ListJSONFiles(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "UPPER.JSON"),
		filepath.Join(dir, "a.json"),
		filepath.Join(dir, "b.json"),
	}, paths)
	assert.Equal(t, 2, ignored)
}

func TestListJSONFilesMissingDir(t *testing.T) {
	_, _, err := ListJSONFiles(filepath.Join(t.TempDir(), "missing"))
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestIsJSONFile(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		expected bool
	}{
		{"json", "workorder_1.json", true},
		{"upper case", "WORKORDER.JSON", true},
		{"csv", "workorders.csv", false},
		{"no extension", "workorder", false},
		{"json in name only", "json.txt", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsJSONFile(tt.filename))
		})
	}
}

func TestWriteJSONFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "workorder_5.json")

	payload := map[string]interface{}{"orderNo": 5, "summary": "Lubricate chain"}
	require.NoError(t, WriteJSONFile(path, payload))

	data, err := ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "\n    \"orderNo\": 5")

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "Lubricate chain", decoded["summary"])

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files must not be left behind")
}

func TestWriteJSONFileOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "workorder_6.json")
	require.NoError(t, WriteJSONFile(path, map[string]int{"orderNo": 6, "version": 1}))
	require.NoError(t, WriteJSONFile(path, map[string]int{"orderNo": 6, "version": 2}))

	data, err := ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "\"version\": 2")
}

func TestWriteJSONFileMissingDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "workorder_7.json")
	assert.Error(t, WriteJSONFile(path, map[string]int{"orderNo": 7}))
}

func TestWriteJSONFileUnsupportedValue(t *testing.T) {
	dir := t.TempDir()
	err := WriteJSONFile(filepath.Join(dir, "bad.json"), map[string]interface{}{"ch": make(chan int)})
	assert.Error(t, err)

	entries, _ := os.ReadDir(dir)
	assert.Empty(t, entries)
}

func TestEnsureDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	require.NoError(t, EnsureDir(dir))
	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
