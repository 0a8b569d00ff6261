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
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const jsonExtension = ".json"

// ListJSONFiles returns the paths of the regular *.json files directly inside dir, sorted by name.
// Parameters:
// - dir: The directory to scan. Subdirectories are not descended into.
// Returns:
// - []string: Absolute or dir-relative paths of the JSON files.
// - int: The number of entries that were ignored because they are not JSON files.
// - error: If the directory cannot be read. A missing directory yields an error satisfying errors.Is(err, fs.ErrNotExist).
func ListJSONFiles(dir string) ([]string, int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, 0, err
	}

	paths := make([]string, 0, len(entries))
	ignored := 0
	for _, entry := range entries {
		if entry.IsDir() || !IsJSONFile(entry.Name()) {
			ignored++
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(paths)
	return paths, ignored, nil
}

// IsJSONFile reports whether the file name carries a .json extension.
func IsJSONFile(filename string) bool {
	return strings.ToLower(filepath.Ext(filename)) == jsonExtension
}

// ReadFile reads the whole file at path.
func ReadFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading file %s: %w", path, err)
	}
	return data, nil
}

// EnsureDir creates dir and any missing parents.
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("error creating directory %s: %w", dir, err)
	}
	return nil
}

// WriteJSONFile serializes v as indented JSON and writes it to path. The data is
// written to a temporary file in the same directory, synced, and renamed over path,
// so a reader never observes a partially written file.
// Parameters:
// - path: The destination file.
// - v: The value to serialize.
// Returns:
// - error: If serialization or any filesystem step fails. On error path is left untouched.
func WriteJSONFile(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return fmt.Errorf("error encoding %s: %w", path, err)
	}

	tempFile, err := createTempFile(path)
	if err != nil {
		return err
	}
	tempName := tempFile.Name()

	if _, err := tempFile.Write(data); err != nil {
		cleanupTempFile(tempFile)
		return fmt.Errorf("error writing %s: %w", path, err)
	}
	if err := tempFile.Sync(); err != nil {
		cleanupTempFile(tempFile)
		return fmt.Errorf("error syncing %s: %w", path, err)
	}
	if err := tempFile.Close(); err != nil {
		cleanupTempFile(tempFile)
		return fmt.Errorf("error closing %s: %w", path, err)
	}
	if err := os.Rename(tempName, path); err != nil {
		cleanupTempFile(tempFile)
		return fmt.Errorf("error moving %s into place: %w", path, err)
	}
	return nil
}

// createTempFile creates the temporary file a write is staged in, next to its destination.
func createTempFile(destination string) (*os.File, error) {
	prefix := fmt.Sprintf(".%s_", filepath.Base(destination))
	tempFile, err := os.CreateTemp(filepath.Dir(destination), prefix)
	if err != nil {
		return nil, fmt.Errorf("error creating temporary file: %w", err)
	}
	return tempFile, nil
}

// cleanupTempFile removes the specified temporary file from the filesystem.
func cleanupTempFile(file *os.File) {
	if file != nil {
		filename := file.Name()
		file.Close()
		if err := os.Remove(filename); err != nil && !os.IsNotExist(err) {
			log.Printf("Error removing temporary file %s: %v", filename, err)
		}
	}
}
