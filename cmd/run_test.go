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

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/blnkfinance/tracsync/config"
	"github.com/blnkfinance/tracsync/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecutePhases_RunsEveryPhase(t *testing.T) {
	config.MockConfig(&config.Configuration{})

	var ran []string
	run := func(_ context.Context, p phase) error {
		ran = append(ran, p.name)
		if p.name == inboundPhase.name {
			return errors.New("inbound phase: mongodb unreachable")
		}
		return nil
	}

	err := executePhases(context.Background(), []phase{inboundPhase, outboundPhase}, run)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mongodb unreachable")
	assert.Equal(t, []string{"inbound", "outbound"}, ran, "outbound runs even though inbound failed")
}

func TestExecutePhases_ReportsBothFailures(t *testing.T) {
	config.MockConfig(&config.Configuration{})

	err := executePhases(context.Background(), []phase{inboundPhase, outboundPhase}, func(_ context.Context, p phase) error {
		return errors.New(p.name + " failed")
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "inbound failed")
	assert.Contains(t, err.Error(), "outbound failed")
}

func TestExecutePhases_Success(t *testing.T) {
	err := executePhases(context.Background(), []phase{inboundPhase}, func(context.Context, phase) error { return nil })
	assert.NoError(t, err)
}

func TestRunPhases_MemoryEndToEnd(t *testing.T) {
	inbound := t.TempDir()
	outbound := filepath.Join(t.TempDir(), "out")

	order := map[string]interface{}{
		"orderNo":        21,
		"isActive":       true,
		"isCanceled":     false,
		"isDeleted":      false,
		"isDone":         false,
		"isOnHold":       true,
		"isPending":      false,
		"summary":        "Check compressor",
		"creationDate":   "2024-04-01T10:00:00Z",
		"lastUpdateDate": "2024-04-02T10:00:00Z",
		"deletedDate":    nil,
	}
	data, err := json.Marshal(order)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(inbound, "21.json"), data, 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(inbound, "bad.json"), []byte(`{"orderNo":"x"}`), 0o600))

	cnf := &config.Configuration{
		Inbound:  config.InboundConfig{Dir: inbound},
		Outbound: config.OutboundConfig{Dir: outbound, Workers: 1},
	}
	config.MockConfig(cnf)
	app := &syncInstance{cnf: cnf, storage: storageMemory}

	err = executePhases(context.Background(), []phase{inboundPhase, outboundPhase}, app.runPhase)
	require.NoError(t, err)

	exported, err := os.ReadFile(filepath.Join(outbound, "workorder_21.json"))
	require.NoError(t, err)
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(exported, &out))
	assert.Equal(t, true, out["isOnHold"])
	assert.Equal(t, "Check compressor", out["summary"])
	assert.Equal(t, "2024-04-01T10:00:00Z", out["creationDate"])

	synced, err := app.memory.FindWhereSynced(context.Background(), true)
	require.NoError(t, err)
	require.Len(t, synced, 1)
	assert.Equal(t, int64(21), synced[0].Number)
	assert.Equal(t, 1, app.memory.Len())
}

func TestOpenDataSource_MemoryIsShared(t *testing.T) {
	app := &syncInstance{cnf: &config.Configuration{}, storage: storageMemory}

	first, release, err := app.openDataSource(context.Background())
	require.NoError(t, err)
	release()
	second, _, err := app.openDataSource(context.Background())
	require.NoError(t, err)

	assert.Same(t, first.(*database.MemoryDataSource), second.(*database.MemoryDataSource))
}

func TestConfigCommand(t *testing.T) {
	t.Setenv("TRACSYNC_DATA_INBOUND_DIR", "/in")
	t.Setenv("TRACSYNC_DATA_OUTBOUND_DIR", "/out")

	cli := NewCLI()
	var out bytes.Buffer
	cli.cmd.SetOut(&out)
	cli.cmd.SetArgs([]string{"config", "--config", filepath.Join(t.TempDir(), "missing.json")})

	require.NoError(t, cli.cmd.Execute())
	assert.Contains(t, out.String(), `"dir": "/in"`)
	assert.Contains(t, out.String(), `"database": "tractian"`)
}

func TestUnknownStorage(t *testing.T) {
	cli := NewCLI()
	cli.cmd.SetArgs([]string{"config", "--storage", "postgres"})
	assert.Error(t, cli.cmd.Execute())
}
