package main

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cortexgraph/memoryd/internal/search"
	"github.com/cortexgraph/memoryd/internal/toolsurface"
)

func TestServeLoopRoundTripsCreateAndRead(t *testing.T) {
	storePath := filepath.Join(t.TempDir(), "memory.jsonl")
	engine := toolsurface.New(storePath, search.DefaultConfig)

	createLine := `{"id":"1","tool":"create_entities","arguments":{"entities":[{"name":"alice","entityType":"person","observations":[]}]}}`
	readLine := `{"id":"2","tool":"read_graph","arguments":{}}`
	in := strings.NewReader(createLine + "\n" + readLine + "\n")
	var out bytes.Buffer

	err := serveLoop(context.Background(), engine, in, &out)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)

	var first response
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Empty(t, first.Error)

	var second struct {
		Result struct {
			Entities []struct {
				Name string `json:"name"`
			} `json:"entities"`
		} `json:"result"`
	}
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &second))
	require.Len(t, second.Result.Entities, 1)
	assert.Equal(t, "alice", second.Result.Entities[0].Name)
}

func TestServeLoopReportsUnknownTool(t *testing.T) {
	storePath := filepath.Join(t.TempDir(), "memory.jsonl")
	engine := toolsurface.New(storePath, search.DefaultConfig)

	in := strings.NewReader(`{"id":"1","tool":"bogus","arguments":{}}` + "\n")
	var out bytes.Buffer

	require.NoError(t, serveLoop(context.Background(), engine, in, &out))

	var resp response
	require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
	assert.Contains(t, resp.Error, "unknown tool")
}
