// Package store persists a knowledge graph to a single JSONL file with
// crash-safe, all-or-nothing publishes: every write happens to a sibling
// temp file which is then renamed over the real path, so a reader never
// observes a half-written file.
package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/cortexgraph/memoryd/internal/jsonl"
	"github.com/cortexgraph/memoryd/internal/types"
)

// Load reads the graph at path. A missing file is not an error: it is
// treated as an empty graph, matching the convention that the store is
// created lazily on first write.
func Load(path string) (*types.Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &types.Graph{}, nil
		}
		return nil, fmt.Errorf("store: read %s: %w", path, err)
	}

	g, err := jsonl.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("store: decode %s: %w", path, err)
	}
	return g, nil
}

// AtomicReplace serializes g and publishes it to path by writing a sibling
// temp file and renaming it into place, so concurrent readers never see a
// partial write. The temp file name carries a random writer-id so that two
// writers racing on the same path never collide on the same temp name.
func AtomicReplace(path string, g *types.Graph) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("store: create dir %s: %w", dir, err)
	}

	data, err := jsonl.Encode(g)
	if err != nil {
		return fmt.Errorf("store: encode: %w", err)
	}

	tmpName := fmt.Sprintf("%s.tmp.%s", path, uuid.NewString())

	if err := os.WriteFile(tmpName, data, 0o644); err != nil {
		return fmt.Errorf("store: write temp file: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("store: rename into place: %w", err)
	}

	return nil
}
