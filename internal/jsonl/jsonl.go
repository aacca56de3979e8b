// Package jsonl encodes and decodes the knowledge graph's line-delimited
// JSON store format: one JSON object per line, discriminated by a "type"
// field of "entity" or "relation".
package jsonl

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/cortexgraph/memoryd/internal/types"
)

// line discriminators, aliased here from types since the store-file
// envelope is a jsonl concern, not an entity concern.
const (
	typeEntity   = types.RecordEntity
	typeRelation = types.RecordRelation
)

// Decode parses line-delimited JSON store content into a Graph. Blank lines
// are skipped. A line that fails to parse, or carries an unrecognized
// "type", aborts the whole decode (strict, per spec: MalformedRecord is
// fatal, not skipped).
func Decode(data []byte) (*types.Graph, error) {
	g := &types.Graph{}
	scanner := bufio.NewScanner(bytes.NewReader(data))
	// Entities can carry long observation text, so use an enlarged
	// scanner buffer rather than bufio's small default to avoid
	// truncating a single long line.
	scanner.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var disc struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(line, &disc); err != nil {
			return nil, fmt.Errorf("jsonl: malformed record at line %d: %w", lineNum, err)
		}

		switch disc.Type {
		case typeEntity:
			var e types.Entity
			if err := json.Unmarshal(line, &e); err != nil {
				return nil, fmt.Errorf("jsonl: malformed entity at line %d: %w", lineNum, err)
			}
			g.Entities = append(g.Entities, &e)
		case typeRelation:
			var r types.Relation
			if err := json.Unmarshal(line, &r); err != nil {
				return nil, fmt.Errorf("jsonl: malformed relation at line %d: %w", lineNum, err)
			}
			g.Relations = append(g.Relations, r)
		default:
			return nil, fmt.Errorf("jsonl: unknown record type %q at line %d", disc.Type, lineNum)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("jsonl: scan failed: %w", err)
	}
	return g, nil
}

// Encode serializes a Graph to line-delimited JSON: every entity line
// first (in their current slice order), then every relation line. Returns
// an empty byte slice (not a single blank line) for an empty graph.
func Encode(g *types.Graph) ([]byte, error) {
	var buf bytes.Buffer
	for _, e := range g.Entities {
		line, err := marshalEntityLine(e)
		if err != nil {
			return nil, fmt.Errorf("jsonl: encode entity %q: %w", e.Name, err)
		}
		buf.Write(line)
		buf.WriteByte('\n')
	}
	for _, r := range g.Relations {
		line, err := marshalRelationLine(r)
		if err != nil {
			return nil, fmt.Errorf("jsonl: encode relation %s->%s: %w", r.From, r.To, err)
		}
		buf.Write(line)
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}

func marshalEntityLine(e *types.Entity) ([]byte, error) {
	entityJSON, err := json.Marshal(e)
	if err != nil {
		return nil, err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(entityJSON, &fields); err != nil {
		return nil, err
	}
	typeJSON, _ := json.Marshal(typeEntity)
	fields["type"] = typeJSON
	return json.Marshal(fields)
}

func marshalRelationLine(r types.Relation) ([]byte, error) {
	return json.Marshal(struct {
		Type         string `json:"type"`
		From         string `json:"from"`
		To           string `json:"to"`
		RelationType string `json:"relationType"`
	}{typeRelation, r.From, r.To, r.RelationType})
}
