package types

import "encoding/json"

// entityWire mirrors Entity's documented JSON shape for marshaling; the
// discriminator field is added by the jsonl encoder, not here, since it is
// a store-file concern rather than an entity concern.
type entityWire struct {
	Name         string   `json:"name"`
	EntityType   string   `json:"entityType"`
	Observations []string `json:"observations"`
	CreatedAt    *int64   `json:"created_at,omitempty"`
	UpdatedAt    *int64   `json:"updated_at,omitempty"`
}

// MarshalJSON writes the documented fields plus any preserved unknown keys
// from a prior decode, so round-tripping a record written by a newer schema
// loses nothing it didn't understand.
func (e *Entity) MarshalJSON() ([]byte, error) {
	base := map[string]json.RawMessage{}
	for k, v := range e.Extra {
		base[k] = v
	}

	wire := entityWire{
		Name:         e.Name,
		EntityType:   e.EntityType,
		Observations: e.Observations,
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
	}
	wireBytes, err := json.Marshal(wire)
	if err != nil {
		return nil, err
	}
	var wireFields map[string]json.RawMessage
	if err := json.Unmarshal(wireBytes, &wireFields); err != nil {
		return nil, err
	}
	for k, v := range wireFields {
		base[k] = v
	}
	return json.Marshal(base)
}

// UnmarshalJSON decodes the documented fields and preserves every other key
// verbatim in Extra.
func (e *Entity) UnmarshalJSON(data []byte) error {
	var wire entityWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	e.Name = wire.Name
	e.EntityType = wire.EntityType
	e.Observations = wire.Observations
	e.CreatedAt = wire.CreatedAt
	e.UpdatedAt = wire.UpdatedAt

	known := map[string]bool{
		"name": true, "entityType": true, "observations": true,
		"created_at": true, "updated_at": true, "type": true,
	}
	extra := make(map[string]json.RawMessage)
	for k, v := range raw {
		if !known[k] {
			extra[k] = v
		}
	}
	if len(extra) > 0 {
		e.Extra = extra
	}
	return nil
}
