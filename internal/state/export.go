// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package state

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"go.yaml.in/yaml/v3"
)

// Snapshot is a point-in-time dump of a store.
type Snapshot struct {
	Properties map[string]string `json:"properties" yaml:"properties"`
	Outcomes   []Outcome         `json:"outcomes,omitempty" yaml:"outcomes,omitempty"`
}

// Dump reads every property from s, plus its outcomes when s is a Journal.
func Dump(ctx context.Context, s Store) (Snapshot, error) {
	props, err := s.All(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	snap := Snapshot{Properties: props}
	if j, ok := s.(Journal); ok {
		if snap.Outcomes, err = j.Outcomes(ctx); err != nil {
			return Snapshot{}, err
		}
	}
	return snap, nil
}

// WriteYAML encodes the snapshot as YAML.
func (s Snapshot) WriteYAML(w io.Writer) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	_, err = w.Write(data)
	return err
}

// WriteJSON encodes the snapshot as indented JSON.
func (s Snapshot) WriteJSON(w io.Writer) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}
