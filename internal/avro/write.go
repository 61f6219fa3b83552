package avro

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// WriteFile writes a schema as indented JSON to dir/<eventName>.avsc,
// creating the directory if needed. Returns the written path.
func WriteFile(dir, eventName string, schema map[string]any) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating schema directory: %w", err)
	}

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshalling schema %s: %w", eventName, err)
	}

	path := filepath.Join(dir, eventName+".avsc")
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return "", fmt.Errorf("writing schema to %s: %w", path, err)
	}
	return path, nil
}
