package fixture

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

func loadYAMLFile(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}
	return decodeYAML(data)
}

// decodeYAML rejects unknown fields.
func decodeYAML(data []byte) (*Fixture, error) {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	var fixture Fixture
	if err := decoder.Decode(&fixture); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, invalid("fixture document is empty")
		}
		return nil, invalid(fmt.Sprintf("decode yaml: %v", err))
	}
	return &fixture, nil
}
