package scenario

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads a scenario in YAML form. Unknown fields are rejected.
func Load(r io.Reader) (Scenario, error) {
	var s Scenario

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	if err := dec.Decode(&s); err != nil {
		return Scenario{}, fmt.Errorf("decode scenario: %w", err)
	}

	if err := s.Validate(); err != nil {
		return Scenario{}, err
	}

	return s, nil
}

// LoadFile reads a scenario from a YAML file.
func LoadFile(path string) (Scenario, error) {
	file, err := os.Open(path)
	if err != nil {
		return Scenario{}, fmt.Errorf("open scenario: %w", err)
	}
	defer file.Close()

	return Load(file)
}

// Dump writes the scenario in YAML form.
func (s Scenario) Dump(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)

	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("encode scenario: %w", err)
	}

	return enc.Close()
}
