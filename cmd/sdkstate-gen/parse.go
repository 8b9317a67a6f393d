package main

import (
	"fmt"
	"go/token"
	"os"

	"gopkg.in/yaml.v3"
)

// RawStateTable is the root of states.yaml.
type RawStateTable struct {
	Package string        `yaml:"package"`
	States  []RawStateDef `yaml:"states"`
}

// RawStateDef describes one SDK state code.
type RawStateDef struct {
	Code     string `yaml:"code"`     // as reported by the SDK
	Name     string `yaml:"name"`     // Go constant name
	Category string `yaml:"category"` // "credential", "bluetooth", "nfc"
	Optional bool   `yaml:"optional"`
	Text     string `yaml:"text"`
}

var validCategories = map[string]bool{
	"credential": true,
	"bluetooth":  true,
	"nfc":        true,
}

// LoadStateTable reads and validates a state table file.
func LoadStateTable(path string) (*RawStateTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseStateTable(data)
}

// ParseStateTable parses and validates state table YAML.
func ParseStateTable(data []byte) (*RawStateTable, error) {
	var table RawStateTable
	if err := yaml.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("parsing yaml: %w", err)
	}
	if table.Package == "" {
		table.Package = "sdkstate"
	}
	if err := validate(&table); err != nil {
		return nil, err
	}
	return &table, nil
}

func validate(table *RawStateTable) error {
	codes := make(map[string]bool)
	names := make(map[string]bool)
	for i, s := range table.States {
		if s.Code == "" {
			return fmt.Errorf("state %d: missing code", i)
		}
		if !token.IsIdentifier(s.Name) || !token.IsExported(s.Name) {
			return fmt.Errorf("state %s: name %q is not an exported identifier", s.Code, s.Name)
		}
		if s.Text == "" {
			return fmt.Errorf("state %s: missing text", s.Code)
		}
		if !validCategories[s.Category] {
			return fmt.Errorf("state %s: unknown category %q", s.Code, s.Category)
		}
		if codes[s.Code] {
			return fmt.Errorf("duplicate code %q", s.Code)
		}
		if names[s.Name] {
			return fmt.Errorf("duplicate name %q", s.Name)
		}
		codes[s.Code] = true
		names[s.Name] = true
	}
	return nil
}
