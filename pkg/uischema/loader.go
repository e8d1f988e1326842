package uischema

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/supersafe-org/go-safe-apps/pkg/schema"
)

// Parse decodes a UI schema document. The canonical form is a JSON array of
// instructions; YAML is accepted as a fallback. An empty object or null
// yields an empty list, matching what the fetcher substitutes for a missing
// document.
func Parse(data []byte, source string) ([]Instruction, error) {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" {
		return nil, fmt.Errorf("uischema: file %s is empty", source)
	}
	if trimmed == "null" || trimmed == "{}" {
		return []Instruction{}, nil
	}

	var out []Instruction
	jsonErr := json.Unmarshal(data, &out)
	if jsonErr == nil {
		return normalise(out), nil
	}

	out = nil
	if err := yaml.Unmarshal(data, &out); err == nil {
		return normalise(out), nil
	}

	return nil, fmt.Errorf("uischema: parse %s: %w", source, jsonErr)
}

// ParseDocument decodes a fetched document.
func ParseDocument(doc schema.Document) ([]Instruction, error) {
	return Parse(doc.Raw(), doc.Location())
}

// LoadFS reads and parses name from fsys.
func LoadFS(fsys fs.FS, name string) ([]Instruction, error) {
	if fsys == nil {
		return nil, fmt.Errorf("uischema: fs is nil")
	}
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("uischema: read %s: %w", name, err)
	}
	return Parse(data, name)
}

func normalise(in []Instruction) []Instruction {
	if in == nil {
		return []Instruction{}
	}
	for i := range in {
		for j := range in[i].Accounts {
			in[i].Accounts[j].Visibility = in[i].Accounts[j].Visibility.Normalize()
		}
		for j := range in[i].Args {
			in[i].Args[j].Visibility = in[i].Args[j].Visibility.Normalize()
		}
	}
	return in
}
