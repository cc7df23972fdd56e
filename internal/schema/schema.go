// Package schema loads the static tool-schema list shown to the model.
package schema

import (
	_ "embed"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/netwave-ai/netwave/internal/core"
)

//go:embed functions.yaml
var embedded []byte

type entry struct {
	Type     string `yaml:"type"`
	Function struct {
		Name        string         `yaml:"name"`
		Description string         `yaml:"description"`
		Parameters  map[string]any `yaml:"parameters"`
	} `yaml:"function"`
}

// Load parses the embedded tool schema into tool definitions. Entries with
// a type other than "function" are skipped.
func Load() ([]core.ToolDef, error) {
	return parse(embedded)
}

// LoadFile reads a tool schema from an external YAML file, for deployments
// that override the embedded one.
func LoadFile(path string) ([]core.ToolDef, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parse(data)
}

func parse(data []byte) ([]core.ToolDef, error) {
	var entries []entry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse tool schema: %w", err)
	}

	defs := make([]core.ToolDef, 0, len(entries))
	for _, e := range entries {
		if e.Type != "function" {
			continue
		}
		if e.Function.Name == "" {
			return nil, fmt.Errorf("tool schema entry missing function name")
		}
		defs = append(defs, core.ToolDef{
			Name:        e.Function.Name,
			Description: e.Function.Description,
			Parameters:  e.Function.Parameters,
		})
	}
	return defs, nil
}

// VerifyCoverage checks the schema and the set of implemented tool names
// against each other, catching drift at startup instead of at call time.
func VerifyCoverage(defs []core.ToolDef, implemented []string) error {
	declared := make(map[string]struct{}, len(defs))
	for _, def := range defs {
		declared[def.Name] = struct{}{}
	}

	have := make(map[string]struct{}, len(implemented))
	for _, name := range implemented {
		have[name] = struct{}{}
	}

	var missing, extra []string
	for name := range declared {
		if _, ok := have[name]; !ok {
			missing = append(missing, name)
		}
	}
	for name := range have {
		if _, ok := declared[name]; !ok {
			extra = append(extra, name)
		}
	}
	sort.Strings(missing)
	sort.Strings(extra)

	if len(missing) > 0 {
		return fmt.Errorf("tool schema declares unimplemented tools: %v", missing)
	}
	if len(extra) > 0 {
		return fmt.Errorf("tools implemented but not declared in schema: %v", extra)
	}
	return nil
}
