package options

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/sugiyama/pkg/errors"
	"github.com/matzehuels/sugiyama/pkg/graph"
)

// LoadFile reads option defaults from a TOML (.toml) or YAML (.yaml, .yml)
// file. Nested tables are flattened into dotted ids, so
//
//	[spacing]
//	nodeNode = 30
//
// yields the option "spacing.nodeNode".
func LoadFile(path string) (graph.Properties, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	raw := map[string]any{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.Decode(string(data), &raw); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode %s", path)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode %s", path)
		}
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported config format %q", filepath.Ext(path))
	}

	out := graph.Properties{}
	flatten("", raw, out)
	return out, nil
}

func flatten(prefix string, in map[string]any, out graph.Properties) {
	for k, v := range in {
		id := k
		if prefix != "" {
			id = prefix + "." + k
		}
		if nested, ok := v.(map[string]any); ok && !isPointMap(nested) {
			flatten(id, nested, out)
			continue
		}
		out[id] = v
	}
}

// isPointMap keeps {x, y} tables intact for point-valued options.
func isPointMap(m map[string]any) bool {
	_, hasX := m["x"]
	_, hasY := m["y"]
	return len(m) == 2 && hasX && hasY
}

// Merge returns a new map with base overridden by each of overrides in turn.
func Merge(base graph.Properties, overrides ...graph.Properties) graph.Properties {
	out := make(graph.Properties, len(base))
	for k, v := range base {
		out[k] = v
	}
	for _, o := range overrides {
		for k, v := range o {
			out[k] = v
		}
	}
	return out
}

// ParseAssignments parses "id=value" pairs as given on a command line. Values
// stay strings; options convert them when read.
func ParseAssignments(pairs []string) (graph.Properties, error) {
	out := graph.Properties{}
	for _, pair := range pairs {
		id, value, ok := strings.Cut(pair, "=")
		id = strings.TrimSpace(id)
		if !ok || id == "" {
			return nil, errors.New(errors.ErrCodeInvalidInput, "expected id=value, got %q", pair)
		}
		if _, known := Lookup(id); !known {
			return nil, errors.Configuration("unknown option %q", id)
		}
		out[id] = strings.TrimSpace(value)
	}
	return out, nil
}
