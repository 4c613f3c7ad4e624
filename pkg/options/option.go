package options

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/matzehuels/sugiyama/pkg/errors"
	"github.com/matzehuels/sugiyama/pkg/graph"
)

// Scope says which kind of element an option is read from.
type Scope string

const (
	ScopeGraph Scope = "graph"
	ScopeNode  Scope = "node"
	ScopeEdge  Scope = "edge"
	ScopePort  Scope = "port"
	ScopeLabel Scope = "label"
)

// Descriptor is the untyped view of a registered option, used for listings.
type Descriptor struct {
	ID      string
	Scope   Scope
	Default string
	Values  []string // allowed values for enumerations, nil otherwise
}

// Option is a typed option: an id, a default, a parser from raw property
// values, and an optional range check.
type Option[T any] struct {
	id    string
	def   T
	parse func(any) (T, error)
	check func(T) error
}

// ID returns the option id.
func (o Option[T]) ID() string { return o.id }

// Default returns the option's default value.
func (o Option[T]) Default() T { return o.def }

// Get reads the option from p. A missing key yields the default; a present
// key with a wrong type or out-of-range value is a CONFIGURATION error.
func (o Option[T]) Get(p graph.Properties) (T, error) {
	raw, ok := p[o.id]
	if !ok || raw == nil {
		return o.def, nil
	}
	v, err := o.parse(raw)
	if err != nil {
		return o.def, errors.Wrap(errors.ErrCodeConfiguration, err, "option %s", o.id)
	}
	if o.check != nil {
		if err := o.check(v); err != nil {
			return o.def, err
		}
	}
	return v, nil
}

// =============================================================================
// Registry
// =============================================================================

var (
	registryMu sync.RWMutex
	registry   = map[string]Descriptor{}
)

func register(d Descriptor) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[d.ID] = d
}

// All returns every registered option sorted by id.
func All() []Descriptor {
	registryMu.RLock()
	defer registryMu.RUnlock()
	out := make([]Descriptor, 0, len(registry))
	for _, d := range registry {
		out = append(out, d)
	}
	slices.SortFunc(out, func(a, b Descriptor) int { return strings.Compare(a.ID, b.ID) })
	return out
}

// Lookup returns the descriptor for id.
func Lookup(id string) (Descriptor, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	d, ok := registry[id]
	return d, ok
}

// =============================================================================
// Constructors
// =============================================================================

func enumOption[T ~string](id string, scope Scope, def T, values ...T) Option[T] {
	names := make([]string, len(values))
	for i, v := range values {
		names[i] = string(v)
	}
	register(Descriptor{ID: id, Scope: scope, Default: string(def), Values: names})
	return Option[T]{
		id:  id,
		def: def,
		parse: func(raw any) (T, error) {
			s, ok := raw.(string)
			if !ok {
				return def, fmt.Errorf("expected string, got %T", raw)
			}
			s = strings.TrimSpace(s)
			for _, n := range names {
				if strings.EqualFold(n, s) {
					return T(n), nil
				}
			}
			return def, errors.ValidateEnum(id, s, names...)
		},
	}
}

func floatOption(id string, scope Scope, def float64, check func(float64) error) Option[float64] {
	register(Descriptor{ID: id, Scope: scope, Default: strconv.FormatFloat(def, 'g', -1, 64)})
	return Option[float64]{id: id, def: def, parse: parseFloat, check: check}
}

func intOption(id string, scope Scope, def int, check func(int) error) Option[int] {
	register(Descriptor{ID: id, Scope: scope, Default: strconv.Itoa(def)})
	return Option[int]{
		id:  id,
		def: def,
		parse: func(raw any) (int, error) {
			f, err := parseFloat(raw)
			if err != nil {
				return 0, err
			}
			if f != math.Trunc(f) {
				return 0, fmt.Errorf("expected integer, got %v", f)
			}
			return int(f), nil
		},
		check: check,
	}
}

func boolOption(id string, scope Scope, def bool) Option[bool] {
	register(Descriptor{ID: id, Scope: scope, Default: strconv.FormatBool(def)})
	return Option[bool]{
		id:  id,
		def: def,
		parse: func(raw any) (bool, error) {
			switch v := raw.(type) {
			case bool:
				return v, nil
			case string:
				return strconv.ParseBool(strings.TrimSpace(v))
			}
			return false, fmt.Errorf("expected bool, got %T", raw)
		},
	}
}

func stringOption(id string, scope Scope, def string) Option[string] {
	register(Descriptor{ID: id, Scope: scope, Default: def})
	return Option[string]{
		id:  id,
		def: def,
		parse: func(raw any) (string, error) {
			s, ok := raw.(string)
			if !ok {
				return "", fmt.Errorf("expected string, got %T", raw)
			}
			return s, nil
		},
	}
}

func durationOption(id string, scope Scope) Option[time.Duration] {
	register(Descriptor{ID: id, Scope: scope, Default: ""})
	return Option[time.Duration]{
		id: id,
		parse: func(raw any) (time.Duration, error) {
			switch v := raw.(type) {
			case string:
				if v == "" {
					return 0, nil
				}
				return time.ParseDuration(v)
			case float64:
				return time.Duration(v * float64(time.Millisecond)), nil
			}
			return 0, fmt.Errorf("expected duration string, got %T", raw)
		},
		check: func(d time.Duration) error {
			if d < 0 {
				return errors.Configuration("%s must not be negative", id)
			}
			return nil
		},
	}
}

// pointOption parses [x, y] arrays, {"x":..,"y":..} maps, or "x,y" strings.
func pointOption(id string, scope Scope) Option[*graph.Point] {
	register(Descriptor{ID: id, Scope: scope})
	return Option[*graph.Point]{id: id, parse: parsePoint}
}

func parsePoint(raw any) (*graph.Point, error) {
	var xs, ys any
	switch v := raw.(type) {
	case []any:
		if len(v) != 2 {
			return nil, fmt.Errorf("expected [x, y], got %d values", len(v))
		}
		xs, ys = v[0], v[1]
	case map[string]any:
		xs, ys = v["x"], v["y"]
	case string:
		parts := strings.Split(v, ",")
		if len(parts) != 2 {
			return nil, fmt.Errorf("expected \"x,y\", got %q", v)
		}
		xs, ys = parts[0], parts[1]
	default:
		return nil, fmt.Errorf("expected point, got %T", raw)
	}
	x, err := parseFloat(xs)
	if err != nil {
		return nil, err
	}
	y, err := parseFloat(ys)
	if err != nil {
		return nil, err
	}
	return &graph.Point{X: x, Y: y}, nil
}

func parseFloat(raw any) (float64, error) {
	switch v := raw.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case string:
		return strconv.ParseFloat(strings.TrimSpace(v), 64)
	}
	return 0, fmt.Errorf("expected number, got %T", raw)
}

func spacing(id string) func(float64) error {
	return func(v float64) error { return errors.ValidateSpacing(id, v) }
}
