// Package registry defines the canonical unit-id set and the floor
// derivation rule. The set is deployment data: it changes when units are
// added to or retired from the building, never at runtime.
package registry

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// TechnicalFloor is the label for plant-room units (and the fallback for
// unrecognized prefixes).
const TechnicalFloor = "Technical"

// ErrEmptyRegistry is returned when the configuration names no units. An
// empty fleet makes every repository operation meaningless, so this is fatal
// at startup.
var ErrEmptyRegistry = errors.New("registry: no canonical unit ids configured")

// FloorRule maps an id prefix to a floor label.
type FloorRule struct {
	Prefix string `yaml:"prefix"`
	Floor  string `yaml:"floor"`
}

// Config is the on-disk registry configuration.
type Config struct {
	Units       []string    `yaml:"units"`
	Floors      []FloorRule `yaml:"floors"`
	FailureTags []string    `yaml:"failure_tags"`
}

// Registry is the immutable canonical fleet description.
type Registry struct {
	ids   []string
	idSet map[string]struct{}
	rules []FloorRule
	tags  []string
}

// New builds a registry from a configuration. Duplicate ids are collapsed,
// first occurrence wins for ordering.
func New(cfg Config) (*Registry, error) {
	idSet := make(map[string]struct{}, len(cfg.Units))
	ids := make([]string, 0, len(cfg.Units))
	for _, id := range cfg.Units {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := idSet[id]; ok {
			continue
		}
		idSet[id] = struct{}{}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil, ErrEmptyRegistry
	}
	rules := cfg.Floors
	if len(rules) == 0 {
		rules = defaultConfig.Floors
	}
	tags := cfg.FailureTags
	if len(tags) == 0 {
		tags = defaultConfig.FailureTags
	}
	return &Registry{ids: ids, idSet: idSet, rules: rules, tags: tags}, nil
}

// Load reads the yaml configuration at path, or falls back to the compiled-in
// fleet when path is empty.
func Load(path string) (*Registry, error) {
	if path == "" {
		return New(defaultConfig)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("registry: read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("registry: parse config: %w", err)
	}
	return New(cfg)
}

// CanonicalIDs returns the full id list in configuration order.
func (r *Registry) CanonicalIDs() []string {
	out := make([]string, len(r.ids))
	copy(out, r.ids)
	return out
}

// Contains reports whether id belongs to the canonical set.
func (r *Registry) Contains(id string) bool {
	_, ok := r.idSet[id]
	return ok
}

// DeriveFloor maps a unit id to its floor label. The first matching prefix
// rule wins; anything unmatched is assumed to live in a plant room.
func (r *Registry) DeriveFloor(id string) string {
	for _, rule := range r.rules {
		if rule.Prefix != "" && strings.HasPrefix(id, rule.Prefix) {
			return rule.Floor
		}
	}
	return TechnicalFloor
}

// Floors returns the distinct floor labels of the canonical fleet, in first
// occurrence order.
func (r *Registry) Floors() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, id := range r.ids {
		floor := r.DeriveFloor(id)
		if _, ok := seen[floor]; ok {
			continue
		}
		seen[floor] = struct{}{}
		out = append(out, floor)
	}
	return out
}

// FailureTags returns the configured common-failure tag list for UI pickers.
func (r *Registry) FailureTags() []string {
	out := make([]string, len(r.tags))
	copy(out, r.tags)
	return out
}
