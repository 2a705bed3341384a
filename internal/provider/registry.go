package provider

import (
	"fmt"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"
)

// Factory builds a provider from the parameter map of its saved config.
type Factory[T any] func(params map[string]any) (T, error)

// Registry maps an explicit type tag to a constructor for one capability
// (embedder, reranker, vector store, chunk store). Registration is an
// explicit call at process startup; nothing registers itself from an import
// side effect, so a saved config can only name providers the process chose
// to offer.
type Registry[T any] struct {
	kind      string
	mu        sync.RWMutex
	factories map[string]Factory[T]
}

func NewRegistry[T any](kind string) *Registry[T] {
	return &Registry[T]{kind: kind, factories: make(map[string]Factory[T])}
}

func (r *Registry[T]) Register(tag string, f Factory[T]) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[tag] = f
}

func (r *Registry[T]) New(tag string, params map[string]any) (T, error) {
	r.mu.RLock()
	f, ok := r.factories[tag]
	r.mu.RUnlock()
	var zero T
	if !ok {
		return zero, fmt.Errorf("unknown %s provider %q (registered: %v)", r.kind, tag, r.Tags())
	}
	return f(params)
}

// FromYAML rebuilds a provider from a tagged config document of the form
//
//	type: <tag>
//	<param>: <value>
func (r *Registry[T]) FromYAML(data []byte) (T, error) {
	var zero T
	var params map[string]any
	if err := yaml.Unmarshal(data, &params); err != nil {
		return zero, fmt.Errorf("%s provider config: %w", r.kind, err)
	}
	tag, _ := params["type"].(string)
	if tag == "" {
		return zero, fmt.Errorf("%s provider config: missing type tag", r.kind)
	}
	delete(params, "type")
	return r.New(tag, params)
}

func (r *Registry[T]) Tags() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tags := make([]string, 0, len(r.factories))
	for t := range r.factories {
		tags = append(tags, t)
	}
	sort.Strings(tags)
	return tags
}

// String reads an optional string parameter, falling back to def.
func String(params map[string]any, key, def string) string {
	if v, ok := params[key].(string); ok && v != "" {
		return v
	}
	return def
}

// Int reads an optional integer parameter, falling back to def. YAML decodes
// whole numbers as int.
func Int(params map[string]any, key string, def int) int {
	if v, ok := params[key].(int); ok {
		return v
	}
	return def
}
