// Package manifest reads dbt manifest.json documents into a typed form.
//
// The manifest is produced by an external tool and is only loosely typed:
// almost every field can be missing, null, or carry an unexpected shape.
// Every accessor here is therefore a fallible projection with an explicit
// default, never a direct field access.
package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
)

// ErrNotFound indicates the manifest file does not exist at the given path.
var ErrNotFound = errors.New("manifest not found")

// ParseError indicates the manifest file exists but is not valid JSON or
// lacks the expected top-level structure.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse manifest %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Node is one raw entry of the manifest's node collection. Fields are
// accessed through the typed helpers below.
type Node map[string]any

// Manifest is the parsed document.
type Manifest struct {
	Nodes map[string]Node `json:"nodes"`
}

// Parse reads and decodes a manifest file.
func Parse(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("failed to read manifest %s: %w", path, err)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	return &m, nil
}

// ModelNodes returns the nodes with resource_type "model" and a string
// unique_id, sorted by unique_id. Everything else (sources, tests, macros,
// seeds mixed into the same collection) is silently excluded.
func (m *Manifest) ModelNodes() []Node {
	var models []Node
	for _, n := range m.Nodes {
		if n.ResourceType() != "model" {
			continue
		}
		if _, ok := n.str("unique_id"); !ok {
			continue
		}
		models = append(models, n)
	}
	sort.Slice(models, func(i, j int) bool {
		return models[i].UniqueID() < models[j].UniqueID()
	})
	return models
}

// str returns the value under key if it is a non-empty string.
func (n Node) str(key string) (string, bool) {
	s, ok := n[key].(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

// optStr returns the value under key as a nullable string.
func (n Node) optStr(key string) *string {
	if s, ok := n.str(key); ok {
		return &s
	}
	return nil
}

// UniqueID returns the node's unique_id, or "" if absent.
func (n Node) UniqueID() string {
	s, _ := n.str("unique_id")
	return s
}

// Name returns the node's name, or "" if absent.
func (n Node) Name() string {
	s, _ := n.str("name")
	return s
}

// ResourceType returns the node's resource_type, or "" if absent.
func (n Node) ResourceType() string {
	s, _ := n.str("resource_type")
	return s
}

// PackageName returns the owning package, if declared.
func (n Node) PackageName() *string { return n.optStr("package_name") }

// Database returns the target database, if declared.
func (n Node) Database() *string { return n.optStr("database") }

// Schema returns the target schema, if declared.
func (n Node) Schema() *string { return n.optStr("schema") }

// Alias returns the relation alias, if declared.
func (n Node) Alias() *string { return n.optStr("alias") }

// Description returns the node description, if declared.
func (n Node) Description() *string { return n.optStr("description") }

// Path returns the best-effort source path: original_file_path when it is a
// non-empty string, falling back to the generic path field.
func (n Node) Path() *string {
	if p := n.optStr("original_file_path"); p != nil {
		return p
	}
	return n.optStr("path")
}

// Materialized returns config.materialized when it is a string.
func (n Node) Materialized() *string {
	cfg, ok := n["config"].(map[string]any)
	if !ok {
		return nil
	}
	if m, ok := cfg["materialized"].(string); ok && m != "" {
		return &m
	}
	return nil
}

// Tags returns the node's tags with non-string entries dropped. A missing
// or malformed tags field yields an empty slice.
func (n Node) Tags() []string {
	return normalizeTags(n["tags"])
}

// Meta returns the node's raw meta value, or nil.
func (n Node) Meta() any { return n["meta"] }

// Config returns the node's raw config value, or nil.
func (n Node) Config() any { return n["config"] }

// Column is one declared column of a model node.
type Column struct {
	Name        string
	Description *string
	Meta        any
}

// Columns returns the node's declared columns sorted by name.
func (n Node) Columns() []Column {
	raw, ok := n["columns"].(map[string]any)
	if !ok {
		return nil
	}

	cols := make([]Column, 0, len(raw))
	for name, v := range raw {
		col := Column{Name: name}
		if def, ok := v.(map[string]any); ok {
			if d, ok := def["description"].(string); ok && d != "" {
				col.Description = &d
			}
			col.Meta = def["meta"]
		}
		cols = append(cols, col)
	}
	sort.Slice(cols, func(i, j int) bool { return cols[i].Name < cols[j].Name })
	return cols
}

// DependsOn returns the node's depends_on.nodes entries, keeping only
// strings. Duplicates are preserved; the store deduplicates on insert.
func (n Node) DependsOn() []string {
	dep, ok := n["depends_on"].(map[string]any)
	if !ok {
		return nil
	}
	nodes, ok := dep["nodes"].([]any)
	if !ok {
		return nil
	}

	deps := make([]string, 0, len(nodes))
	for _, v := range nodes {
		if s, ok := v.(string); ok {
			deps = append(deps, s)
		}
	}
	return deps
}

// SafeJSON serializes v to a JSON string pointer. Nil input and
// serialization failures both degrade to nil rather than aborting a build.
func SafeJSON(v any) *string {
	if v == nil {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	s := string(data)
	return &s
}

func normalizeTags(v any) []string {
	raw, ok := v.([]any)
	if !ok {
		return []string{}
	}
	tags := make([]string, 0, len(raw))
	for _, t := range raw {
		if s, ok := t.(string); ok {
			tags = append(tags, s)
		}
	}
	return tags
}
