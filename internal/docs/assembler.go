// Package docs assembles the API reference document from YAML fragments.
//
// The OpenAPI description is split across per-entity fragment files so each
// route group owns its paths and schemas. Fragments are stitched together
// with a reserved "$import" directive:
//
//	$import: journeys.yaml
//
// or
//
//	$import:
//	  - journeys.yaml
//	  - scores.yaml
//
// Each imported fragment is parsed, has its OWN imports resolved first, and
// is then deep-merged into the object holding the directive, at that same
// nesting depth. Fixed top-level OpenAPI fields like "paths" can therefore
// be contributed to by several fragments: map-valued keys merge recursively,
// scalar- and array-valued keys overwrite. The $import key itself is
// removed once resolved.
//
// Assembly runs exactly once at startup against trusted local files — a
// missing or malformed fragment fails startup rather than being recovered.
package docs

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"
)

const importKey = "$import"

// Load parses the root document and resolves every $import directive,
// returning the fully assembled document. Fragment paths are resolved
// relative to the root document's directory, also inside nested fragments.
func Load(rootPath string) (map[string]any, error) {
	dir := filepath.Dir(rootPath)

	doc, err := loadFragment(rootPath, dir, nil)
	if err != nil {
		return nil, fmt.Errorf("docs: %w", err)
	}

	return doc, nil
}

// loadFragment reads and parses one file, then resolves its imports. The
// stack holds the chain of fragment paths currently being resolved; finding
// the same path twice means the import graph has a cycle, which would
// otherwise recurse forever.
func loadFragment(path, dir string, stack []string) (map[string]any, error) {
	path = filepath.Clean(path)

	if slices.Contains(stack, path) {
		return nil, fmt.Errorf("cyclic $import: %v -> %s", stack, path)
	}
	stack = append(stack, path)

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading fragment: %w", err)
	}

	var doc map[string]any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parsing fragment %s: %w", path, err)
	}

	if err := resolveImports(doc, dir, stack); err != nil {
		return nil, err
	}

	return doc, nil
}

// resolveImports walks every nested mapping looking for the directive key.
// Arrays are not traversed — directives live in mappings only.
func resolveImports(node map[string]any, dir string, stack []string) error {
	for key, value := range node {
		if nested, ok := value.(map[string]any); ok {
			if err := resolveImports(nested, dir, stack); err != nil {
				return err
			}
			continue
		}

		if key != importKey {
			continue
		}

		for _, file := range importList(value) {
			fragment, err := loadFragment(filepath.Join(dir, file), dir, stack)
			if err != nil {
				return err
			}
			merge(node, fragment)
		}

		delete(node, importKey)
	}

	return nil
}

// importList normalises the directive value: a single path or a list of
// paths both become a slice.
func importList(value any) []string {
	switch v := value.(type) {
	case string:
		return []string{v}
	case []any:
		files := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				files = append(files, s)
			}
		}
		return files
	}
	return nil
}

// merge deep-merges src into target: mappings merge recursively, everything
// else (scalars, arrays) overwrites.
func merge(target, src map[string]any) {
	for key, value := range src {
		targetMap, targetOK := target[key].(map[string]any)
		srcMap, srcOK := value.(map[string]any)
		if targetOK && srcOK {
			merge(targetMap, srcMap)
			continue
		}
		target[key] = value
	}
}
