package sceneio

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
)

// Format identifies a scene file encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
)

// FormatForPath infers the encoding from a file extension.
// Unknown extensions default to JSON.
func FormatForPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return FormatTOML
	}
	return FormatJSON
}

// ReadSceneFile reads and decodes a scene file, inferring the format from
// the extension.
func ReadSceneFile(path string) (*Scene, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	s, err := ReadScene(f, FormatForPath(path))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return s, nil
}

// ReadScene decodes a scene from r in the given format.
func ReadScene(r io.Reader, format Format) (*Scene, error) {
	switch format {
	case FormatTOML:
		return decodeTOML(r)
	default:
		return decodeJSON(r)
	}
}

// WriteSceneFile writes a scene as indented JSON (the canonical list form,
// regardless of the shape it was read in). The file is created with 0644
// permissions.
func WriteSceneFile(s *Scene, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteScene(s, f)
}

// WriteScene writes a scene as indented JSON to w.
func WriteScene(s *Scene, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// MarshalScene converts a scene to JSON bytes.
func MarshalScene(s *Scene) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteScene(s, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// =============================================================================
// JSON decoding: list or map form
// =============================================================================

func decodeJSON(r io.Reader) (*Scene, error) {
	var raw struct {
		Name      string          `json:"name"`
		Reference string          `json:"reference"`
		Nodes     json.RawMessage `json:"nodes"`
		Edges     json.RawMessage `json:"edges"`
	}
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, err
	}

	s := &Scene{Name: raw.Name, Reference: raw.Reference}

	if len(raw.Nodes) > 0 {
		nodes, err := decodeJSONNodes(raw.Nodes)
		if err != nil {
			return nil, fmt.Errorf("nodes: %w", err)
		}
		s.Nodes = nodes
	}
	if len(raw.Edges) > 0 {
		edges, err := decodeJSONEdges(raw.Edges)
		if err != nil {
			return nil, fmt.Errorf("edges: %w", err)
		}
		s.Edges = edges
	}
	return s, nil
}

func decodeJSONNodes(raw json.RawMessage) ([]Node, error) {
	if jsonShape(raw) == '[' {
		var nodes []Node
		if err := json.Unmarshal(raw, &nodes); err != nil {
			return nil, err
		}
		return nodes, nil
	}

	var byID map[string]Node
	if err := json.Unmarshal(raw, &byID); err != nil {
		return nil, err
	}
	return nodesFromMap(byID), nil
}

func decodeJSONEdges(raw json.RawMessage) ([]Edge, error) {
	if jsonShape(raw) == '[' {
		var edges []Edge
		if err := json.Unmarshal(raw, &edges); err != nil {
			return nil, err
		}
		return edges, nil
	}

	var bySource map[string][]Edge
	if err := json.Unmarshal(raw, &bySource); err != nil {
		return nil, err
	}
	return edgesFromMap(bySource), nil
}

// jsonShape returns the first non-space byte of a JSON value.
func jsonShape(raw json.RawMessage) byte {
	for _, b := range raw {
		switch b {
		case ' ', '\t', '\n', '\r':
			continue
		}
		return b
	}
	return 0
}

// =============================================================================
// TOML decoding: list or map form
// =============================================================================

func decodeTOML(r io.Reader) (*Scene, error) {
	var raw struct {
		Name      string         `toml:"name"`
		Reference string         `toml:"reference"`
		Nodes     toml.Primitive `toml:"nodes"`
		Edges     toml.Primitive `toml:"edges"`
	}
	md, err := toml.NewDecoder(r).Decode(&raw)
	if err != nil {
		return nil, err
	}

	s := &Scene{Name: raw.Name, Reference: raw.Reference}

	// Array-of-tables form first, then ID-keyed table form.
	if md.IsDefined("nodes") {
		var nodeList []Node
		if err := md.PrimitiveDecode(raw.Nodes, &nodeList); err == nil {
			s.Nodes = nodeList
		} else {
			var byID map[string]Node
			if err := md.PrimitiveDecode(raw.Nodes, &byID); err != nil {
				return nil, fmt.Errorf("nodes: %w", err)
			}
			s.Nodes = nodesFromMap(byID)
		}
	}

	if md.IsDefined("edges") {
		var edgeList []Edge
		if err := md.PrimitiveDecode(raw.Edges, &edgeList); err == nil {
			s.Edges = edgeList
		} else {
			var bySource map[string][]Edge
			if err := md.PrimitiveDecode(raw.Edges, &bySource); err != nil {
				return nil, fmt.Errorf("edges: %w", err)
			}
			s.Edges = edgesFromMap(bySource)
		}
	}
	return s, nil
}

// =============================================================================
// Map-form normalization
// =============================================================================

func nodesFromMap(byID map[string]Node) []Node {
	ids := slices.Sorted(maps.Keys(byID))
	nodes := make([]Node, len(ids))
	for i, id := range ids {
		n := byID[id]
		n.ID = id
		nodes[i] = n
	}
	return nodes
}

func edgesFromMap(bySource map[string][]Edge) []Edge {
	sources := slices.Sorted(maps.Keys(bySource))
	var edges []Edge
	for _, src := range sources {
		for _, e := range bySource[src] {
			e.From = src
			edges = append(edges, e)
		}
	}
	return edges
}
