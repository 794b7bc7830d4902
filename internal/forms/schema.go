// Package forms models the dynamic product-configuration schemas produced
// by the form builder and resolves their effective field state (visible,
// enabled, filtered options) through the rules engine.
package forms

import (
	"github.com/mkraev/atelier/internal/rules"
)

// Render discriminates schema nodes.
type Render string

const (
	RenderField   Render = "field"
	RenderSection Render = "section"
	RenderTab     Render = "TAB"
)

// Node is one element of a configuration schema. Sections and tabs nest
// child nodes; fields carry options and dependencies.
type Node struct {
	Render       Render             `json:"render"`
	Name         string             `json:"name"`
	Label        string             `json:"label,omitempty"`
	DataSource   string             `json:"dataSource,omitempty"`
	Options      []rules.Option     `json:"options,omitempty"`
	Dependencies []rules.Dependency `json:"dependencies,omitempty"`
	Children     []Node             `json:"children,omitempty"`
}

// Schema is one named configuration schema tree.
type Schema struct {
	Key   string `json:"key"`
	Nodes []Node `json:"nodes"`
}

// DataSources is the catalog of named option lists fields can reference
// instead of inlining options.
type DataSources map[string][]rules.Option

// FindNode walks the tree depth-first and returns the first node with the
// given name, or nil.
func (s *Schema) FindNode(name string) *Node {
	return findNode(s.Nodes, name)
}

func findNode(nodes []Node, name string) *Node {
	for i := range nodes {
		if nodes[i].Name == name {
			return &nodes[i]
		}
		if n := findNode(nodes[i].Children, name); n != nil {
			return n
		}
	}
	return nil
}

// FieldState is the resolved presentation state of one field for a given
// form-value map.
type FieldState struct {
	Visible bool
	Enabled bool
	Options []rules.Option
}
