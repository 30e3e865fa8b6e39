package target

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"

	"github.com/matzehuels/shaderport/pkg/errors"
	"github.com/matzehuels/shaderport/pkg/types"
)

// Surface is the surface shader of a material: its definition and the
// wiring of each declared input, either a literal or a graph output.
type Surface struct {
	NodeDef     string
	Inputs      map[string]types.Value
	Connections map[string]Output
}

// Material is a lowered material: the graph feeding its surface and the
// surface binding itself. A material whose inputs are all literals has an
// empty graph.
type Material struct {
	Name    string
	Graph   *Graph
	Surface Surface
}

// NewMaterial creates a material with an empty graph.
func NewMaterial(name, nodedef string) *Material {
	return &Material{
		Name:  name,
		Graph: New(),
		Surface: Surface{
			NodeDef:     nodedef,
			Inputs:      map[string]types.Value{},
			Connections: map[string]Output{},
		},
	}
}

// SetInput binds a surface input to a literal.
func (m *Material) SetInput(input string, v types.Value) {
	delete(m.Surface.Connections, input)
	m.Surface.Inputs[input] = v
}

// Connect binds a surface input to a graph output.
func (m *Material) Connect(input string, o Output) error {
	if !m.Graph.valid(o.Node) {
		return errors.New(errors.ErrCodeInvalidTargetGraph, "surface input %s: invalid node handle %d", input, o.Node)
	}
	if o.Name == "" {
		o.Name = DefaultOutput
	}
	delete(m.Surface.Inputs, input)
	m.Surface.Connections[input] = o
	return nil
}

// Bound returns the surface inputs that carry a value, sorted.
func (m *Material) Bound() []string {
	names := slices.Collect(maps.Keys(m.Surface.Inputs))
	names = append(names, slices.Collect(maps.Keys(m.Surface.Connections))...)
	slices.Sort(names)
	return names
}

// Emit adds the surface node to the graph, wired with the surface's
// literals and connections, and designates it as the graph output. A graph
// that already has an output is left alone.
func (m *Material) Emit() (NodeHandle, error) {
	if o, ok := m.Graph.Output(); ok {
		return o.Node, nil
	}
	if m.Surface.NodeDef == "" {
		return NoNode, errors.New(errors.ErrCodeInvalidTargetGraph, "material %s has no surface definition", m.Name)
	}
	h := m.Graph.AddNode(m.Surface.NodeDef, m.Name+"_surface")
	for _, input := range slices.Sorted(maps.Keys(m.Surface.Inputs)) {
		if err := m.Graph.SetInput(h, input, m.Surface.Inputs[input]); err != nil {
			return NoNode, err
		}
	}
	for _, input := range slices.Sorted(maps.Keys(m.Surface.Connections)) {
		if err := m.Graph.Connect(m.Surface.Connections[input], h, input); err != nil {
			return NoNode, err
		}
	}
	return h, m.Graph.SetOutput(Out(h))
}

// Validate checks the graph and the surface wiring. A non-empty graph must
// designate its output.
func (m *Material) Validate() error {
	if m.Surface.NodeDef == "" {
		return errors.New(errors.ErrCodeInvalidTargetGraph, "material %s has no surface definition", m.Name)
	}
	if err := m.Graph.Validate(); err != nil {
		return fmt.Errorf("material %s: %w", m.Name, err)
	}
	if _, ok := m.Graph.Output(); !ok && m.Graph.Len() > 0 {
		return errors.New(errors.ErrCodeInvalidTargetGraph, "material %s: graph with %d nodes has no designated output", m.Name, m.Graph.Len())
	}
	for input, o := range m.Surface.Connections {
		if !m.Graph.valid(o.Node) {
			return errors.New(errors.ErrCodeInvalidTargetGraph, "material %s: surface input %s references a missing node", m.Name, input)
		}
		if _, lit := m.Surface.Inputs[input]; lit {
			return errors.New(errors.ErrCodeInvalidTargetGraph, "material %s: surface input %s is both a literal and connected", m.Name, input)
		}
	}
	return nil
}

type materialDoc struct {
	Name    string          `json:"name"`
	Surface surfaceDoc      `json:"surface"`
	Graph   json.RawMessage `json:"graph"`
}

type surfaceDoc struct {
	NodeDef     string                 `json:"nodedef"`
	Inputs      map[string]types.Value `json:"inputs,omitempty"`
	Connections map[string]portDoc     `json:"connections,omitempty"`
}

// MarshalJSON writes the material with connections referenced by name.
func (m *Material) MarshalJSON() ([]byte, error) {
	graph, err := json.Marshal(m.Graph)
	if err != nil {
		return nil, err
	}
	doc := materialDoc{
		Name:  m.Name,
		Graph: graph,
		Surface: surfaceDoc{
			NodeDef:     m.Surface.NodeDef,
			Inputs:      m.Surface.Inputs,
			Connections: make(map[string]portDoc, len(m.Surface.Connections)),
		},
	}
	for input, o := range m.Surface.Connections {
		doc.Surface.Connections[input] = portDoc{Node: m.Graph.Name(o.Node), Output: o.Name}
	}
	return json.Marshal(doc)
}

// UnmarshalJSON decodes a material written by [Material.MarshalJSON].
func (m *Material) UnmarshalJSON(data []byte) error {
	var doc materialDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	out := NewMaterial(doc.Name, doc.Surface.NodeDef)
	if len(doc.Graph) > 0 {
		if err := json.Unmarshal(doc.Graph, out.Graph); err != nil {
			return err
		}
	}
	for input, v := range doc.Surface.Inputs {
		out.SetInput(input, v)
	}
	for input, p := range doc.Surface.Connections {
		h, ok := out.Graph.Lookup(p.Node)
		if !ok {
			return errors.New(errors.ErrCodeInvalidTargetGraph, "surface input %s references unknown node %q", input, p.Node)
		}
		if err := out.Connect(input, Output{Node: h, Name: p.Output}); err != nil {
			return err
		}
	}
	*m = *out
	return nil
}
