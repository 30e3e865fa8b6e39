package target

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/shaderport/pkg/errors"
	"github.com/matzehuels/shaderport/pkg/types"
)

type graphDoc struct {
	Nodes       []nodeDoc `json:"nodes"`
	Connections []connDoc `json:"connections"`
	Output      *portDoc  `json:"output,omitempty"`
}

type nodeDoc struct {
	Name    string                 `json:"name"`
	NodeDef string                 `json:"nodedef"`
	Inputs  map[string]types.Value `json:"inputs,omitempty"`
}

type connDoc struct {
	FromNode   string `json:"from_node"`
	FromOutput string `json:"from_output"`
	ToNode     string `json:"to_node"`
	ToInput    string `json:"to_input"`
}

type portDoc struct {
	Node   string `json:"node"`
	Output string `json:"output"`
}

// MarshalJSON writes the graph with nodes referenced by name. Literals on
// connected inputs are never written.
func (g *Graph) MarshalJSON() ([]byte, error) {
	doc := graphDoc{Nodes: make([]nodeDoc, len(g.nodes)), Connections: make([]connDoc, len(g.conns))}
	for i, n := range g.nodes {
		inputs := cloneInputs(n.Inputs)
		for _, c := range g.conns {
			if c.To == NodeHandle(i) {
				delete(inputs, c.ToInput)
			}
		}
		doc.Nodes[i] = nodeDoc{Name: n.Name, NodeDef: n.NodeDef, Inputs: inputs}
	}
	for i, c := range g.conns {
		doc.Connections[i] = connDoc{
			FromNode: g.Name(c.From), FromOutput: c.FromOutput,
			ToNode: g.Name(c.To), ToInput: c.ToInput,
		}
	}
	if g.output != nil {
		doc.Output = &portDoc{Node: g.Name(g.output.Node), Output: g.output.Name}
	}
	return json.Marshal(doc)
}

// UnmarshalJSON decodes a graph written by [Graph.MarshalJSON]. Names
// that do not resolve fail with [errors.ErrCodeInvalidTargetGraph].
func (g *Graph) UnmarshalJSON(data []byte) error {
	var doc graphDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	out := New()
	for _, nd := range doc.Nodes {
		if _, dup := out.names[nd.Name]; dup {
			return errors.New(errors.ErrCodeInvalidTargetGraph, "duplicate node name %q", nd.Name)
		}
		out.names[nd.Name] = 0
		inputs := nd.Inputs
		if inputs == nil {
			inputs = map[string]types.Value{}
		}
		out.nodes = append(out.nodes, NodeInstance{Name: nd.Name, NodeDef: nd.NodeDef, Inputs: inputs})
	}
	lookup := func(name string) (NodeHandle, error) {
		h, ok := out.Lookup(name)
		if !ok {
			return NoNode, errors.New(errors.ErrCodeInvalidTargetGraph, "unknown node %q", name)
		}
		return h, nil
	}
	for _, cd := range doc.Connections {
		from, err := lookup(cd.FromNode)
		if err != nil {
			return err
		}
		to, err := lookup(cd.ToNode)
		if err != nil {
			return err
		}
		out.conns = append(out.conns, Connection{From: from, FromOutput: cd.FromOutput, To: to, ToInput: cd.ToInput})
	}
	if doc.Output != nil {
		h, err := lookup(doc.Output.Node)
		if err != nil {
			return err
		}
		out.output = &Output{Node: h, Name: doc.Output.Output}
	}
	if err := out.Validate(); err != nil {
		return err
	}
	*g = *out
	return nil
}

// WriteJSON writes g as indented JSON.
func WriteJSON(g *Graph, w io.Writer) error {
	data, err := json.MarshalIndent(g, "", "  ")
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	_, err = w.Write(append(data, '\n'))
	return err
}

// ReadJSON decodes a graph.
func ReadJSON(r io.Reader) (*Graph, error) {
	g := New()
	if err := json.NewDecoder(r).Decode(g); err != nil {
		return nil, err
	}
	return g, nil
}

// ReadFile decodes the graph stored at path.
func ReadFile(path string) (*Graph, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "graph file %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSON(f)
}
