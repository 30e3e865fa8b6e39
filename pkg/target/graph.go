package target

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/matzehuels/shaderport/pkg/errors"
	"github.com/matzehuels/shaderport/pkg/types"
)

// NodeHandle addresses a node of a [Graph].
type NodeHandle int

// NoNode is the zero handle of an absent node.
const NoNode NodeHandle = -1

// DefaultOutput is the output name of single-output definitions.
const DefaultOutput = "out"

// Output names one output of a node; it is the source of a connection.
type Output struct {
	Node NodeHandle
	Name string
}

// Out returns the default output of h.
func Out(h NodeHandle) Output { return Output{Node: h, Name: DefaultOutput} }

// Valid reports whether o points at a node.
func (o Output) Valid() bool { return o.Node >= 0 }

// NodeInstance is one emitted node.
type NodeInstance struct {
	Name    string
	NodeDef string
	Inputs  map[string]types.Value // literal inputs
}

// Connection feeds input ToInput of To from an output.
type Connection struct {
	From       NodeHandle
	FromOutput string
	To         NodeHandle
	ToInput    string
}

// Graph is the lowered graph of one material. The zero value is not
// usable; call [New].
type Graph struct {
	nodes  []NodeInstance
	conns  []Connection
	names  map[string]int
	output *Output
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{names: make(map[string]int)}
}

var invalidChars = regexp.MustCompile(`[^A-Za-z0-9_]`)

// SanitizeName makes s a valid node name: characters outside
// [A-Za-z0-9_] become underscores and names not starting with a letter get
// an "n_" prefix.
func SanitizeName(s string) string {
	s = invalidChars.ReplaceAllString(s, "_")
	if s == "" || !isLetter(s[0]) {
		s = "n_" + s
	}
	return s
}

func isLetter(c byte) bool { return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') }

// AddNode appends a node instantiating nodedef. The name is derived from
// hint and made unique with a counter suffix.
func (g *Graph) AddNode(nodedef, hint string) NodeHandle {
	if hint == "" {
		hint = strings.TrimPrefix(nodedef, "ND_")
	}
	base := SanitizeName(hint)
	name := base
	for {
		if _, taken := g.names[name]; !taken {
			break
		}
		g.names[base]++
		name = fmt.Sprintf("%s_%d", base, g.names[base])
	}
	g.names[name] = 0
	g.nodes = append(g.nodes, NodeInstance{Name: name, NodeDef: nodedef, Inputs: map[string]types.Value{}})
	return NodeHandle(len(g.nodes) - 1)
}

// Len returns the number of nodes.
func (g *Graph) Len() int { return len(g.nodes) }

func (g *Graph) valid(h NodeHandle) bool { return h >= 0 && int(h) < len(g.nodes) }

// Node returns a copy of the node at h.
func (g *Graph) Node(h NodeHandle) (NodeInstance, bool) {
	if !g.valid(h) {
		return NodeInstance{}, false
	}
	n := g.nodes[h]
	n.Inputs = cloneInputs(n.Inputs)
	return n, true
}

// Nodes returns copies of every node in emission order.
func (g *Graph) Nodes() []NodeInstance {
	out := make([]NodeInstance, len(g.nodes))
	for i := range g.nodes {
		out[i], _ = g.Node(NodeHandle(i))
	}
	return out
}

// Connections returns the connections in emission order.
func (g *Graph) Connections() []Connection { return slices.Clone(g.conns) }

// Name returns the name of the node at h, or "".
func (g *Graph) Name(h NodeHandle) string {
	if !g.valid(h) {
		return ""
	}
	return g.nodes[h].Name
}

// Lookup returns the handle of the node called name.
func (g *Graph) Lookup(name string) (NodeHandle, bool) {
	for i, n := range g.nodes {
		if n.Name == name {
			return NodeHandle(i), true
		}
	}
	return NoNode, false
}

// SetInput sets a literal input. Connected inputs are rejected.
func (g *Graph) SetInput(h NodeHandle, input string, v types.Value) error {
	if !g.valid(h) {
		return errors.New(errors.ErrCodeInvalidTargetGraph, "set %s: invalid node handle %d", input, h)
	}
	if _, ok := g.Source(h, input); ok {
		return errors.New(errors.ErrCodeInvalidTargetGraph, "set %s.%s: input is connected", g.nodes[h].Name, input)
	}
	g.nodes[h].Inputs[input] = v
	return nil
}

// Connect feeds input of to from o, replacing any literal or earlier
// connection on that input.
func (g *Graph) Connect(o Output, to NodeHandle, input string) error {
	if !g.valid(o.Node) || !g.valid(to) {
		return errors.New(errors.ErrCodeInvalidTargetGraph, "connect %s: invalid node handle", input)
	}
	if o.Name == "" {
		o.Name = DefaultOutput
	}
	delete(g.nodes[to].Inputs, input)
	g.conns = slices.DeleteFunc(g.conns, func(c Connection) bool { return c.To == to && c.ToInput == input })
	g.conns = append(g.conns, Connection{From: o.Node, FromOutput: o.Name, To: to, ToInput: input})
	return nil
}

// Source returns the output connected to input of h.
func (g *Graph) Source(h NodeHandle, input string) (Output, bool) {
	for _, c := range g.conns {
		if c.To == h && c.ToInput == input {
			return Output{Node: c.From, Name: c.FromOutput}, true
		}
	}
	return Output{Node: NoNode}, false
}

// Consumers counts the connections reading from node h.
func (g *Graph) Consumers(h NodeHandle) int {
	n := 0
	for _, c := range g.conns {
		if c.From == h {
			n++
		}
	}
	return n
}

// SetOutput designates the graph's output.
func (g *Graph) SetOutput(o Output) error {
	if !g.valid(o.Node) {
		return errors.New(errors.ErrCodeInvalidTargetGraph, "output: invalid node handle %d", o.Node)
	}
	if o.Name == "" {
		o.Name = DefaultOutput
	}
	g.output = &o
	return nil
}

// Output returns the designated output.
func (g *Graph) Output() (Output, bool) {
	if g.output == nil {
		return Output{Node: NoNode}, false
	}
	return *g.output, true
}

// Validate checks that every connection and the output reference existing
// nodes, names are unique, and no input is both a literal and connected.
func (g *Graph) Validate() error {
	seen := make(map[string]bool, len(g.nodes))
	for _, n := range g.nodes {
		if n.Name == "" || n.NodeDef == "" {
			return errors.New(errors.ErrCodeInvalidTargetGraph, "node %q without a name or definition", n.Name)
		}
		if seen[n.Name] {
			return errors.New(errors.ErrCodeInvalidTargetGraph, "duplicate node name %q", n.Name)
		}
		seen[n.Name] = true
	}
	inputs := make(map[Connection]bool, len(g.conns))
	for _, c := range g.conns {
		if !g.valid(c.From) || !g.valid(c.To) {
			return errors.New(errors.ErrCodeInvalidTargetGraph, "connection into %s references a missing node", c.ToInput)
		}
		key := Connection{To: c.To, ToInput: c.ToInput}
		if inputs[key] {
			return errors.New(errors.ErrCodeInvalidTargetGraph, "input %s.%s connected twice", g.nodes[c.To].Name, c.ToInput)
		}
		inputs[key] = true
		if _, lit := g.nodes[c.To].Inputs[c.ToInput]; lit {
			return errors.New(errors.ErrCodeInvalidTargetGraph, "input %s.%s is both a literal and connected", g.nodes[c.To].Name, c.ToInput)
		}
	}
	if g.output != nil && !g.valid(g.output.Node) {
		return errors.New(errors.ErrCodeInvalidTargetGraph, "output references a missing node")
	}
	return nil
}

func cloneInputs(m map[string]types.Value) map[string]types.Value {
	out := make(map[string]types.Value, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
