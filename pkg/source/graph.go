package source

import (
	"fmt"
	"strings"

	"github.com/matzehuels/shaderport/pkg/errors"
	"github.com/matzehuels/shaderport/pkg/types"
)

// Socket is an input or output of a [Node]. An input socket is either
// linked to exactly one upstream output or holds a default literal.
type Socket struct {
	Name    string
	Type    string // host socket type: VALUE, RGBA, VECTOR, SHADER, INT, BOOLEAN
	Default types.Value
	Link    *Link

	node  *Node
	index int
}

// Link points at the upstream output feeding an input socket.
type Link struct {
	Node   *Node
	Socket *Socket
}

// Linked reports whether s is fed by an upstream output.
func (s *Socket) Linked() bool { return s != nil && s.Link != nil && s.Link.Node != nil }

// Node returns the node owning s.
func (s *Socket) Node() *Node { return s.node }

// Index returns the position of s among its node's inputs or outputs.
func (s *Socket) Index() int { return s.index }

// Image is an image datablock referenced by a texture node.
type Image struct {
	Path       string `json:"path"`
	ColorSpace string `json:"colorspace,omitempty"`
	AlphaMode  string `json:"alpha_mode,omitempty"`
	Packed     bool   `json:"packed,omitempty"`
}

// RampStop is one element of a color ramp.
type RampStop struct {
	Position float64    `json:"position"`
	Color    [4]float64 `json:"color"`
}

// Mapping is the transform of a mapping node. Rotation is in radians.
type Mapping struct {
	Translation [3]float64 `json:"translation"`
	Rotation    [3]float64 `json:"rotation"`
	Scale       [3]float64 `json:"scale"`
}

// Params carries the node-specific properties that are not sockets.
type Params struct {
	Operation     string     // MATH operation, e.g. ADD
	BlendType     string     // MIX blend type, e.g. MIX, MULTIPLY
	DataType      string     // MIX data type: FLOAT, VECTOR, RGBA
	Clamp         bool       // MATH use_clamp, MAP_RANGE clamp
	Space         string     // NORMAL_MAP space
	VectorType    string     // VECTOR_TRANSFORM vector type
	ConvertFrom   string     // VECTOR_TRANSFORM source space
	ConvertTo     string     // VECTOR_TRANSFORM target space
	RotationType  string     // VECTOR_ROTATE rotation type
	Mode          string     // COMBINE_COLOR / SEPARATE_COLOR mode
	UVMap         string     // UVMAP and TEX_IMAGE uv map name
	Image         *Image     // TEX_IMAGE / TEX_ENVIRONMENT
	Ramp          []RampStop // VALTORGB
	Curves        [][][2]float64
	Mapping       *Mapping // MAPPING
	Group         *Tree    // GROUP subtree
	ActiveOutput  bool     // OUTPUT_MATERIAL / GROUP_OUTPUT
	OutputTarget  string   // OUTPUT_MATERIAL target: ALL, EEVEE, CYCLES
}

// Node is a read-only view of one host shading node.
type Node struct {
	Name    string
	Label   string
	Kind    Kind
	Type    string // raw host tag, kept for diagnostics
	Inputs  []*Socket
	Outputs []*Socket
	Params  Params

	tree *Tree
}

// Tree returns the tree that contains n.
func (n *Node) Tree() *Tree { return n.tree }

// Input returns the first input socket named one of names. When several
// sockets share a name (mix nodes carry one per data type) a linked one is
// preferred.
func (n *Node) Input(names ...string) *Socket {
	return pickSocket(n.Inputs, names)
}

// Output returns the first output socket named one of names.
func (n *Node) Output(names ...string) *Socket {
	return pickSocket(n.Outputs, names)
}

// InputAt returns the i-th input, or nil.
func (n *Node) InputAt(i int) *Socket {
	if i < 0 || i >= len(n.Inputs) {
		return nil
	}
	return n.Inputs[i]
}

// OutputAt returns the i-th output, or nil.
func (n *Node) OutputAt(i int) *Socket {
	if i < 0 || i >= len(n.Outputs) {
		return nil
	}
	return n.Outputs[i]
}

func pickSocket(sockets []*Socket, names []string) *Socket {
	for _, name := range names {
		var first *Socket
		for _, s := range sockets {
			if s.Name != name {
				continue
			}
			if s.Linked() {
				return s
			}
			if first == nil {
				first = s
			}
		}
		if first != nil {
			return first
		}
	}
	return nil
}

// DisplayName is the name shown in diagnostics.
func (n *Node) DisplayName() string {
	if n.Name != "" {
		return n.Name
	}
	if n.Label != "" {
		return n.Label
	}
	return n.Type
}

// Label formats a provenance label, "Name (TYPE:socket)".
func Label(n *Node, s *Socket) string {
	if n == nil {
		return "Unknown"
	}
	if s != nil && s.Name != "" {
		return fmt.Sprintf("%s (%s:%s)", n.DisplayName(), n.Type, s.Name)
	}
	return fmt.Sprintf("%s (%s)", n.DisplayName(), n.Type)
}

// Tree is a node tree: a material's top-level graph or a group's subtree.
type Tree struct {
	Name  string
	Nodes []*Node
	Tags  map[string]string
}

// NewTree creates an empty tree.
func NewTree(name string) *Tree {
	return &Tree{Name: name, Tags: map[string]string{}}
}

// AddNode appends n to t and takes ownership of its sockets. A zero Kind is
// derived from n.Type.
func (t *Tree) AddNode(n *Node) *Node {
	n.tree = t
	if n.Kind == KindUnknown {
		n.Kind = KindOf(n.Type)
	}
	n.Type = strings.ToUpper(n.Type)
	for i, s := range n.Inputs {
		s.node, s.index = n, i
	}
	for i, s := range n.Outputs {
		s.node, s.index = n, i
	}
	t.Nodes = append(t.Nodes, n)
	return n
}

// Connect links output out of from into input in of to.
func (t *Tree) Connect(from *Node, out string, to *Node, in string) error {
	o, i := from.Output(out), to.Input(in)
	if o == nil || i == nil {
		return errors.New(errors.ErrCodeInvalidGraph, "link %s:%s -> %s:%s references an unknown socket",
			from.Name, out, to.Name, in)
	}
	i.Link = &Link{Node: from, Socket: o}
	return nil
}

// Sock creates an unowned socket for [Tree.AddNode].
func Sock(name, typ string, def types.Value) *Socket {
	return &Socket{Name: name, Type: strings.ToUpper(typ), Default: def}
}

// Node returns the node called name.
func (t *Tree) Node(name string) *Node {
	for _, n := range t.Nodes {
		if n.Name == name {
			return n
		}
	}
	return nil
}

// NodesOf returns the nodes of kind k in declaration order.
func (t *Tree) NodesOf(k Kind) []*Node {
	var out []*Node
	for _, n := range t.Nodes {
		if n.Kind == k {
			out = append(out, n)
		}
	}
	return out
}

// ActiveOutput returns the active node of kind k (material or group
// output), falling back to the first one.
func (t *Tree) ActiveOutput(k Kind) *Node {
	outs := t.NodesOf(k)
	for _, n := range outs {
		if n.Params.ActiveOutput {
			return n
		}
	}
	if len(outs) > 0 {
		return outs[0]
	}
	return nil
}

// RKNodeIDTag is the tree tag naming an authored target node.
const RKNodeIDTag = "rk_node_id"

// RKNodeID returns the target node id of an authored group tree. Trees
// without the tag qualify by an "RK_" name prefix; the id is then empty
// and must be inferred from the name.
func (t *Tree) RKNodeID() (string, bool) {
	if t == nil {
		return "", false
	}
	if id := t.Tags[RKNodeIDTag]; id != "" {
		return id, true
	}
	return "", strings.HasPrefix(strings.TrimLeft(t.Name, "."), "RK_")
}

// IsRKGroup reports whether n is a group node over an authored target subtree.
func IsRKGroup(n *Node) bool {
	if n == nil || n.Kind != KindGroup {
		return false
	}
	_, ok := n.Params.Group.RKNodeID()
	return ok
}

// InferRKNodeID maps a group tree name onto a surface node id when the
// tree carries no explicit tag.
func InferRKNodeID(groupName string) string {
	name := strings.ToLower(strings.TrimLeft(groupName, "."))
	switch {
	case strings.Contains(name, "pbr surface"), strings.HasPrefix(name, "rk_pbr"):
		return "realitykit_pbr_surfaceshader"
	case strings.Contains(name, "unlit surface"), strings.HasPrefix(name, "rk_unlit"):
		return "realitykit_unlit_surfaceshader"
	}
	return groupName
}

// Material is one host material.
type Material struct {
	Name           string
	UseNodes       bool
	DiffuseColor   [4]float64
	BlendMethod    string // OPAQUE, CLIP, HASHED, BLEND
	AlphaThreshold float64
	Tree           *Tree
}

// Opaque reports whether the material ignores alpha.
func (m *Material) Opaque() bool {
	return m.BlendMethod == "" || strings.EqualFold(m.BlendMethod, "OPAQUE")
}

// SurfaceNode returns the shader linked into the active material output's
// Surface socket.
func (m *Material) SurfaceNode() *Node {
	if m.Tree == nil {
		return nil
	}
	out := m.Tree.ActiveOutput(KindOutputMaterial)
	if out == nil {
		return nil
	}
	s := out.Input("Surface")
	if !s.Linked() {
		return nil
	}
	return s.Link.Node
}

// Images returns the image datablocks referenced by m's tree and the group
// trees nested in it, in visit order. Each image appears once.
func (m *Material) Images() []*Image {
	var (
		out   []*Image
		seen  = map[*Image]bool{}
		trees = map[*Tree]bool{}
	)
	var walk func(t *Tree)
	walk = func(t *Tree) {
		if t == nil || trees[t] {
			return
		}
		trees[t] = true
		for _, n := range t.Nodes {
			if img := n.Params.Image; img != nil && !seen[img] {
				seen[img] = true
				out = append(out, img)
			}
			walk(n.Params.Group)
		}
	}
	walk(m.Tree)
	return out
}
