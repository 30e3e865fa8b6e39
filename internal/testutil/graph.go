package testutil

import (
	"testing"

	"github.com/matzehuels/shaderport/pkg/source"
	"github.com/matzehuels/shaderport/pkg/types"
)

// Graph builds a host node tree for tests. Link failures fail the test.
type Graph struct {
	Tree *source.Tree
	tb   testing.TB
}

// NewGraph creates an empty graph.
func NewGraph(tb testing.TB, name string) *Graph {
	tb.Helper()
	return &Graph{Tree: source.NewTree(name), tb: tb}
}

// S is shorthand for [source.Sock].
func S(name, typ string, def types.Value) *source.Socket { return source.Sock(name, typ, def) }

// Add appends a node with the given sockets.
func (g *Graph) Add(name, typ string, ins, outs []*source.Socket, p source.Params) *source.Node {
	return g.Tree.AddNode(&source.Node{Name: name, Type: typ, Inputs: ins, Outputs: outs, Params: p})
}

// Link connects from:out to to:in.
func (g *Graph) Link(from *source.Node, out string, to *source.Node, in string) {
	g.tb.Helper()
	if err := g.Tree.Connect(from, out, to, in); err != nil {
		g.tb.Fatalf("link: %v", err)
	}
}

// LinkAt connects from:out to the i-th input of to.
func (g *Graph) LinkAt(from *source.Node, out string, to *source.Node, i int) {
	g.tb.Helper()
	o, s := from.Output(out), to.InputAt(i)
	if o == nil || s == nil {
		g.tb.Fatalf("link %s:%s -> %s[%d]: unknown socket", from.Name, out, to.Name, i)
	}
	s.Link = &source.Link{Node: from, Socket: o}
}

// Material wraps the graph in a node-based material.
func (g *Graph) Material(name, blend string) *source.Material {
	return &source.Material{Name: name, UseNodes: true, BlendMethod: blend, DiffuseColor: [4]float64{0.8, 0.8, 0.8, 1}, Tree: g.Tree}
}

// Principled adds a principled BSDF with the host's default literals.
func (g *Graph) Principled(name string) *source.Node {
	return g.Add(name, "BSDF_PRINCIPLED", []*source.Socket{
		S("Base Color", "RGBA", types.Tuple(0.8, 0.8, 0.8, 1)),
		S("Metallic", "VALUE", types.Num(0)),
		S("Roughness", "VALUE", types.Num(0.5)),
		S("IOR", "VALUE", types.Num(1.45)),
		S("Alpha", "VALUE", types.Num(1)),
		S("Normal", "VECTOR", types.Tuple(0, 0, 0)),
		S("Specular IOR Level", "VALUE", types.Num(0.5)),
		S("Coat Weight", "VALUE", types.Num(0)),
		S("Coat Roughness", "VALUE", types.Num(0.03)),
		S("Coat Normal", "VECTOR", types.Tuple(0, 0, 0)),
		S("Emission Color", "RGBA", types.Tuple(1, 1, 1, 1)),
		S("Emission Strength", "VALUE", types.Num(0)),
	}, []*source.Socket{S("BSDF", "SHADER", types.Value{})}, source.Params{})
}

// Emission adds an emission shader.
func (g *Graph) Emission(name string, strength float64) *source.Node {
	return g.Add(name, "EMISSION", []*source.Socket{
		S("Color", "RGBA", types.Tuple(1, 1, 1, 1)),
		S("Strength", "VALUE", types.Num(strength)),
	}, []*source.Socket{S("Emission", "SHADER", types.Value{})}, source.Params{})
}

// Output adds an active material output and links shader into Surface.
func (g *Graph) Output(name string, shader *source.Node) *source.Node {
	n := g.Add(name, "OUTPUT_MATERIAL", []*source.Socket{
		S("Surface", "SHADER", types.Value{}),
		S("Volume", "SHADER", types.Value{}),
		S("Displacement", "VECTOR", types.Value{}),
	}, nil, source.Params{ActiveOutput: true})
	if shader != nil {
		g.Link(shader, shader.OutputAt(0).Name, n, "Surface")
	}
	return n
}

// Image adds an image texture reading path.
func (g *Graph) Image(name, path, colorspace string) *source.Node {
	return g.Add(name, "TEX_IMAGE",
		[]*source.Socket{S("Vector", "VECTOR", types.Value{})},
		[]*source.Socket{S("Color", "RGBA", types.Value{}), S("Alpha", "VALUE", types.Value{})},
		source.Params{Image: &source.Image{Path: path, ColorSpace: colorspace}})
}

// RGB adds a color constant.
func (g *Graph) RGB(name string, r, gr, b float64) *source.Node {
	return g.Add(name, "RGB", nil, []*source.Socket{S("Color", "RGBA", types.Tuple(r, gr, b, 1))}, source.Params{})
}

// Value adds a scalar constant.
func (g *Graph) Value(name string, v float64) *source.Node {
	return g.Add(name, "VALUE", nil, []*source.Socket{S("Value", "VALUE", types.Num(v))}, source.Params{})
}

// Reroute adds a reroute node.
func (g *Graph) Reroute(name string) *source.Node {
	return g.Add(name, "REROUTE",
		[]*source.Socket{S("Input", "RGBA", types.Value{})},
		[]*source.Socket{S("Output", "RGBA", types.Value{})}, source.Params{})
}

// Mix adds a color mix node with an unlinked factor.
func (g *Graph) Mix(name, blend string, fac float64) *source.Node {
	return g.Add(name, "MIX", []*source.Socket{
		S("Factor", "VALUE", types.Num(fac)),
		S("A", "RGBA", types.Tuple(0.5, 0.5, 0.5, 1)),
		S("B", "RGBA", types.Tuple(0.5, 0.5, 0.5, 1)),
	}, []*source.Socket{S("Result", "RGBA", types.Value{})}, source.Params{BlendType: blend, DataType: "RGBA"})
}

// Math adds a math node with two literal operands.
func (g *Graph) Math(name, op string, a, b float64) *source.Node {
	return g.Add(name, "MATH", []*source.Socket{
		S("Value", "VALUE", types.Num(a)),
		S("Value", "VALUE", types.Num(b)),
	}, []*source.Socket{S("Value", "VALUE", types.Value{})}, source.Params{Operation: op})
}

// Separate adds a separate-color node.
func (g *Graph) Separate(name string) *source.Node {
	return g.Add(name, "SEPARATE_COLOR",
		[]*source.Socket{S("Color", "RGBA", types.Tuple(0.8, 0.8, 0.8, 1))},
		[]*source.Socket{S("Red", "VALUE", types.Value{}), S("Green", "VALUE", types.Value{}),
			S("Blue", "VALUE", types.Value{}), S("Alpha", "VALUE", types.Value{})},
		source.Params{Mode: "RGB"})
}

// NormalMap adds a tangent-space normal map node.
func (g *Graph) NormalMap(name string, strength float64) *source.Node {
	return g.Add(name, "NORMAL_MAP", []*source.Socket{
		S("Strength", "VALUE", types.Num(strength)),
		S("Color", "RGBA", types.Tuple(0.5, 0.5, 1, 1)),
	}, []*source.Socket{S("Normal", "VECTOR", types.Value{})}, source.Params{Space: "TANGENT"})
}

// GroupInput adds a group input node exposing outs.
func (g *Graph) GroupInput(name string, outs ...string) *source.Node {
	socks := make([]*source.Socket, len(outs))
	for i, o := range outs {
		socks[i] = S(o, "RGBA", types.Value{})
	}
	return g.Add(name, "GROUP_INPUT", nil, socks, source.Params{})
}

// GroupOutput adds an active group output node consuming ins.
func (g *Graph) GroupOutput(name string, ins ...string) *source.Node {
	socks := make([]*source.Socket, len(ins))
	for i, in := range ins {
		socks[i] = S(in, "RGBA", types.Value{})
	}
	return g.Add(name, "GROUP_OUTPUT", socks, nil, source.Params{ActiveOutput: true})
}

// Group adds a group node instancing sub. Inputs and outputs are RGBA
// sockets named like the group's interface.
func (g *Graph) Group(name string, sub *source.Tree, ins, outs []string) *source.Node {
	in := make([]*source.Socket, len(ins))
	for i, s := range ins {
		in[i] = S(s, "RGBA", types.Tuple(0, 0, 0, 1))
	}
	out := make([]*source.Socket, len(outs))
	for i, s := range outs {
		out[i] = S(s, "RGBA", types.Value{})
	}
	return g.Add(name, "GROUP", in, out, source.Params{Group: sub})
}
