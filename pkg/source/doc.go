// Package source is the read-only view of host shading graphs that every
// translation stage walks.
//
// # Graph Model
//
// A [Material] owns a [Tree] of [Node] values. Each node carries a closed
// [Kind] derived from its host type tag, typed input and output sockets and
// node-specific [Params]. An input [Socket] is either linked to one upstream
// output or holds a default literal. Group nodes reference a shared subtree
// through [Params.Group]; subtrees tagged with an rk_node_id (or named with
// an "RK_" prefix) stand for an authored target node.
//
// Trees come from the host exporter's JSON document via [ReadMaterials], or
// are assembled directly:
//
//	t := source.NewTree("Paint")
//	rgb := t.AddNode(&source.Node{Name: "RGB", Type: "RGB",
//	    Outputs: []*source.Socket{source.Sock("Color", "RGBA", types.Tuple(1, 0, 0, 1))}})
//
// # Identity Elision
//
// [Passthrough] decides which mix and math nodes reduce to one of their
// operands. The resolver and the compatibility classifier both call it, so
// they never disagree on what counts as a no-op.
package source
