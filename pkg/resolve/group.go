package resolve

import (
	"github.com/matzehuels/shaderport/pkg/expr"
	"github.com/matzehuels/shaderport/pkg/manifest"
	"github.com/matzehuels/shaderport/pkg/source"
	"github.com/matzehuels/shaderport/pkg/types"
)

// group resolves an output of a group node. Authored target groups become a
// node of their own; other groups are entered at their active output.
func (w *walk) group(n *source.Node, out *source.Socket, ch string, want types.Type, chain expr.Chain) expr.Expr {
	tree := n.Params.Group
	if tree == nil {
		return expr.Unresolved{Chain: chain}
	}
	if id, ok := tree.RKNodeID(); ok {
		return w.extract(w.authored(n, out, id, chain), ch)
	}

	gout := tree.ActiveOutput(source.KindGroupOutput)
	if gout == nil {
		return expr.Unresolved{Chain: chain}
	}
	in := gout.Input(out.Name)
	if in == nil {
		in = gout.InputAt(out.Index())
	}
	if !in.Linked() {
		return expr.Unresolved{Chain: chain}
	}
	w.frames = append(w.frames, n)
	defer func() { w.frames = w.frames[:len(w.frames)-1] }()
	return w.socket(in, ch, want, chain)
}

// authored builds the node for a group standing for target node id. An
// empty id is inferred from the group's name.
func (w *walk) authored(n *source.Node, out *source.Socket, id string, chain expr.Chain) expr.Expr {
	if id == "" {
		id = source.InferRKNodeID(n.Params.Group.Name)
	}
	name := id
	def, ok := w.r.manifest.SelectDef(id, manifest.Query{})
	if ok {
		name = def.Name
	}
	var args []expr.Arg
	for _, in := range n.Inputs {
		want := types.None
		if ok {
			want = def.InputType(in.Name)
		}
		var e expr.Expr
		if in.Linked() {
			e = w.socket(in, "", want, chain)
		} else if in.Default.IsNumeric() {
			e = expr.Const(in.Default)
		}
		if e != nil {
			args = append(args, expr.A(in.Name, e))
		}
	}
	typ := types.None
	if ok {
		typ = def.OutputType(out.Name)
	}
	return expr.Node{NodeDef: name, Args: args, Output: out.Name, Type: typ}
}

// groupInput continues at the outer input of the enclosing group node.
func (w *walk) groupInput(n *source.Node, out *source.Socket, ch string, want types.Type, chain expr.Chain) expr.Expr {
	g := w.frame()
	if g == nil {
		return expr.Unresolved{Chain: chain}
	}
	outer := g.Input(out.Name)
	if outer == nil {
		outer = g.InputAt(out.Index())
	}
	if outer == nil {
		return expr.Unresolved{Chain: chain}
	}
	if !outer.Linked() {
		if !outer.Default.IsNumeric() {
			return nil
		}
		return w.extract(expr.Const(outer.Default), ch)
	}

	w.frames = w.frames[:len(w.frames)-1]
	defer func() { w.frames = append(w.frames, g) }()
	return w.socket(outer, ch, want, chain)
}
