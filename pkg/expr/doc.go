// Package expr defines the expression IR that sits between socket
// resolution and graph lowering.
//
// An [Expr] is one of four value types: [Constant] literals, [Texture]
// leaves with sampling metadata, [Node] applications of a target node
// definition to named argument expressions, and [Unresolved] markers that
// carry the provenance [Chain] of a resolution gap. Expressions are acyclic
// and never mutated after construction.
//
// [Key] gives every expression a structural identity used by lowering to
// share repeated subexpressions; [Texture.FetchKey] identifies the image
// read alone so one fetch can serve several channels.
package expr
