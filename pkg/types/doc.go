// Package types implements the small type lattice shared by the resolver and
// the lowering stage: canonical type tags, literal values, arity coercion and
// parsing of declared defaults.
//
// # Type tags
//
// [Normalize] folds synonymous spellings onto one canonical [Type]. Half
// precision types compare equal to their full precision counterparts:
//
//	types.Normalize("half3") == types.Color3
//
// # Literals
//
// A [Value] is immutable. [Coerce] reshapes numeric literals when a consumer
// declares a different arity, for example a color3 wired into a color4 input
// gains an alpha of 1.0:
//
//	types.Coerce(types.Tuple(0.8, 0.1, 0.1), 4) // 0.8, 0.1, 0.1, 1
package types
