// Package lower compiles expressions into a target graph.
//
// A [Lowerer] owns one material: its [target.Material], a [TextureCache]
// and a diagnostics sink. [Lowerer.Lower] emits the nodes behind an
// expression and returns either a literal or a graph output;
// [Lowerer.Bind] wires the result into a surface input.
//
// Lowering selects node definitions from the manifest, inserts exactly one
// convert node per type mismatch, swizzles single channels out of
// multi-channel fetches, and shares repeated subexpressions by their
// structural key. Texture reads with the same fetch key are emitted once.
//
// Manifest policies are enforced here: definitions omitted from the
// target are skipped, fallback definitions are recorded, and KTX-only
// image definitions skip textures that are not KTX files.
package lower
