// Package classify decides whether a host material can be translated.
//
// [Material] walks the nodes reachable from the active material output
// (Surface, Volume and Displacement) and puts every node into one
// [Bucket]. Errors make the material fail; warnings are reported and, in
// strict mode, promoted to errors. Partial-support warnings are never
// promoted.
//
// Mix and math nodes are judged with [source.Passthrough], the predicate
// the resolver uses to elide them, so a node classified [Identity] is
// exactly a node the resolver skips.
package classify
