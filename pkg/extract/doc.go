// Package extract reads the surface of a host material into anchors.
//
// An anchor is one input of the target surface shader together with the
// expression feeding it: a literal for an unlinked socket, or the result
// of resolving the linked socket upstream. [Extractor.Extract] picks the
// surface kind first:
//
//   - [KindPBR] for a principled shader,
//   - [KindUnlit] for an emission shader, or any shader when unlit output
//     is forced,
//   - [KindRKGroup] for an authored target group wired as the surface,
//   - [KindSimple] for materials without a node tree.
//
// Anchors whose link cannot be resolved are omitted, so the surface input
// keeps its declared default, and are reported in [Material.Unresolved].
package extract
