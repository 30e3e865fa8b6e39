// Package manifest loads and queries the node-definition manifest: the
// prebuilt index of every target node definition shaderport may emit.
//
// # Overview
//
// A node (for example "convert" or "image") has one or more variants, each a
// [NodeDef] with typed inputs, typed outputs and [Policy] flags. The manifest
// document carries four lookup tables keyed by node name: all variants, exact
// signature, single-input to single-output type pair, and single output type.
//
// # Loading
//
// [Load] accepts only documents whose metadata version equals
// [SchemaVersion]; anything else is a MANIFEST_SCHEMA error naming the
// expected version. A missing file is a MANIFEST_MISSING error. Both abort an
// export before any material is processed.
//
//	m, err := manifest.Load("rk_nodes_manifest.json")
//	if err != nil {
//	    return err
//	}
//
// # Selection
//
// [Manifest.Select] is pure and deterministic:
//
//	name, ok := m.Select("convert", manifest.Query{Input: types.Color4, Output: types.Color3})
//	// name == "ND_convert_color4_color3"
//
// When nothing matches, callers fall back to [GuessName] and record a
// warning instead of failing.
package manifest
