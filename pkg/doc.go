// Package pkg holds the libraries behind shaderport, a translator from host
// material node graphs to typed target shading graphs.
//
// # Overview
//
// A host material is a graph of shader, texture and utility nodes wired into
// a surface shader. The target describes its nodes in a node-definition
// manifest and wants a flat, typed graph feeding a fixed surface node.
//
// The data flow through shaderport:
//
//	host materials JSON            node-definition manifest
//	         ↓                              ↓
//	    [source] graph              [manifest] selection
//	         ↓
//	    [classify] (abort on any error)
//	         ↓
//	    [extract] surface anchors, resolved by [resolve] into [expr] trees
//	         ↓
//	    [lower] into a [target] graph, with [diag] collecting warnings
//	         ↓
//	    lowered materials JSON, DOT, SVG
//
// [export] drives the whole run and caches lowered materials through
// [cache].
//
// # Quick Start
//
//	m, err := manifest.Load("manifest.json")
//	if err != nil {
//	    return err
//	}
//	materials, err := source.ImportMaterials("scene.json")
//	if err != nil {
//	    return err
//	}
//	runner := export.NewRunner(m, nil, nil, nil)
//	res, err := runner.Export(ctx, materials, export.Options{Strict: true})
//	if err != nil {
//	    return err // res.Report still says why
//	}
//	for _, mat := range res.Materials {
//	    fmt.Println(target.ToDOT(mat.Graph, target.DOTOptions{Title: mat.Name}))
//	}
//
// # Packages
//
// [types] - Value types, literals and arity coercion shared by every stage.
//
// [manifest] - Loads the manifest, checks its schema version and selects a
// node definition for a node name and type query.
//
// [source] - The host graph: nodes, sockets, links, groups and its JSON form.
// Also holds the identity rules for mix and math nodes.
//
// [resolve] - Walks upstream from a socket through reroutes, groups and
// identities and returns an expression.
//
// [classify] - Buckets every reachable node by how the target supports it.
//
// [expr] - The expression IR: constants, texture fetches, target node calls
// and unresolved chains, with structural keys for sharing.
//
// [extract] - Picks the surface shader and resolves its anchors.
//
// [lower] - Emits target nodes for expressions, inserting converts and
// swizzles and sharing texture fetches.
//
// [target] - The lowered graph arena, its JSON form and DOT and SVG output.
//
// [diag] - Warnings, errors and per-material counts of a run.
//
// [export] - Classifies, extracts and lowers a batch of materials.
//
// [cache] - File, memory and Redis caches for lowered materials.
//
// [errors] - Coded errors and input validation.
//
// [observability] - Hooks for export and cache events.
//
// [buildinfo] - Version information stamped at build time.
package pkg
