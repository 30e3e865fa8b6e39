// Package target holds the lowered shading graph of one material.
//
// A [Graph] is an append-only arena of node instances addressed by
// [NodeHandle]. Connections are recorded as handle pairs, so graphs are
// cheap to copy and trivially serializable: [Graph.MarshalJSON] writes
// node names instead of handles.
//
//	g := target.New()
//	img := g.AddNode("ND_image_color3", "image")
//	g.SetInput(img, "file", types.Str("tex/paint.png"))
//	mix := g.AddNode("ND_mix_color3", "mix")
//	_ = g.Connect(target.Out(img), mix, "fg")
//
// An input is either a literal or a connection, never both: [Graph.Connect]
// drops any literal on the input and [Graph.SetInput] refuses a connected
// input. [Graph.Validate] checks the invariants on graphs decoded from JSON.
//
// [ToDOT] and [RenderSVG] draw a graph for inspection.
package target
