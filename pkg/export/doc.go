// Package export drives a whole export: classify, extract, lower.
//
// [Runner.Export] classifies every material before touching a target
// graph. Any classification error aborts the run. Materials are then
// extracted and lowered one at a time, each into its own graph, texture
// cache and diagnostics sink. A fatal condition aborts the run and no
// partial materials are returned; recoverable conditions are recorded in
// the [diag.Report] and the run continues.
//
// Lowered materials are cached by the content hash of the host material,
// the manifest digest and the options that change the result. A hit
// replays the material's diagnostics into the report.
package export
