package manifest

import (
	"slices"
	"strings"

	"github.com/matzehuels/shaderport/pkg/types"
)

// Query narrows variant selection. Zero fields are ignored.
type Query struct {
	Input     types.Type // type of the single input, for io-pair lookup
	Output    types.Type // type of the single output
	Signature string     // exact "in[...]|out[...]" signature
}

func (q Query) key(node string) string {
	return node + "|" + string(q.Input) + "|" + string(q.Output) + "|" + q.Signature
}

// Select picks the best node definition for node.
//
// Candidates come from the first non-empty stage of: exact signature, input
// to output type pair, output type alone, every variant of node. The
// candidates are sorted and deduplicated; the first one that is not a
// half-precision variant wins, otherwise the first one.
//
// A node argument that already names a definition selects itself.
func (m *Manifest) Select(node string, q Query) (string, bool) {
	if m == nil || node == "" {
		return "", false
	}
	if _, ok := m.nodes[node]; ok {
		return node, true
	}
	key := q.key(node)
	if m.memo != nil {
		if name, ok := m.memo.Get(key); ok {
			return name, name != ""
		}
	}
	name := m.selectUncached(node, q)
	if m.memo != nil {
		m.memo.Add(key, name)
	}
	return name, name != ""
}

// SelectDef is [Manifest.Select] returning the definition itself.
func (m *Manifest) SelectDef(node string, q Query) (*NodeDef, bool) {
	name, ok := m.Select(node, q)
	if !ok {
		return nil, false
	}
	d, ok := m.nodes[name]
	return d, ok
}

func (m *Manifest) selectUncached(node string, q Query) string {
	var candidates []string
	if q.Signature != "" {
		candidates = m.index.ByNodeSignature[node][q.Signature]
	}
	if len(candidates) == 0 && q.Input != types.None && q.Output != types.None {
		candidates = m.index.ByNodeIO[node][ioKey(types.Normalize(string(q.Input)), types.Normalize(string(q.Output)))]
	}
	if len(candidates) == 0 && q.Output != types.None {
		candidates = m.index.ByNodeOutput[node][string(types.Normalize(string(q.Output)))]
	}
	if len(candidates) == 0 {
		candidates = m.index.ByNode[node]
	}
	if len(candidates) == 0 {
		return ""
	}

	sorted := slices.Compact(slices.Sorted(slices.Values(candidates)))
	for _, name := range sorted {
		if d, ok := m.nodes[name]; ok && !d.Policy.HalfType {
			return name
		}
	}
	return sorted[0]
}

// GuessName synthesizes the conventional definition name for a node that
// has no match, e.g. ND_convert_color4_color3. The result may not exist in
// any manifest; callers must flag it.
func GuessName(node string, q Query) string {
	parts := []string{"ND", node}
	if q.Input != types.None {
		parts = append(parts, string(q.Input))
	}
	if q.Output != types.None {
		parts = append(parts, string(q.Output))
	}
	return strings.Join(parts, "_")
}
