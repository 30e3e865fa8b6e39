package manifest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/matzehuels/shaderport/pkg/cache"
	"github.com/matzehuels/shaderport/pkg/errors"
	"github.com/matzehuels/shaderport/pkg/types"
)

// SchemaVersion is the only manifest schema this build accepts.
const SchemaVersion = "2.0.0"

// selectMemoSize bounds the selection memo. Selection is pure, so the memo
// never changes observable results.
const selectMemoSize = 2048

// Port is a declared input or output of a node definition.
type Port struct {
	Name    string   `json:"name"`
	Type    string   `json:"type"`
	Value   string   `json:"value,omitempty"`
	Uniform bool     `json:"uniform,omitempty"`
	Enum    []string `json:"enum,omitempty"`
}

// Policy flags attached to a node definition.
type Policy struct {
	OmittedInDefs bool `json:"omitted_in_defs"`
	RequiresKTX   bool `json:"requires_ktx"`
	HalfType      bool `json:"half_type"`
	Fallback      bool `json:"fallback"`
}

// NodeDef is one variant of a target node.
type NodeDef struct {
	Name       string `json:"nodedef_name"`
	NodeID     string `json:"node_id"`
	Node       string `json:"node_name"`
	Group      string `json:"nodegroup,omitempty"`
	Inputs     []Port `json:"inputs"`
	Outputs    []Port `json:"outputs"`
	Signature  string `json:"signature"`
	Policy     Policy `json:"policy"`
	SourceFile string `json:"source_file,omitempty"`
}

// Key returns the node name this variant is indexed under.
func (d *NodeDef) Key() string {
	if d.Node != "" {
		return d.Node
	}
	if d.NodeID != "" {
		return d.NodeID
	}
	return strings.TrimPrefix(d.Name, "ND_")
}

// Input returns the declared input called name.
func (d *NodeDef) Input(name string) (Port, bool) {
	for _, p := range d.Inputs {
		if p.Name == name {
			return p, true
		}
	}
	return Port{}, false
}

// InputType returns the canonical type of input name, or [types.None].
func (d *NodeDef) InputType(name string) types.Type {
	if p, ok := d.Input(name); ok {
		return types.Normalize(p.Type)
	}
	return types.None
}

// OutputType returns the canonical type of output name. An empty name
// selects the first output.
func (d *NodeDef) OutputType(name string) types.Type {
	for _, p := range d.Outputs {
		if name == "" || p.Name == name {
			return types.Normalize(p.Type)
		}
	}
	return types.None
}

// Default returns the parsed default literal of input name.
func (d *NodeDef) Default(name string) (types.Value, bool) {
	p, ok := d.Input(name)
	if !ok {
		return types.Value{}, false
	}
	return types.DefaultValue(p.Type, p.Value)
}

// Index holds the precomputed lookup tables of a manifest.
type Index struct {
	ByNode          map[string][]string            `json:"by_node"`
	ByNodeSignature map[string]map[string][]string `json:"by_node_signature"`
	ByNodeIO        map[string]map[string][]string `json:"by_node_io"`
	ByNodeOutput    map[string]map[string][]string `json:"by_node_output"`
}

// Metadata describes where a manifest came from.
type Metadata struct {
	Version     string   `json:"version"`
	SourceFiles []string `json:"source_files,omitempty"`
}

type document struct {
	Metadata Metadata            `json:"metadata"`
	Nodes    map[string]*NodeDef `json:"nodes"`
	Index    *Index              `json:"index"`
}

// Manifest is an immutable index of target node definitions.
// It is safe for concurrent use.
type Manifest struct {
	meta   Metadata
	nodes  map[string]*NodeDef
	index  Index
	digest string
	memo   *lru.Cache[string, string]
}

// Load reads a manifest from path. A missing file and a schema mismatch are
// distinct errors; both are fatal for an export.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.New(errors.ErrCodeManifestMissing, "node-definition manifest missing: %s", path)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "read manifest %s", path)
	}
	m, err := Read(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return m, nil
}

// Read decodes a manifest document. Missing indices are rebuilt from the
// node table.
func Read(r io.Reader) (*Manifest, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "read manifest")
	}
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "decode manifest")
	}
	if doc.Metadata.Version != SchemaVersion {
		return nil, errors.New(errors.ErrCodeManifestSchema,
			"unsupported manifest schema %q (expected %q)", doc.Metadata.Version, SchemaVersion)
	}
	if doc.Nodes == nil {
		return nil, errors.New(errors.ErrCodeInvalidManifest, "manifest has no nodes table")
	}
	for name, def := range doc.Nodes {
		if def == nil {
			return nil, errors.New(errors.ErrCodeInvalidManifest, "nodedef %s is empty", name)
		}
		if def.Name == "" {
			def.Name = name
		}
	}

	m := newManifest(doc.Metadata, doc.Nodes)
	if doc.Index != nil && len(doc.Index.ByNode) > 0 {
		m.index = *doc.Index
		m.index.fill()
	} else {
		m.index = buildIndex(doc.Nodes)
	}
	m.digest = cache.Hash(data)
	return m, nil
}

// Build constructs a manifest from definitions, computing signatures and
// indices. It is the in-memory counterpart of the offline manifest build.
func Build(defs ...NodeDef) *Manifest {
	nodes := make(map[string]*NodeDef, len(defs))
	for i := range defs {
		d := defs[i]
		if d.Signature == "" {
			d.Signature = Signature(d.Inputs, d.Outputs)
		}
		if d.Node == "" {
			d.Node = d.Key()
		}
		if d.NodeID == "" {
			d.NodeID = d.Node
		}
		for _, o := range d.Outputs {
			if types.IsHalf(o.Type) {
				d.Policy.HalfType = true
			}
		}
		nodes[d.Name] = &d
	}
	m := newManifest(Metadata{Version: SchemaVersion}, nodes)
	m.index = buildIndex(nodes)
	if data, err := m.MarshalJSON(); err == nil {
		m.digest = cache.Hash(data)
	}
	return m
}

func newManifest(meta Metadata, nodes map[string]*NodeDef) *Manifest {
	memo, _ := lru.New[string, string](selectMemoSize)
	return &Manifest{meta: meta, nodes: nodes, memo: memo}
}

// Version returns the schema version recorded in the manifest.
func (m *Manifest) Version() string { return m.meta.Version }

// Digest returns a content hash identifying this manifest.
func (m *Manifest) Digest() string { return m.digest }

// Len returns the number of node definitions.
func (m *Manifest) Len() int { return len(m.nodes) }

// Def returns the node definition called name.
func (m *Manifest) Def(name string) (*NodeDef, bool) {
	d, ok := m.nodes[name]
	return d, ok
}

// Variants returns every definition of node, sorted by name.
func (m *Manifest) Variants(node string) []*NodeDef {
	names := m.index.ByNode[node]
	out := make([]*NodeDef, 0, len(names))
	for _, n := range slices.Sorted(slices.Values(names)) {
		if d, ok := m.nodes[n]; ok {
			out = append(out, d)
		}
	}
	return out
}

// Nodes returns the sorted list of indexed node names.
func (m *Manifest) Nodes() []string {
	out := make([]string, 0, len(m.index.ByNode))
	for k := range m.index.ByNode {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

// MarshalJSON encodes the manifest document including its indices.
func (m *Manifest) MarshalJSON() ([]byte, error) {
	idx := m.index
	return json.Marshal(document{Metadata: m.meta, Nodes: m.nodes, Index: &idx})
}

// WriteJSON writes the manifest document to w.
func (m *Manifest) WriteJSON(w io.Writer) error {
	data, err := m.MarshalJSON()
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	buf.WriteByte('\n')
	_, err = w.Write(buf.Bytes())
	return err
}

// Signature formats the canonical "in[name:type,...]|out[name:type,...]" key.
func Signature(inputs, outputs []Port) string {
	return "in[" + joinPorts(inputs) + "]|out[" + joinPorts(outputs) + "]"
}

func joinPorts(ports []Port) string {
	parts := make([]string, len(ports))
	for i, p := range ports {
		parts[i] = p.Name + ":" + strings.ToLower(strings.TrimSpace(p.Type))
	}
	return strings.Join(parts, ",")
}

func buildIndex(nodes map[string]*NodeDef) Index {
	idx := Index{}
	idx.fill()
	for _, name := range slices.Sorted(maps.Keys(nodes)) {
		idx.add(nodes[name])
	}
	return idx
}

func (idx *Index) fill() {
	if idx.ByNode == nil {
		idx.ByNode = map[string][]string{}
	}
	if idx.ByNodeSignature == nil {
		idx.ByNodeSignature = map[string]map[string][]string{}
	}
	if idx.ByNodeIO == nil {
		idx.ByNodeIO = map[string]map[string][]string{}
	}
	if idx.ByNodeOutput == nil {
		idx.ByNodeOutput = map[string]map[string][]string{}
	}
}

func (idx *Index) add(d *NodeDef) {
	node := d.Key()
	if node == "" || d.Name == "" {
		return
	}
	idx.ByNode[node] = appendUnique(idx.ByNode[node], d.Name)

	if d.Signature != "" {
		addNested(idx.ByNodeSignature, node, d.Signature, d.Name)
	}
	if len(d.Inputs) == 1 && len(d.Outputs) == 1 {
		in, out := types.Normalize(d.Inputs[0].Type), types.Normalize(d.Outputs[0].Type)
		if in != types.None && out != types.None {
			addNested(idx.ByNodeIO, node, ioKey(in, out), d.Name)
		}
	}
	if len(d.Outputs) == 1 {
		if out := types.Normalize(d.Outputs[0].Type); out != types.None {
			addNested(idx.ByNodeOutput, node, string(out), d.Name)
		}
	}
}

func ioKey(in, out types.Type) string { return string(in) + "->" + string(out) }

func addNested(m map[string]map[string][]string, node, key, name string) {
	inner, ok := m[node]
	if !ok {
		inner = map[string][]string{}
		m[node] = inner
	}
	inner[key] = appendUnique(inner[key], name)
}

func appendUnique(list []string, s string) []string {
	if slices.Contains(list, s) {
		return list
	}
	return append(list, s)
}
