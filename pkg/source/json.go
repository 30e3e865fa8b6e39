package source

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/matzehuels/shaderport/pkg/errors"
	"github.com/matzehuels/shaderport/pkg/types"
)

// ReadMaterials decodes the JSON export of host materials.
//
// The document lists materials and the node groups they share:
//
//	{
//	  "materials": [{
//	    "name": "Paint", "use_nodes": true, "blend_method": "BLEND",
//	    "node_tree": {
//	      "nodes": [{"name": "Image", "type": "TEX_IMAGE",
//	                 "outputs": [{"name": "Color", "type": "RGBA"}],
//	                 "params": {"image": {"path": "//tex/paint.png"}}}],
//	      "links": [{"from_node": "Image", "from_socket": "Color",
//	                 "to_node": "Principled BSDF", "to_socket": "Base Color"}]
//	    }
//	  }],
//	  "node_groups": {"RK_PBR": {"tags": {"rk_node_id": "..."}, "nodes": [], "links": []}}
//	}
//
// Group nodes name their subtree with params.node_tree. Sockets that share a
// name are addressed with from_index/to_index. Dangling links and unknown
// groups fail with [errors.ErrCodeInvalidGraph]. ReadMaterials does not
// close r.
func ReadMaterials(r io.Reader) ([]*Material, error) {
	var doc document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidGraph, err, "decode materials")
	}

	d := decoder{groups: doc.NodeGroups, built: map[string]*Tree{}, building: map[string]bool{}}
	out := make([]*Material, 0, len(doc.Materials))
	for _, md := range doc.Materials {
		if err := errors.ValidateMaterialName(md.Name); err != nil {
			return nil, err
		}
		m := &Material{
			Name:           md.Name,
			UseNodes:       md.UseNodes,
			BlendMethod:    strings.ToUpper(md.BlendMethod),
			AlphaThreshold: md.AlphaThreshold,
			DiffuseColor:   [4]float64{0.8, 0.8, 0.8, 1},
		}
		if md.DiffuseColor != nil {
			copy(m.DiffuseColor[:], md.DiffuseColor)
		}
		if md.NodeTree != nil {
			name := md.NodeTree.Name
			if name == "" {
				name = md.Name
			}
			t, err := d.tree(name, md.NodeTree)
			if err != nil {
				return nil, fmt.Errorf("material %s: %w", md.Name, err)
			}
			m.Tree = t
		}
		out = append(out, m)
	}
	return out, nil
}

// ImportMaterials reads materials from a JSON file at path.
func ImportMaterials(path string) ([]*Material, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "materials file %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadMaterials(f)
}

type document struct {
	Materials  []materialDoc      `json:"materials"`
	NodeGroups map[string]treeDoc `json:"node_groups"`
}

type materialDoc struct {
	Name           string    `json:"name"`
	UseNodes       bool      `json:"use_nodes"`
	DiffuseColor   []float64 `json:"diffuse_color"`
	BlendMethod    string    `json:"blend_method"`
	AlphaThreshold float64   `json:"alpha_threshold"`
	NodeTree       *treeDoc  `json:"node_tree"`
}

type treeDoc struct {
	Name  string            `json:"name"`
	Tags  map[string]string `json:"tags"`
	Nodes []nodeDoc         `json:"nodes"`
	Links []linkDoc         `json:"links"`
}

type nodeDoc struct {
	Name    string      `json:"name"`
	Label   string      `json:"label"`
	Type    string      `json:"type"`
	Inputs  []socketDoc `json:"inputs"`
	Outputs []socketDoc `json:"outputs"`
	Params  paramsDoc   `json:"params"`
}

type socketDoc struct {
	Name    string      `json:"name"`
	Type    string      `json:"type"`
	Default types.Value `json:"default"`
}

type linkDoc struct {
	FromNode   string `json:"from_node"`
	FromSocket string `json:"from_socket"`
	FromIndex  *int   `json:"from_index"`
	ToNode     string `json:"to_node"`
	ToSocket   string `json:"to_socket"`
	ToIndex    *int   `json:"to_index"`
}

type paramsDoc struct {
	Operation    string         `json:"operation"`
	BlendType    string         `json:"blend_type"`
	DataType     string         `json:"data_type"`
	Clamp        bool           `json:"clamp"`
	Space        string         `json:"space"`
	VectorType   string         `json:"vector_type"`
	ConvertFrom  string         `json:"convert_from"`
	ConvertTo    string         `json:"convert_to"`
	RotationType string         `json:"rotation_type"`
	Mode         string         `json:"mode"`
	UVMap        string         `json:"uv_map"`
	Image        *Image         `json:"image"`
	Ramp         []RampStop     `json:"color_ramp"`
	Curves       [][][2]float64 `json:"curves"`
	Mapping      *Mapping       `json:"mapping"`
	NodeTree     string         `json:"node_tree"`
	IsActive     bool           `json:"is_active_output"`
	Target       string         `json:"target"`
}

type decoder struct {
	groups   map[string]treeDoc
	built    map[string]*Tree
	building map[string]bool
}

// group decodes a shared node group once, rejecting groups that contain
// themselves.
func (d *decoder) group(name string) (*Tree, error) {
	if t, ok := d.built[name]; ok {
		return t, nil
	}
	td, ok := d.groups[name]
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidGraph, "unknown node group %q", name)
	}
	if d.building[name] {
		return nil, errors.New(errors.ErrCodeInvalidGraph, "node group %q contains itself", name)
	}
	d.building[name] = true
	defer delete(d.building, name)

	t, err := d.tree(name, &td)
	if err != nil {
		return nil, fmt.Errorf("group %s: %w", name, err)
	}
	d.built[name] = t
	return t, nil
}

func (d *decoder) tree(name string, td *treeDoc) (*Tree, error) {
	if td.Name != "" {
		name = td.Name
	}
	t := NewTree(name)
	for k, v := range td.Tags {
		t.Tags[k] = v
	}
	byName := make(map[string]*Node, len(td.Nodes))
	for _, nd := range td.Nodes {
		if nd.Name == "" {
			return nil, errors.New(errors.ErrCodeInvalidGraph, "node without a name in %q", name)
		}
		if _, dup := byName[nd.Name]; dup {
			return nil, errors.New(errors.ErrCodeInvalidGraph, "duplicate node %q in %q", nd.Name, name)
		}
		n, err := d.node(nd)
		if err != nil {
			return nil, err
		}
		byName[n.Name] = t.AddNode(n)
	}

	for _, ld := range td.Links {
		from, to := byName[ld.FromNode], byName[ld.ToNode]
		if from == nil || to == nil {
			return nil, errors.New(errors.ErrCodeInvalidGraph,
				"link %s:%s -> %s:%s references an unknown node", ld.FromNode, ld.FromSocket, ld.ToNode, ld.ToSocket)
		}
		out := socketRef(from.Outputs, ld.FromSocket, ld.FromIndex)
		in := socketRef(to.Inputs, ld.ToSocket, ld.ToIndex)
		if out == nil || in == nil {
			return nil, errors.New(errors.ErrCodeInvalidGraph,
				"link %s:%s -> %s:%s references an unknown socket", ld.FromNode, ld.FromSocket, ld.ToNode, ld.ToSocket)
		}
		in.Link = &Link{Node: from, Socket: out}
	}
	return t, nil
}

func (d *decoder) node(nd nodeDoc) (*Node, error) {
	n := &Node{
		Name:  nd.Name,
		Label: nd.Label,
		Type:  nd.Type,
		Params: Params{
			Operation:    nd.Params.Operation,
			BlendType:    nd.Params.BlendType,
			DataType:     nd.Params.DataType,
			Clamp:        nd.Params.Clamp,
			Space:        nd.Params.Space,
			VectorType:   nd.Params.VectorType,
			ConvertFrom:  nd.Params.ConvertFrom,
			ConvertTo:    nd.Params.ConvertTo,
			RotationType: nd.Params.RotationType,
			Mode:         nd.Params.Mode,
			UVMap:        nd.Params.UVMap,
			Image:        nd.Params.Image,
			Ramp:         nd.Params.Ramp,
			Curves:       nd.Params.Curves,
			Mapping:      nd.Params.Mapping,
			ActiveOutput: nd.Params.IsActive,
			OutputTarget: nd.Params.Target,
		},
	}
	if n.Params.Image != nil {
		if err := errors.ValidateTexturePath(n.Params.Image.Path); err != nil && n.Params.Image.Path != "" {
			return nil, fmt.Errorf("node %s: %w", nd.Name, err)
		}
	}
	if nd.Params.NodeTree != "" {
		g, err := d.group(nd.Params.NodeTree)
		if err != nil {
			return nil, fmt.Errorf("node %s: %w", nd.Name, err)
		}
		n.Params.Group = g
	}
	n.Inputs = sockets(nd.Inputs)
	n.Outputs = sockets(nd.Outputs)
	return n, nil
}

func sockets(docs []socketDoc) []*Socket {
	out := make([]*Socket, len(docs))
	for i, sd := range docs {
		out[i] = Sock(sd.Name, sd.Type, sd.Default)
	}
	return out
}

func socketRef(sockets []*Socket, name string, index *int) *Socket {
	if index != nil {
		if *index < 0 || *index >= len(sockets) {
			return nil
		}
		return sockets[*index]
	}
	for _, s := range sockets {
		if s.Name == name {
			return s
		}
	}
	return nil
}

// MarshalMaterials encodes materials in the document format read by
// [ReadMaterials]. Links are written with socket indices so sockets that
// share a name survive the round trip. The output is deterministic and
// serves as the content identity of a material.
func MarshalMaterials(ms ...*Material) ([]byte, error) {
	enc := encoder{groups: map[string]treeDoc{}}
	doc := document{Materials: make([]materialDoc, 0, len(ms)), NodeGroups: enc.groups}
	for _, m := range ms {
		md := materialDoc{
			Name:           m.Name,
			UseNodes:       m.UseNodes,
			DiffuseColor:   m.DiffuseColor[:],
			BlendMethod:    m.BlendMethod,
			AlphaThreshold: m.AlphaThreshold,
		}
		if m.Tree != nil {
			td := enc.tree(m.Tree)
			md.NodeTree = &td
		}
		doc.Materials = append(doc.Materials, md)
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode materials: %w", err)
	}
	return data, nil
}

type encoder struct {
	groups map[string]treeDoc
}

func (e *encoder) tree(t *Tree) treeDoc {
	td := treeDoc{Name: t.Name, Tags: t.Tags}
	for _, n := range t.Nodes {
		td.Nodes = append(td.Nodes, e.node(n))
		for i, in := range n.Inputs {
			if !in.Linked() {
				continue
			}
			from, to := in.Link.Socket.Index(), i
			td.Links = append(td.Links, linkDoc{
				FromNode:   in.Link.Node.Name,
				FromSocket: in.Link.Socket.Name,
				FromIndex:  &from,
				ToNode:     n.Name,
				ToSocket:   in.Name,
				ToIndex:    &to,
			})
		}
	}
	return td
}

func (e *encoder) node(n *Node) nodeDoc {
	p := n.Params
	nd := nodeDoc{
		Name:  n.Name,
		Label: n.Label,
		Type:  n.Type,
		Params: paramsDoc{
			Operation:    p.Operation,
			BlendType:    p.BlendType,
			DataType:     p.DataType,
			Clamp:        p.Clamp,
			Space:        p.Space,
			VectorType:   p.VectorType,
			ConvertFrom:  p.ConvertFrom,
			ConvertTo:    p.ConvertTo,
			RotationType: p.RotationType,
			Mode:         p.Mode,
			UVMap:        p.UVMap,
			Image:        p.Image,
			Ramp:         p.Ramp,
			Curves:       p.Curves,
			Mapping:      p.Mapping,
			IsActive:     p.ActiveOutput,
			Target:       p.OutputTarget,
		},
	}
	if g := p.Group; g != nil {
		nd.Params.NodeTree = g.Name
		if _, ok := e.groups[g.Name]; !ok {
			e.groups[g.Name] = treeDoc{Name: g.Name}
			e.groups[g.Name] = e.tree(g)
		}
	}
	for _, s := range n.Inputs {
		nd.Inputs = append(nd.Inputs, socketDoc{Name: s.Name, Type: s.Type, Default: s.Default})
	}
	for _, s := range n.Outputs {
		nd.Outputs = append(nd.Outputs, socketDoc{Name: s.Name, Type: s.Type, Default: s.Default})
	}
	return nd
}
