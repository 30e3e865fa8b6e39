package target

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/matzehuels/shaderport/pkg/errors"
	"github.com/matzehuels/shaderport/pkg/types"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"image", "image"},
		{"Base Color", "Base_Color"},
		{"2d-place", "n_2d_place"},
		{"", "n_"},
		{"_x", "n__x"},
	}
	for _, tt := range tests {
		if got := SanitizeName(tt.in); got != tt.want {
			t.Errorf("SanitizeName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestAddNodeUniqueNames(t *testing.T) {
	g := New()
	var names []string
	for range 3 {
		names = append(names, g.Name(g.AddNode("ND_image_color3", "image")))
	}
	names = append(names, g.Name(g.AddNode("ND_mix_color3", "")))
	want := []string{"image", "image_1", "image_2", "mix_color3"}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("name[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}

func TestConnectDropsLiteral(t *testing.T) {
	g := New()
	img, mix := g.AddNode("ND_image_color3", "image"), g.AddNode("ND_mix_color3", "mix")
	if err := g.SetInput(mix, "fg", types.Tuple(1, 0, 0)); err != nil {
		t.Fatal(err)
	}
	if err := g.Connect(Out(img), mix, "fg"); err != nil {
		t.Fatal(err)
	}
	n, _ := g.Node(mix)
	if _, ok := n.Inputs["fg"]; ok {
		t.Error("literal kept on a connected input")
	}
	if err := g.SetInput(mix, "fg", types.Num(1)); !errors.Is(err, errors.ErrCodeInvalidTargetGraph) {
		t.Errorf("SetInput on connected input = %v, want ErrCodeInvalidTargetGraph", err)
	}
	if err := g.Validate(); err != nil {
		t.Errorf("Validate = %v", err)
	}
}

func TestInvalidHandles(t *testing.T) {
	g := New()
	h := g.AddNode("ND_add_float", "add")
	if err := g.Connect(Out(NodeHandle(5)), h, "in1"); err == nil {
		t.Error("Connect from missing node succeeded")
	}
	if err := g.SetOutput(Out(NoNode)); err == nil {
		t.Error("SetOutput(NoNode) succeeded")
	}
}

func TestJSONRoundTrip(t *testing.T) {
	g := New()
	img := g.AddNode("ND_image_color4", "image")
	_ = g.SetInput(img, "file", types.Str("tex/a.png"))
	sw := g.AddNode("ND_swizzle_color4_float", "swizzle")
	_ = g.SetInput(sw, "channels", types.Str("a"))
	_ = g.Connect(Out(img), sw, "in")
	_ = g.SetOutput(Out(sw))

	var buf bytes.Buffer
	if err := WriteJSON(g, &buf); err != nil {
		t.Fatal(err)
	}
	back, err := ReadJSON(&buf)
	if err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if back.Len() != 2 || len(back.Connections()) != 1 {
		t.Fatalf("round trip = %d nodes %d connections, want 2 and 1", back.Len(), len(back.Connections()))
	}
	out, ok := back.Output()
	if !ok || back.Name(out.Node) != "swizzle" {
		t.Errorf("output = %v, want swizzle", out)
	}
	n, _ := back.Node(0)
	if !n.Inputs["file"].Equal(types.Str("tex/a.png")) {
		t.Errorf("file = %v, want tex/a.png", n.Inputs["file"])
	}
}

func TestReadJSONInvalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"unknown node", `{"nodes":[{"name":"a","nodedef":"ND_x"}],"connections":[{"from_node":"b","from_output":"out","to_node":"a","to_input":"in"}]}`},
		{"duplicate name", `{"nodes":[{"name":"a","nodedef":"ND_x"},{"name":"a","nodedef":"ND_y"}]}`},
		{"literal and connection", `{"nodes":[{"name":"a","nodedef":"ND_x"},{"name":"b","nodedef":"ND_y","inputs":{"in":1}}],
			"connections":[{"from_node":"a","from_output":"out","to_node":"b","to_input":"in"}]}`},
		{"unknown output", `{"nodes":[],"output":{"node":"z","output":"out"}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ReadJSON(strings.NewReader(tt.doc)); !errors.Is(err, errors.ErrCodeInvalidTargetGraph) {
				t.Errorf("ReadJSON = %v, want ErrCodeInvalidTargetGraph", err)
			}
		})
	}
}

func TestToDOT(t *testing.T) {
	g := New()
	img, add := g.AddNode("ND_image_float", "image"), g.AddNode("ND_add_float", "add")
	_ = g.SetInput(add, "in2", types.Num(0.5))
	_ = g.Connect(Out(img), add, "in1")

	dot := ToDOT(g, DOTOptions{Detailed: true, Title: "Paint"})
	for _, want := range []string{`"image" -> "add" [label="in1"]`, `in2: 0.5`, `label="Paint"`} {
		if !strings.Contains(dot, want) {
			t.Errorf("ToDOT missing %q:\n%s", want, dot)
		}
	}
}

func TestNormalizeViewBox(t *testing.T) {
	svg := []byte(`<svg width="10pt" viewBox="0.00 0.00 120.00 80.00" xmlns="x"><g/></svg>`)
	got := string(normalizeViewBox(svg))
	if !strings.Contains(got, `viewBox="0 0 120.00 80.00"`) || !strings.Contains(got, `width="120"`) {
		t.Errorf("normalizeViewBox = %s", got)
	}
}

func TestMaterial(t *testing.T) {
	m := NewMaterial("Paint", "ND_realitykit_pbr_surfaceshader")
	img := m.Graph.AddNode("ND_image_color3", "image")
	_ = m.Graph.SetInput(img, "file", types.Str("tex/a.png"))
	m.SetInput("baseColor", types.Tuple(1, 0, 0))
	if err := m.Connect("baseColor", Out(img)); err != nil {
		t.Fatal(err)
	}
	m.SetInput("roughness", types.Num(0.4))
	if err := m.Validate(); err == nil {
		t.Error("Validate accepted a graph without an output")
	}
	if _, err := m.Emit(); err != nil {
		t.Fatalf("Emit = %v", err)
	}
	if err := m.Validate(); err != nil {
		t.Fatalf("Validate = %v", err)
	}
	if _, lit := m.Surface.Inputs["baseColor"]; lit {
		t.Error("literal kept after Connect")
	}
	if got := m.Bound(); len(got) != 2 || got[0] != "baseColor" || got[1] != "roughness" {
		t.Errorf("Bound = %v, want [baseColor roughness]", got)
	}

	data, err := json.Marshal(m)
	if err != nil {
		t.Fatal(err)
	}
	var back Material
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	o, ok := back.Surface.Connections["baseColor"]
	if !ok || back.Graph.Name(o.Node) != "image" {
		t.Errorf("baseColor = %+v, want image", o)
	}
	if !back.Surface.Inputs["roughness"].Equal(types.Num(0.4)) {
		t.Errorf("roughness = %v, want 0.4", back.Surface.Inputs["roughness"])
	}
}

func TestEmitDesignatesSurface(t *testing.T) {
	m := NewMaterial("Paint", "ND_realitykit_pbr_surfaceshader")
	img := m.Graph.AddNode("ND_image_color3", "image")
	if err := m.Connect("baseColor", Out(img)); err != nil {
		t.Fatal(err)
	}
	m.SetInput("roughness", types.Num(0.4))

	h, err := m.Emit()
	if err != nil {
		t.Fatalf("Emit = %v", err)
	}
	out, ok := m.Graph.Output()
	if !ok || out.Node != h {
		t.Fatalf("Output = %+v, %v, want surface node %d", out, ok, h)
	}
	surface, _ := m.Graph.Node(h)
	if surface.NodeDef != "ND_realitykit_pbr_surfaceshader" || surface.Name != "Paint_surface" {
		t.Errorf("surface node = %+v", surface)
	}
	if src, ok := m.Graph.Source(h, "baseColor"); !ok || src.Node != img {
		t.Errorf("baseColor source = %+v, want image", src)
	}
	if !surface.Inputs["roughness"].Equal(types.Num(0.4)) {
		t.Errorf("roughness = %v, want 0.4", surface.Inputs["roughness"])
	}

	again, err := m.Emit()
	if err != nil || again != h || m.Graph.Len() != 2 {
		t.Errorf("second Emit = %d, %v with %d nodes, want %d and 2 nodes", again, err, m.Graph.Len(), h)
	}

	data, err := json.Marshal(m)
	if err != nil {
		t.Fatal(err)
	}
	var back Material
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if o, ok := back.Graph.Output(); !ok || back.Graph.Name(o.Node) != "Paint_surface" {
		t.Errorf("decoded output = %+v, %v", o, ok)
	}
	if err := back.Validate(); err != nil {
		t.Errorf("decoded Validate = %v", err)
	}
}
