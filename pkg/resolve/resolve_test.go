package resolve

import (
	"strings"
	"testing"

	"github.com/matzehuels/shaderport/internal/testutil"
	"github.com/matzehuels/shaderport/pkg/expr"
	"github.com/matzehuels/shaderport/pkg/source"
	"github.com/matzehuels/shaderport/pkg/types"
)

func newResolver() *Resolver { return New(testutil.Manifest(), nil) }

func TestResolveUnlinked(t *testing.T) {
	g := testutil.NewGraph(t, "m")
	bsdf := g.Principled("BSDF")
	if e := newResolver().Resolve(bsdf.Input("Base Color"), "", types.Color3); e != nil {
		t.Errorf("Resolve(unlinked) = %v, want nil", e)
	}
}

func TestIdentityElision(t *testing.T) {
	tests := []struct {
		name  string
		build func(g *testutil.Graph, img *source.Node) *source.Node
	}{
		{"mix fac 0", func(g *testutil.Graph, img *source.Node) *source.Node {
			n := g.Mix("Mix", "MIX", 0)
			g.Link(img, "Color", n, "A")
			return n
		}},
		{"mix fac 1", func(g *testutil.Graph, img *source.Node) *source.Node {
			n := g.Mix("Mix", "MIX", 1)
			g.Link(img, "Color", n, "B")
			return n
		}},
		{"add zero", func(g *testutil.Graph, img *source.Node) *source.Node {
			n := g.Math("Math", "ADD", 0, 0)
			g.LinkAt(img, "Color", n, 0)
			return n
		}},
		{"multiply one", func(g *testutil.Graph, img *source.Node) *source.Node {
			n := g.Math("Math", "MULTIPLY", 1, 0)
			g.LinkAt(img, "Color", n, 1)
			return n
		}},
		{"reroute chain", func(g *testutil.Graph, img *source.Node) *source.Node {
			a, b := g.Reroute("R1"), g.Reroute("R2")
			g.Link(img, "Color", a, "Input")
			g.Link(a, "Output", b, "Input")
			return b
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			direct := testutil.NewGraph(t, "direct")
			dimg, dbsdf := direct.Image("Image", "//tex/a.png", "sRGB"), direct.Principled("BSDF")
			direct.Link(dimg, "Color", dbsdf, "Base Color")

			g := testutil.NewGraph(t, "elided")
			img, bsdf := g.Image("Image", "//tex/a.png", "sRGB"), g.Principled("BSDF")
			mid := tt.build(g, img)
			g.Link(mid, mid.OutputAt(0).Name, bsdf, "Base Color")

			want := newResolver().Resolve(dbsdf.Input("Base Color"), "", types.Color3)
			got := newResolver().Resolve(bsdf.Input("Base Color"), "", types.Color3)
			if expr.Key(got) != expr.Key(want) {
				t.Errorf("Resolve = %s, want %s", expr.Key(got), expr.Key(want))
			}
		})
	}
}

func TestResolveCycle(t *testing.T) {
	g := testutil.NewGraph(t, "loop")
	a, b := g.Math("A", "ADD", 0, 5), g.Math("B", "ADD", 0, 5)
	g.LinkAt(b, "Value", a, 0)
	g.LinkAt(a, "Value", b, 0)
	bsdf := g.Principled("BSDF")
	g.Link(a, "Value", bsdf, "Roughness")

	e := newResolver().Resolve(bsdf.Input("Roughness"), "", types.Float)
	us := expr.Unresolveds(e)
	if len(us) != 1 {
		t.Fatalf("Unresolveds = %d, want 1 (%s)", len(us), expr.Key(e))
	}
	if last := us[0].Chain.Last(); last != "(cycle)" {
		t.Errorf("chain ends with %q, want (cycle)", last)
	}
}

func TestResolveFanOut(t *testing.T) {
	g := testutil.NewGraph(t, "fan")
	img := g.Image("Image", "//tex/a.png", "sRGB")
	mix := g.Mix("Mix", "MIX", 0.5)
	g.Link(img, "Color", mix, "A")
	g.Link(img, "Color", mix, "B")
	bsdf := g.Principled("BSDF")
	g.Link(mix, "Result", bsdf, "Base Color")

	e := newResolver().Resolve(bsdf.Input("Base Color"), "", types.Color3)
	if us := expr.Unresolveds(e); len(us) != 0 {
		t.Errorf("fan-out reported %d unresolved, want 0", len(us))
	}
	if n := len(expr.Textures(e)); n != 2 {
		t.Errorf("Textures = %d, want 2", n)
	}
}

func TestRerouteConstant(t *testing.T) {
	g := testutil.NewGraph(t, "rgb")
	rgb, r := g.RGB("RGB", 0.2, 0.4, 0.6), g.Reroute("Reroute")
	bsdf := g.Principled("BSDF")
	g.Link(rgb, "Color", r, "Input")
	g.Link(r, "Output", bsdf, "Base Color")

	e := newResolver().Resolve(bsdf.Input("Base Color"), "", types.Color3)
	c, ok := e.(expr.Constant)
	if !ok {
		t.Fatalf("Resolve = %T, want Constant", e)
	}
	if !c.Value.Equal(types.Tuple(0.2, 0.4, 0.6)) {
		t.Errorf("value = %v, want 0.2, 0.4, 0.6", c.Value)
	}
}

func TestSeparateChannel(t *testing.T) {
	tests := []struct {
		output string
		want   string
	}{
		{"Red", "r"},
		{"Green", "g"},
		{"Alpha", "a"},
	}
	for _, tt := range tests {
		t.Run(tt.output, func(t *testing.T) {
			g := testutil.NewGraph(t, "sep")
			img, sep, bsdf := g.Image("Image", "//tex/orm.png", "Non-Color"), g.Separate("Separate"), g.Principled("BSDF")
			g.Link(img, "Color", sep, "Color")
			g.Link(sep, tt.output, bsdf, "Roughness")

			e := newResolver().Resolve(bsdf.Input("Roughness"), "", types.Float)
			tex, ok := e.(expr.Texture)
			if !ok {
				t.Fatalf("Resolve = %T, want Texture", e)
			}
			if tex.Channel != tt.want {
				t.Errorf("Channel = %q, want %q", tex.Channel, tt.want)
			}
			if tex.OutputType != types.Float {
				t.Errorf("OutputType = %q, want float", tex.OutputType)
			}
			if tex.ColorSpace != "raw" {
				t.Errorf("ColorSpace = %q, want raw", tex.ColorSpace)
			}
		})
	}
}

func TestSeparateConstant(t *testing.T) {
	g := testutil.NewGraph(t, "sep")
	rgb, sep, bsdf := g.RGB("RGB", 0.1, 0.2, 0.3), g.Separate("Separate"), g.Principled("BSDF")
	g.Link(rgb, "Color", sep, "Color")
	g.Link(sep, "Blue", bsdf, "Metallic")

	e := newResolver().Resolve(bsdf.Input("Metallic"), "", types.Float)
	if !expr.IsConstant(e, 0.3) {
		t.Errorf("Resolve = %s, want constant 0.3", expr.Key(e))
	}
}

func TestSeparateNode(t *testing.T) {
	g := testutil.NewGraph(t, "sep")
	img := g.Image("Image", "//tex/a.png", "sRGB")
	mix := g.Mix("Mix", "MIX", 0.5)
	g.Link(img, "Color", mix, "A")
	sep, bsdf := g.Separate("Separate"), g.Principled("BSDF")
	g.Link(mix, "Result", sep, "Color")
	g.Link(sep, "Green", bsdf, "Roughness")

	e := newResolver().Resolve(bsdf.Input("Roughness"), "", types.Float)
	n, ok := e.(expr.Node)
	if !ok || n.NodeDef != "ND_swizzle_color3_float" {
		t.Fatalf("Resolve = %s, want swizzle", expr.Key(e))
	}
	ch, _ := n.Arg("channels")
	if c, ok := ch.(expr.Constant); !ok || c.Value.StringValue() != "g" {
		t.Errorf("channels = %v, want g", ch)
	}
}

func TestTextureAlphaOutput(t *testing.T) {
	g := testutil.NewGraph(t, "alpha")
	img, bsdf := g.Image("Image", "//tex/a.png", "sRGB"), g.Principled("BSDF")
	g.Link(img, "Alpha", bsdf, "Alpha")

	e := newResolver().Resolve(bsdf.Input("Alpha"), "", types.Float)
	if tex, ok := e.(expr.Texture); !ok || tex.Channel != "a" {
		t.Errorf("Resolve = %s, want texture channel a", expr.Key(e))
	}
}

func TestTextureWithoutImage(t *testing.T) {
	tests := []struct {
		name   string
		assets AssetResolver
		path   string
	}{
		{"empty path", nil, ""},
		{"asset missing", AssetResolverFunc(func(*source.Image) (string, bool) { return "", false }), "//tex/a.png"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := testutil.NewGraph(t, "m")
			img, bsdf := g.Image("Image", tt.path, "sRGB"), g.Principled("BSDF")
			g.Link(img, "Color", bsdf, "Base Color")
			e := New(testutil.Manifest(), tt.assets).Resolve(bsdf.Input("Base Color"), "", types.Color3)
			if _, ok := e.(expr.Unresolved); !ok {
				t.Errorf("Resolve = %s, want unresolved", expr.Key(e))
			}
		})
	}
}

func TestAssetResolver(t *testing.T) {
	g := testutil.NewGraph(t, "m")
	img, bsdf := g.Image("Image", "//tex/a.png", "sRGB"), g.Principled("BSDF")
	g.Link(img, "Color", bsdf, "Base Color")
	assets := AssetResolverFunc(func(img *source.Image) (string, bool) {
		return "textures/" + strings.TrimPrefix(img.Path, "//tex/"), true
	})
	e := New(testutil.Manifest(), assets).Resolve(bsdf.Input("Base Color"), "", types.Color3)
	if tex, ok := e.(expr.Texture); !ok || tex.Path != "textures/a.png" {
		t.Errorf("Resolve = %s, want textures/a.png", expr.Key(e))
	}
}

func TestMappingTransform(t *testing.T) {
	tests := []struct {
		name    string
		mapping *source.Mapping
		wantNil bool
	}{
		{"identity", &source.Mapping{Scale: [3]float64{1, 1, 1}}, true},
		{"scaled", &source.Mapping{Scale: [3]float64{2, 2, 1}}, false},
		{"rotated", &source.Mapping{Rotation: [3]float64{0, 0, 0.5}, Scale: [3]float64{1, 1, 1}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := testutil.NewGraph(t, "m")
			uv := g.Add("UV Map", "UVMAP", nil, []*source.Socket{testutil.S("UV", "VECTOR", types.Value{})},
				source.Params{UVMap: "Detail"})
			mp := g.Add("Mapping", "MAPPING", []*source.Socket{testutil.S("Vector", "VECTOR", types.Value{})},
				[]*source.Socket{testutil.S("Vector", "VECTOR", types.Value{})}, source.Params{Mapping: tt.mapping})
			img, bsdf := g.Image("Image", "//tex/a.png", "sRGB"), g.Principled("BSDF")
			g.Link(uv, "UV", mp, "Vector")
			g.Link(mp, "Vector", img, "Vector")
			g.Link(img, "Color", bsdf, "Base Color")

			e := newResolver().Resolve(bsdf.Input("Base Color"), "", types.Color3)
			tex, ok := e.(expr.Texture)
			if !ok {
				t.Fatalf("Resolve = %T, want Texture", e)
			}
			if tex.UVSet != "Detail" {
				t.Errorf("UVSet = %q, want Detail", tex.UVSet)
			}
			if (tex.Transform == nil) != tt.wantNil {
				t.Errorf("Transform = %+v, want nil %v", tex.Transform, tt.wantNil)
			}
		})
	}
}

func TestNormalMap(t *testing.T) {
	g := testutil.NewGraph(t, "m")
	img, nm, bsdf := g.Image("Image", "//tex/n.png", "Non-Color"), g.NormalMap("Normal Map", 0.5), g.Principled("BSDF")
	g.Link(img, "Color", nm, "Color")
	g.Link(nm, "Normal", bsdf, "Normal")

	e := newResolver().Resolve(bsdf.Input("Normal"), "", types.Vector3)
	tex, ok := e.(expr.Texture)
	if !ok || tex.Normal == nil {
		t.Fatalf("Resolve = %s, want normal texture", expr.Key(e))
	}
	if tex.Normal.Strength != 0.5 || tex.Normal.Space != "tangent" {
		t.Errorf("Normal = %+v, want strength 0.5 tangent", *tex.Normal)
	}
	if tex.OutputType != types.Vector3 {
		t.Errorf("OutputType = %q, want vector3", tex.OutputType)
	}
}

func passGroup(t *testing.T) *source.Tree {
	sub := testutil.NewGraph(t, "Tint")
	in, out := sub.GroupInput("Group Input", "Color"), sub.GroupOutput("Group Output", "Color")
	sub.Link(in, "Color", out, "Color")
	return sub.Tree
}

func TestGroupReentry(t *testing.T) {
	g := testutil.NewGraph(t, "m")
	img, bsdf := g.Image("Image", "//tex/a.png", "sRGB"), g.Principled("BSDF")
	grp := g.Group("Tint", passGroup(t), []string{"Color"}, []string{"Color"})
	g.Link(img, "Color", grp, "Color")
	g.Link(grp, "Color", bsdf, "Base Color")

	e := newResolver().Resolve(bsdf.Input("Base Color"), "", types.Color3)
	if tex, ok := e.(expr.Texture); !ok || tex.Path != "//tex/a.png" {
		t.Errorf("Resolve = %s, want texture //tex/a.png", expr.Key(e))
	}
}

func TestChainedGroupInstances(t *testing.T) {
	g := testutil.NewGraph(t, "m")
	sub := passGroup(t)
	img, bsdf := g.Image("Image", "//tex/a.png", "sRGB"), g.Principled("BSDF")
	g1 := g.Group("Tint", sub, []string{"Color"}, []string{"Color"})
	g2 := g.Group("Tint.001", sub, []string{"Color"}, []string{"Color"})
	g.Link(img, "Color", g1, "Color")
	g.Link(g1, "Color", g2, "Color")
	g.Link(g2, "Color", bsdf, "Base Color")

	e := newResolver().Resolve(bsdf.Input("Base Color"), "", types.Color3)
	if _, ok := e.(expr.Texture); !ok {
		t.Errorf("Resolve = %s, want texture", expr.Key(e))
	}
}

func TestGroupInputDefault(t *testing.T) {
	g := testutil.NewGraph(t, "m")
	bsdf := g.Principled("BSDF")
	grp := g.Group("Tint", passGroup(t), []string{"Color"}, []string{"Color"})
	grp.Input("Color").Default = types.Tuple(0.25, 0.5, 0.75, 1)
	g.Link(grp, "Color", bsdf, "Base Color")

	e := newResolver().Resolve(bsdf.Input("Base Color"), "", types.Color3)
	c, ok := e.(expr.Constant)
	if !ok || !c.Value.Equal(types.Tuple(0.25, 0.5, 0.75, 1)) {
		t.Errorf("Resolve = %s, want the group input literal", expr.Key(e))
	}
}

func TestAuthoredGroup(t *testing.T) {
	sub := testutil.NewGraph(t, "RK_Luminance")
	sub.Tree.Tags[source.RKNodeIDTag] = "luminance"
	sub.GroupOutput("Group Output", "out")

	g := testutil.NewGraph(t, "m")
	img, bsdf := g.Image("Image", "//tex/a.png", "sRGB"), g.Principled("BSDF")
	grp := g.Group("Luma", sub.Tree, []string{"in"}, []string{"out"})
	g.Link(img, "Color", grp, "in")
	g.Link(grp, "out", bsdf, "Base Color")

	e := newResolver().Resolve(bsdf.Input("Base Color"), "", types.Color3)
	n, ok := e.(expr.Node)
	if !ok {
		t.Fatalf("Resolve = %T, want Node", e)
	}
	if n.NodeDef != "ND_luminance_color3" || n.Type != types.Color3 {
		t.Errorf("node = %s %s, want ND_luminance_color3 color3", n.NodeDef, n.Type)
	}
	in, ok := n.Arg("in")
	if tex, isTex := in.(expr.Texture); !ok || !isTex || tex.OutputType != types.Color3 {
		t.Errorf("in = %s, want color3 texture", expr.Key(in))
	}
}

func TestUnresolvedChain(t *testing.T) {
	g := testutil.NewGraph(t, "m")
	wave := g.Add("Wave", "TEX_WAVE", nil, []*source.Socket{testutil.S("Color", "RGBA", types.Value{})}, source.Params{})
	r, bsdf := g.Reroute("Reroute"), g.Principled("BSDF")
	g.Link(wave, "Color", r, "Input")
	g.Link(r, "Output", bsdf, "Base Color")

	e := newResolver().Resolve(bsdf.Input("Base Color"), "", types.Color3)
	u, ok := e.(expr.Unresolved)
	if !ok {
		t.Fatalf("Resolve = %T, want Unresolved", e)
	}
	want := "Reroute (REROUTE:Output) -> Wave (TEX_WAVE:Color)"
	if got := u.Chain.String(); got != want {
		t.Errorf("chain = %q, want %q", got, want)
	}
}

func TestMixBlends(t *testing.T) {
	tests := []struct {
		blend   string
		fac     float64
		wantDef string
		wantArg string
	}{
		{"MIX", 0.5, "ND_mix_color3", "fg"},
		{"MULTIPLY", 1, "ND_multiply_color3", "in1"},
		{"ADD", 0.3, "ND_mix_color3", "fg"},
	}
	for _, tt := range tests {
		t.Run(tt.blend, func(t *testing.T) {
			g := testutil.NewGraph(t, "m")
			img, rgb := g.Image("Image", "//tex/a.png", "sRGB"), g.RGB("RGB", 1, 0, 0)
			mix, bsdf := g.Mix("Mix", tt.blend, tt.fac), g.Principled("BSDF")
			g.Link(img, "Color", mix, "A")
			g.Link(rgb, "Color", mix, "B")
			g.Link(mix, "Result", bsdf, "Base Color")

			e := newResolver().Resolve(bsdf.Input("Base Color"), "", types.Color3)
			n, ok := e.(expr.Node)
			if !ok {
				t.Fatalf("Resolve = %T, want Node", e)
			}
			if n.NodeDef != tt.wantDef {
				t.Errorf("NodeDef = %s, want %s", n.NodeDef, tt.wantDef)
			}
			if _, ok := n.Arg(tt.wantArg); !ok {
				t.Errorf("missing arg %s in %s", tt.wantArg, expr.Key(n))
			}
		})
	}
}

func TestMathClamp(t *testing.T) {
	g := testutil.NewGraph(t, "m")
	img, bsdf := g.Image("Image", "//tex/r.png", "Non-Color"), g.Principled("BSDF")
	m := g.Math("Math", "POWER", 0, 2)
	m.Params.Clamp = true
	g.Link(img, "Alpha", m, "Value")
	g.Link(m, "Value", bsdf, "Roughness")

	e := newResolver().Resolve(bsdf.Input("Roughness"), "", types.Float)
	n, ok := e.(expr.Node)
	if !ok || n.NodeDef != "ND_clamp_float" {
		t.Fatalf("Resolve = %s, want clamp", expr.Key(e))
	}
	in, _ := n.Arg("in")
	if p, ok := in.(expr.Node); !ok || p.NodeDef != "ND_power_float" {
		t.Errorf("clamp in = %s, want power", expr.Key(in))
	}
}

func TestUnmappedMath(t *testing.T) {
	g := testutil.NewGraph(t, "m")
	img, bsdf := g.Image("Image", "//tex/r.png", "Non-Color"), g.Principled("BSDF")
	m := g.Math("Math", "SINE", 0, 0)
	g.Link(img, "Alpha", m, "Value")
	g.Link(m, "Value", bsdf, "Roughness")

	if e := newResolver().Resolve(bsdf.Input("Roughness"), "", types.Float); len(expr.Unresolveds(e)) != 1 {
		t.Errorf("Resolve = %s, want one unresolved", expr.Key(e))
	}
}

func TestInvert(t *testing.T) {
	tests := []struct {
		name    string
		fac     float64
		want    types.Type
		wantDef string
	}{
		{"full", 1, types.Color3, "ND_oneminus_color3"},
		{"partial", 0.5, types.Color3, "ND_mix_color3"},
		{"float", 1, types.Float, "ND_oneminus_float"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := testutil.NewGraph(t, "m")
			img, bsdf := g.Image("Image", "//tex/a.png", "sRGB"), g.Principled("BSDF")
			inv := g.Add("Invert", "INVERT", []*source.Socket{
				testutil.S("Fac", "VALUE", types.Num(tt.fac)),
				testutil.S("Color", "RGBA", types.Tuple(0, 0, 0, 1)),
			}, []*source.Socket{testutil.S("Color", "RGBA", types.Value{})}, source.Params{})
			g.Link(img, "Color", inv, "Color")
			g.Link(inv, "Color", bsdf, "Base Color")

			e := newResolver().Resolve(bsdf.Input("Base Color"), "", tt.want)
			if n, ok := e.(expr.Node); !ok || n.NodeDef != tt.wantDef {
				t.Errorf("Resolve = %s, want %s", expr.Key(e), tt.wantDef)
			}
		})
	}
}

func TestUVNode(t *testing.T) {
	tests := []struct {
		uvmap   string
		wantDef string
	}{
		{"UVMap", "ND_texcoord_vector3"},
		{"Detail", "ND_geompropvalue_vector2"},
	}
	for _, tt := range tests {
		t.Run(tt.uvmap, func(t *testing.T) {
			g := testutil.NewGraph(t, "m")
			uv := g.Add("UV Map", "UVMAP", nil, []*source.Socket{testutil.S("UV", "VECTOR", types.Value{})},
				source.Params{UVMap: tt.uvmap})
			rot := g.Add("Vector Rotate", "VECTOR_ROTATE", []*source.Socket{
				testutil.S("Vector", "VECTOR", types.Value{}),
				testutil.S("Angle", "VALUE", types.Num(0)),
			}, []*source.Socket{testutil.S("Vector", "VECTOR", types.Value{})}, source.Params{RotationType: "Z_AXIS"})
			bsdf := g.Principled("BSDF")
			g.Link(uv, "UV", rot, "Vector")
			g.Link(rot, "Vector", bsdf, "Normal")

			e := newResolver().Resolve(bsdf.Input("Normal"), "", types.Vector2)
			n, ok := e.(expr.Node)
			if !ok {
				t.Fatalf("Resolve = %T, want Node", e)
			}
			in, _ := n.Arg("in")
			if u, ok := in.(expr.Node); !ok || u.NodeDef != tt.wantDef {
				t.Errorf("rotate in = %s, want %s", expr.Key(in), tt.wantDef)
			}
		})
	}
}

func TestResetClearsCache(t *testing.T) {
	g := testutil.NewGraph(t, "m")
	img, bsdf := g.Image("Image", "//tex/a.png", "sRGB"), g.Principled("BSDF")
	g.Link(img, "Color", bsdf, "Base Color")
	r := newResolver()
	first := r.Resolve(bsdf.Input("Base Color"), "", types.Color3)
	img.Params.Image.Path = "//tex/b.png"
	if got := r.Resolve(bsdf.Input("Base Color"), "", types.Color3); expr.Key(got) != expr.Key(first) {
		t.Errorf("cached Resolve = %s, want %s", expr.Key(got), expr.Key(first))
	}
	r.Reset()
	if tex, ok := r.Resolve(bsdf.Input("Base Color"), "", types.Color3).(expr.Texture); !ok || tex.Path != "//tex/b.png" {
		t.Errorf("Resolve after Reset = %+v, want //tex/b.png", tex)
	}
}

func TestComputeTable(t *testing.T) {
	tests := []struct {
		typ     string
		inputs  []string
		want    types.Type
		wantDef string
	}{
		{"CLAMP", []string{"Value", "Min", "Max"}, types.Float, "ND_clamp_float"},
		{"MAP_RANGE", []string{"Value", "From Min", "From Max", "To Min", "To Max"}, types.Float, "ND_range_float"},
		{"RGBTOBW", []string{"Color"}, types.Float, "ND_luminance_color3"},
		{"HUE_SAT", []string{"Hue", "Saturation", "Value", "Fac", "Color"}, types.Color3, "ND_hsvadjust_color3"},
		{"BRIGHTCONTRAST", []string{"Color", "Bright", "Contrast"}, types.Color3, "ND_contrast_color3"},
		{"COMBINE_COLOR", []string{"Red", "G", "B"}, types.Color3, "ND_combine3_color3"},
		{"VECTOR_TRANSFORM", []string{"Vector"}, types.Vector3, "ND_transformvector_vector3"},
		{"TEX_NOISE", []string{"Vector", "Scale", "Detail", "Roughness", "Distortion"}, types.Float, "ND_unifiednoise3d_float"},
		{"TEX_VORONOI", []string{"Vector", "Scale", "Randomness"}, types.Float, "ND_worleynoise3d_float"},
		{"TEX_MUSGRAVE", []string{"Vector", "Scale", "Detail", "Dimension", "Lacunarity"}, types.Float, "ND_fractal3d_float"},
		{"TEX_GRADIENT", []string{"Vector"}, types.Float, "ND_ramplr_float"},
	}
	for _, tt := range tests {
		t.Run(tt.typ, func(t *testing.T) {
			g := testutil.NewGraph(t, "m")
			ins := make([]*source.Socket, len(tt.inputs))
			for i, name := range tt.inputs {
				ins[i] = testutil.S(name, "VALUE", types.Num(0.5))
			}
			n := g.Add("Node", tt.typ, ins, []*source.Socket{testutil.S("Out", "RGBA", types.Value{})}, source.Params{})
			bsdf := g.Principled("BSDF")
			g.Link(n, "Out", bsdf, "Base Color")

			e := newResolver().Resolve(bsdf.Input("Base Color"), "", tt.want)
			if us := expr.Unresolveds(e); len(us) != 0 {
				t.Fatalf("Resolve = %s, want no unresolved", expr.Key(e))
			}
			found := false
			expr.Walk(e, func(x expr.Expr) bool {
				if n, ok := x.(expr.Node); ok && n.NodeDef == tt.wantDef {
					found = true
				}
				return true
			})
			if !found {
				t.Errorf("Resolve = %s, want a %s node", expr.Key(e), tt.wantDef)
			}
		})
	}
}
