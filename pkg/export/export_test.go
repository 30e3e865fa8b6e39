package export

import (
	"context"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/shaderport/internal/testutil"
	"github.com/matzehuels/shaderport/pkg/cache"
	"github.com/matzehuels/shaderport/pkg/errors"
	"github.com/matzehuels/shaderport/pkg/observability"
	"github.com/matzehuels/shaderport/pkg/resolve"
	"github.com/matzehuels/shaderport/pkg/source"
	"github.com/matzehuels/shaderport/pkg/target"
	"github.com/matzehuels/shaderport/pkg/types"
)

func texturedMaterial(t *testing.T, name string) *source.Material {
	g := testutil.NewGraph(t, name)
	bsdf := g.Principled("BSDF")
	img := g.Image("Image", "//tex/"+name+".png", "sRGB")
	g.Link(img, "Color", bsdf, "Base Color")
	g.Output("Out", bsdf)
	return g.Material(name, "OPAQUE")
}

func wavyMaterial(t *testing.T) *source.Material {
	g := testutil.NewGraph(t, "Wavy")
	bsdf := g.Principled("BSDF")
	wave := g.Add("Wave", "TEX_WAVE", nil, []*source.Socket{testutil.S("Color", "RGBA", types.Value{})}, source.Params{})
	g.Link(wave, "Color", bsdf, "Base Color")
	g.Output("Out", bsdf)
	return g.Material("Wavy", "OPAQUE")
}

func newRunner(t *testing.T, c cache.Cache) *Runner {
	t.Helper()
	r := NewRunner(testutil.Manifest(), c, nil, nil)
	t.Cleanup(func() { r.Close() })
	return r
}

func TestExport(t *testing.T) {
	r := newRunner(t, nil)
	res, err := r.Export(context.Background(), []*source.Material{
		texturedMaterial(t, "Wood"),
		texturedMaterial(t, "Stone"),
	}, Options{})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if len(res.Materials) != 2 {
		t.Fatalf("len(Materials) = %d, want 2", len(res.Materials))
	}
	if res.Report.Materials.Converted != 2 {
		t.Errorf("Converted = %d, want 2", res.Report.Materials.Converted)
	}
	if res.RunID == "" || res.RunID != res.Report.RunID {
		t.Errorf("RunID = %q, report run id %q", res.RunID, res.Report.RunID)
	}
	for _, m := range res.Materials {
		if m.Surface.NodeDef != "ND_realitykit_pbr_surfaceshader" {
			t.Errorf("%s surface = %q", m.Name, m.Surface.NodeDef)
		}
		if _, ok := m.Surface.Connections["baseColor"]; !ok {
			t.Errorf("%s: baseColor not connected", m.Name)
		}
		if m.Graph.Len() == 0 {
			t.Errorf("%s: empty graph", m.Name)
		}
		out, ok := m.Graph.Output()
		if !ok {
			t.Errorf("%s: graph has no designated output", m.Name)
			continue
		}
		if n, _ := m.Graph.Node(out.Node); n.NodeDef != m.Surface.NodeDef {
			t.Errorf("%s: output node = %s, want the surface %s", m.Name, n.NodeDef, m.Surface.NodeDef)
		}
	}
}

func TestClassificationAborts(t *testing.T) {
	g := testutil.NewGraph(t, "Odd")
	bsdf := g.Principled("BSDF")
	odd := g.Add("Odd", "TEX_SOMETHING_NEW", nil, []*source.Socket{testutil.S("Color", "RGBA", types.Value{})}, source.Params{})
	g.Link(odd, "Color", bsdf, "Base Color")
	g.Output("Out", bsdf)

	r := newRunner(t, nil)
	res, err := r.Export(context.Background(), []*source.Material{texturedMaterial(t, "Fine"), g.Material("Odd", "OPAQUE")}, Options{})
	if !errors.Is(err, errors.ErrCodeClassification) {
		t.Fatalf("err = %v, want %s", err, errors.ErrCodeClassification)
	}
	if res.Materials != nil {
		t.Errorf("Materials = %v, want none", res.Materials)
	}
	if res.Report.Materials.Converted != 0 {
		t.Errorf("Converted = %d, want 0 before lowering", res.Report.Materials.Converted)
	}
	if len(res.Report.Errors) == 0 {
		t.Error("classification issue not reported")
	}
}

func TestUnresolvedAnchor(t *testing.T) {
	r := newRunner(t, nil)

	res, err := r.Export(context.Background(), []*source.Material{wavyMaterial(t)}, Options{})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	m := res.Materials[0]
	if _, ok := m.Surface.Connections["baseColor"]; ok {
		t.Error("unresolved baseColor was bound")
	}
	if _, ok := m.Surface.Inputs["baseColor"]; ok {
		t.Error("unresolved baseColor got a literal")
	}
	want := "Material 'Wavy': Unable to resolve 'Base Color' through chain: Wave (TEX_WAVE:Color)"
	if !slices.Contains(res.Report.Warnings, want) {
		t.Errorf("Warnings = %q, want %q", res.Report.Warnings, want)
	}
}

func TestStrictUnresolvedAborts(t *testing.T) {
	missing := resolve.AssetResolverFunc(func(*source.Image) (string, bool) { return "", false })
	r := newRunner(t, nil)

	res, err := r.Export(context.Background(), []*source.Material{texturedMaterial(t, "Wood")},
		Options{Strict: true, Assets: missing})
	if !errors.Is(err, errors.ErrCodeUnresolved) {
		t.Fatalf("err = %v, want %s", err, errors.ErrCodeUnresolved)
	}
	if res.Materials != nil {
		t.Errorf("Materials = %v, want none", res.Materials)
	}
	if res.Report.Materials.Failed != 1 {
		t.Errorf("Failed = %d, want 1", res.Report.Materials.Failed)
	}

	res, err = r.Export(context.Background(), []*source.Material{texturedMaterial(t, "Wood")},
		Options{Assets: missing})
	if err != nil {
		t.Fatalf("non-strict Export: %v", err)
	}
	if len(res.Report.Warnings) == 0 {
		t.Error("non-strict run recorded no warning")
	}
}

func TestCacheReplaysDiagnostics(t *testing.T) {
	c, err := cache.NewMemoryCache(16)
	if err != nil {
		t.Fatal(err)
	}
	r := newRunner(t, c)
	ms := []*source.Material{wavyMaterial(t), texturedMaterial(t, "Wood")}

	first, err := r.Export(context.Background(), ms, Options{})
	if err != nil {
		t.Fatal(err)
	}
	second, err := r.Export(context.Background(), ms, Options{})
	if err != nil {
		t.Fatal(err)
	}

	if first.CacheHits != 0 || second.CacheHits != 2 {
		t.Errorf("CacheHits = %d, %d, want 0, 2", first.CacheHits, second.CacheHits)
	}
	if !slices.Equal(first.Report.Warnings, second.Report.Warnings) {
		t.Errorf("cached warnings = %q, want %q", second.Report.Warnings, first.Report.Warnings)
	}
	if second.Report.Materials.Converted != 2 {
		t.Errorf("cached Converted = %d, want 2", second.Report.Materials.Converted)
	}
	if got, want := second.Materials[1].Graph.Len(), first.Materials[1].Graph.Len(); got != want {
		t.Errorf("cached graph has %d nodes, want %d", got, want)
	}

	refreshed, err := r.Export(context.Background(), ms, Options{Refresh: true})
	if err != nil {
		t.Fatal(err)
	}
	if refreshed.CacheHits != 0 {
		t.Errorf("refresh CacheHits = %d, want 0", refreshed.CacheHits)
	}

	unlit, err := r.Export(context.Background(), ms, Options{ForceUnlit: true})
	if err != nil {
		t.Fatal(err)
	}
	if unlit.CacheHits != 0 {
		t.Errorf("ForceUnlit reused %d entries keyed without it", unlit.CacheHits)
	}
}

func TestCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := newRunner(t, nil)
	res, err := r.Export(ctx, []*source.Material{texturedMaterial(t, "Wood")}, Options{})
	if err != context.Canceled {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if res.Materials != nil {
		t.Error("canceled export returned materials")
	}
}

func TestNoManifest(t *testing.T) {
	r := &Runner{}
	if _, err := r.Export(context.Background(), nil, Options{}); !errors.Is(err, errors.ErrCodeManifestMissing) {
		t.Errorf("err = %v, want %s", err, errors.ErrCodeManifestMissing)
	}
}

type recordingHooks struct {
	observability.NoopExportHooks
	mu        sync.Mutex
	started   []string
	completed []string
}

func (h *recordingHooks) OnLowerStart(_ context.Context, material string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.started = append(h.started, material)
}

func (h *recordingHooks) OnLowerComplete(_ context.Context, material string, _ int, _ time.Duration, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err == nil {
		h.completed = append(h.completed, material)
	}
}

func TestHooks(t *testing.T) {
	h := &recordingHooks{}
	observability.SetExportHooks(h)
	t.Cleanup(observability.Reset)

	r := newRunner(t, nil)
	if _, err := r.Export(context.Background(), []*source.Material{texturedMaterial(t, "A"), texturedMaterial(t, "B")}, Options{}); err != nil {
		t.Fatal(err)
	}
	want := []string{"A", "B"}
	if !slices.Equal(h.started, want) || !slices.Equal(h.completed, want) {
		t.Errorf("hooks saw start %v, complete %v, want %v", h.started, h.completed, want)
	}
}

func TestCorruptEntryIsRecomputed(t *testing.T) {
	c, err := cache.NewMemoryCache(16)
	if err != nil {
		t.Fatal(err)
	}
	r := newRunner(t, c)
	m := texturedMaterial(t, "Wood")
	key, ok := r.key(m, Options{})
	if !ok {
		t.Fatal("material not cacheable")
	}
	if err := c.Set(context.Background(), key, []byte("{not json"), 0); err != nil {
		t.Fatal(err)
	}

	res, err := r.Export(context.Background(), []*source.Material{m}, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if res.CacheHits != 0 {
		t.Errorf("CacheHits = %d, want 0 for a corrupt entry", res.CacheHits)
	}
	data, hit, _ := c.Get(context.Background(), key)
	if !hit || string(data) == "{not json" {
		t.Error("corrupt entry was not replaced")
	}
}

// imageFile returns the file input of the first image fetch in m.
func imageFile(m *target.Material) string {
	for _, n := range m.Graph.Nodes() {
		if strings.HasPrefix(n.NodeDef, "ND_image_") {
			return n.Inputs["file"].StringValue()
		}
	}
	return ""
}

func TestCacheKeyFollowsAssets(t *testing.T) {
	c, err := cache.NewMemoryCache(16)
	if err != nil {
		t.Fatal(err)
	}
	r := newRunner(t, c)
	ms := []*source.Material{texturedMaterial(t, "Wood")}
	root := func(dir string) resolve.AssetResolver {
		return resolve.AssetResolverFunc(func(*source.Image) (string, bool) {
			return dir + "/wood.png", true
		})
	}
	missing := resolve.AssetResolverFunc(func(*source.Image) (string, bool) { return "", false })

	tests := []struct {
		name     string
		assets   resolve.AssetResolver
		wantHits int
		wantFile string
	}{
		{"first root", root("/a"), 0, "/a/wood.png"},
		{"same root", root("/a"), 1, "/a/wood.png"},
		{"other root", root("/b"), 0, "/b/wood.png"},
		{"texture gone", missing, 0, ""},
		{"texture back", root("/b"), 1, "/b/wood.png"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := r.Export(context.Background(), ms, Options{Assets: tt.assets})
			if err != nil {
				t.Fatal(err)
			}
			if res.CacheHits != tt.wantHits {
				t.Errorf("CacheHits = %d, want %d", res.CacheHits, tt.wantHits)
			}
			if got := imageFile(res.Materials[0]); got != tt.wantFile {
				t.Errorf("file = %q, want %q", got, tt.wantFile)
			}
		})
	}
}
