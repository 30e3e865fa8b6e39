package export

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/shaderport/pkg/cache"
	"github.com/matzehuels/shaderport/pkg/classify"
	"github.com/matzehuels/shaderport/pkg/diag"
	"github.com/matzehuels/shaderport/pkg/errors"
	"github.com/matzehuels/shaderport/pkg/expr"
	"github.com/matzehuels/shaderport/pkg/extract"
	"github.com/matzehuels/shaderport/pkg/lower"
	"github.com/matzehuels/shaderport/pkg/manifest"
	"github.com/matzehuels/shaderport/pkg/observability"
	"github.com/matzehuels/shaderport/pkg/resolve"
	"github.com/matzehuels/shaderport/pkg/source"
	"github.com/matzehuels/shaderport/pkg/target"
)

// Options tune one export.
type Options struct {
	// Strict promotes classifier warnings to errors and makes unresolved
	// anchors fatal.
	Strict bool
	// ForceUnlit exports every shader as unlit.
	ForceUnlit bool
	// Refresh bypasses cached materials. Results are still stored.
	Refresh bool
	// Assets maps image datablocks to texture paths. Nil uses the
	// recorded paths.
	Assets resolve.AssetResolver
}

// Result is the outcome of an export.
type Result struct {
	RunID          string
	Materials      []*target.Material
	Report         *diag.Report
	Classification classify.Summary
	CacheHits      int
}

// Runner runs exports against one manifest with caching.
//
// The Runner holds no per-export state, so one Runner may serve several
// exports in sequence.
type Runner struct {
	Manifest *manifest.Manifest
	Cache    cache.Cache
	Keyer    cache.Keyer
	Logger   *log.Logger

	// TTL bounds how long cached materials are reused. Zero uses
	// [cache.TTLMaterial].
	TTL time.Duration
}

// NewRunner creates a runner. A nil cache disables caching, a nil keyer
// uses [cache.DefaultKeyer] and a nil logger uses the default logger.
func NewRunner(m *manifest.Manifest, c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if c == nil {
		c = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Manifest: m, Cache: c, Keyer: keyer, Logger: logger}
}

// Close releases the cache.
func (r *Runner) Close() error { return r.Cache.Close() }

// entry is a cached lowered material and the diagnostics it produced.
type entry struct {
	Material *target.Material `json:"material"`
	Report   *diag.Report     `json:"report"`
}

// Export converts materials. The returned result carries the report even
// when err is non-nil; its Materials are only set on success.
func (r *Runner) Export(ctx context.Context, materials []*source.Material, opts Options) (*Result, error) {
	if r.Manifest == nil {
		return nil, errors.New(errors.ErrCodeManifestMissing, "no manifest loaded")
	}
	report := diag.NewReport()
	res := &Result{RunID: report.RunID, Report: report}

	start := time.Now()
	res.Classification = classify.Materials(materials, classify.Options{Strict: opts.Strict, Manifest: r.Manifest})
	for _, issue := range res.Classification.Warnings {
		report.Warn(issue.String())
	}
	for _, issue := range res.Classification.Errors {
		report.Error(issue.String())
	}
	observability.Export().OnClassify(ctx, len(materials),
		len(res.Classification.Errors), len(res.Classification.Warnings), time.Since(start))
	r.Logger.Debug("classified materials",
		"materials", len(materials),
		"errors", len(res.Classification.Errors),
		"warnings", len(res.Classification.Warnings))
	if !res.Classification.OK() {
		return res, errors.New(errors.ErrCodeClassification,
			"%d classification error(s) in %d material(s)", len(res.Classification.Errors), len(materials))
	}

	out := make([]*target.Material, 0, len(materials))
	for _, m := range materials {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		tm, hit, err := r.material(ctx, m, opts, report)
		if err != nil {
			return res, err
		}
		if hit {
			res.CacheHits++
		}
		out = append(out, tm)
	}
	res.Materials = out

	r.Logger.Info("exported materials",
		"materials", len(out),
		"cached", res.CacheHits,
		"warnings", len(report.Warnings),
		"duration", time.Since(start))
	return res, nil
}

// material converts one material, consulting the cache first. Its
// diagnostics go to a sub-report merged into report.
func (r *Runner) material(ctx context.Context, m *source.Material, opts Options, report *diag.Report) (*target.Material, bool, error) {
	hooks := observability.Export()
	hooks.OnLowerStart(ctx, m.Name)
	start := time.Now()

	key, keyed := r.key(m, opts)
	if keyed && !opts.Refresh {
		if e, ok := r.lookup(ctx, key); ok {
			observability.Cache().OnCacheHit(ctx, key)
			report.Merge(e.Report)
			hooks.OnLowerComplete(ctx, m.Name, e.Material.Graph.Len(), time.Since(start), nil)
			r.Logger.Debug("reused cached material", "material", m.Name, "nodes", e.Material.Graph.Len())
			return e.Material, true, nil
		}
		observability.Cache().OnCacheMiss(ctx, key)
	}

	sub := &diag.Report{}
	tm, err := r.lower(m, opts, sub)
	report.Merge(sub)
	if err != nil {
		report.Failed(m.Name, errors.UserMessage(err))
		hooks.OnLowerComplete(ctx, m.Name, 0, time.Since(start), err)
		return nil, false, err
	}
	report.Converted(m.Name)
	sub.Converted(m.Name)

	if keyed {
		r.store(ctx, key, entry{Material: tm, Report: sub})
	}
	hooks.OnLowerComplete(ctx, m.Name, tm.Graph.Len(), time.Since(start), nil)
	r.Logger.Debug("lowered material",
		"material", m.Name,
		"nodes", tm.Graph.Len(),
		"duration", time.Since(start))
	return tm, false, nil
}

// lower extracts and lowers m, writing diagnostics to sub.
func (r *Runner) lower(m *source.Material, opts Options, sub *diag.Report) (*target.Material, error) {
	x := &extract.Extractor{Manifest: r.Manifest, Assets: opts.Assets, ForceUnlit: opts.ForceUnlit}
	em := x.Extract(m)
	for _, w := range em.Warnings {
		sub.Warn(w)
	}
	for _, u := range em.Unresolved {
		sub.Warn(u)
	}
	if opts.Strict {
		if err := strictCheck(em); err != nil {
			return nil, err
		}
	}

	tm := target.NewMaterial(m.Name, em.NodeDef)
	l := lower.New(r.Manifest, tm, sub.Sink(m.Name))
	l.Plan(em.Exprs()...)
	for _, a := range em.Anchors {
		if err := l.Bind(a.Input, a.Type, a.Expr); err != nil {
			return nil, errors.Wrap(codeOf(err), err, "input %s: %s", a.Input, errors.UserMessage(err))
		}
	}
	if _, err := tm.Emit(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidTargetGraph, err, "%s", errors.UserMessage(err))
	}
	if err := tm.Validate(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidTargetGraph, err, "%s", errors.UserMessage(err))
	}
	return tm, nil
}

func codeOf(err error) errors.Code {
	if c := errors.GetCode(err); c != "" {
		return c
	}
	return errors.ErrCodeInternal
}

// strictCheck fails on any unresolved anchor or nested unresolved value.
func strictCheck(em *extract.Material) error {
	if len(em.Unresolved) > 0 {
		return errors.New(errors.ErrCodeUnresolved, "%s", em.Unresolved[0])
	}
	for _, a := range em.Anchors {
		if us := expr.Unresolveds(a.Expr); len(us) > 0 {
			return errors.New(errors.ErrCodeUnresolved,
				"Material '%s': Unable to resolve '%s' through chain: %s", em.Name, a.Input, us[0].Chain)
		}
	}
	return nil
}

// key returns the cache key of m. It reports false when m cannot be
// serialized, in which case the material is not cached.
func (r *Runner) key(m *source.Material, opts Options) (string, bool) {
	data, err := source.MarshalMaterials(m)
	if err != nil {
		r.Logger.Debug("material not cacheable", "material", m.Name, "error", err)
		return "", false
	}
	return r.Keyer.MaterialKey(cache.Hash(data), r.Manifest.Digest(), cache.MaterialKeyOpts{
		Strict:     opts.Strict,
		ForceUnlit: opts.ForceUnlit,
		Assets:     assetDigest(m, opts.Assets),
	}), true
}

// assetDigest hashes where every image of m resolves to under assets, so a
// different texture root or a texture appearing on disk misses the cache.
func assetDigest(m *source.Material, assets resolve.AssetResolver) string {
	if assets == nil {
		assets = resolve.ImagePaths
	}
	var b strings.Builder
	for _, img := range m.Images() {
		path, ok := assets.ResolveImage(img)
		fmt.Fprintf(&b, "%s\x00%t\x00%s\n", img.Path, ok, path)
	}
	if b.Len() == 0 {
		return ""
	}
	return cache.Hash([]byte(b.String()))
}

func (r *Runner) lookup(ctx context.Context, key string) (entry, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil || !hit {
		return entry{}, false
	}
	var e entry
	if err := json.Unmarshal(data, &e); err != nil || e.Material == nil {
		r.Logger.Debug("dropping cache entry", "key", key, "error", cache.ErrCorrupt)
		_ = r.Cache.Delete(ctx, key)
		return entry{}, false
	}
	return e, true
}

func (r *Runner) store(ctx context.Context, key string, e entry) {
	data, err := json.Marshal(e)
	if err != nil {
		r.Logger.Warn("cannot encode material for cache", "material", e.Material.Name, "error", err)
		return
	}
	ttl := r.TTL
	if ttl == 0 {
		ttl = cache.TTLMaterial
	}
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Warn("cache write failed", "error", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, key, len(data))
}
