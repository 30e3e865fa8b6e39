package lower

import (
	"math"

	"github.com/matzehuels/shaderport/pkg/diag"
	"github.com/matzehuels/shaderport/pkg/errors"
	"github.com/matzehuels/shaderport/pkg/expr"
	"github.com/matzehuels/shaderport/pkg/manifest"
	"github.com/matzehuels/shaderport/pkg/target"
	"github.com/matzehuels/shaderport/pkg/types"
)

// ErrSkipped is returned when a manifest policy drops a node. The consumer
// leaves its input unauthored.
var ErrSkipped = errors.New(errors.ErrCodeUnsupported, "node skipped by manifest policy")

// IsSkipped reports whether err is [ErrSkipped].
func IsSkipped(err error) bool { return errors.Is(err, errors.ErrCodeUnsupported) }

// Value is a lowered expression: a literal, or an output in the graph.
type Value struct {
	Output  target.Output
	Literal types.Value
	Type    types.Type
}

// IsLiteral reports whether v carries a literal rather than a connection.
func (v Value) IsLiteral() bool { return !v.Output.Valid() }

func literal(lit types.Value, t types.Type) Value {
	return Value{Output: target.Output{Node: target.NoNode}, Literal: lit, Type: t}
}

func connected(o target.Output, t types.Type) Value {
	return Value{Output: o, Type: t}
}

type convertKey struct {
	from target.Output
	to   types.Type
}

type swizzleKey struct {
	from    target.Output
	channel string
}

// Lowerer lowers the expressions of one material. It is not safe for
// concurrent use and must not be reused across materials.
type Lowerer struct {
	manifest *manifest.Manifest
	material *target.Material
	graph    *target.Graph
	sink     *diag.Sink
	textures *TextureCache

	alpha    map[string]bool
	shared   map[string]target.NodeHandle
	converts map[convertKey]target.Output
	swizzles map[swizzleKey]target.Output
}

// New creates a Lowerer emitting into mat. A nil sink discards
// diagnostics.
func New(m *manifest.Manifest, mat *target.Material, sink *diag.Sink) *Lowerer {
	return &Lowerer{
		manifest: m,
		material: mat,
		graph:    mat.Graph,
		sink:     sink,
		textures: NewTextureCache(),
		alpha:    map[string]bool{},
		shared:   map[string]target.NodeHandle{},
		converts: map[convertKey]target.Output{},
		swizzles: map[swizzleKey]target.Output{},
	}
}

// Textures returns the texture cache of the material.
func (l *Lowerer) Textures() *TextureCache { return l.textures }

// Plan scans every expression of the material before lowering. A fetch
// that any consumer reads through its alpha channel, or as a four channel
// value, is emitted as color4 for all consumers so the read is shared.
func (l *Lowerer) Plan(exprs ...expr.Expr) {
	for _, e := range exprs {
		for _, t := range expr.Textures(e) {
			if t.Normal != nil {
				continue
			}
			if t.Channel == "a" || t.OutputType == types.Color4 || t.OutputType == types.Vector4 {
				l.alpha[t.FetchKey()] = true
			}
		}
	}
}

// Bind lowers e and wires it into the surface input, as a literal or a
// connection. A nil expression leaves the input alone, as does a node
// skipped by policy. An unresolved expression fails with
// [errors.ErrCodeUnresolved].
func (l *Lowerer) Bind(input string, want types.Type, e expr.Expr) error {
	if e == nil {
		return nil
	}
	v, err := l.Lower(e, want, input)
	if IsSkipped(err) {
		return nil
	}
	if err != nil {
		return err
	}
	if v.IsLiteral() {
		l.material.SetInput(input, v.Literal)
		return nil
	}
	return l.material.Connect(input, v.Output)
}

// Lower emits the nodes behind e, converted to want when want is set.
// hint names the node created for e.
func (l *Lowerer) Lower(e expr.Expr, want types.Type, hint string) (Value, error) {
	switch v := e.(type) {
	case nil:
		return Value{}, errors.New(errors.ErrCodeInvalidInput, "lower: nil expression")
	case expr.Constant:
		return l.constant(v, want), nil
	case expr.Unresolved:
		return Value{}, errors.New(errors.ErrCodeUnresolved, "unable to resolve through chain: %s", v.Chain)
	case expr.Texture:
		return l.texture(v, want, hint)
	case expr.Node:
		return l.node(v, want, hint)
	}
	return Value{}, errors.New(errors.ErrCodeInternal, "lower: unknown expression %T", e)
}

func (l *Lowerer) constant(c expr.Constant, want types.Type) Value {
	if want == types.None {
		return literal(c.Value, types.Infer(c.Value))
	}
	return literal(types.CoerceTo(c.Value, want), want)
}

type loweredArg struct {
	name string
	val  Value
}

func (l *Lowerer) node(n expr.Node, want types.Type, hint string) (Value, error) {
	def := l.lookup(n.NodeDef, n.Type)
	key := expr.Key(expr.Node{NodeDef: n.NodeDef, Args: n.Args})

	outType := n.Type
	if def != nil {
		if t := def.OutputType(n.Output); t != types.None {
			outType = t
		}
	}

	h, ok := l.shared[key]
	if !ok {
		if def != nil && def.Policy.OmittedInDefs {
			l.sink.Omitted(def.Name)
			return Value{}, ErrSkipped
		}
		args, err := l.args(n, def)
		if err != nil {
			return Value{}, err
		}
		h, err = l.emit(def, n.NodeDef, hint)
		if err != nil {
			return Value{}, err
		}
		for _, a := range args {
			if err := l.wire(h, a.name, a.val); err != nil {
				return Value{}, err
			}
		}
		l.shared[key] = h
	}

	out := target.Output{Node: h, Name: outputName(def, n.Output)}
	return l.convert(connected(out, outType), want)
}

// args lowers the children of n against their declared input types.
// Unresolved children are reported and left unauthored.
func (l *Lowerer) args(n expr.Node, def *manifest.NodeDef) ([]loweredArg, error) {
	out := make([]loweredArg, 0, len(n.Args))
	for _, a := range n.Args {
		if a.Expr == nil {
			continue
		}
		if u, ok := a.Expr.(expr.Unresolved); ok {
			l.sink.Warnf("Unable to resolve '%s' through chain: %s", a.Name, u.Chain)
			continue
		}
		want := types.None
		if def != nil {
			want = def.InputType(a.Name)
		}
		v, err := l.Lower(a.Expr, want, "")
		if IsSkipped(err) {
			continue
		}
		if errors.Is(err, errors.ErrCodeUnresolved) {
			l.sink.Warnf("Unable to resolve '%s': %s", a.Name, errors.UserMessage(err))
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, loweredArg{a.Name, v})
	}
	return out, nil
}

func (l *Lowerer) wire(h target.NodeHandle, input string, v Value) error {
	if v.IsLiteral() {
		return l.graph.SetInput(h, input, v.Literal)
	}
	return l.graph.Connect(v.Output, h, input)
}

func outputName(def *manifest.NodeDef, name string) string {
	if name != "" {
		return name
	}
	if def != nil && len(def.Outputs) > 0 {
		return def.Outputs[0].Name
	}
	return target.DefaultOutput
}

// lookup returns the definition named name, or the best variant when name
// is a bare node name.
func (l *Lowerer) lookup(name string, out types.Type) *manifest.NodeDef {
	if d, ok := l.manifest.Def(name); ok {
		return d
	}
	if d, ok := l.manifest.SelectDef(name, manifest.Query{Output: out}); ok {
		return d
	}
	return nil
}

// pick selects a variant of node for q, returning the definition or, when
// none matches, the conventional name.
func (l *Lowerer) pick(node string, q manifest.Query) (*manifest.NodeDef, string) {
	if d, ok := l.manifest.SelectDef(node, q); ok {
		return d, d.Name
	}
	return nil, manifest.GuessName(node, q)
}

// pickFor selects a variant of node whose input port has type in and
// whose output has type out. The manifest's selection ladder is consulted
// first; its pick is kept only when port really takes in, since the io
// index covers single-input definitions alone. Otherwise every variant is
// scanned for a port match and full precision variants win.
func (l *Lowerer) pickFor(node, port string, in, out types.Type) (*manifest.NodeDef, string) {
	q := manifest.Query{Input: in, Output: out}
	if d, ok := l.manifest.SelectDef(node, q); ok && d.InputType(port) == in && d.OutputType("") == out {
		return d, d.Name
	}
	var half *manifest.NodeDef
	for _, d := range l.manifest.Variants(node) {
		if d.InputType(port) != in || d.OutputType("") != out {
			continue
		}
		if !d.Policy.HalfType {
			return d, d.Name
		}
		if half == nil {
			half = d
		}
	}
	if half != nil {
		return half, half.Name
	}
	return nil, manifest.GuessName(node, q)
}

// emit adds a node for def, or for the bare name when def is nil.
func (l *Lowerer) emit(def *manifest.NodeDef, name, hint string) (target.NodeHandle, error) {
	if def == nil {
		l.sink.Warnf("Node definition '%s' not found in manifest; emitted name may be invalid.", name)
		return l.graph.AddNode(name, hint), nil
	}
	if def.Policy.OmittedInDefs {
		l.sink.Omitted(def.Name)
		return target.NoNode, ErrSkipped
	}
	if def.Policy.Fallback {
		l.sink.Fallback(def.Name)
	}
	return l.graph.AddNode(def.Name, hint), nil
}

// convert adapts v to want with a single node. Literals are coerced
// instead. A multi-channel value read as a scalar keeps its first channel.
func (l *Lowerer) convert(v Value, want types.Type) (Value, error) {
	if want == types.None || v.Type == types.None || v.Type == want {
		return v, nil
	}
	if v.IsLiteral() {
		return literal(types.CoerceTo(v.Literal, want), want), nil
	}
	if want == types.Float && v.Type.IsMulti() {
		return l.swizzle(v, v.Type.Channels()[:1])
	}

	key := convertKey{v.Output, want}
	if o, ok := l.converts[key]; ok {
		return connected(o, want), nil
	}
	def, name := l.pickFor("convert", "in", v.Type, want)
	h, err := l.emit(def, name, "")
	if err != nil {
		return Value{}, err
	}
	if err := l.graph.Connect(v.Output, h, "in"); err != nil {
		return Value{}, err
	}
	o := target.Out(h)
	l.converts[key] = o
	return connected(o, want), nil
}

// swizzle extracts one channel of v as a float.
func (l *Lowerer) swizzle(v Value, channel string) (Value, error) {
	key := swizzleKey{v.Output, channel}
	if o, ok := l.swizzles[key]; ok {
		return connected(o, types.Float), nil
	}
	def, name := l.pickFor("swizzle", "in", v.Type, types.Float)
	h, err := l.emit(def, name, "")
	if err != nil {
		return Value{}, err
	}
	if err := l.graph.Connect(v.Output, h, "in"); err != nil {
		return Value{}, err
	}
	if err := l.graph.SetInput(h, "channels", types.Str(channel)); err != nil {
		return Value{}, err
	}
	o := target.Out(h)
	l.swizzles[key] = o
	return connected(o, types.Float), nil
}

// scale multiplies v by the literal s.
func (l *Lowerer) scale(v Value, s float64) (Value, error) {
	if math.Abs(s-1) <= 1e-6 {
		return v, nil
	}
	def, name := l.pickFor("multiply", "in1", v.Type, v.Type)
	in2 := v.Type
	if def != nil {
		in2 = def.InputType("in2")
	}
	h, err := l.emit(def, name, "")
	if err != nil {
		return Value{}, err
	}
	if err := l.graph.Connect(v.Output, h, "in1"); err != nil {
		return Value{}, err
	}
	if err := l.graph.SetInput(h, "in2", types.CoerceTo(types.Num(s), in2)); err != nil {
		return Value{}, err
	}
	return connected(target.Out(h), v.Type), nil
}
