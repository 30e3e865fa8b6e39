package resolve

import (
	"math"
	"slices"
	"strings"

	"github.com/matzehuels/shaderport/pkg/expr"
	"github.com/matzehuels/shaderport/pkg/source"
	"github.com/matzehuels/shaderport/pkg/types"
)

// curveEpsilon is the tolerance for a curve knot to lie on the identity line.
const curveEpsilon = 1e-4

func num(f float64) types.Value { return types.Num(f) }

// mix lowers a mix node that is not an identity. MIX blends become a mix
// node; arithmetic blends combine A and B and are then mixed back over A
// by the factor.
func (w *walk) mix(n *source.Node, want types.Type, chain expr.Chain) expr.Expr {
	op, ok := source.MixBlends[source.BlendType(n)]
	if !ok {
		return expr.Unresolved{Chain: chain}
	}
	t := want
	if t == types.None {
		switch strings.ToUpper(n.Params.DataType) {
		case "FLOAT":
			t = types.Float
		case "VECTOR":
			t = types.Vector3
		default:
			t = types.Color3
		}
	}
	facS, aS, bS := source.MixSockets(n)
	fac := w.arg(facS, types.Float, num(0.5), chain)
	a := w.arg(aS, t, types.Value{}, chain)
	b := w.arg(bS, t, types.Value{}, chain)

	if op == "" {
		return w.call("mix", t, expr.A("fg", b), expr.A("bg", a), expr.A("mix", fac))
	}
	combined := w.call(op, t, expr.A("in1", a), expr.A("in2", b))
	if expr.IsConstant(fac, 1) {
		return combined
	}
	return w.call("mix", t, expr.A("fg", combined), expr.A("bg", a), expr.A("mix", fac))
}

// math lowers a math node that is not an identity.
func (w *walk) math(n *source.Node, chain expr.Chain) expr.Expr {
	opName := source.MathOperation(n)
	op, ok := source.MathNodes[opName]
	if !ok {
		return expr.Unresolved{Chain: chain}
	}
	args := []expr.Arg{expr.A("in1", w.arg(n.InputAt(0), types.Float, num(0), chain))}
	if !source.UnaryMath[opName] {
		args = append(args, expr.A("in2", w.arg(n.InputAt(1), types.Float, num(0), chain)))
	}
	e := w.call(op, types.Float, args...)
	if n.Params.Clamp {
		e = w.call("clamp", types.Float, expr.A("in", e), expr.A("low", expr.Const(num(0))), expr.A("high", expr.Const(num(1))))
	}
	return e
}

// compute maps the fixed-function nodes onto their target equivalents.
// Unlinked parameters take the node's literal or a neutral default.
func (w *walk) compute(n *source.Node, want types.Type, chain expr.Chain) expr.Expr {
	in := func(name string, t types.Type, def types.Value) expr.Expr {
		return w.arg(n.Input(name), t, def, chain)
	}
	c := func(v types.Value) expr.Expr { return expr.Const(v) }

	switch n.Kind {
	case source.KindClamp:
		t := or(want, types.Float)
		v := in("Value", t, types.Value{})
		if v == nil {
			v = w.arg(n.InputAt(0), t, types.Value{}, chain)
		}
		return w.call("clamp", t,
			expr.A("in", v),
			expr.A("low", in("Min", types.Float, num(0))),
			expr.A("high", in("Max", types.Float, num(1))))

	case source.KindMapRange:
		t := or(want, types.Float)
		args := []expr.Arg{
			expr.A("in", in("Value", t, types.Value{})),
			expr.A("inlow", in("From Min", types.Float, num(0))),
			expr.A("inhigh", in("From Max", types.Float, num(1))),
			expr.A("outlow", in("To Min", types.Float, num(0))),
			expr.A("outhigh", in("To Max", types.Float, num(1))),
			expr.A("gamma", c(num(1))),
		}
		if n.Params.Clamp {
			args = append(args, expr.A("doclamp", c(types.Bool(true))))
		}
		return w.call("range", t, args...)

	case source.KindHueSat:
		t := or(want, types.Color3)
		color := in("Color", types.Color3, types.Value{})
		amount := w.call("combine3", types.Vector3,
			expr.A("in1", in("Hue", types.Float, num(0.5))),
			expr.A("in2", in("Saturation", types.Float, num(1))),
			expr.A("in3", in("Value", types.Float, num(1))))
		hsv := w.call("hsvadjust", t, expr.A("in", color), expr.A("amount", amount))
		fac := in("Fac", types.Float, num(1))
		if expr.IsConstant(fac, 1) {
			return hsv
		}
		return w.call("mix", t, expr.A("fg", hsv), expr.A("bg", color), expr.A("mix", fac))

	case source.KindInvert:
		color := in("Color", or(want, types.Color3), types.Value{})
		if color == nil {
			return expr.Unresolved{Chain: chain}
		}
		if want.IsVector() {
			return color
		}
		fac := in("Fac", types.Float, num(1))
		if expr.IsConstant(fac, 0) {
			return color
		}
		t := or(want, types.Color3)
		inv := w.call("oneminus", t, expr.A("in", color))
		if expr.IsConstant(fac, 1) {
			return inv
		}
		return w.call("mix", t, expr.A("fg", inv), expr.A("bg", color), expr.A("mix", fac))

	case source.KindBrightContrast:
		t := or(want, types.Color3)
		bright := in("Bright", types.Float, num(0))
		amount := w.call("add", types.Float, expr.A("in1", in("Contrast", types.Float, num(0))), expr.A("in2", c(num(1))))
		out := w.call("contrast", t,
			expr.A("in", in("Color", types.Color3, types.Value{})),
			expr.A("amount", amount),
			expr.A("pivot", c(num(0.5))))
		if expr.IsConstant(bright, 0) {
			return out
		}
		offset := w.call("combine3", types.Color3, expr.A("in1", bright), expr.A("in2", bright), expr.A("in3", bright))
		return w.call("add", t, expr.A("in1", out), expr.A("in2", offset))

	case source.KindColorRamp:
		return w.colorRamp(n, in("Fac", types.Float, num(0)))

	case source.KindCurveRGB:
		return w.curveRGB(n, want, chain)

	case source.KindRGBToBW:
		return w.call("luminance", types.Float, expr.A("in", in("Color", types.Color3, types.Value{})))

	case source.KindCombineColor:
		if mode := strings.ToUpper(n.Params.Mode); mode != "" && mode != "RGB" {
			return expr.Unresolved{Chain: chain}
		}
		r := in("R", types.Float, num(0))
		g := in("G", types.Float, num(0))
		b := in("B", types.Float, num(0))
		if a := n.Input("A", "Alpha"); a != nil {
			return w.call("combine4", types.Color4, expr.A("in1", r), expr.A("in2", g), expr.A("in3", b),
				expr.A("in4", w.arg(a, types.Float, num(1), chain)))
		}
		return w.call("combine3", types.Color3, expr.A("in1", r), expr.A("in2", g), expr.A("in3", b))

	case source.KindVectorRotate:
		var axis expr.Expr
		switch strings.ToUpper(n.Params.RotationType) {
		case "X_AXIS":
			axis = c(types.Tuple(1, 0, 0))
		case "Y_AXIS":
			axis = c(types.Tuple(0, 1, 0))
		case "Z_AXIS":
			axis = c(types.Tuple(0, 0, 1))
		case "", "AXIS_ANGLE":
			axis = in("Axis", types.Vector3, types.Tuple(0, 0, 1))
		default:
			return expr.Unresolved{Chain: chain}
		}
		angle := in("Angle", types.Float, num(0))
		if k, ok := angle.(expr.Constant); ok {
			if rad, ok := k.Value.Float(); ok {
				angle = c(num(rad * 180 / math.Pi))
			}
		}
		return w.call("rotate3d", types.Vector3,
			expr.A("in", in("Vector", types.Vector3, types.Tuple(0, 0, 0))),
			expr.A("axis", axis),
			expr.A("amount", angle))

	case source.KindVectorTransform:
		node := "transformvector"
		switch strings.ToUpper(n.Params.VectorType) {
		case "NORMAL":
			node = "transformnormal"
		case "POINT":
			node = "transformpoint"
		}
		args := []expr.Arg{expr.A("in", in("Vector", types.Vector3, types.Tuple(0, 0, 0)))}
		if s := n.Params.ConvertFrom; s != "" {
			args = append(args, expr.A("fromspace", c(types.Str(strings.ToLower(s)))))
		}
		if s := n.Params.ConvertTo; s != "" {
			args = append(args, expr.A("tospace", c(types.Str(strings.ToLower(s)))))
		}
		return w.call(node, types.Vector3, args...)

	case source.KindNormal:
		if out := n.Output("Normal"); out != nil && out.Default.Arity() >= 3 {
			return c(types.Coerce(out.Default, 3))
		}
		return w.call("normal", types.Vector3, expr.A("space", c(types.Str("world"))))

	case source.KindTexNoise:
		scale := in("Scale", types.Float, num(1))
		return w.call("unifiednoise3d", types.Float,
			expr.A("position", w.position(n, chain)),
			expr.A("freq", w.call("combine3", types.Vector3, expr.A("in1", scale), expr.A("in2", scale), expr.A("in3", scale))),
			expr.A("offset", c(types.Tuple(0, 0, 0))),
			expr.A("jitter", in("Distortion", types.Float, num(0))),
			expr.A("octaves", in("Detail", types.Float, num(2))),
			expr.A("lacunarity", c(num(2))),
			expr.A("diminish", in("Roughness", types.Float, num(0.5))),
			expr.A("type", c(types.Int(0))))

	case source.KindTexVoronoi:
		return w.call("worleynoise3d", types.Float,
			expr.A("position", w.position(n, chain)),
			expr.A("jitter", in("Randomness", types.Float, num(1))))

	case source.KindTexMusgrave:
		return w.call("fractal3d", types.Float,
			expr.A("position", w.position(n, chain)),
			expr.A("octaves", in("Detail", types.Float, num(2))),
			expr.A("lacunarity", in("Lacunarity", types.Float, num(2))),
			expr.A("diminish", in("Dimension", types.Float, num(0.5))),
			expr.A("amplitude", c(num(1))))

	case source.KindTexGradient:
		texcoord := w.linked(n.Input("Vector"), types.Vector2, chain)
		if texcoord == nil {
			texcoord = w.call("texcoord", types.Vector2)
		}
		return w.call("ramplr", types.Float,
			expr.A("valuel", c(num(0))),
			expr.A("valuer", c(num(1))),
			expr.A("texcoord", texcoord))
	}
	return expr.Unresolved{Chain: chain}
}

// linked resolves s only when it is linked.
func (w *walk) linked(s *source.Socket, want types.Type, chain expr.Chain) expr.Expr {
	if !s.Linked() {
		return nil
	}
	return w.socket(s, "", want, chain)
}

// position is the sample position of a procedural texture, defaulting to
// the 3D texture coordinate.
func (w *walk) position(n *source.Node, chain expr.Chain) expr.Expr {
	if e := w.linked(n.Input("Vector"), types.Vector3, chain); e != nil {
		return e
	}
	return w.call("texcoord", types.Vector3)
}

// colorRamp keeps the outer stops of a ramp as a left-right gradient over
// fac. Alpha is kept when either stop is translucent.
func (w *walk) colorRamp(n *source.Node, fac expr.Expr) expr.Expr {
	left, right := [4]float64{0, 0, 0, 1}, [4]float64{1, 1, 1, 1}
	if stops := n.Params.Ramp; len(stops) >= 2 {
		sorted := slices.SortedStableFunc(slices.Values(stops), func(a, b source.RampStop) int {
			switch {
			case a.Position < b.Position:
				return -1
			case a.Position > b.Position:
				return 1
			}
			return 0
		})
		left, right = sorted[0].Color, sorted[len(sorted)-1].Color
	}
	t, arity := types.Color3, 3
	if left[3] < 0.999 || right[3] < 0.999 {
		t, arity = types.Color4, 4
	}
	texcoord := w.call("combine2", types.Vector2, expr.A("in1", fac), expr.A("in2", expr.Const(num(0))))
	return w.call("ramplr", t,
		expr.A("valuel", expr.Const(types.Tuple(left[:arity]...))),
		expr.A("valuer", expr.Const(types.Tuple(right[:arity]...))),
		expr.A("texcoord", texcoord))
}

// curveRGB applies the combined curve, then the per-channel curves, to the
// separated channels of the input color.
func (w *walk) curveRGB(n *source.Node, want types.Type, chain expr.Chain) expr.Expr {
	color := w.arg(n.Input("Color"), types.Color3, types.Value{}, chain)
	if color == nil {
		return expr.Unresolved{Chain: chain}
	}
	if want != types.None && !want.IsColor() {
		return color
	}
	curves := n.Params.Curves
	if len(curves) == 0 {
		return expr.Unresolved{Chain: chain}
	}
	curve := func(i int) [][2]float64 {
		if i < len(curves) {
			return sortKnots(curves[i])
		}
		return sortKnots(curves[0])
	}
	combined := curve(0)
	perChannel := [3][][2]float64{curve(1), curve(2), curve(3)}

	identity := identityCurve(combined)
	for _, k := range perChannel {
		identity = identity && identityCurve(k)
	}
	fac := w.arg(n.Input("Fac"), types.Float, num(1), chain)
	if identity || expr.IsConstant(fac, 0) {
		return color
	}

	apply := func(e expr.Expr, knots [][2]float64) expr.Expr {
		return w.call("curveadjust", types.Float, expr.A("in", e), expr.A("knots", expr.Const(types.Knots(knots))))
	}
	var chans [3]expr.Expr
	for i, out := range []string{"outr", "outg", "outb"} {
		var e expr.Expr = w.callOut("separate3", types.Float, out, expr.A("in", color))
		if !identityCurve(combined) {
			e = apply(e, combined)
		}
		if !identityCurve(perChannel[i]) {
			e = apply(e, perChannel[i])
		}
		chans[i] = e
	}
	out := w.call("combine3", types.Color3, expr.A("in1", chans[0]), expr.A("in2", chans[1]), expr.A("in3", chans[2]))
	if expr.IsConstant(fac, 1) {
		return out
	}
	return w.call("mix", types.Color3, expr.A("fg", out), expr.A("bg", color), expr.A("mix", fac))
}

func sortKnots(k [][2]float64) [][2]float64 {
	return types.Knots(k).KnotsValue()
}

func identityCurve(k [][2]float64) bool {
	for _, p := range k {
		if math.Abs(p[0]-p[1]) > curveEpsilon {
			return false
		}
	}
	return true
}
