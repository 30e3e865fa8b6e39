package source

import "strings"

// identityEpsilon is the tolerance for a literal to count as neutral.
const identityEpsilon = 1e-6

// MathNodes maps math operations that have a target equivalent to the
// target node name. Operations outside the map require baking.
var MathNodes = map[string]string{
	"ADD":      "add",
	"SUBTRACT": "subtract",
	"MULTIPLY": "multiply",
	"DIVIDE":   "divide",
	"POWER":    "power",
	"MINIMUM":  "min",
	"MAXIMUM":  "max",
	"ABSOLUTE": "absval",
}

// UnaryMath lists math operations that read only their first operand.
var UnaryMath = map[string]bool{"ABSOLUTE": true}

// MixBlends maps mix blend types that have a target equivalent to the
// arithmetic node combining the two operands. MIX itself needs none.
var MixBlends = map[string]string{
	"MIX":      "",
	"ADD":      "add",
	"MULTIPLY": "multiply",
	"SUBTRACT": "subtract",
}

// MathOperation returns the normalized operation of a math node.
func MathOperation(n *Node) string {
	op := strings.ToUpper(strings.TrimSpace(n.Params.Operation))
	if op == "" {
		return "ADD"
	}
	return op
}

// BlendType returns the normalized blend type of a mix node.
func BlendType(n *Node) string {
	b := strings.ToUpper(strings.TrimSpace(n.Params.BlendType))
	if b == "" {
		return "MIX"
	}
	return b
}

// Mapped reports whether a mix or math node that is not an identity still
// has a fixed target mapping.
func Mapped(n *Node) bool {
	switch n.Kind {
	case KindMath:
		_, ok := MathNodes[MathOperation(n)]
		return ok
	case KindMix:
		_, ok := MixBlends[BlendType(n)]
		return ok
	}
	return false
}

// MixSockets returns the factor and the two operands of a mix node.
func MixSockets(n *Node) (fac, a, b *Socket) {
	return n.Input("Fac", "Factor"), n.Input("Color1", "A"), n.Input("Color2", "B")
}

// Passthrough reports whether n is a mix or math node that reduces to one
// of its operands, and returns that operand.
//
// A mix is an identity when its factor is unlinked and exactly 0 with A
// linked, or exactly 1 with B linked and a plain MIX blend. A math node is
// an identity when one operand is linked and the other is a literal that
// makes the operation neutral: add 0, subtract 0 from the linked first operand, multiply by 1,
// divide the linked first operand by 1.
//
// The resolver elides exactly these nodes and the classifier accepts
// exactly these nodes as no-ops.
func Passthrough(n *Node) (*Socket, bool) {
	if n == nil {
		return nil, false
	}
	switch n.Kind {
	case KindMix:
		return mixPassthrough(n)
	case KindMath:
		return mathPassthrough(n)
	}
	return nil, false
}

// IsIdentity reports whether [Passthrough] elides n.
func IsIdentity(n *Node) bool {
	_, ok := Passthrough(n)
	return ok
}

func mixPassthrough(n *Node) (*Socket, bool) {
	fac, a, b := MixSockets(n)
	if fac == nil || fac.Linked() {
		return nil, false
	}
	f, ok := fac.Default.Float()
	if !ok {
		return nil, false
	}
	switch {
	case near(f, 0) && a.Linked():
		return a, true
	case near(f, 1) && b.Linked() && BlendType(n) == "MIX":
		return b, true
	}
	return nil, false
}

func mathPassthrough(n *Node) (*Socket, bool) {
	in0, in1 := n.InputAt(0), n.InputAt(1)
	if in0 == nil || in1 == nil {
		return nil, false
	}
	op := MathOperation(n)
	switch {
	case in0.Linked() && !in1.Linked():
		if v, ok := in1.Default.Float(); ok && neutral(op, v, 0) {
			return in0, true
		}
	case in1.Linked() && !in0.Linked():
		if v, ok := in0.Default.Float(); ok && neutral(op, v, 1) {
			return in1, true
		}
	}
	return nil, false
}

// neutral reports whether the literal operand v makes op an identity when
// the linked operand sits at index linked.
func neutral(op string, v float64, linked int) bool {
	switch op {
	case "ADD":
		return near(v, 0)
	case "SUBTRACT":
		return linked == 0 && near(v, 0)
	case "MULTIPLY":
		return near(v, 1)
	case "DIVIDE":
		return linked == 0 && near(v, 1)
	}
	return false
}

func near(a, b float64) bool {
	d := a - b
	return d < identityEpsilon && d > -identityEpsilon
}
