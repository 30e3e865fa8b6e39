package classify

import (
	"fmt"

	"github.com/matzehuels/shaderport/pkg/manifest"
	"github.com/matzehuels/shaderport/pkg/source"
)

// Bucket is the verdict for one node.
type Bucket uint8

const (
	UI Bucket = iota
	Supported
	Identity
	Partial
	Group
	Bake
	Unsupported
	Unrecognized
)

func (b Bucket) String() string {
	switch b {
	case UI:
		return "ui"
	case Supported:
		return "supported"
	case Identity:
		return "identity"
	case Partial:
		return "partial"
	case Group:
		return "group"
	case Bake:
		return "bake"
	case Unsupported:
		return "unsupported"
	}
	return "unrecognized"
}

// Severity of an [Issue].
type Severity uint8

const (
	Warning Severity = iota
	Error
)

func (s Severity) String() string {
	if s == Error {
		return "error"
	}
	return "warning"
}

// Issue is one problem found in a material.
type Issue struct {
	Material string   `json:"material"`
	Node     string   `json:"node,omitempty"`
	NodeType string   `json:"node_type,omitempty"`
	Severity Severity `json:"-"`
	Message  string   `json:"message"`
}

func (i Issue) String() string {
	if i.Node == "" {
		return fmt.Sprintf("%s: %s", i.Material, i.Message)
	}
	return fmt.Sprintf("%s: %s (%s): %s", i.Material, i.Node, i.NodeType, i.Message)
}

// Verdict is the bucket assigned to one reachable node.
type Verdict struct {
	Node   *source.Node
	Bucket Bucket
}

// Result is the verdict for one material.
type Result struct {
	Material string
	Errors   []Issue
	Warnings []Issue
	Nodes    []Verdict // reachable nodes in visit order
}

// OK reports whether the material may be exported.
func (r *Result) OK() bool { return len(r.Errors) == 0 }

// Bucket returns the verdict for n, or false when n was not reached.
func (r *Result) Bucket(n *source.Node) (Bucket, bool) {
	for _, v := range r.Nodes {
		if v.Node == n {
			return v.Bucket, true
		}
	}
	return 0, false
}

// Options tune classification.
type Options struct {
	// Strict promotes warnings to errors, except partial-support ones.
	Strict bool
	// AllNodes classifies every node of the tree instead of the reachable ones.
	AllNodes bool
	// Manifest, when set, flags authored groups naming an unknown node.
	Manifest *manifest.Manifest
}

// Material classifies m.
func Material(m *source.Material, opts Options) Result {
	c := &classifier{opts: opts, res: Result{Material: m.Name}}
	if !m.UseNodes || m.Tree == nil {
		return c.res
	}
	out := m.Tree.ActiveOutput(source.KindOutputMaterial)
	if out == nil {
		c.issue(nil, Error, false, "material has no output node")
		return c.res
	}
	for _, name := range []string{"Volume", "Displacement"} {
		if out.Input(name).Linked() {
			c.issue(out, Warning, true, "%s is connected but has no target equivalent", name)
		}
	}

	seen := make(map[*source.Node]bool)
	if opts.AllNodes {
		for _, n := range m.Tree.Nodes {
			c.visit(n, seen, false)
		}
	} else {
		c.visit(out, seen, true)
	}
	return c.res
}

// Summary aggregates the results of several materials.
type Summary struct {
	Results  []Result
	Errors   []Issue
	Warnings []Issue
}

// OK reports whether every material may be exported.
func (s *Summary) OK() bool { return len(s.Errors) == 0 }

// Materials classifies every material in order.
func Materials(ms []*source.Material, opts Options) Summary {
	var s Summary
	for _, m := range ms {
		r := Material(m, opts)
		s.Results = append(s.Results, r)
		s.Errors = append(s.Errors, r.Errors...)
		s.Warnings = append(s.Warnings, r.Warnings...)
	}
	return s
}

type classifier struct {
	opts Options
	res  Result
}

// issue records a problem at n. Promotable warnings become errors in
// strict mode.
func (c *classifier) issue(n *source.Node, sev Severity, promotable bool, format string, args ...any) {
	if sev == Warning && promotable && c.opts.Strict {
		sev = Error
	}
	i := Issue{Material: c.res.Material, Severity: sev, Message: fmt.Sprintf(format, args...)}
	if n != nil {
		i.Node, i.NodeType = n.DisplayName(), n.Type
	}
	if sev == Error {
		c.res.Errors = append(c.res.Errors, i)
	} else {
		c.res.Warnings = append(c.res.Warnings, i)
	}
}

// visit classifies n and, when follow is set, everything upstream of it.
// Non-authored groups are walked from their active output.
func (c *classifier) visit(n *source.Node, seen map[*source.Node]bool, follow bool) {
	if n == nil || seen[n] {
		return
	}
	seen[n] = true
	c.res.Nodes = append(c.res.Nodes, Verdict{Node: n, Bucket: c.node(n)})

	if n.Kind == source.KindGroup && !source.IsRKGroup(n) && n.Params.Group != nil {
		sub := n.Params.Group
		if c.opts.AllNodes {
			for _, inner := range sub.Nodes {
				c.visit(inner, seen, false)
			}
		} else {
			c.visit(sub.ActiveOutput(source.KindGroupOutput), seen, true)
		}
	}
	if !follow {
		return
	}
	for _, in := range n.Inputs {
		if in.Linked() {
			c.visit(in.Link.Node, seen, true)
		}
	}
}

func (c *classifier) node(n *source.Node) Bucket {
	switch n.Kind {
	case source.KindGroup:
		return c.group(n)
	case source.KindMix:
		if source.IsIdentity(n) {
			return Identity
		}
		if source.Mapped(n) {
			return Supported
		}
		c.issue(n, Warning, true, "blend %s requires baking unless the factor selects a connected input", source.BlendType(n))
		return Bake
	case source.KindMath:
		if source.IsIdentity(n) {
			return Identity
		}
		if source.Mapped(n) {
			return Supported
		}
		c.issue(n, Warning, true, "operation %s requires baking unless it is a pass-through", source.MathOperation(n))
		return Bake
	case source.KindTexImage:
		if n.Params.Image == nil || n.Params.Image.Path == "" {
			c.issue(n, Warning, true, "image texture node has no image")
		}
		return Supported
	}

	switch n.Kind.Support() {
	case source.SupportUI:
		return UI
	case source.SupportFull:
		return Supported
	case source.SupportPartial:
		c.issue(n, Warning, false, "limited support; UV mapping is only applied to image texture inputs")
		return Partial
	case source.SupportBake:
		if n.Kind == source.KindBump {
			c.issue(n, Warning, true, "requires baking; approximated as a normal map")
		} else {
			c.issue(n, Warning, true, "requires baking")
		}
		return Bake
	case source.SupportNone:
		c.issue(n, Error, false, "not supported by the target")
		return Unsupported
	}
	c.issue(n, Error, false, "node type is unrecognized")
	return Unrecognized
}

func (c *classifier) group(n *source.Node) Bucket {
	id, ok := n.Params.Group.RKNodeID()
	if !ok {
		c.issue(n, Error, false, "node group is not an authored target group")
		return Unsupported
	}
	if c.opts.Manifest != nil {
		if id == "" {
			id = source.InferRKNodeID(n.Params.Group.Name)
		}
		if _, found := c.opts.Manifest.Select(id, manifest.Query{}); !found {
			c.issue(n, Warning, true, "authored group names unknown node %q", id)
		}
	}
	return Group
}
