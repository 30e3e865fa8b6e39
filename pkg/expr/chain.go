package expr

import (
	"slices"
	"strings"
)

// Chain is a provenance trail of node labels. It is immutable: [Chain.With]
// returns a new chain and never aliases the receiver's backing array.
type Chain []string

// With returns c extended by label.
func (c Chain) With(label string) Chain {
	out := make(Chain, len(c), len(c)+1)
	copy(out, c)
	return append(out, label)
}

// Last returns the final label, or "".
func (c Chain) Last() string {
	if len(c) == 0 {
		return ""
	}
	return c[len(c)-1]
}

func (c Chain) String() string { return strings.Join(c, " -> ") }

// Equal reports whether two chains hold the same labels.
func (c Chain) Equal(o Chain) bool { return slices.Equal(c, o) }
