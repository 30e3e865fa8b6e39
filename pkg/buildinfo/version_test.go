package buildinfo

import (
	"strings"
	"testing"
)

func TestRevisionPrefersStamp(t *testing.T) {
	old := Commit
	t.Cleanup(func() { Commit = old })

	Commit = "abc1234"
	if got := Revision(); got != "abc1234" {
		t.Errorf("Revision() = %q, want %q", got, "abc1234")
	}
	if s := String(); !strings.Contains(s, "commit: abc1234") {
		t.Errorf("String() = %q", s)
	}
	if tpl := Template(); !strings.HasPrefix(tpl, "{{.Name}} "+Version) {
		t.Errorf("Template() = %q", tpl)
	}
}
