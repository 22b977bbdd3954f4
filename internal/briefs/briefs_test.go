package briefs

import (
	"strings"
	"testing"
)

func TestResolveOrder(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()

	if got := reg.Resolve("visa", "custom instructions win"); got != "custom instructions win" {
		t.Fatalf("custom prompt should win, got %q", got)
	}

	if got := reg.Resolve("Visa", ""); !strings.Contains(got, "visa types") {
		t.Fatalf("expected category default, got %q", got)
	}

	if got := reg.Resolve("astrology", ""); got != genericBrief {
		t.Fatalf("expected generic fallback, got %q", got)
	}
}

func TestRegisterOverride(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	reg.Register("visa", "overridden")
	if got := reg.Resolve("visa", ""); got != "overridden" {
		t.Fatalf("expected override, got %q", got)
	}
}
