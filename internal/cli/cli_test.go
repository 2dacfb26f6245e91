package cli

import (
	"testing"
)

// forcePlain pins the global config to plain mode for deterministic output.
func forcePlain(t *testing.T) {
	t.Helper()
	prev := Default()
	SetDefault(NewConfigWithMode(ModePlain))
	t.Cleanup(func() { SetDefault(prev) })
}

func TestConfigModes(t *testing.T) {
	cfg := NewConfigWithMode(ModeJSON)
	if !cfg.IsJSON() || cfg.IsTTY() {
		t.Errorf("ModeJSON config: IsJSON=%v IsTTY=%v", cfg.IsJSON(), cfg.IsTTY())
	}

	cfg = NewConfigWithMode(ModeTTY)
	if !cfg.IsTTY() {
		t.Error("ModeTTY config: IsTTY = false")
	}
}

func TestNoColorEnv(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	cfg := DefaultConfig()
	if cfg.IsTTY() {
		t.Error("NO_COLOR set but mode is TTY")
	}
}

func TestPlainStyling(t *testing.T) {
	forcePlain(t)

	// Without colors, style functions pass text through unchanged.
	for name, fn := range map[string]func(string) string{
		"Error":     Error,
		"Warning":   Warning,
		"Help":      Help,
		"Success":   Success,
		"Code":      Code,
		"Dim":       Dim,
		"Highlight": Highlight,
		"Bold":      Bold,
	} {
		if got := fn("text"); got != "text" {
			t.Errorf("%s(text) = %q in plain mode", name, got)
		}
	}

	if got := Pipe(); got != "|" {
		t.Errorf("Pipe() = %q, want |", got)
	}
	if got := RenderAppliedBadge(); got != "[APPLIED]" {
		t.Errorf("RenderAppliedBadge() = %q, want [APPLIED]", got)
	}
	if got := RenderPendingBadge(); got != "[PENDING]" {
		t.Errorf("RenderPendingBadge() = %q, want [PENDING]", got)
	}
}
