package ui

import (
	"strings"
	"testing"
)

func TestRenderersPreserveText(t *testing.T) {
	// Styling may add escape codes around the text but must never
	// change the text itself.
	for name, render := range map[string]func(string) string{
		"RenderPass":   RenderPass,
		"RenderWarn":   RenderWarn,
		"RenderFail":   RenderFail,
		"RenderAccent": RenderAccent,
	} {
		if got := render("snapshot tank/home"); !strings.Contains(got, "snapshot tank/home") {
			t.Errorf("%s lost its text: %q", name, got)
		}
	}
}

func TestHighlightFramesLine(t *testing.T) {
	got := Highlight("zsnap -k 7 tank/home")
	if !strings.Contains(got, "========== zsnap -k 7 tank/home ==========") {
		t.Errorf("Highlight = %q", got)
	}
}
