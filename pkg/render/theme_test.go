package render_test

import (
	"testing"

	theme "github.com/goliatone/go-theme"
	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formrows/pkg/render"
)

func acmeManifest() *theme.Manifest {
	return &theme.Manifest{
		Name:    "acme",
		Version: "1.0.0",
		Tokens:  map[string]string{"brand": "#123456"},
		Templates: map[string]string{
			"forms.text": "themes/acme/text.tmpl",
		},
		Assets: theme.Assets{
			Prefix: "/assets/themes/acme",
			Files:  map[string]string{"stylesheet": "theme.css"},
		},
		Variants: map[string]theme.Variant{
			"dark": {
				Tokens:    map[string]string{"brand": "#654321"},
				Templates: map[string]string{"forms.switch": "themes/acme/dark/switch.tmpl"},
				Assets:    theme.Assets{Files: map[string]string{"script": "dark.js"}},
			},
		},
	}
}

func TestThemeConfig_MergesVariantOverFallbacks(t *testing.T) {
	selector := render.NewManifestSelector(acmeManifest())
	selection, err := selector.Select("", "dark")
	if err != nil {
		t.Fatalf("select: %v", err)
	}

	cfg := render.ThemeConfig(selection, render.DefaultThemeFallbacks())
	if cfg.Theme != "acme" || cfg.Variant != "dark" {
		t.Fatalf("selection mismatch: %s/%s", cfg.Theme, cfg.Variant)
	}
	if got := cfg.Partials["forms.text"]; got != "themes/acme/text.tmpl" {
		t.Fatalf("manifest template not applied: %s", got)
	}
	if got := cfg.Partials["forms.switch"]; got != "themes/acme/dark/switch.tmpl" {
		t.Fatalf("variant template not applied: %s", got)
	}
	if got := cfg.Partials["forms.date"]; got != render.DefaultThemeFallbacks()["forms.date"] {
		t.Fatalf("fallback not kept: %s", got)
	}
	if diff := cmp.Diff(map[string]string{"--brand": "#654321"}, cfg.CSSVars); diff != "" {
		t.Fatalf("css vars mismatch (-want +got):\n%s", diff)
	}
	if got := cfg.AssetURL("script"); got != "/assets/themes/acme/dark.js" {
		t.Fatalf("asset url = %s", got)
	}
	if got := cfg.AssetURL("stylesheet"); got != "/assets/themes/acme/theme.css" {
		t.Fatalf("asset url = %s", got)
	}
}

func TestManifestSelector_UnknownVariantFallsBackToBase(t *testing.T) {
	selector := render.NewManifestSelector(acmeManifest())
	selection, err := selector.Select("acme", "neon")
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if selection.Variant != "" {
		t.Fatalf("variant = %q, want base", selection.Variant)
	}
	if _, err := selector.Select("missing", ""); err == nil {
		t.Fatalf("expected error for unknown theme")
	}
}

func TestCSSVarsStyle(t *testing.T) {
	got := render.CSSVarsStyle(map[string]string{"--b": "2", "--a": "1"})
	if got != "--a: 1; --b: 2" {
		t.Fatalf("style = %q", got)
	}
}
