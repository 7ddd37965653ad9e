package render

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	theme "github.com/goliatone/go-theme"
)

// DefaultThemeFallbacks maps partial keys to the built-in component
// templates used when a theme does not override them.
func DefaultThemeFallbacks() map[string]string {
	return map[string]string{
		"forms.text":     "templates/components/text.tmpl",
		"forms.number":   "templates/components/number.tmpl",
		"forms.checkbox": "templates/components/checkbox.tmpl",
		"forms.switch":   "templates/components/switch.tmpl",
		"forms.select":   "templates/components/select.tmpl",
		"forms.textarea": "templates/components/textarea.tmpl",
		"forms.date":     "templates/components/date.tmpl",
	}
}

// ThemeConfig flattens a selection into renderer configuration: fallbacks
// overlaid with the manifest templates, then the variant's. Every token also
// becomes a "--token" CSS variable.
func ThemeConfig(selection *theme.Selection, fallbacks map[string]string) *theme.RendererConfig {
	if selection == nil {
		return nil
	}
	cfg := &theme.RendererConfig{
		Theme:    selection.Theme,
		Variant:  selection.Variant,
		Partials: make(map[string]string, len(fallbacks)),
		Tokens:   make(map[string]string),
		CSSVars:  make(map[string]string),
	}
	for key, value := range fallbacks {
		cfg.Partials[key] = value
	}

	assets := theme.Assets{Files: map[string]string{}}
	if manifest := selection.Manifest; manifest != nil {
		mergeStrings(cfg.Partials, manifest.Templates)
		mergeStrings(cfg.Tokens, manifest.Tokens)
		assets.Prefix = manifest.Assets.Prefix
		mergeStrings(assets.Files, manifest.Assets.Files)
		if variant, ok := manifest.Variants[selection.Variant]; ok {
			mergeStrings(cfg.Partials, variant.Templates)
			mergeStrings(cfg.Tokens, variant.Tokens)
			if variant.Assets.Prefix != "" {
				assets.Prefix = variant.Assets.Prefix
			}
			mergeStrings(assets.Files, variant.Assets.Files)
		}
	}
	for key, value := range cfg.Tokens {
		cfg.CSSVars["--"+strings.TrimPrefix(key, "--")] = value
	}
	cfg.AssetURL = func(key string) string {
		file, ok := assets.Files[key]
		if !ok {
			return ""
		}
		if assets.Prefix == "" {
			return file
		}
		return strings.TrimRight(assets.Prefix, "/") + "/" + strings.TrimLeft(file, "/")
	}
	return cfg
}

// CSSVarsStyle renders CSS variables as an inline style value in key order.
func CSSVarsStyle(vars map[string]string) string {
	if len(vars) == 0 {
		return ""
	}
	keys := make([]string, 0, len(vars))
	for key := range vars {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, key+": "+vars[key])
	}
	return strings.Join(parts, "; ")
}

// ManifestSelector selects among in-memory manifests. The first registered
// manifest is the default theme.
type ManifestSelector struct {
	mu        sync.RWMutex
	manifests map[string]*theme.Manifest
	fallback  string
}

var _ theme.ThemeSelector = (*ManifestSelector)(nil)

// NewManifestSelector registers manifests in order.
func NewManifestSelector(manifests ...*theme.Manifest) *ManifestSelector {
	selector := &ManifestSelector{manifests: make(map[string]*theme.Manifest)}
	for _, manifest := range manifests {
		selector.Add(manifest)
	}
	return selector
}

// Add registers or replaces a manifest by name.
func (s *ManifestSelector) Add(manifest *theme.Manifest) {
	if manifest == nil || manifest.Name == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.manifests[manifest.Name] = manifest
	if s.fallback == "" {
		s.fallback = manifest.Name
	}
}

// Select resolves name (or the default theme) and keeps variant only when the
// manifest declares it.
func (s *ManifestSelector) Select(name, variant string, _ ...theme.QueryOption) (*theme.Selection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if name == "" {
		name = s.fallback
	}
	manifest, ok := s.manifests[name]
	if !ok {
		return nil, fmt.Errorf("render: theme %q not found", name)
	}
	if _, ok := manifest.Variants[variant]; !ok {
		variant = ""
	}
	return &theme.Selection{Theme: manifest.Name, Variant: variant, Manifest: manifest}, nil
}

func mergeStrings(dst, src map[string]string) {
	for key, value := range src {
		dst[key] = value
	}
}
