// Package testsupport holds schema fixtures and assertions shared by the
// package tests.
package testsupport

import (
	"embed"
	"strings"
	"testing"

	"github.com/goliatone/go-formrows/pkg/schema"
)

//go:embed fixtures/*.yaml
var fixturesFS embed.FS

// ProfileFixture is a form with a text row, a divider and a structured
// conditional "shipping" container controlled by its "enabled" switch.
const ProfileFixture = "fixtures/profile.yaml"

// LoadSchema parses an embedded fixture, failing the test on error.
func LoadSchema(t testing.TB, name string) schema.Schema {
	t.Helper()

	s, err := schema.LoadFS(fixturesFS, name)
	if err != nil {
		t.Fatalf("load fixture %s: %v", name, err)
	}
	return s
}

// FixtureBytes returns the raw fixture, for tests that exercise decoding or
// file-based loading themselves.
func FixtureBytes(t testing.TB, name string) []byte {
	t.Helper()

	data, err := fixturesFS.ReadFile(name)
	if err != nil {
		t.Fatalf("read fixture %s: %v", name, err)
	}
	return data
}

// AssertContains fails unless body contains every fragment.
func AssertContains(t testing.TB, body string, fragments ...string) {
	t.Helper()
	for _, fragment := range fragments {
		if !strings.Contains(body, fragment) {
			t.Fatalf("missing %q in:\n%s", fragment, body)
		}
	}
}

// AssertNotContains fails if body contains any fragment.
func AssertNotContains(t testing.TB, body string, fragments ...string) {
	t.Helper()
	for _, fragment := range fragments {
		if strings.Contains(body, fragment) {
			t.Fatalf("unexpected %q in:\n%s", fragment, body)
		}
	}
}
