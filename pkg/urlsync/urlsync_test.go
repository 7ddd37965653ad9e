package urlsync_test

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formrows/pkg/form"
	"github.com/goliatone/go-formrows/pkg/urlsync"
)

type fakeRouter struct {
	ready    bool
	query    url.Values
	replaced []url.Values
	err      error
}

func (r *fakeRouter) Ready() bool       { return r.ready }
func (r *fakeRouter) Query() url.Values { return r.query }

func (r *fakeRouter) Replace(_ context.Context, query url.Values) error {
	if r.err != nil {
		return r.err
	}
	r.replaced = append(r.replaced, query)
	r.query = query
	return nil
}

type mapTarget map[string]any

func (m mapTarget) SetValue(name string, value any) { m[name] = value }

func TestMount_ImportsOnceAfterReady(t *testing.T) {
	t.Parallel()

	sync := urlsync.New(urlsync.Config{Subjects: []string{"q", "page"}, SubmitOnImport: true}, nil)
	router := &fakeRouter{query: url.Values{"q": {"shoes"}, "other": {"x"}}}
	target := mapTarget{}

	if _, ok := sync.Mount(router, target); ok {
		t.Fatalf("must not import before the router is ready")
	}
	if sync.State() != urlsync.NotImported {
		t.Fatalf("state = %v, want not-imported", sync.State())
	}

	router.ready = true
	result, ok := sync.Mount(router, target)
	if !ok || !result.Submit {
		t.Fatalf("expected import with submit, got %+v ok=%v", result, ok)
	}
	if diff := cmp.Diff(mapTarget{"q": "shoes"}, target); diff != "" {
		t.Fatalf("imported values mismatch (-want +got):\n%s", diff)
	}

	router.query = url.Values{"q": {"boots"}}
	if _, ok := sync.Mount(router, target); ok {
		t.Fatalf("second ready signal must not import again")
	}
	if target["q"] != "shoes" {
		t.Fatalf("second import overwrote values: %v", target)
	}
}

func TestImport_DisabledWithoutSubjects(t *testing.T) {
	t.Parallel()

	sync := urlsync.New(urlsync.Config{}, form.Externals{{Name: "search", Options: []form.ExternalOption{form.ExternalSubmit}}})
	if sync.Enabled() {
		t.Fatalf("no subjects and no url externals means disabled")
	}
	if _, ok := sync.Import(url.Values{"search": {"x"}}, mapTarget{}); ok {
		t.Fatalf("disabled synchronizer must not import")
	}
	if sync.State() != urlsync.NotImported {
		t.Fatalf("disabled synchronizer never leaves not-imported")
	}
}

func TestImport_PrefixExternalsAndTransform(t *testing.T) {
	t.Parallel()

	var tag any
	externals := form.Externals{{
		Name:    "tag",
		Set:     func(v any) { tag = v },
		Options: []form.ExternalOption{form.ExternalURL},
	}}
	sync := urlsync.New(urlsync.Config{
		Subjects:      []string{"pageSize", "ids"},
		Prefix:        "f_",
		CamelCaseKeys: true,
		Import: func(in map[string]any) map[string]any {
			in["pageSize"] = "size:" + in["pageSize"].(string)
			return in
		},
	}, externals)

	query := url.Values{
		"f_page_size": {"20"},
		"f_ids":       {"1", "2"},
		"f_tag":       {"red"},
		"pageSize":    {"99"},
	}
	target := mapTarget{}
	result, ok := sync.Import(query, target)
	if !ok {
		t.Fatalf("expected import")
	}
	want := mapTarget{"pageSize": "size:20", "ids": []string{"1", "2"}}
	if diff := cmp.Diff(want, target); diff != "" {
		t.Fatalf("imported values mismatch (-want +got):\n%s", diff)
	}
	if tag != "red" {
		t.Fatalf("external tag = %v", tag)
	}
	if diff := cmp.Diff(map[string]any{"tag": "red"}, result.Externals); diff != "" {
		t.Fatalf("externals mismatch (-want +got):\n%s", diff)
	}
}

func TestExport_FalsyBecomesNil(t *testing.T) {
	t.Parallel()

	page := 0
	externals := form.Externals{{
		Name:    "page",
		Get:     func() any { return page },
		Options: []form.ExternalOption{form.ExternalURL},
	}}
	sync := urlsync.New(urlsync.Config{Subjects: []string{"q", "size"}}, externals)

	got := sync.Export(map[string]any{"q": "", "size": 10, "ignored": "x"})
	want := map[string]any{"q": nil, "size": 10, "page": nil}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("export mismatch (-want +got):\n%s", diff)
	}
}

func TestPublish_MergesAndKeepsUnrelatedParams(t *testing.T) {
	t.Parallel()

	sync := urlsync.New(urlsync.Config{
		Subjects: []string{"q", "sort", "tags"},
		Prefix:   "f_",
		Exclude:  []string{"sort"},
	}, nil)
	router := &fakeRouter{ready: true, query: url.Values{
		"utm":    {"mail"},
		"f_q":    {"old"},
		"f_sort": {"asc"},
	}}

	next, err := sync.Publish(context.Background(), router, map[string]any{
		"q":    nil,
		"sort": "desc",
		"tags": []any{"a", 2},
	})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	want := url.Values{
		"utm":    {"mail"},
		"f_sort": {"asc"},
		"f_tags": {"a", "2"},
	}
	if diff := cmp.Diff(want, next); diff != "" {
		t.Fatalf("query mismatch (-want +got):\n%s", diff)
	}
	if len(router.replaced) != 1 {
		t.Fatalf("replace calls = %d, want 1", len(router.replaced))
	}
}

func TestPublish_WrapsRouterError(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	sync := urlsync.New(urlsync.Config{Subjects: []string{"q"}}, nil)
	_, err := sync.Publish(context.Background(), &fakeRouter{err: boom}, map[string]any{"q": "x"})
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped router error, got %v", err)
	}
}

func TestClear_RemovesSynchronisedKeys(t *testing.T) {
	t.Parallel()

	externals := form.Externals{{Name: "page", Options: []form.ExternalOption{form.ExternalURL}}}
	sync := urlsync.New(urlsync.Config{Subjects: []string{"q", "keep"}, Exclude: []string{"keep"}}, externals)
	router := &fakeRouter{ready: true, query: url.Values{"q": {"x"}, "page": {"2"}, "keep": {"1"}, "utm": {"m"}}}

	if err := sync.Clear(context.Background(), router); err != nil {
		t.Fatalf("clear: %v", err)
	}
	want := url.Values{"keep": {"1"}, "utm": {"m"}}
	if diff := cmp.Diff(want, router.query); diff != "" {
		t.Fatalf("query mismatch (-want +got):\n%s", diff)
	}
}
