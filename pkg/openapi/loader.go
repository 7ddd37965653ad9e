package openapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
)

// Loader fetches OpenAPI documents from files, an fs.FS or HTTP.
type Loader struct {
	fs       fs.FS
	http     *http.Client
	validate bool
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithFileSystem resolves SourceKindFS locations against files.
func WithFileSystem(files fs.FS) LoaderOption {
	return func(l *Loader) {
		l.fs = files
	}
}

// WithHTTPClient enables URL sources using client. A zero timeout is
// replaced by timeout when positive.
func WithHTTPClient(client *http.Client, timeout time.Duration) LoaderOption {
	return func(l *Loader) {
		if client == nil {
			client = &http.Client{}
		}
		clone := *client
		if timeout > 0 && clone.Timeout == 0 {
			clone.Timeout = timeout
		}
		l.http = &clone
	}
}

// WithValidation toggles document validation after loading. It is on by
// default.
func WithValidation(enabled bool) LoaderOption {
	return func(l *Loader) {
		l.validate = enabled
	}
}

// NewLoader constructs a Loader. HTTP sources stay disabled unless
// WithHTTPClient is given.
func NewLoader(options ...LoaderOption) *Loader {
	l := &Loader{validate: true}
	for _, opt := range options {
		if opt != nil {
			opt(l)
		}
	}
	return l
}

// Load parses an in-memory JSON or YAML document with the default loader.
func Load(ctx context.Context, data []byte) (*Document, error) {
	return NewLoader().LoadData(ctx, nil, data)
}

// LoadSource reads and parses the document behind src.
func (l *Loader) LoadSource(ctx context.Context, src Source) (*Document, error) {
	if src == nil {
		return nil, errors.New("openapi: source is nil")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var (
		data []byte
		err  error
	)
	switch src.Kind() {
	case SourceKindFile:
		data, err = os.ReadFile(src.Location())
	case SourceKindFS:
		if l.fs == nil {
			return nil, errors.New("openapi: filesystem is not configured")
		}
		data, err = fs.ReadFile(l.fs, src.Location())
	case SourceKindURL:
		data, err = l.fetch(ctx, src.Location())
	default:
		err = fmt.Errorf("unsupported source kind %q", src.Kind())
	}
	if err != nil {
		return nil, fmt.Errorf("openapi: read %s: %w", src.Location(), err)
	}
	return l.LoadData(ctx, src, data)
}

// LoadData parses data. src only labels the document and may be nil.
func (l *Loader) LoadData(ctx context.Context, src Source, data []byte) (*Document, error) {
	if len(data) == 0 {
		return nil, errors.New("openapi: document is empty")
	}
	loader := &openapi3.Loader{Context: ctx}
	spec, err := loader.LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("openapi: load document: %w", err)
	}
	if l.validate {
		if err := spec.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
			return nil, fmt.Errorf("openapi: validate: %w", err)
		}
	}
	return &Document{source: src, spec: spec}, nil
}

func (l *Loader) fetch(ctx context.Context, location string) ([]byte, error) {
	if l.http == nil {
		return nil, errors.New("http support disabled")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, err
	}
	resp, err := l.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	return io.ReadAll(resp.Body)
}
