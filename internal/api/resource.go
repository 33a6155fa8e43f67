package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/taqnia-dev/adminctl/internal/httpclient"
)

// Reader lists and fetches one kind of record under a REST path prefix.
type Reader[T any] struct {
	client *httpclient.Client
	prefix string
	// slash appends a trailing slash to every path, as the customers routes expect.
	slash bool
}

func (r *Reader[T]) path(segments ...string) string {
	p := r.prefix
	for _, s := range segments {
		p += "/" + url.PathEscape(s)
	}
	if r.slash {
		p += "/"
	}
	return p
}

// List returns every record. A "no content" answer yields an empty slice.
func (r *Reader[T]) List(ctx context.Context) ([]T, error) {
	res, err := httpclient.Send[[]T](ctx, r.client, httpclient.Request{
		Method: http.MethodGet,
		Path:   r.path(),
	})
	if err != nil {
		return nil, err
	}
	if res.Value == nil {
		return []T{}, nil
	}
	return res.Value, nil
}

// Get returns a single record by id.
func (r *Reader[T]) Get(ctx context.Context, id string) (*T, error) {
	if id == "" {
		return nil, fmt.Errorf("id is required")
	}
	res, err := httpclient.Send[T](ctx, r.client, httpclient.Request{
		Method: http.MethodGet,
		Path:   r.path(id),
	})
	if err != nil {
		return nil, err
	}
	if res.NoContent {
		return nil, fmt.Errorf("empty response for %s", r.path(id))
	}
	return &res.Value, nil
}

// Resource adds create, update and delete operations to a Reader. C is the
// creation payload and U the partial update payload.
type Resource[T, C, U any] struct {
	*Reader[T]
}

func newResource[T, C, U any](client *httpclient.Client, prefix string, slash bool) *Resource[T, C, U] {
	return &Resource[T, C, U]{
		Reader: &Reader[T]{client: client, prefix: prefix, slash: slash},
	}
}

// Create validates the input and creates a record. The returned record is nil
// when the backend answers without content.
func (r *Resource[T, C, U]) Create(ctx context.Context, in C) (*T, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	return r.write(ctx, http.MethodPost, r.path(), in)
}

// Update validates the patch and replaces the given fields of a record.
func (r *Resource[T, C, U]) Update(ctx context.Context, id string, patch U) (*T, error) {
	if id == "" {
		return nil, fmt.Errorf("id is required")
	}
	if err := validateInput(patch); err != nil {
		return nil, err
	}
	return r.write(ctx, http.MethodPut, r.path(id), patch)
}

// Delete removes a record by id.
func (r *Resource[T, C, U]) Delete(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("id is required")
	}
	_, err := r.client.Do(ctx, httpclient.Request{
		Method: http.MethodDelete,
		Path:   r.path(id),
	}, nil)
	return err
}

type bulkDeleteRequest struct {
	IDs []string `json:"ids"`
}

// BulkDelete removes every record in ids with a single call. An empty id list
// sends nothing.
func (r *Resource[T, C, U]) BulkDelete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.client.Do(ctx, httpclient.Request{
		Method: http.MethodPost,
		Path:   r.path("bulk-delete"),
		Body:   bulkDeleteRequest{IDs: ids},
	}, nil)
	return err
}

func (r *Resource[T, C, U]) write(ctx context.Context, method, path string, body any) (*T, error) {
	res, err := httpclient.Send[T](ctx, r.client, httpclient.Request{
		Method: method,
		Path:   path,
		Body:   body,
	})
	if err != nil {
		return nil, err
	}
	if res.NoContent {
		return nil, nil
	}
	return &res.Value, nil
}
