package services

import (
	"context"
	"encoding/json"
	"fmt"
)

// Resource is the plain CRUD service for resources that need no shape
// translation: T is the record, Req the create/update body.
type Resource[T, Req any] struct {
	api  API
	path string
}

// NewResource serves the collection at path through api
func NewResource[T, Req any](api API, path string) *Resource[T, Req] {
	return &Resource[T, Req]{api: api, path: path}
}

// Path returns the upstream collection path
func (r *Resource[T, Req]) Path() string {
	return r.path
}

// List returns every record of the collection
func (r *Resource[T, Req]) List(ctx context.Context) ([]T, error) {
	return r.listAt(ctx, r.path)
}

func (r *Resource[T, Req]) listAt(ctx context.Context, endpoint string) ([]T, error) {
	var raw json.RawMessage
	if err := r.api.Get(ctx, endpoint, &raw); err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", endpoint, err)
	}
	items, err := decodeList[T](raw)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", endpoint, err)
	}
	return items, nil
}

// Get returns the record with id
func (r *Resource[T, Req]) Get(ctx context.Context, id int) (T, error) {
	var item T
	if err := r.api.Get(ctx, itemPath(r.path, id), &item); err != nil {
		return item, fmt.Errorf("failed to get %s/%d: %w", r.path, id, err)
	}
	return item, nil
}

// Create returns the stored record, or the zero T when the API answers
// without a body
func (r *Resource[T, Req]) Create(ctx context.Context, req Req) (T, error) {
	var item T
	if err := r.api.Post(ctx, r.path, req, &item); err != nil {
		return item, fmt.Errorf("failed to create %s: %w", r.path, err)
	}
	return item, nil
}

// Update replaces the record with id by req
func (r *Resource[T, Req]) Update(ctx context.Context, id int, req Req) error {
	if err := r.api.Put(ctx, itemPath(r.path, id), req, nil); err != nil {
		return fmt.Errorf("failed to update %s/%d: %w", r.path, id, err)
	}
	return nil
}

// Delete removes the record with id
func (r *Resource[T, Req]) Delete(ctx context.Context, id int) error {
	if err := r.api.Delete(ctx, itemPath(r.path, id), nil); err != nil {
		return fmt.Errorf("failed to delete %s/%d: %w", r.path, id, err)
	}
	return nil
}
