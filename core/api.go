package core

import "context"

// APIClient talks JSON to the backend REST API.
// `path` is relative to the configured base URL, eg: "/students/1".
// Any non-2xx response or transport failure is returned as a *RequestError.
type APIClient interface {
	Get(ctx context.Context, path string, out interface{}) error
	Post(ctx context.Context, path string, body, out interface{}) error
	Put(ctx context.Context, path string, body, out interface{}) error
	Delete(ctx context.Context, path string) error
}
