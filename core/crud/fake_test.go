package crud

import (
	"context"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"log"
	"net/http"
	"sync"
	"testing"

	"github.com/trezcool/akademik/core"
	"github.com/trezcool/akademik/services/logger"
	"github.com/trezcool/akademik/services/presenter"
)

type item struct {
	ID   int64    `json:"id,omitempty"`
	Name string   `json:"name"`
	Tags []string `json:"tags"`
}

func (i item) GetID() int64 { return i.ID }

func (i item) Clone() item {
	if i.Tags != nil {
		i.Tags = append([]string(nil), i.Tags...)
	}
	return i
}

var itemMessages = Messages{
	LoadFailed:    "load failed",
	Saved:         "saved",
	SaveFailed:    "save failed",
	SaveError:     "save error",
	ConfirmDelete: "delete?",
	Deleted:       "deleted",
	DeleteFailed:  "delete failed",
	DeleteError:   "delete error",
}

type call struct {
	method string
	path   string
	body   []byte
}

// fakeAPI serves `items` on GET and records every call.
type fakeAPI struct {
	mu     sync.Mutex
	items  []item
	calls  []call
	errs   map[string]error // by method
	gate   chan struct{}    // when set, the next GET blocks until it is closed
	inside chan struct{}    // signaled when a GET starts
	onPut  func()           // runs inside PUT
}

func newFakeAPI(items ...item) *fakeAPI {
	return &fakeAPI{items: items, errs: make(map[string]error)}
}

func (api *fakeAPI) fail(method string, code int) {
	api.mu.Lock()
	defer api.mu.Unlock()
	var err error
	if code == 0 {
		err = context.DeadlineExceeded
	}
	api.errs[method] = &core.RequestError{Method: method, StatusCode: code, Err: err}
}

func (api *fakeAPI) record(method, path string, body interface{}) error {
	api.mu.Lock()
	defer api.mu.Unlock()
	c := call{method: method, path: path}
	if body != nil {
		c.body, _ = json.Marshal(body)
	}
	api.calls = append(api.calls, c)
	return api.errs[method]
}

func (api *fakeAPI) Calls(method string) []call {
	api.mu.Lock()
	defer api.mu.Unlock()
	calls := make([]call, 0)
	for _, c := range api.calls {
		if c.method == method {
			calls = append(calls, c)
		}
	}
	return calls
}

// Get answers with the items as they were when the request started.
func (api *fakeAPI) Get(ctx context.Context, path string, out interface{}) error {
	api.mu.Lock()
	data, _ := json.Marshal(api.items)
	gate := api.gate
	api.gate = nil
	api.mu.Unlock()

	if api.inside != nil {
		api.inside <- struct{}{}
	}
	if gate != nil {
		<-gate
	}
	if err := ctx.Err(); err != nil {
		return &core.RequestError{Method: http.MethodGet, Path: path, Err: err}
	}
	if err := api.record(http.MethodGet, path, nil); err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

func (api *fakeAPI) Post(ctx context.Context, path string, body, out interface{}) error {
	return api.record(http.MethodPost, path, body)
}

func (api *fakeAPI) Put(ctx context.Context, path string, body, out interface{}) error {
	if api.onPut != nil {
		api.onPut()
	}
	return api.record(http.MethodPut, path, body)
}

// Delete drops the item at `path` from the served items.
func (api *fakeAPI) Delete(ctx context.Context, path string) error {
	if err := api.record(http.MethodDelete, path, nil); err != nil {
		return err
	}
	api.mu.Lock()
	defer api.mu.Unlock()
	items := make([]item, 0, len(api.items))
	for _, it := range api.items {
		if fmt.Sprintf("/items/%d", it.ID) != path {
			items = append(items, it)
		}
	}
	api.items = items
	return nil
}

func testLogger() core.Logger {
	return logsvc.NewRollbarLogger(log.New(ioutil.Discard, "", 0), &core.Config{Env: "TEST"})
}

func setup(t *testing.T, items ...item) (*Store[item], *fakeAPI, *presentersvc.Recorder) {
	t.Helper()
	api := newFakeAPI(items...)
	rec := presentersvc.NewRecorder()
	store, err := NewStore[item](Options{
		Name:      "item",
		Path:      "/items",
		API:       api,
		Presenter: rec,
		Logger:    testLogger(),
		Messages:  itemMessages,
	})
	if err != nil {
		t.Fatalf("setup() failed: %v", err)
	}
	return store, api, rec
}
