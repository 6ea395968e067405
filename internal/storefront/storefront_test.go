package storefront

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"sync"

	"github.com/duynhne/storefront-gateway/internal/backend"
)

// apiCall records one request the fake backend received.
type apiCall struct {
	Method   string
	Endpoint string
	Query    url.Values
	Header   http.Header
	Body     any
}

// fakeAPI implements the api interface against canned JSON responses keyed
// by "METHOD endpoint". A missing key yields an empty object.
type fakeAPI struct {
	mu        sync.Mutex
	calls     []apiCall
	responses map[string]string
	errors    map[string]error

	// respond, when set, wins over the static maps.
	respond func(call apiCall) (string, error)
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		responses: map[string]string{},
		errors:    map[string]error{},
	}
}

func (f *fakeAPI) stub(method, endpoint, body string) {
	f.responses[method+" "+endpoint] = body
}

func (f *fakeAPI) fail(method, endpoint string, err error) {
	f.errors[method+" "+endpoint] = err
}

func (f *fakeAPI) recorded() []apiCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]apiCall, len(f.calls))
	copy(out, f.calls)
	return out
}

func (f *fakeAPI) callsTo(method, endpoint string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c.Method == method && c.Endpoint == endpoint {
			n++
		}
	}
	return n
}

func (f *fakeAPI) dispatch(call apiCall, v any) error {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()

	key := call.Method + " " + call.Endpoint
	body := "{}"
	var err error
	switch {
	case f.respond != nil:
		body, err = f.respond(call)
	case f.errors[key] != nil:
		err = f.errors[key]
	case f.responses[key] != "":
		body = f.responses[key]
	}
	if err != nil {
		return err
	}
	if v == nil {
		return nil
	}
	return backend.DecodePayload([]byte(body), v)
}

func (f *fakeAPI) Do(ctx context.Context, req backend.Request) (*backend.Response, error) {
	var body any
	if req.JSON != nil {
		body = req.JSON
	}
	call := apiCall{Method: req.Method, Endpoint: req.Path, Query: req.Query, Header: req.Header, Body: body}
	var raw json.RawMessage
	if err := f.dispatch(call, &raw); err != nil {
		return nil, err
	}
	return &backend.Response{StatusCode: http.StatusOK, Body: raw}, nil
}

func (f *fakeAPI) Get(ctx context.Context, endpoint string, query url.Values, header http.Header, v any) error {
	return f.dispatch(apiCall{Method: http.MethodGet, Endpoint: endpoint, Query: query, Header: header}, v)
}

func (f *fakeAPI) Post(ctx context.Context, endpoint string, body any, header http.Header, v any) error {
	return f.dispatch(apiCall{Method: http.MethodPost, Endpoint: endpoint, Header: header, Body: body}, v)
}

func (f *fakeAPI) Put(ctx context.Context, endpoint string, body any, header http.Header, v any) error {
	return f.dispatch(apiCall{Method: http.MethodPut, Endpoint: endpoint, Header: header, Body: body}, v)
}

func (f *fakeAPI) Patch(ctx context.Context, endpoint string, body any, header http.Header, v any) error {
	return f.dispatch(apiCall{Method: http.MethodPatch, Endpoint: endpoint, Header: header, Body: body}, v)
}

func (f *fakeAPI) Delete(ctx context.Context, endpoint string, body any, header http.Header, v any) error {
	return f.dispatch(apiCall{Method: http.MethodDelete, Endpoint: endpoint, Header: header, Body: body}, v)
}
