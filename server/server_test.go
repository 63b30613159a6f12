package server_test

import (
	"encoding/json"
	"go/types"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi"

	"github.com/lcavalli/ADCore/server"
)

func TestRouteTableBindsToChi(t *testing.T) {
	hits := 0
	rt := server.RouteTable{
		server.MethodPath{Method: http.MethodGet, Path: "/ping"}: func(w http.ResponseWriter, r *http.Request) {
			hits++
			w.WriteHeader(http.StatusOK)
		},
	}
	r := chi.NewRouter()
	rt.Bind(r)
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("expected 200 got %d", w.Code)
	}
	if hits != 1 {
		t.Errorf("expected 1 hit got %d", hits)
	}
}

func TestEndpointsAreSorted(t *testing.T) {
	noop := func(w http.ResponseWriter, r *http.Request) {}
	rt := server.RouteTable{
		server.MethodPath{Method: http.MethodPost, Path: "/b"}: noop,
		server.MethodPath{Method: http.MethodGet, Path: "/a"}:  noop,
	}
	eps := rt.Endpoints()
	if len(eps) != 2 {
		t.Fatalf("expected 2 endpoints got %d", len(eps))
	}
	if eps[0] != "GET /a" || eps[1] != "POST /b" {
		t.Errorf("expected sorted endpoints got %v", eps)
	}
}

func TestEndpointsHandlerMergesTables(t *testing.T) {
	noop := func(w http.ResponseWriter, r *http.Request) {}
	a := server.RouteTable{server.MethodPath{Method: http.MethodGet, Path: "/a"}: noop}
	b := server.RouteTable{server.MethodPath{Method: http.MethodGet, Path: "/b"}: noop}
	w := httptest.NewRecorder()
	server.EndpointsHandler(a, b)(w, httptest.NewRequest(http.MethodGet, "/endpoints", nil))
	var eps []string
	if err := json.NewDecoder(w.Body).Decode(&eps); err != nil {
		t.Fatalf("expected json array got %v", err)
	}
	if len(eps) != 2 || eps[0] != "GET /a" || eps[1] != "GET /b" {
		t.Errorf("expected merged endpoint list got %v", eps)
	}
}

func TestHumanPayloadEncodings(t *testing.T) {
	cases := []struct {
		hp   server.HumanPayload
		want string
	}{
		{server.HumanPayload{T: types.Float64, Float: 3.5}, `{"f64":3.5}`},
		{server.HumanPayload{T: types.Int, Int: -2}, `{"int":-2}`},
		{server.HumanPayload{T: types.String, String: "ok"}, `{"str":"ok"}`},
		{server.HumanPayload{T: types.Bool, Bool: true}, `{"bool":true}`},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		tc.hp.EncodeAndRespond(w, httptest.NewRequest(http.MethodGet, "/", nil))
		if got := strings.TrimSpace(w.Body.String()); got != tc.want {
			t.Errorf("expected %s got %s", tc.want, got)
		}
	}
}

func TestSetFloatDecodesBody(t *testing.T) {
	var got float64
	h := server.SetFloat(func(f float64) error {
		got = f
		return nil
	})
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"f64":1.25}`))
	w := httptest.NewRecorder()
	h(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("expected 200 got %d", w.Code)
	}
	if got != 1.25 {
		t.Errorf("expected 1.25 got %v", got)
	}
}

func TestSetBoolRejectsGarbage(t *testing.T) {
	h := server.SetBool(func(bool) error { return nil })
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("not json"))
	w := httptest.NewRecorder()
	h(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 got %d", w.Code)
	}
}
