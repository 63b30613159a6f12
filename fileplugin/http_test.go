package fileplugin_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi"

	"github.com/lcavalli/ADCore/fileplugin"
	"github.com/lcavalli/ADCore/server"
)

type fakeHTTPer struct {
	rt server.RouteTable
}

func (f fakeHTTPer) RT() server.RouteTable { return f.rt }

func newWrappedServer(t *testing.T, rec *fileplugin.Recorder, depth int) (*fileplugin.Pump, *httptest.Server) {
	t.Helper()
	p := fileplugin.NewPump(rec, depth, true)
	w := fileplugin.NewHTTPWrapper(p)
	httper := fakeHTTPer{rt: server.RouteTable{}}
	w.Inject(httper)
	router := chi.NewRouter()
	httper.RT().Bind(router)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return p, srv
}

func TestHTTPPrefixRoundTripResetsCounter(t *testing.T) {
	rec := &fileplugin.Recorder{Root: t.TempDir(), Prefix: "frame_", Enabled: true, Plugin: &fakePlugin{}}
	p, srv := newWrappedServer(t, rec, 4)

	if !p.Offer(mustFrame(t)) {
		t.Fatal("expected capture to advance the counter")
	}
	if rec.Counter() != 1 {
		t.Fatalf("expected counter 1, got %d", rec.Counter())
	}

	body := bytes.NewBufferString(`{"str":"cal_"}`)
	resp, err := http.Post(srv.URL+"/autowrite/prefix", "application/json", body)
	if err != nil {
		t.Fatalf("expected response, got %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if rec.Prefix != "cal_" {
		t.Errorf("expected prefix cal_, got %s", rec.Prefix)
	}
	if rec.Counter() != 0 {
		t.Errorf("expected counter reset, got %d", rec.Counter())
	}

	resp, err = http.Get(srv.URL + "/autowrite/prefix")
	if err != nil {
		t.Fatalf("expected response, got %v", err)
	}
	defer resp.Body.Close()
	var str server.StrT
	if err := json.NewDecoder(resp.Body).Decode(&str); err != nil {
		t.Fatalf("expected str payload, got %v", err)
	}
	if str.Str != "cal_" {
		t.Errorf("expected cal_, got %s", str.Str)
	}
}

func TestHTTPEnabledToggle(t *testing.T) {
	rec := &fileplugin.Recorder{Root: t.TempDir(), Prefix: "e_", Plugin: &fakePlugin{}}
	_, srv := newWrappedServer(t, rec, 4)

	body := bytes.NewBufferString(`{"bool":true}`)
	resp, err := http.Post(srv.URL+"/autowrite/enabled", "application/json", body)
	if err != nil {
		t.Fatalf("expected response, got %v", err)
	}
	resp.Body.Close()
	if !rec.Enabled {
		t.Error("expected recorder to be enabled")
	}

	resp, err = http.Get(srv.URL + "/autowrite/enabled")
	if err != nil {
		t.Fatalf("expected response, got %v", err)
	}
	defer resp.Body.Close()
	var b server.BoolT
	if err := json.NewDecoder(resp.Body).Decode(&b); err != nil {
		t.Fatalf("expected bool payload, got %v", err)
	}
	if !b.Bool {
		t.Error("expected true, got false")
	}
}

func TestHTTPRootChangeMakesFolder(t *testing.T) {
	rec := &fileplugin.Recorder{Root: t.TempDir(), Prefix: "r_", Plugin: &fakePlugin{}}
	_, srv := newWrappedServer(t, rec, 4)

	newRoot := filepath.Join(t.TempDir(), "nested", "data")
	buf, _ := json.Marshal(server.StrT{Str: newRoot})
	resp, err := http.Post(srv.URL+"/autowrite/root", "application/json", bytes.NewReader(buf))
	if err != nil {
		t.Fatalf("expected response, got %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if rec.Root != newRoot {
		t.Errorf("expected root %s, got %s", newRoot, rec.Root)
	}
	entries, err := os.ReadDir(newRoot)
	if err != nil {
		t.Fatalf("expected day folder under new root, got %v", err)
	}
	if len(entries) != 1 || !entries[0].IsDir() {
		t.Error("expected exactly the day folder under new root")
	}
}

func TestHTTPCaptureArmsOneShots(t *testing.T) {
	rec := &fileplugin.Recorder{Root: t.TempDir(), Prefix: "c_", Plugin: &fakePlugin{}}
	p, srv := newWrappedServer(t, rec, 4)

	body := bytes.NewBufferString(`{"int":3}`)
	resp, err := http.Post(srv.URL+"/autowrite/capture", "application/json", body)
	if err != nil {
		t.Fatalf("expected response, got %v", err)
	}
	resp.Body.Close()
	if got := p.Stats().Pending; got != 3 {
		t.Errorf("expected 3 pending, got %d", got)
	}

	// zero asks for a single frame
	body = bytes.NewBufferString(`{"int":0}`)
	resp, err = http.Post(srv.URL+"/autowrite/capture", "application/json", body)
	if err != nil {
		t.Fatalf("expected response, got %v", err)
	}
	resp.Body.Close()
	if got := p.Stats().Pending; got != 4 {
		t.Errorf("expected 4 pending, got %d", got)
	}
}

func TestHTTPStatsReportsQueueShape(t *testing.T) {
	rec := &fileplugin.Recorder{Root: t.TempDir(), Prefix: "s_", Plugin: &fakePlugin{}}
	_, srv := newWrappedServer(t, rec, 7)

	resp, err := http.Get(srv.URL + "/autowrite/stats")
	if err != nil {
		t.Fatalf("expected response, got %v", err)
	}
	defer resp.Body.Close()
	var st fileplugin.Stats
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		t.Fatalf("expected stats payload, got %v", err)
	}
	if st.QueueCap != 7 {
		t.Errorf("expected queue cap 7, got %d", st.QueueCap)
	}
	if st.Written != 0 || st.Dropped != 0 {
		t.Errorf("expected idle counters, got %d/%d", st.Written, st.Dropped)
	}

	resp, err = http.Get(srv.URL + "/autowrite/rate")
	if err != nil {
		t.Fatalf("expected response, got %v", err)
	}
	defer resp.Body.Close()
	var f server.FloatT
	if err := json.NewDecoder(resp.Body).Decode(&f); err != nil {
		t.Fatalf("expected f64 payload, got %v", err)
	}
	if f.F64 != 0 {
		t.Errorf("expected 0 rate on idle pump, got %v", f.F64)
	}
}

func TestHTTPLastFileRoutes(t *testing.T) {
	rec := &fileplugin.Recorder{Root: t.TempDir(), Prefix: "l_", Enabled: true, Plugin: &fakePlugin{}}
	p, srv := newWrappedServer(t, rec, 4)

	resp, err := http.Get(srv.URL + "/autowrite/lastfile/download")
	if err != nil {
		t.Fatalf("expected response, got %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 before any file, got %d", resp.StatusCode)
	}

	if !p.Offer(mustFrame(t)) {
		t.Fatal("expected capture")
	}
	// the fake plugin does not create the file, so put one at the path
	if err := os.WriteFile(rec.LastPath(), []byte("SIMPLE"), 0666); err != nil {
		t.Fatalf("expected stand-in file, got %v", err)
	}

	resp, err = http.Get(srv.URL + "/autowrite/lastfile")
	if err != nil {
		t.Fatalf("expected response, got %v", err)
	}
	var str server.StrT
	err = json.NewDecoder(resp.Body).Decode(&str)
	resp.Body.Close()
	if err != nil {
		t.Fatalf("expected str payload, got %v", err)
	}
	if str.Str != rec.LastPath() {
		t.Errorf("expected %s, got %s", rec.LastPath(), str.Str)
	}

	resp, err = http.Get(srv.URL + "/autowrite/lastfile/download")
	if err != nil {
		t.Fatalf("expected response, got %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
}
