package fileplugin

import (
	"encoding/json"
	"net/http"
	"path/filepath"

	"github.com/lcavalli/ADCore/server"
)

// HTTPWrapper exposes a pump and its recorder over HTTP
type HTTPWrapper struct {
	// Pump is the embedded pump
	*Pump
}

// NewHTTPWrapper returns a newly HTTP wrapped pump
func NewHTTPWrapper(p *Pump) HTTPWrapper {
	return HTTPWrapper{p}
}

// SetRoot updates the root folder of the recorder
func (h HTTPWrapper) SetRoot(w http.ResponseWriter, r *http.Request) {
	str := server.StrT{}
	err := json.NewDecoder(r.Body).Decode(&str)
	defer r.Body.Close()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	rec := h.Recorder()
	rec.Root = str.Str
	rec.updateFolder()
	_, err = rec.mkDir()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h HTTPWrapper) root() (string, error) {
	return h.Recorder().Root, nil
}

func (h HTTPWrapper) prefix() (string, error) {
	return h.Recorder().Prefix, nil
}

// setPrefix also zeros the counter; a fresh prefix restarts the sequence
func (h HTTPWrapper) setPrefix(s string) error {
	rec := h.Recorder()
	rec.Prefix = s
	rec.ResetCounter()
	return nil
}

func (h HTTPWrapper) enabled() (bool, error) {
	return h.Recorder().Enabled, nil
}

func (h HTTPWrapper) setEnabled(b bool) error {
	h.Recorder().Enabled = b
	return nil
}

func (h HTTPWrapper) counter() (int, error) {
	return h.Recorder().Counter(), nil
}

func (h HTTPWrapper) lastFile() (string, error) {
	return h.Recorder().LastPath(), nil
}

func (h HTTPWrapper) rate() (float64, error) {
	return h.Stats().RateHz, nil
}

// armCapture arms n one-shot captures, minimum 1
func (h HTTPWrapper) armCapture(n int) error {
	if n < 1 {
		n = 1
	}
	h.RequestCapture(n)
	return nil
}

// GetStats sends the pump counters back as JSON
func (h HTTPWrapper) GetStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	err := json.NewEncoder(w).Encode(h.Stats())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// DownloadLastFile serves the most recently completed file
func (h HTTPWrapper) DownloadLastFile(w http.ResponseWriter, r *http.Request) {
	pth := h.Recorder().LastPath()
	if pth == "" {
		http.Error(w, "no file written yet", http.StatusNotFound)
		return
	}
	server.ReplyWithFile(w, r, filepath.Base(pth), filepath.Dir(pth))
}

// Inject adds the /autowrite routes to the HTTPer, which manipulate this wrapper's pump and recorder
func (h HTTPWrapper) Inject(other server.HTTPer) {
	rt := other.RT()
	rt[server.MethodPath{Method: http.MethodPost, Path: "/autowrite/root"}] = h.SetRoot
	rt[server.MethodPath{Method: http.MethodGet, Path: "/autowrite/root"}] = server.GetString(h.root)
	rt[server.MethodPath{Method: http.MethodPost, Path: "/autowrite/prefix"}] = server.SetString(h.setPrefix)
	rt[server.MethodPath{Method: http.MethodGet, Path: "/autowrite/prefix"}] = server.GetString(h.prefix)
	rt[server.MethodPath{Method: http.MethodPost, Path: "/autowrite/enabled"}] = server.SetBool(h.setEnabled)
	rt[server.MethodPath{Method: http.MethodGet, Path: "/autowrite/enabled"}] = server.GetBool(h.enabled)
	rt[server.MethodPath{Method: http.MethodGet, Path: "/autowrite/counter"}] = server.GetInt(h.counter)
	rt[server.MethodPath{Method: http.MethodPost, Path: "/autowrite/capture"}] = server.SetInt(h.armCapture)
	rt[server.MethodPath{Method: http.MethodGet, Path: "/autowrite/rate"}] = server.GetFloat(h.rate)
	rt[server.MethodPath{Method: http.MethodGet, Path: "/autowrite/stats"}] = h.GetStats
	rt[server.MethodPath{Method: http.MethodGet, Path: "/autowrite/lastfile"}] = server.GetString(h.lastFile)
	rt[server.MethodPath{Method: http.MethodGet, Path: "/autowrite/lastfile/download"}] = h.DownloadLastFile
}
