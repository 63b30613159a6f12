// Package locker provides an HTTP middleware that can lock a router,
// returning 423 (Locked) while a recording session must not be disturbed.
package locker

import (
	"encoding/json"
	"go/types"
	"net/http"
	"strings"

	"github.com/lcavalli/ADCore/server"
)

// Inject adds the lock manipulation routes to an HTTPer's table.
func Inject(other server.HTTPer, l *Locker) {
	rt := other.RT()
	rt[server.MethodPath{Method: http.MethodGet, Path: "/lock"}] = l.HTTPGet
	rt[server.MethodPath{Method: http.MethodPost, Path: "/lock"}] = l.HTTPSet
}

// Locker behaves like a mutex without the blocking and holds a list of
// path fragments the lock does not apply to.
type Locker struct {
	isLocked bool

	// DoNotProtect lists path fragments to exempt from the lock, so the
	// lock itself and read-only introspection stay reachable.
	DoNotProtect []string
}

// New returns a Locker that exempts the lock, endpoint listing and stats.
func New() *Locker {
	return &Locker{DoNotProtect: []string{"lock", "endpoints", "stats"}}
}

// Lock the locker.
func (l *Locker) Lock() {
	l.isLocked = true
}

// Unlock the locker.
func (l *Locker) Unlock() {
	l.isLocked = false
}

// Locked returns true if the locker is locked.
func (l *Locker) Locked() bool {
	return l.isLocked
}

// Check is an HTTP middleware that bounces requests with http.StatusLocked
// while the locker is locked, except for exempt paths.
func (l *Locker) Check(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if l.Locked() {
			protected := true
			url := r.URL.Path
			for _, str := range l.DoNotProtect {
				if strings.Contains(url, str) {
					protected = false
				}
			}
			if protected {
				w.WriteHeader(http.StatusLocked)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// HTTPSet calls Lock or Unlock based on json:bool on the request body.
func (l *Locker) HTTPSet(w http.ResponseWriter, r *http.Request) {
	b := server.BoolT{}
	err := json.NewDecoder(r.Body).Decode(&b)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if b.Bool {
		l.Lock()
	} else {
		l.Unlock()
	}
	w.WriteHeader(http.StatusOK)
}

// HTTPGet returns Locked() over HTTP as JSON.
func (l *Locker) HTTPGet(w http.ResponseWriter, r *http.Request) {
	hp := server.HumanPayload{T: types.Bool, Bool: l.Locked()}
	hp.EncodeAndRespond(w, r)
}
