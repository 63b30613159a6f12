// Package server contains the HTTP plumbing shared by the daemons: route
// tables bound onto chi routers, tagged JSON payloads, and handler
// factories for simple get/set endpoints.
package server

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"sort"

	"github.com/go-chi/chi"
)

// MethodPath is one HTTP method and URL pattern pair.
type MethodPath struct {
	// Method is the HTTP verb, e.g. http.MethodGet.
	Method string

	// Path is the chi URL pattern, e.g. "/prefix" or "/file/{n}".
	Path string
}

// RouteTable maps method+path pairs to their handlers.
type RouteTable map[MethodPath]http.HandlerFunc

// Bind attaches every route in the table to r.
func (rt RouteTable) Bind(r chi.Router) {
	for mp, handler := range rt {
		r.Method(mp.Method, mp.Path, handler)
	}
}

// Endpoints returns the bound patterns as "METHOD path" strings, sorted.
func (rt RouteTable) Endpoints() []string {
	eps := make([]string, 0, len(rt))
	for mp := range rt {
		eps = append(eps, mp.Method+" "+mp.Path)
	}
	sort.Strings(eps)
	return eps
}

// HTTPer is anything that exposes a route table.
type HTTPer interface {
	// RT returns the route table, which callers may extend before Bind.
	RT() RouteTable
}

// ReplyWithFile replies to the client request by serving the given file name
func ReplyWithFile(w http.ResponseWriter, r *http.Request, fn string, fldr string) {
	filePath, err := filepath.Abs(filepath.Join(fldr, fn))
	if err != nil {
		fstr := fmt.Sprintf("unable to compute abspath of file %s %s %s", fldr, fn, err)
		log.Println(fstr)
		http.Error(w, fstr, http.StatusInternalServerError)
		return
	}

	f, err := os.Open(filePath)
	if err != nil {
		fstr := fmt.Sprintf("source file missing %s", filePath)
		log.Println(fstr)
		http.Error(w, fstr, http.StatusNotFound)
		return
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		fstr := fmt.Sprintf("error retrieving source file stats %s", err)
		log.Println(fstr)
		http.Error(w, fstr, http.StatusNotFound)
		return
	}
	// ServeContent sets the headers from the file metadata
	http.ServeContent(w, r, fn, stat.ModTime(), f)
}

// EndpointsHandler returns a handler serving the merged endpoint listing of
// every table, as a JSON array of "METHOD path" strings.
func EndpointsHandler(tables ...RouteTable) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var eps []string
		for _, rt := range tables {
			eps = append(eps, rt.Endpoints()...)
		}
		sort.Strings(eps)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if err := json.NewEncoder(w).Encode(eps); err != nil {
			log.Println("error encoding endpoint list to json", err)
		}
	}
}
