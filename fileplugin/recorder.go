package fileplugin

import (
	"fmt"
	"os"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/lcavalli/ADCore/ndarray"
)

// Recorder drives a FileWriter through one open/write/close cycle per array,
// with incrementing filenames in yyyy-mm-dd subfolders.  It is not thread
// safe; the pump serializes captures onto one goroutine.
type Recorder struct {
	// counter is the internally incrementing counter
	counter int

	// timeFldr is the subfolder with yyyy-mm-dd format.
	timeFldr string

	// lastPath is the most recently completed file
	lastPath string

	// Root is the root path
	Root string

	// Prefix is the prefix for the filenames
	Prefix string

	// Enabled is a flag unused by this struct that allows consumers to
	// gate captures in their code
	Enabled bool

	// Plugin is the file-format writer cycles run against
	Plugin FileWriter
}

// updateFolder checks the current time and updates the folder and timestamp as needed
func (r *Recorder) updateFolder() {
	now := time.Now()
	y, m, d := now.Year(), now.Month(), now.Day()
	r.timeFldr = fmt.Sprintf("%04d-%02d-%02d", y, m, d)
}

// mkDir makes the folder and returns it
func (r *Recorder) mkDir() (string, error) {
	fldr := path.Join(r.Root, r.timeFldr)
	err := os.MkdirAll(fldr, 0777)
	return fldr, err
}

// NextPath composes the path the next capture will write, creating the day
// folder as a side effect.
func (r *Recorder) NextPath() (string, error) {
	r.updateFolder()
	fldr, err := r.mkDir()
	if err != nil {
		return "", err
	}
	fn := fmt.Sprintf("%s%06d.fits", r.Prefix, r.counter)
	return path.Join(fldr, fn), nil
}

// Capture runs one full write cycle for arr: open, write, close.  On
// success the counter advances and the path is retained; on failure the
// counter is rescanned so a leftover partial file cannot wedge the sequence,
// and the partial file itself is left for the operator.
func (r *Recorder) Capture(arr *ndarray.Array) (string, error) {
	pth, err := r.NextPath()
	if err != nil {
		return "", err
	}
	if err := r.Plugin.Open(pth, ModeWrite, arr); err != nil {
		r.Incr()
		return pth, err
	}
	if err := r.Plugin.Write(arr); err != nil {
		r.Plugin.Close()
		r.Incr()
		return pth, err
	}
	if err := r.Plugin.Close(); err != nil {
		r.Incr()
		return pth, err
	}
	r.lastPath = pth
	r.counter++
	return pth, nil
}

// LastPath returns the most recently completed file, empty before any.
func (r *Recorder) LastPath() string { return r.lastPath }

// Counter returns the number the next file will carry.
func (r *Recorder) Counter() int { return r.counter }

// ResetCounter zeros the counter, e.g. after a prefix change.
func (r *Recorder) ResetCounter() { r.counter = 0 }

// Incr updates the filename counter; it scans the folder to do so.  The
// counter lands one past the highest existing file, or at zero when the day
// folder holds none.  If there is an error, the counter is not updated
func (r *Recorder) Incr() {
	r.updateFolder()
	dn, _ := r.mkDir()
	files, err := os.ReadDir(dn)
	if err != nil {
		return
	}
	count := -1
	for _, file := range files {
		// skip directories, non-fits, and wrong prefix
		if file.IsDir() {
			continue
		}
		fn := file.Name()
		if !strings.HasSuffix(fn, ".fits") || !strings.HasPrefix(fn, r.Prefix) {
			continue
		}
		// guaranteed match
		bit := strings.Split(fn, r.Prefix)[1]
		bit = bit[:len(bit)-5] // pop fits
		n, err := strconv.Atoi(bit)
		if err != nil {
			return
		}
		if count < n {
			count = n
		}
	}
	r.counter = count + 1
}
