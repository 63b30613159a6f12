package main

import (
	"errors"
	"log"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"

	"github.com/lcavalli/ADCore/fileplugin"
	"github.com/lcavalli/ADCore/fitsfile"
	"github.com/lcavalli/ADCore/framesource"
	"github.com/lcavalli/ADCore/ndarray"
	"github.com/lcavalli/ADCore/server"
	"github.com/lcavalli/ADCore/server/middleware/locker"
)

// SourceSetup holds the connection parameters for the frame producer.
type SourceSetup struct {
	// Addr holds the network or filesystem address of the producer,
	// e.g. 192.168.100.123:8765, or /dev/ttyS4 for an RS232 link
	Addr string `yaml:"Addr"`

	// Serial determines if the connection is serial/RS232 (True) or TCP (False)
	Serial bool `yaml:"Serial"`
}

// RecorderSetup controls where files land and what they are called.
type RecorderSetup struct {
	// Root is the folder the dated subfolders are made under
	Root string `yaml:"Root"`

	// Prefix starts every filename
	Prefix string `yaml:"Prefix"`

	// Enabled starts the daemon recording; it can be toggled over HTTP
	Enabled bool `yaml:"Enabled"`
}

// AttrSetup is one attribute attached to every frame before writing.
type AttrSetup struct {
	Name        string `yaml:"Name"`
	Description string `yaml:"Description"`

	// Type is the value type name, e.g. uint16, float64, string
	Type  string `yaml:"Type"`
	Value string `yaml:"Value"`
}

// Config is a struct that holds the initialization parameters for the
// daemon.  It is to be populated by a yaml/unmarshal call.
type Config struct {
	// Addr is the address to listen at
	Addr string `yaml:"Addr"`

	Source SourceSetup `yaml:"Source"`

	Recorder RecorderSetup `yaml:"Recorder"`

	// Queue is the frame queue capacity
	Queue int `yaml:"Queue"`

	// Blocking runs write cycles on the receive goroutine instead of the queue
	Blocking bool `yaml:"Blocking"`

	// PreserveRowOrder writes rows in memory order instead of flipping
	// vertically
	PreserveRowOrder bool `yaml:"PreserveRowOrder"`

	// SkipAttributes leaves attributes out of the file headers
	SkipAttributes bool `yaml:"SkipAttributes"`

	// Attributes are attached to every incoming frame before writing
	Attributes []AttrSetup `yaml:"Attributes"`
}

// node is a route table holder satisfying server.HTTPer
type node struct {
	rt server.RouteTable
}

func (n node) RT() server.RouteTable { return n.rt }

// BuildPump assembles the writer, recorder and pump from the config.
func BuildPump(c Config) *fileplugin.Pump {
	plugin := fitsfile.NewWriter(fitsfile.Options{
		PreserveRowOrder: c.PreserveRowOrder,
		SkipAttributes:   c.SkipAttributes})
	rec := &fileplugin.Recorder{
		Root:    c.Recorder.Root,
		Prefix:  c.Recorder.Prefix,
		Enabled: c.Recorder.Enabled,
		Plugin:  plugin}
	// pick up after any files already in today's folder
	rec.Incr()
	return fileplugin.NewPump(rec, c.Queue, c.Blocking)
}

// BuildAttrs parses the configured attributes.
func BuildAttrs(c Config) ([]*ndarray.Attribute, error) {
	attrs := make([]*ndarray.Attribute, 0, len(c.Attributes))
	for _, as := range c.Attributes {
		a, err := ndarray.ParseAttr(as.Name, as.Description, as.Type, as.Value)
		if err != nil {
			return nil, err
		}
		attrs = append(attrs, a)
	}
	return attrs, nil
}

// BuildMux hangs the recorder and lock routes on a chi router with request
// logging.  The mux serves a special route, /endpoints, which returns an
// array of strings containing all routes as JSON.
func BuildMux(p *fileplugin.Pump) chi.Router {
	root := chi.NewRouter()
	root.Use(middleware.Logger)

	n := node{rt: server.RouteTable{}}
	wrap := fileplugin.NewHTTPWrapper(p)
	wrap.Inject(n)

	lock := locker.New()
	locker.Inject(n, lock)

	root.Use(lock.Check)
	n.rt.Bind(root)
	root.Get("/endpoints", server.EndpointsHandler(n.rt))
	return root
}

// feed connects to the frame source and offers every frame to the pump,
// reconnecting when the stream drops.
func feed(c Config, p *fileplugin.Pump, attrs []*ndarray.Attribute) {
	for {
		src := framesource.NewSource(c.Source.Addr, c.Source.Serial)
		if err := src.Open(); err != nil {
			log.Println("frame source connect failed:", err)
			time.Sleep(3 * time.Second)
			continue
		}
		log.Println("connected to frame source at", c.Source.Addr)
		for {
			f, err := src.NextFrame()
			if err != nil {
				if errors.Is(err, framesource.ErrCRCMismatch) {
					log.Println("dropping frame:", err)
					continue
				}
				log.Println("frame source read failed:", err)
				break
			}
			stamp(f, attrs)
			p.Offer(f.Arr)
		}
		src.Close()
	}
}

// stamp attaches the configured attributes and the sequence number to a frame.
func stamp(f framesource.Frame, attrs []*ndarray.Attribute) {
	if f.Arr.Attrs == nil {
		f.Arr.Attrs = &ndarray.AttributeList{}
	}
	for _, a := range attrs {
		f.Arr.Attrs.Add(a)
	}
	seq, err := ndarray.NewAttr("FRAMESEQ", "producer frame counter", int32(f.Seq))
	if err == nil {
		f.Arr.Attrs.Add(seq)
	}
}
