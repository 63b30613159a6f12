// Command raw2fits converts a raw sample dump into a single-image FITS file.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/theckman/yacspin"

	"github.com/lcavalli/ADCore/fileplugin"
	"github.com/lcavalli/ADCore/fitsfile"
	"github.com/lcavalli/ADCore/ndarray"
	"github.com/lcavalli/ADCore/util"
)

// attrFlags allows repeatable -attr flags.
type attrFlags []string

func (a *attrFlags) String() string     { return strings.Join(*a, ",") }
func (a *attrFlags) Set(v string) error { *a = append(*a, v); return nil }

// parseAttrSpec splits NAME=TYPE:VALUE[:DESCRIPTION] into an attribute.
func parseAttrSpec(spec string) (*ndarray.Attribute, error) {
	eq := strings.Index(spec, "=")
	if eq < 1 {
		return nil, fmt.Errorf("attribute %q needs the form NAME=TYPE:VALUE[:DESCRIPTION]", spec)
	}
	name := spec[:eq]
	parts := strings.SplitN(spec[eq+1:], ":", 3)
	if len(parts) < 2 {
		return nil, fmt.Errorf("attribute %q needs the form NAME=TYPE:VALUE[:DESCRIPTION]", spec)
	}
	desc := ""
	if len(parts) == 3 {
		desc = parts[2]
	}
	return ndarray.ParseAttr(name, desc, parts[0], parts[1])
}

// convert runs one full write cycle against the output path.
func convert(w fileplugin.FileWriter, path string, arr *ndarray.Array) error {
	if err := w.Open(path, fileplugin.ModeWrite, arr); err != nil {
		return err
	}
	if err := w.Write(arr); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

func main() {
	var attrs attrFlags
	var (
		in        = flag.String("in", "", "raw sample buffer to read")
		out       = flag.String("out", "", "FITS file to create; refuses to overwrite")
		dims      = flag.String("dims", "", "axis sizes, fastest first, e.g. 640,480")
		dtype     = flag.String("dtype", "uint16", "sample type: int8, uint8, ..., float64")
		preserve  = flag.Bool("preserve-row-order", false, "write rows in memory order instead of flipping vertically")
		skipattrs = flag.Bool("skip-attributes", false, "do not record attributes in the header")
	)
	flag.Var(&attrs, "attr", "attribute as NAME=TYPE:VALUE[:DESCRIPTION], repeatable")
	flag.Parse()

	if *in == "" || *out == "" || *dims == "" {
		flag.Usage()
		os.Exit(2)
	}
	dt, err := ndarray.ParseDType(*dtype)
	if err != nil {
		log.Fatal(err)
	}
	axes, err := util.CSVToIntSlice(*dims)
	if err != nil {
		log.Fatal(err)
	}

	arr, err := ndarray.New(dt, axes...)
	if err != nil {
		log.Fatal(err)
	}
	raw, err := os.ReadFile(*in)
	if err != nil {
		log.Fatal(err)
	}
	if len(raw) != len(arr.Data) {
		log.Fatalf("%s holds %d bytes, geometry %s %s wants %d", *in, len(raw), util.IntSliceToCSV(axes), dt, len(arr.Data))
	}
	copy(arr.Data, raw)

	if len(attrs) > 0 {
		arr.Attrs = &ndarray.AttributeList{}
		for _, spec := range attrs {
			a, err := parseAttrSpec(spec)
			if err != nil {
				log.Fatal(err)
			}
			arr.Attrs.Add(a)
		}
	}

	spinner, err := yacspin.New(yacspin.Config{
		Frequency:         100 * time.Millisecond,
		CharSet:           yacspin.CharSets[59],
		Suffix:            " writing " + *out,
		StopCharacter:     "✓",
		StopFailCharacter: "✗",
		StopColors:        []string{"fgGreen"},
		StopFailColors:    []string{"fgRed"}})
	if err != nil {
		log.Fatal(err)
	}
	spinner.Start()

	w := fitsfile.NewWriter(fitsfile.Options{
		PreserveRowOrder: *preserve,
		SkipAttributes:   *skipattrs})
	if err := convert(w, *out, arr); err != nil {
		spinner.StopFail()
		log.Fatal(err)
	}
	spinner.Stop()
}
