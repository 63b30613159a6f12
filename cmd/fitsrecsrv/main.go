package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"

	yml "gopkg.in/yaml.v2"
)

var (
	// Version is the version number.  Typically injected via ldflags with git build
	Version = "1"

	// ConfigFileName is what it sounds like
	ConfigFileName = "fitsrecsrv.yml"
	k              = koanf.New(".")
)

func setupconfig() {
	k.Load(structs.Provider(Config{
		Addr: ":8000",
		Source: SourceSetup{
			Addr: "localhost:8765"},
		Recorder: RecorderSetup{
			Root:    "data",
			Prefix:  "frame_",
			Enabled: true},
		Queue: 16}, "koanf"), nil)
	if err := k.Load(file.Provider(ConfigFileName), yaml.Parser()); err != nil {
		errtxt := err.Error()
		if !strings.Contains(errtxt, "no such") { // file missing, who cares
			log.Fatalf("error loading config: %v", err)
		}
	}
}

func root() {
	str := `fitsrecsrv pulls frames from a producer and records them as FITS images
one file per frame, with an HTTP interface to steer where the files go.

Usage:
	fitsrecsrv <command>

Commands:
	run
	help
	mkconf
	conf
	version`
	fmt.Println(str)
}

func help() {
	str := `fitsrecsrv is amenable to configuration via its .yaml file.  For a primer on YAML, see
https://yaml.org/start.html

Files land in <Root>/<yyyy-mm-dd>/<Prefix><number>.fits with six digit numbers
counting up from zero.  Changing the prefix over HTTP resets the number.

The producer speaks length-free telegrams over TCP or serial; Source.Addr is a
host:port for TCP or a device path with Serial: true for RS232.

Attributes listed in the config are recorded into every file header.  Each
needs a Name, a Type and a Value; Description is optional.  Types, in
ascending width:
- int8, uint8
- int16, uint16
- int32, uint32
- float32, float64
- string (80 characters recorded at most)

Unsigned and signed-byte values are recorded with the conventional BZERO
offsets so any reader recovers them exactly.

The HTTP interface lives under /autowrite; GET /endpoints lists the routes.
POST a {"bool": true} body to /lock to refuse configuration changes while an
acquisition runs.`
	fmt.Println(str)
}

func mkconf() {
	c := Config{}
	err := k.Unmarshal("", &c)
	if err != nil {
		log.Fatal(err)
	}
	f, err := os.Create(ConfigFileName)
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()
	err = yml.NewEncoder(f).Encode(c)
	if err != nil {
		log.Fatal(err)
	}
}

func printconf() {
	c := Config{}
	k.Unmarshal("", &c)
	err := yml.NewEncoder(os.Stdout).Encode(c)
	if err != nil {
		log.Fatal(err)
	}
}

func pversion() {
	fmt.Printf("fitsrecsrv version %v\n", Version)
}

func run() {
	c := Config{}
	err := k.Unmarshal("", &c)
	if err != nil {
		log.Fatal(err)
	}
	attrs, err := BuildAttrs(c)
	if err != nil {
		log.Fatal(err)
	}
	pump := BuildPump(c)
	if !c.Blocking {
		go pump.Run()
	}
	go feed(c, pump, attrs)
	mux := BuildMux(pump)
	log.Println("now listening for requests at ", c.Addr)
	log.Fatal(http.ListenAndServe(c.Addr, mux))
}

func main() {
	var cmd string
	args := os.Args
	if len(args) == 1 {
		root()
		return
	}
	setupconfig()
	cmd = args[1]
	cmd = strings.ToLower(cmd)
	switch cmd {
	case "help":
		help()
		return
	case "mkconf":
		mkconf()
		return
	case "conf":
		printconf()
		return
	case "run":
		run()
		return
	case "version":
		pversion()
		return
	default:
		log.Fatal("unknown command")
	}
}
