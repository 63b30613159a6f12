// Command framesim serves synthetic frame telegrams so the recording daemon
// can be exercised without a real producer.
package main

import (
	"context"
	"flag"
	"log"
	"net"

	"golang.org/x/time/rate"

	"github.com/lcavalli/ADCore/framesource"
	"github.com/lcavalli/ADCore/ndarray"
)

func main() {
	var (
		addr   = flag.String("addr", ":8765", "address to listen at")
		fps    = flag.Float64("fps", 10, "frames per second per connection")
		width  = flag.Int("width", 64, "frame width")
		height = flag.Int("height", 48, "frame height")
		dtype  = flag.String("dtype", "uint16", "sample type: int8, uint8, ..., float64")
		count  = flag.Int("n", 0, "frames per connection, 0 streams forever")
	)
	flag.Parse()

	if *fps <= 0 {
		log.Fatal("fps must be positive")
	}
	dt, err := ndarray.ParseDType(*dtype)
	if err != nil {
		log.Fatal(err)
	}
	// validate the geometry before accepting anyone
	if _, err := framesource.NewPattern(*width, *height, dt); err != nil {
		log.Fatal(err)
	}

	ln, err := net.Listen("tcp", *addr)
	if err != nil {
		log.Fatal(err)
	}
	log.Println("serving frames at", ln.Addr())
	for {
		conn, err := ln.Accept()
		if err != nil {
			log.Fatal(err)
		}
		go serve(conn, *width, *height, dt, *fps, *count)
	}
}

// serve streams pattern telegrams until the connection drops or the frame
// budget runs out.
func serve(conn net.Conn, w, h int, dt ndarray.DType, fps float64, count int) {
	defer conn.Close()
	log.Println("consumer connected:", conn.RemoteAddr())
	pat, err := framesource.NewPattern(w, h, dt)
	if err != nil {
		log.Println("pattern:", err)
		return
	}
	limiter := rate.NewLimiter(rate.Limit(fps), 1)
	for n := 0; count == 0 || n < count; n++ {
		if err := limiter.Wait(context.Background()); err != nil {
			return
		}
		f, err := pat.Next()
		if err != nil {
			log.Println("pattern:", err)
			return
		}
		tele, err := framesource.Encode(f)
		if err != nil {
			log.Println("encode:", err)
			return
		}
		if _, err := conn.Write(tele); err != nil {
			log.Println("consumer went away:", err)
			return
		}
	}
	log.Println("frame budget spent, closing", conn.RemoteAddr())
}
