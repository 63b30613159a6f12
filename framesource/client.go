package framesource

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/tarm/serial"

	"github.com/lcavalli/ADCore/util"
)

// ErrNotConnected is generated when Conn is nil and NextFrame is called.
var ErrNotConnected = errors.New("conn is nil, not connected to remote")

// MakeSerConf makes a new serial config
func MakeSerConf(addr string) *serial.Config {
	return &serial.Config{
		Name:        addr,
		Baud:        115200,
		Size:        8,
		Parity:      serial.ParityNone,
		StopBits:    serial.Stop1,
		ReadTimeout: 1 * time.Second}
}

// Source streams frames from a remote producer.  It is not safe for
// concurrent use; the daemon reads it from a single goroutine.
type Source struct {
	// Addr is the network or serial location of the producer
	Addr string

	// IsSerial selects a serial link instead of TCP
	IsSerial bool

	// Timeout bounds the dial and each frame read.  Zero means 10 seconds.
	Timeout time.Duration

	// Conn is the underlying connection
	Conn io.ReadWriteCloser

	rdr *bufio.Reader
}

// NewSource creates a new Source instance
func NewSource(addr string, isSerial bool) *Source {
	return &Source{Addr: addr, IsSerial: isSerial}
}

func (s *Source) timeout() time.Duration {
	if s.Timeout == 0 {
		return 10 * time.Second
	}
	return s.Timeout
}

// Open the connection, setting the Conn variable.  Dialing retries with
// exponential backoff; producers that are still starting up do not like
// being connection thrashed.
func (s *Source) Open() error {
	wasTimeout := false
	op := func() error {
		err := s.open()
		if err != nil {
			errS := strings.ToLower(err.Error())
			if strings.Contains(errS, "refused") {
				return err
			}
			wasTimeout = true
			return nil
		}
		return nil
	}

	// backoff will cease on a timeout so we don't wait
	// forever, so we need to check for err != nil && !wasTimeout
	err := backoff.Retry(op, &backoff.ExponentialBackOff{
		InitialInterval:     25 * time.Millisecond,
		RandomizationFactor: 0.,
		Multiplier:          2.,
		MaxInterval:         1 * time.Second,
		MaxElapsedTime:      3 * time.Second,
		Clock:               backoff.SystemClock})
	if err == nil && !wasTimeout {
		return nil
	}
	if wasTimeout {
		return fmt.Errorf("connection timeout to %s", s.Addr)
	}
	return err
}

func (s *Source) open() error {
	var err error
	var conn io.ReadWriteCloser
	if s.IsSerial {
		conn, err = serial.OpenPort(MakeSerConf(s.Addr))
	} else {
		conn, err = util.TCPSetup(s.Addr, s.timeout())
	}
	if err != nil {
		return err
	}
	s.Conn = conn
	s.rdr = bufio.NewReader(conn)
	return nil
}

// Close the connection, nil-ing the Conn variable
func (s *Source) Close() error {
	if s.Conn == nil {
		return nil
	}
	err := s.Conn.Close()
	if err == nil {
		s.Conn = nil
		s.rdr = nil
	}
	return err
}

// NextFrame blocks for the next telegram and decodes it.  A decode or
// checksum error spoils only the telegram it arrived in; the stream stays
// framed and the next call reads on.
func (s *Source) NextFrame() (Frame, error) {
	if s.Conn == nil {
		return Frame{}, ErrNotConnected
	}
	if conn, ok := s.Conn.(net.Conn); ok {
		conn.SetReadDeadline(time.Now().Add(s.timeout()))
	}
	tele, err := s.rdr.ReadBytes(telEnd)
	if err != nil {
		return Frame{}, err
	}
	return Decode(tele)
}
