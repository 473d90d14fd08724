// Package source opens the video stream the monitor watches: a camera index,
// a file or stream URL handled by OpenCV, or JPEG frames pushed over UDP.
package source

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"
	"zoneguard/internal/logger"

	"gocv.io/x/gocv"
)

// UDPScheme selects the UDP JPEG receiver, e.g. "udp://:5005".
const UDPScheme = "udp://"

const (
	maxDatagram = 65535
	maxFrame    = 8 << 20
	// idleTimeout bounds how long a UDP Read waits, so callers can notice
	// cancellation while no camera is sending.
	idleTimeout = time.Second
)

var (
	// ErrEndOfStream is returned by Read once the source has no more frames.
	ErrEndOfStream = errors.New("end of stream")
	// ErrNoFrame is returned when no frame arrived in time; the caller may retry.
	ErrNoFrame = errors.New("no frame received")
)

// Source yields decoded BGR frames.
type Source interface {
	Read(dst *gocv.Mat) error
	Close() error
}

// Open picks the source implementation for target.
func Open(target string, logger *logger.Logger) (Source, error) {
	if strings.HasPrefix(target, UDPScheme) {
		return ListenUDP(strings.TrimPrefix(target, UDPScheme), logger)
	}
	return OpenCapture(target)
}

// Capture reads frames through gocv.VideoCapture. Read and Close must not
// be called concurrently.
type Capture struct {
	cap  *gocv.VideoCapture
	once sync.Once
}

// OpenCapture opens a camera index ("0"), a video file or a stream URL.
func OpenCapture(target string) (*Capture, error) {
	vc, err := gocv.OpenVideoCapture(target)
	if err != nil {
		return nil, fmt.Errorf("failed to open video source %s: %w", target, err)
	}
	if !vc.IsOpened() {
		vc.Close()
		return nil, fmt.Errorf("video source %s is not available", target)
	}
	return &Capture{cap: vc}, nil
}

func (c *Capture) Read(dst *gocv.Mat) error {
	if ok := c.cap.Read(dst); !ok || dst.Empty() {
		return ErrEndOfStream
	}
	return nil
}

func (c *Capture) Close() error {
	var err error
	c.once.Do(func() {
		err = c.cap.Close()
	})
	return err
}

// UDP receives JPEG frames split over datagrams. Only the newest complete
// frame is kept; frames arriving faster than they are read are dropped.
type UDP struct {
	conn   *net.UDPConn
	frames chan []byte
	done   chan struct{}
	once   sync.Once
	logger *logger.Logger
}

// ListenUDP starts receiving on addr (":5005").
func ListenUDP(addr string, logger *logger.Logger) (*UDP, error) {
	udpAddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve UDP address: %w", err)
	}

	conn, err := net.ListenUDP("udp", udpAddr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on UDP %s: %w", addr, err)
	}

	u := &UDP{
		conn:   conn,
		frames: make(chan []byte, 1),
		done:   make(chan struct{}),
		logger: logger,
	}
	go u.receive()

	logger.Info("UDP frame receiver started on %s", conn.LocalAddr())
	return u, nil
}

// Addr returns the bound local address.
func (u *UDP) Addr() net.Addr {
	return u.conn.LocalAddr()
}

func (u *UDP) receive() {
	buffer := make([]byte, maxDatagram)
	assemblers := make(map[string]*frameAssembler)

	for {
		n, remoteAddr, err := u.conn.ReadFromUDP(buffer)
		if err != nil {
			select {
			case <-u.done:
				return
			default:
			}
			u.logger.Error("Error reading UDP packet: %v", err)
			continue
		}

		sender := remoteAddr.String()
		asm, ok := assemblers[sender]
		if !ok {
			asm = newFrameAssembler(maxFrame)
			assemblers[sender] = asm
		}

		frame, complete := asm.Write(buffer[:n])
		if complete {
			u.publish(frame)
		}
	}
}

// publish replaces any unread frame with the new one.
func (u *UDP) publish(frame []byte) {
	select {
	case <-u.frames:
	default:
	}
	select {
	case u.frames <- frame:
	default:
	}
}

func (u *UDP) Read(dst *gocv.Mat) error {
	timer := time.NewTimer(idleTimeout)
	defer timer.Stop()

	select {
	case <-u.done:
		return ErrEndOfStream
	case <-timer.C:
		return ErrNoFrame
	case data := <-u.frames:
		mat, err := gocv.IMDecode(data, gocv.IMReadColor)
		if err != nil {
			return fmt.Errorf("failed to decode frame: %w", err)
		}
		defer mat.Close()
		if mat.Empty() {
			return fmt.Errorf("decoded frame is empty")
		}
		mat.CopyTo(dst)
		return nil
	}
}

func (u *UDP) Close() error {
	var err error
	u.once.Do(func() {
		close(u.done)
		err = u.conn.Close()
	})
	return err
}
