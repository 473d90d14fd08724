package source

import "bytes"

var (
	jpegHeader = []byte{0xFF, 0xD8}
	jpegFooter = []byte{0xFF, 0xD9}
)

// frameAssembler rebuilds JPEG frames that a camera sends as a sequence of
// UDP datagrams. A datagram starting with the JPEG SOI marker begins a new
// frame; one ending with the EOI marker completes it.
type frameAssembler struct {
	buf     bytes.Buffer
	started bool
	limit   int
}

func newFrameAssembler(limit int) *frameAssembler {
	return &frameAssembler{limit: limit}
}

// Write feeds one datagram and returns a complete frame when it has one.
func (a *frameAssembler) Write(packet []byte) ([]byte, bool) {
	if bytes.HasPrefix(packet, jpegHeader) {
		a.buf.Reset()
		a.started = true
	}
	if !a.started {
		return nil, false
	}

	a.buf.Write(packet)
	if a.limit > 0 && a.buf.Len() > a.limit {
		a.buf.Reset()
		a.started = false
		return nil, false
	}

	if !bytes.HasSuffix(packet, jpegFooter) {
		return nil, false
	}

	frame := make([]byte, a.buf.Len())
	copy(frame, a.buf.Bytes())
	a.buf.Reset()
	a.started = false
	return frame, true
}
