package conn

import (
	"fmt"
	"io"
	"net"
	"strconv"

	"github.com/google/uuid"

	"warren/internal/protocol"
)

// ID identifies one live connection. IDs are assigned at accept time; an ID
// is reused only after its prior holder has been fully deregistered.
type ID uint64

func (id ID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// Conn wraps one accepted socket with its identifier and a session tag used
// to correlate log lines across the connection's lifetime.
type Conn struct {
	id      ID
	session string
	sock    net.Conn

	captured [][]byte // frame capture when no socket is attached
}

// New wraps an accepted socket.
func New(id ID, sock net.Conn) *Conn {
	return &Conn{
		id:      id,
		session: uuid.New().String(),
		sock:    sock,
	}
}

// NewMock creates a connection without a socket for testing. Frames written
// to it are captured and can be read back with Frames.
func NewMock(id ID) *Conn {
	return &Conn{
		id:      id,
		session: uuid.New().String(),
	}
}

func (c *Conn) ID() ID { return c.id }

func (c *Conn) Session() string { return c.session }

// RemoteAddr returns the peer address, or "" for a mock connection.
func (c *Conn) RemoteAddr() string {
	if c.sock == nil {
		return ""
	}
	return c.sock.RemoteAddr().String()
}

// ReadLine performs a single bounded receive and returns the payload with
// frame padding removed. A zero-byte read reports io.EOF.
func (c *Conn) ReadLine() ([]byte, error) {
	buf := make([]byte, protocol.FrameSize)
	n, err := c.sock.Read(buf)
	if n == 0 {
		if err == nil {
			err = io.EOF
		}
		return nil, err
	}
	return protocol.Trim(buf[:n]), nil
}

// WriteFrame pads payload to the fixed frame size and writes it in full.
func (c *Conn) WriteFrame(payload []byte) error {
	frame := protocol.Pad(payload)
	if c.sock == nil {
		c.captured = append(c.captured, frame)
		return nil
	}
	if _, err := c.sock.Write(frame); err != nil {
		return fmt.Errorf("failed to send frame: %w", err)
	}
	return nil
}

// Frames returns the frames captured by a mock connection.
func (c *Conn) Frames() [][]byte { return c.captured }

func (c *Conn) Close() error {
	if c.sock == nil {
		return nil
	}
	return c.sock.Close()
}
