package rawsock

import (
	"sync"

	"github.com/creachadair/mds/queue"
	"github.com/rs/zerolog"
)

const (
	defaultMaxFrame = 65535
	defaultBacklog  = 64
)

// CaptureConfig bounds a capture loop.
type CaptureConfig struct {
	// MaxFrame is the receive buffer size for one frame. Longer
	// frames are truncated. Defaults to 65535.
	MaxFrame int
	// Backlog is how many frames may wait for the consumer before
	// further ones are discarded. Defaults to 64.
	Backlog int
	// Log receives capture events. Defaults to a no-op logger.
	Log *zerolog.Logger
}

// NewCapture starts reading frames from conn and delivering them on
// [Capture.Chan]. The capture owns conn and closes it when the
// capture is closed.
func NewCapture(conn Conn, cfg CaptureConfig) *Capture {
	if cfg.MaxFrame <= 0 {
		cfg.MaxFrame = defaultMaxFrame
	}
	if cfg.Backlog <= 0 {
		cfg.Backlog = defaultBacklog
	}
	log := zerolog.Nop()
	if cfg.Log != nil {
		log = *cfg.Log
	}

	c := &Capture{
		conn:        conn,
		maxFrame:    cfg.MaxFrame,
		backlog:     cfg.Backlog,
		log:         log,
		frames:      make(chan *Frame),
		wakePump:    make(chan struct{}, 1),
		stopPump:    make(chan struct{}),
		pumpStopped: make(chan struct{}),
	}
	c.log.Debug().Int("max_frame", c.maxFrame).Int("backlog", c.backlog).Msg("capture started")
	go c.read()
	go c.pump()
	return c
}

// A Capture delivers frames received from a raw connection.
type Capture struct {
	conn     Conn
	maxFrame int
	backlog  int
	log      zerolog.Logger

	frames   chan *Frame
	wakePump chan struct{}

	stopOnce    sync.Once
	stopPump    chan struct{}
	pumpStopped chan struct{}

	mu    sync.Mutex
	queue queue.Queue[*Frame]
	err   error
}

// Frame is one link layer frame received from the network.
type Frame struct {
	// Data is the raw frame contents.
	Data []byte
	// Overflow reports that the capture discarded frames that
	// followed this one, due to the consumer not draining delivered
	// frames fast enough.
	Overflow bool
}

// Chan returns the channel on which frames are delivered. The channel
// closes when the capture is closed or its socket fails, see
// [Capture.Err] for the difference.
//
// The caller must drain this channel promptly. Frames that arrive
// while more than the configured backlog are waiting are discarded,
// and the discard is flagged on the Overflow field of the last frame
// that was kept.
func (c *Capture) Chan() <-chan *Frame {
	return c.frames
}

// Err returns the receive error that ended the capture, or nil if the
// capture is running or was closed.
func (c *Capture) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Close shuts down the capture and its connection.
func (c *Capture) Close() error {
	c.stop()
	err := c.conn.Close()
	<-c.pumpStopped

	c.mu.Lock()
	defer c.mu.Unlock()
	c.queue.Clear()
	return err
}

func (c *Capture) stop() {
	// wakePump stays open, deliver may be mid-send on it.
	c.stopOnce.Do(func() { close(c.stopPump) })
}

func (c *Capture) read() {
	for {
		bs, err := c.conn.Receive(c.maxFrame)
		if err != nil {
			select {
			case <-c.stopPump:
				// the error is our own Close tearing down the socket.
			default:
				c.mu.Lock()
				c.err = err
				c.mu.Unlock()
				c.log.Error().Err(err).Msg("receive failed, capture stopped")
				c.stop()
			}
			return
		}
		c.deliver(bs)
	}
}

func (c *Capture) deliver(bs []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	select {
	case <-c.pumpStopped:
		// raced with a Close, this capture is done.
		return
	default:
	}

	if c.queue.Len() >= c.backlog {
		last, _ := c.queue.Peek(-1)
		last.Overflow = true
		c.log.Debug().Int("backlog", c.backlog).Msg("frame discarded, consumer not draining")
		return
	}

	c.queue.Add(&Frame{Data: bs})
	if c.queue.Len() == 1 {
		select {
		case c.wakePump <- struct{}{}:
		default:
		}
	}
}

func (c *Capture) pump() {
	defer close(c.pumpStopped)
	defer close(c.frames)
	for {
		f := func() *Frame {
			c.mu.Lock()
			defer c.mu.Unlock()
			ret, _ := c.queue.Pop()
			return ret
		}()
		if f == nil {
			select {
			case <-c.stopPump:
				return
			case <-c.wakePump:
				continue
			}
		}
		select {
		case c.frames <- f:
		case <-c.stopPump:
			return
		}
	}
}
