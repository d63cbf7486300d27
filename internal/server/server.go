// Package server multiplexes every live connection over a single event
// loop. The accept goroutine and the per-connection readers only enqueue
// events; all index mutation happens on the run loop, so the recency, room
// and credential state never see concurrent access.
package server

import (
	"context"
	"fmt"
	"net"

	"github.com/sirupsen/logrus"

	"warren/internal/conn"
	"warren/internal/credentials"
	"warren/internal/recency"
	"warren/internal/room"
	"warren/internal/storage"
)

const eventQueueSize = 128

type eventKind int

const (
	eventConnect eventKind = iota
	eventLine
	eventClose
	eventFatal
)

type event struct {
	kind eventKind
	c    *conn.Conn
	line []byte
	err  error
}

// Server owns the listener, the live connection table and the three
// per-connection indexes.
type Server struct {
	addr     string
	listener net.Listener

	conns   map[conn.ID]*conn.Conn
	recency *recency.Index
	rooms   *room.Registry
	creds   *credentials.Store

	events chan event
	nextID conn.ID

	log *logrus.Entry
}

func New(addr string, users storage.UserStore) *Server {
	return &Server{
		addr:    addr,
		conns:   make(map[conn.ID]*conn.Conn),
		recency: recency.New(),
		rooms:   room.NewRegistry(),
		creds:   credentials.New(users),
		events:  make(chan event, eventQueueSize),
		log:     logrus.WithField("component", "server"),
	}
}

// Listen binds the TCP listener.
func (s *Server) Listen() error {
	ln, err := net.Listen("tcp4", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}
	s.listener = ln
	s.log.WithField("addr", ln.Addr().String()).Info("listening")
	return nil
}

// Addr returns the bound listener address.
func (s *Server) Addr() string {
	return s.listener.Addr().String()
}

// Serve starts the accept goroutine and drives the run loop until ctx is
// cancelled or accepting fails.
func (s *Server) Serve(ctx context.Context) error {
	go s.acceptLoop(ctx)
	return s.run(ctx)
}

// ListenAndServe is Listen followed by Serve.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if err := s.Listen(); err != nil {
		return err
	}
	return s.Serve(ctx)
}

// acceptLoop assigns each accepted socket the next ConnID, enqueues its
// registration and starts its reader. The reader starts only after the
// connect event is enqueued, so no line can overtake registration.
func (s *Server) acceptLoop(ctx context.Context) {
	for {
		sock, err := s.listener.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
			case s.events <- event{kind: eventFatal, err: fmt.Errorf("accept failed: %w", err)}:
			}
			return
		}
		s.nextID++
		c := conn.New(s.nextID, sock)
		s.events <- event{kind: eventConnect, c: c}
		go s.readLoop(c)
	}
}

// readLoop issues one bounded receive per event. EOF and read errors both
// end the connection.
func (s *Server) readLoop(c *conn.Conn) {
	for {
		line, err := c.ReadLine()
		if err != nil {
			s.events <- event{kind: eventClose, c: c}
			return
		}
		s.events <- event{kind: eventLine, c: c, line: line}
	}
}

// run consumes the event queue, one event per iteration.
func (s *Server) run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			s.shutdown()
			return nil
		case ev := <-s.events:
			switch ev.kind {
			case eventConnect:
				s.register(ev.c)
			case eventLine:
				s.handleLine(ev.c, ev.line)
			case eventClose:
				s.unregister(ev.c)
			case eventFatal:
				s.shutdown()
				return ev.err
			}
		}
	}
}

// register enters c into all three indexes. Any failure unwinds the partial
// registrations and closes the handle so no connection is ever left
// half-registered.
func (s *Server) register(c *conn.Conn) {
	log := s.connLog(c)
	if ok := s.recency.Add(c.ID()); !ok {
		log.Error("recency registration failed")
		_ = c.Close()
		return
	}
	if err := s.rooms.AddConnection(c.ID()); err != nil {
		log.WithError(err).Error("room registration failed")
		s.recency.Remove(c.ID())
		_ = c.Close()
		return
	}
	if err := s.creds.AddConnection(c.ID()); err != nil {
		log.WithError(err).Error("credential registration failed")
		_ = s.rooms.RemoveConnection(c.ID())
		s.recency.Remove(c.ID())
		_ = c.Close()
		return
	}
	s.conns[c.ID()] = c
	log.Info("connection registered")
}

// unregister closes the handle and removes c from the indexes in the order
// recency, rooms, credentials. Other members of the departing room are not
// notified.
func (s *Server) unregister(c *conn.Conn) {
	id := c.ID()
	if _, live := s.conns[id]; !live {
		// Already unwound by a failed registration.
		return
	}
	log := s.connLog(c)
	delete(s.conns, id)
	if err := c.Close(); err != nil {
		log.WithError(err).Warn("close failed")
	}
	if ok := s.recency.Remove(id); !ok {
		log.Error("recency deregistration failed")
	}
	if err := s.rooms.RemoveConnection(id); err != nil {
		log.WithError(err).Error("room deregistration failed")
	}
	if err := s.creds.RemoveConnection(id); err != nil {
		log.WithError(err).Error("credential deregistration failed")
	}
	log.Info("connection closed")
}

// handleLine dispatches one received line and refreshes the sender's
// recency position.
func (s *Server) handleLine(c *conn.Conn, line []byte) {
	if _, live := s.conns[c.ID()]; !live {
		return
	}
	s.connLog(c).WithField("line", string(line)).Debug("received")
	s.dispatch(c, line)
	if ok := s.recency.Touch(c.ID()); !ok {
		s.connLog(c).Error("recency touch failed")
	}
}

// shutdown closes the listener and every live connection. Readers drain
// into the buffered event queue and exit.
func (s *Server) shutdown() {
	if s.listener != nil {
		_ = s.listener.Close()
	}
	for _, c := range s.conns {
		_ = c.Close()
	}
}

func (s *Server) connLog(c *conn.Conn) *logrus.Entry {
	return s.log.WithFields(logrus.Fields{
		"conn_id": c.ID(),
		"session": c.Session(),
	})
}
