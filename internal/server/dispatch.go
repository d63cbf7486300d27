package server

import (
	"context"
	"errors"

	"warren/internal/conn"
	"warren/internal/credentials"
	"warren/internal/protocol"
	"warren/internal/room"
)

// dispatch routes one received line: commands mutate the indexes, anything
// else is relayed to the sender's room.
func (s *Server) dispatch(c *conn.Conn, line []byte) {
	if !protocol.IsCommand(line) {
		s.relay(c, line)
		return
	}

	fields := protocol.Tokenize(line)
	if len(fields) == 0 {
		return
	}

	ctx := context.Background()
	switch fields[0] {
	case protocol.CmdHost:
		if len(fields) < 2 {
			return
		}
		s.hostRoom(c, fields[1])
	case protocol.CmdJoin:
		if len(fields) < 2 {
			return
		}
		s.joinRoom(c, fields[1])
	case protocol.CmdLeave:
		s.leaveRoom(c)
	case protocol.CmdCreate:
		if len(fields) < 3 {
			return
		}
		s.createAccount(ctx, c, fields[1], fields[2])
	case protocol.CmdLogin:
		if len(fields) < 3 {
			return
		}
		s.login(ctx, c, fields[1], fields[2])
	case protocol.CmdLogout:
		s.logout(c)
	default:
		s.send(c, protocol.NotInRoom())
	}
}

func (s *Server) hostRoom(c *conn.Conn, name string) {
	if err := s.rooms.Host(c.ID(), name); err != nil {
		if errors.Is(err, room.ErrRoomExists) {
			s.send(c, protocol.RoomExists(name))
		} else {
			s.connLog(c).WithError(err).Error("host failed")
		}
		return
	}
	s.connLog(c).WithField("room", name).Info("room hosted")
	s.send(c, protocol.CreatedRoom(name))
}

func (s *Server) joinRoom(c *conn.Conn, name string) {
	if err := s.rooms.Join(c.ID(), name); err != nil {
		if errors.Is(err, room.ErrNoSuchRoom) {
			s.send(c, protocol.NoSuchRoom(name))
		} else {
			s.connLog(c).WithError(err).Error("join failed")
		}
		return
	}
	s.connLog(c).WithField("room", name).Info("room joined")
	s.send(c, protocol.JoinedRoom(name))
}

func (s *Server) leaveRoom(c *conn.Conn) {
	prior, err := s.rooms.RoomOf(c.ID())
	if err != nil {
		s.connLog(c).WithError(err).Error("leave failed")
		return
	}
	left, err := s.rooms.Leave(c.ID())
	if err != nil {
		s.connLog(c).WithError(err).Error("leave failed")
		return
	}
	if !left {
		s.send(c, protocol.NotInRoom())
		return
	}
	s.connLog(c).WithField("room", prior).Info("room left")
	s.send(c, protocol.LeftRoom(prior))
}

func (s *Server) createAccount(ctx context.Context, c *conn.Conn, username, password string) {
	if err := s.creds.Create(ctx, c.ID(), username, password); err != nil {
		if !errors.Is(err, credentials.ErrUsernameTaken) {
			s.connLog(c).WithError(err).Error("create account failed")
		}
		s.send(c, protocol.UsernameTaken())
		return
	}
	s.connLog(c).WithField("username", username).Info("account created")
	s.send(c, protocol.CreatedAccount(username))
}

func (s *Server) login(ctx context.Context, c *conn.Conn, username, password string) {
	if err := s.creds.Login(ctx, c.ID(), username, password); err != nil {
		if !errors.Is(err, credentials.ErrBadCredentials) {
			s.connLog(c).WithError(err).Error("login failed")
		}
		s.send(c, protocol.WrongCredentials())
		return
	}
	s.connLog(c).WithField("username", username).Info("logged in")
	s.send(c, protocol.LoggedIn(username))
}

func (s *Server) logout(c *conn.Conn) {
	if err := s.creds.Logout(c.ID()); err != nil {
		// Internal failure: logged only, no reply frame.
		s.connLog(c).WithError(err).Error("logout failed")
		return
	}
	s.send(c, protocol.LoggedOut())
}

// relay fans a chat line out to every member of the sender's room, sender
// included. A sender in no room gets the composed line echoed back alone.
func (s *Server) relay(c *conn.Conn, line []byte) {
	id := c.ID()
	members, err := s.rooms.MembersOf(id)
	if err != nil {
		s.connLog(c).WithError(err).Error("member lookup failed")
		return
	}
	sender, err := s.creds.NameOf(id)
	if err != nil {
		s.connLog(c).WithError(err).Error("username lookup failed")
		return
	}
	if sender == "" {
		sender = protocol.GuestName(id.String())
	}
	payload := protocol.ChatLine(sender, line)

	if len(members) == 0 {
		s.send(c, payload)
		return
	}
	for _, m := range members {
		mc, live := s.conns[m]
		if !live {
			continue
		}
		s.send(mc, payload)
	}
}

func (s *Server) send(c *conn.Conn, payload []byte) {
	if err := c.WriteFrame(payload); err != nil {
		s.connLog(c).WithError(err).Error("send failed")
	}
}
