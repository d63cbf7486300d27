// Package room tracks which room each connection is in and who is in each
// room. A connection is in at most one room; the empty room name means the
// connection is in the lobby.
package room

import (
	"errors"

	"warren/internal/conn"
)

var (
	ErrUnknownConnection   = errors.New("room: unknown connection")
	ErrDuplicateConnection = errors.New("room: connection already registered")
	ErrRoomExists          = errors.New("room: room exists already")
	ErrNoSuchRoom          = errors.New("room: no such room")
)

// Room holds the members of one named room in join order.
type Room struct {
	name    string
	members []conn.ID
}

func (r *Room) add(id conn.ID) {
	r.members = append(r.members, id)
}

// remove deletes the first occurrence of id, preserving member order.
func (r *Room) remove(id conn.ID) {
	for i, m := range r.members {
		if m == id {
			r.members = append(r.members[:i], r.members[i+1:]...)
			return
		}
	}
}

func (r *Room) size() int { return len(r.members) }

// Registry is the pair of indexes connection→room and room→members. A room
// exists as a key iff its member list is non-empty. The Registry carries no
// lock: it is mutated only from the server's run loop.
type Registry struct {
	conns map[conn.ID]string
	rooms map[string]*Room
}

func NewRegistry() *Registry {
	return &Registry{
		conns: make(map[conn.ID]string),
		rooms: make(map[string]*Room),
	}
}

// AddConnection registers id in the lobby.
func (g *Registry) AddConnection(id conn.ID) error {
	if _, exists := g.conns[id]; exists {
		return ErrDuplicateConnection
	}
	g.conns[id] = ""
	return nil
}

// RemoveConnection takes id out of its current room, if any, and drops its
// registration.
func (g *Registry) RemoveConnection(id conn.ID) error {
	if _, exists := g.conns[id]; !exists {
		return ErrUnknownConnection
	}
	if _, err := g.Leave(id); err != nil {
		return err
	}
	delete(g.conns, id)
	return nil
}

// Host creates a new room with id as its first member, moving id out of any
// current room. On failure the connection stays where it was.
func (g *Registry) Host(id conn.ID, name string) error {
	cur, exists := g.conns[id]
	if !exists {
		return ErrUnknownConnection
	}
	if _, taken := g.rooms[name]; taken {
		return ErrRoomExists
	}
	r := &Room{name: name}
	r.add(id)
	g.rooms[name] = r
	g.dropMember(id, cur)
	g.conns[id] = name
	return nil
}

// Join adds id to an existing room, moving it out of any current room. On
// failure the connection stays where it was.
func (g *Registry) Join(id conn.ID, name string) error {
	cur, exists := g.conns[id]
	if !exists {
		return ErrUnknownConnection
	}
	r, found := g.rooms[name]
	if !found {
		return ErrNoSuchRoom
	}
	r.add(id)
	g.dropMember(id, cur)
	g.conns[id] = name
	return nil
}

// Leave removes id from its current room, deleting the room if it becomes
// empty. It returns false without error when id is in no room.
func (g *Registry) Leave(id conn.ID) (bool, error) {
	cur, exists := g.conns[id]
	if !exists {
		return false, ErrUnknownConnection
	}
	if cur == "" {
		return false, nil
	}
	g.dropMember(id, cur)
	g.conns[id] = ""
	return true, nil
}

// RoomOf returns the room id is currently in, or "" for the lobby.
func (g *Registry) RoomOf(id conn.ID) (string, error) {
	cur, exists := g.conns[id]
	if !exists {
		return "", ErrUnknownConnection
	}
	return cur, nil
}

// MembersOf returns the connections sharing id's room in join order, id
// included, or an empty slice when id is in no room.
func (g *Registry) MembersOf(id conn.ID) ([]conn.ID, error) {
	cur, exists := g.conns[id]
	if !exists {
		return nil, ErrUnknownConnection
	}
	if cur == "" {
		return nil, nil
	}
	r, found := g.rooms[cur]
	if !found {
		return nil, ErrNoSuchRoom
	}
	out := make([]conn.ID, len(r.members))
	copy(out, r.members)
	return out, nil
}

// Rooms returns the names of all live rooms.
func (g *Registry) Rooms() []string {
	out := make([]string, 0, len(g.rooms))
	for name := range g.rooms {
		out = append(out, name)
	}
	return out
}

// dropMember removes id from room name and deletes the room if the last
// member left. A lobby name is a no-op.
func (g *Registry) dropMember(id conn.ID, name string) {
	if name == "" {
		return
	}
	r, found := g.rooms[name]
	if !found {
		return
	}
	r.remove(id)
	if r.size() == 0 {
		delete(g.rooms, name)
	}
}
