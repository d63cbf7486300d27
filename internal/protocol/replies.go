package protocol

// Reply lines sent back to the issuing connection. Every reply ends in a
// newline inside its frame.

func CreatedRoom(room string) []byte { return []byte("Created " + room + "\n") }

func RoomExists(room string) []byte { return []byte(room + " exists already\n") }

func JoinedRoom(room string) []byte { return []byte("Joined " + room + "\n") }

func NoSuchRoom(room string) []byte { return []byte(room + " does not exist\n") }

func LeftRoom(room string) []byte { return []byte("Left " + room + "\n") }

// NotInRoom doubles as the reply to unrecognized commands; existing clients
// depend on that exact string.
func NotInRoom() []byte { return []byte("User is not in a room\n") }

func CreatedAccount(user string) []byte { return []byte("Created account " + user + "\n") }

func UsernameTaken() []byte { return []byte("Username exists already.\n") }

func LoggedIn(user string) []byte { return []byte("Logged in as " + user + "\n") }

func WrongCredentials() []byte { return []byte("Wrong username/password.\n") }

func LoggedOut() []byte { return []byte("Logged out\n") }

// GuestName is the display name for a connection that has not logged in.
func GuestName(id string) string { return "Guest " + id }

// ChatLine composes the relayed form of a chat message. The raw line is
// appended as received, trailing newline included.
func ChatLine(sender string, line []byte) []byte {
	out := make([]byte, 0, len(sender)+2+len(line))
	out = append(out, sender...)
	out = append(out, ':', ' ')
	out = append(out, line...)
	return out
}
