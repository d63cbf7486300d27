package protocol

import "strings"

// Commands understood by the dispatcher. The first token of a line starting
// with '/' selects one; tokens beyond a command's arity are ignored.
const (
	CmdHost   = "/host"
	CmdJoin   = "/join"
	CmdLeave  = "/leave"
	CmdCreate = "/create"
	CmdLogin  = "/login"
	CmdLogout = "/logout"
)

// whitespace is the separator class for command tokenization.
const whitespace = " \t\n\v\f\r"

// IsCommand reports whether a line is a command rather than a chat message.
func IsCommand(line []byte) bool {
	return len(line) > 0 && line[0] == '/'
}

// Tokenize splits a command line on the whitespace class. Runs of
// separators produce no empty tokens.
func Tokenize(line []byte) []string {
	return strings.FieldsFunc(string(line), func(r rune) bool {
		return strings.ContainsRune(whitespace, r)
	})
}
