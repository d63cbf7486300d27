package protocol

import "bytes"

// FrameSize is the fixed wire unit in both directions. Every send is padded
// to exactly this many bytes and every receive is a single bounded read of
// at most this many bytes.
const FrameSize = 1024

// MaxLineSize bounds the payload carried by one frame. The final byte of a
// frame is always zero.
const MaxLineSize = FrameSize - 1

// Pad copies payload into a zero-filled frame. Payloads longer than
// MaxLineSize are truncated so the frame always ends with a zero byte.
func Pad(payload []byte) []byte {
	frame := make([]byte, FrameSize)
	if len(payload) > MaxLineSize {
		payload = payload[:MaxLineSize]
	}
	copy(frame, payload)
	return frame
}

// Trim interprets a received buffer as one logical line: content is cut at
// the first zero byte and never exceeds MaxLineSize bytes.
func Trim(buf []byte) []byte {
	if len(buf) > MaxLineSize {
		buf = buf[:MaxLineSize]
	}
	if i := bytes.IndexByte(buf, 0); i >= 0 {
		buf = buf[:i]
	}
	return buf
}
