// Package nativemsg implements the browser native messaging protocol:
// each message is a 4-byte native-endian length prefix followed by
// that many bytes of JSON, exchanged over stdin and stdout.
package nativemsg

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"

	kindlebeam "github.com/etanshaul/kindle-beam"
)

// MaxMessageSize caps incoming messages. Browsers limit messages to
// native hosts to 64 MB; anything larger is a framing error.
const MaxMessageSize = 64 << 20

// ReadMessage reads one length-prefixed JSON message. io.EOF is
// returned unwrapped when the peer closed the stream between messages.
func ReadMessage(r io.Reader) ([]byte, error) {
	var header [4]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("read message header: %w", err)
	}

	size := binary.NativeEndian.Uint32(header[:])
	if size > MaxMessageSize {
		return nil, kindlebeam.Errorf(kindlebeam.EINVALID, "message size %d exceeds limit", size)
	}

	payload := make([]byte, size)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, fmt.Errorf("read message body: %w", err)
	}
	return payload, nil
}

// WriteMessage frames and writes one message. v is JSON-encoded first
// so a marshal failure never emits a partial frame.
func WriteMessage(w io.Writer, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode message: %w", err)
	}

	var header [4]byte
	binary.NativeEndian.PutUint32(header[:], uint32(len(payload)))
	if _, err := w.Write(header[:]); err != nil {
		return fmt.Errorf("write message header: %w", err)
	}
	if _, err := w.Write(payload); err != nil {
		return fmt.Errorf("write message body: %w", err)
	}
	return nil
}
