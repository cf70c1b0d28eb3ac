package network

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

// MessageCode identifies the semantic meaning of a message
type MessageCode uint16

const (
	// Shot lifecycle
	MsgShotBegin MessageCode = 0x7362 // 'sb' FiringInfo of a new shot
	MsgShotEnd   MessageCode = 0x7365 // 'se' player, shot id, reason

	// Strategy-specific shot updates: ShotUpdate followed by a strategy payload
	MsgGMUpdate     MessageCode = 0x676d // 'gm' guided missile target
	MsgShotRicochet MessageCode = 0x7372 // 'sr' ricochet bounce count
)

// HeaderSize precedes every message on the wire
// Fixed 4 bytes: [Code:2][Len:2]
const HeaderSize = 4

// MaxPayload is the largest payload the length field can describe
const MaxPayload = 0xFFFF

// Message represents a framed network message
type Message struct {
	Code    MessageCode
	Payload []byte
}

// NewMessage creates a message with the given code and payload
func NewMessage(code MessageCode, payload []byte) *Message {
	return &Message{Code: code, Payload: payload}
}

// String returns a readable name for known codes
func (c MessageCode) String() string {
	switch c {
	case MsgShotBegin:
		return "ShotBegin"
	case MsgShotEnd:
		return "ShotEnd"
	case MsgGMUpdate:
		return "GMUpdate"
	case MsgShotRicochet:
		return "ShotRicochet"
	default:
		return "Unknown"
	}
}

// Append writes the framed message to buf
func (m *Message) Append(buf []byte) ([]byte, error) {
	if len(m.Payload) > MaxPayload {
		return buf, errors.Errorf("payload of %d bytes exceeds maximum size", len(m.Payload))
	}
	buf = PackUint16(buf, uint16(m.Code))
	buf = PackUint16(buf, uint16(len(m.Payload)))
	return append(buf, m.Payload...), nil
}

// Encode writes the message to a writer with length prefix
func (m *Message) Encode(w io.Writer) error {
	frame, err := m.Append(make([]byte, 0, HeaderSize+len(m.Payload)))
	if err != nil {
		return err
	}
	if _, err := w.Write(frame); err != nil {
		return errors.Wrap(err, "write message")
	}
	return nil
}

// Decode reads a message from a reader
func Decode(r io.Reader) (*Message, error) {
	header := make([]byte, HeaderSize)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, err
	}

	m := &Message{
		Code: MessageCode(binary.BigEndian.Uint16(header[0:2])),
	}

	payloadLen := binary.BigEndian.Uint16(header[2:4])
	if payloadLen > 0 {
		m.Payload = make([]byte, payloadLen)
		if _, err := io.ReadFull(r, m.Payload); err != nil {
			return nil, errors.Wrapf(err, "read %s payload", m.Code)
		}
	}

	return m, nil
}
