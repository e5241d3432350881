package frame

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/dlightman/minitelctl/internal/protocol"
)

const (
	// PrefixLen is the outer big-endian length prefix size.
	PrefixLen = 2
	// TagLen is the SHA-256 integrity tag size.
	TagLen = sha256.Size

	nonceLen = 4
	headLen  = 1 + nonceLen

	// MinInnerLen is the smallest legal binary frame: CMD + NONCE + TAG.
	MinInnerLen = headLen + TagLen

	// MaxPayloadLen is the largest payload whose base64 text still fits the
	// 16-bit length prefix.
	MaxPayloadLen = 49112
)

var (
	ErrShortPrefix       = errors.New("frame: short length prefix")
	ErrTruncated         = errors.New("frame: declared length exceeds available bytes")
	ErrInvalidEncoding   = errors.New("frame: invalid base64 text")
	ErrShortInner        = errors.New("frame: binary frame too short")
	ErrIntegrityMismatch = errors.New("frame: integrity tag mismatch")
	ErrPayloadTooLarge   = errors.New("frame: payload exceeds encodable size")
)

// Frame is one complete wire message. Frames are built through New and
// treated as immutable afterwards; the tag is never recomputed in place.
type Frame struct {
	Cmd     protocol.Command
	Nonce   uint32
	Payload []byte
	Tag     [TagLen]byte
}

// New builds a frame and computes its integrity tag over CMD||NONCE||PAYLOAD.
func New(cmd protocol.Command, nonce uint32, payload []byte) Frame {
	return Frame{
		Cmd:     cmd,
		Nonce:   nonce,
		Payload: payload,
		Tag:     computeTag(cmd, nonce, payload),
	}
}

func (f Frame) String() string {
	return fmt.Sprintf("%s nonce=%d payload_len=%d", f.Cmd.Name(), f.Nonce, len(f.Payload))
}

func computeTag(cmd protocol.Command, nonce uint32, payload []byte) [TagLen]byte {
	h := sha256.New()
	var head [headLen]byte
	head[0] = byte(cmd)
	binary.BigEndian.PutUint32(head[1:], nonce)
	h.Write(head[:])
	h.Write(payload)
	var tag [TagLen]byte
	copy(tag[:], h.Sum(nil))
	return tag
}

// Encode produces the exact wire form:
//
//	LEN(2, big-endian) || base64(CMD(1) || NONCE(4, big-endian) || PAYLOAD || TAG(32))
//
// Deterministic, pure transform. Payloads above MaxPayloadLen cannot be
// represented in the prefix and are rejected rather than truncated.
func Encode(f Frame) ([]byte, error) {
	if len(f.Payload) > MaxPayloadLen {
		return nil, fmt.Errorf("%w: %d bytes", ErrPayloadTooLarge, len(f.Payload))
	}
	inner := make([]byte, 0, headLen+len(f.Payload)+TagLen)
	inner = append(inner, byte(f.Cmd))
	inner = binary.BigEndian.AppendUint32(inner, f.Nonce)
	inner = append(inner, f.Payload...)
	inner = append(inner, f.Tag[:]...)

	text := base64.StdEncoding.EncodeToString(inner)
	out := make([]byte, PrefixLen+len(text))
	binary.BigEndian.PutUint16(out[:PrefixLen], uint16(len(text)))
	copy(out[PrefixLen:], text)
	return out, nil
}

// EncodedLen reports the wire size Encode would produce for f.
func EncodedLen(f Frame) int {
	return PrefixLen + base64.StdEncoding.EncodedLen(headLen+len(f.Payload)+TagLen)
}

// Decode parses wire bytes and verifies the integrity tag. Command-code
// legality and nonce ordering are not checked here.
func Decode(data []byte) (Frame, error) {
	if len(data) < PrefixLen {
		return Frame{}, ErrShortPrefix
	}
	length := int(binary.BigEndian.Uint16(data[:PrefixLen]))
	if len(data)-PrefixLen < length {
		return Frame{}, ErrTruncated
	}

	inner, err := base64.StdEncoding.DecodeString(string(data[PrefixLen : PrefixLen+length]))
	if err != nil {
		return Frame{}, fmt.Errorf("%w: %v", ErrInvalidEncoding, err)
	}
	if len(inner) < MinInnerLen {
		return Frame{}, ErrShortInner
	}

	cmd := protocol.Command(inner[0])
	nonce := binary.BigEndian.Uint32(inner[1:headLen])
	payload := make([]byte, len(inner)-MinInnerLen)
	copy(payload, inner[headLen:len(inner)-TagLen])

	var tag [TagLen]byte
	copy(tag[:], inner[len(inner)-TagLen:])
	if tag != computeTag(cmd, nonce, payload) {
		return Frame{}, ErrIntegrityMismatch
	}

	return Frame{Cmd: cmd, Nonce: nonce, Payload: payload, Tag: tag}, nil
}
