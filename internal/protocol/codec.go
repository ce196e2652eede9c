package protocol

import (
	"encoding/gob"
	"io"

	"github.com/pkg/errors"
	"github.com/vmihailenco/msgpack/v5"
)

// frame is what travels on the stream. The body is msgpack so that each
// message type keeps its own compact layout inside one gob type.
type frame struct {
	Header string
	Body   []byte
}

// Codec handles message encoding/decoding
type Codec struct {
	enc *gob.Encoder
	dec *gob.Decoder
}

// NewCodec creates a codec for the given read/writer
func NewCodec(rw io.ReadWriter) *Codec {
	return &Codec{
		enc: gob.NewEncoder(rw),
		dec: gob.NewDecoder(rw),
	}
}

// NewEncoder creates an encoder-only codec
func NewEncoder(w io.Writer) *Codec {
	return &Codec{
		enc: gob.NewEncoder(w),
	}
}

// NewDecoder creates a decoder-only codec
func NewDecoder(r io.Reader) *Codec {
	return &Codec{
		dec: gob.NewDecoder(r),
	}
}

// Encode writes a message
func (c *Codec) Encode(msg *Message) error {
	if !msg.Header.Known() {
		return errors.Wrapf(ErrMalformed, "encode header %q", msg.Header)
	}
	body, err := msgpack.Marshal(msg.Body)
	if err != nil {
		return errors.Wrapf(err, "encode %s body", msg.Header)
	}
	return c.enc.Encode(&frame{Header: string(msg.Header), Body: body})
}

// Decode reads a message. A frame that arrived intact but cannot be
// understood yields an error wrapping ErrMalformed; any other error means
// the stream is broken.
func (c *Codec) Decode() (*Message, error) {
	var f frame
	if err := c.dec.Decode(&f); err != nil {
		return nil, err
	}

	msg := &Message{Header: Header(f.Header)}
	body, err := decodeBody(msg.Header, f.Body)
	if err != nil {
		return nil, err
	}
	msg.Body = body
	return msg, nil
}

func decodeBody(h Header, data []byte) (interface{}, error) {
	var err error
	switch h {
	case JoinGame:
		return JoinGameBody{}, nil
	case GameUpdate:
		var b GameUpdateBody
		if err = msgpack.Unmarshal(data, &b); err == nil {
			return b, nil
		}
	case PlayerMove:
		var b PlayerMoveBody
		if err = msgpack.Unmarshal(data, &b); err == nil {
			return b, nil
		}
	case PlayerPos:
		var b PlayerPosBody
		if err = msgpack.Unmarshal(data, &b); err == nil {
			return b, nil
		}
	case Goal:
		var b GoalBody
		if err = msgpack.Unmarshal(data, &b); err == nil {
			return b, nil
		}
	case GameOver:
		var b GameOverBody
		if err = msgpack.Unmarshal(data, &b); err == nil {
			return b, nil
		}
	default:
		return nil, errors.Wrapf(ErrMalformed, "unknown header %q", h)
	}
	return nil, errors.Wrapf(ErrMalformed, "%s body: %v", h, err)
}
