package tracking

import (
	"encoding/json"

	cbor "github.com/fxamacker/cbor/v2"
)

// Codec marshals snapshots for recording and replay. Implementations must
// be deterministic so recorded sessions diff cleanly.
type Codec interface {
	ContentType() string
	Marshal(s *Snapshot) ([]byte, error)
	Unmarshal(data []byte, s *Snapshot) error
}

type jsonCodec struct{}

// JSON returns the JSON snapshot codec, one object per record.
func JSON() Codec { return jsonCodec{} }

func (jsonCodec) ContentType() string { return "application/json" }
func (jsonCodec) Marshal(s *Snapshot) ([]byte, error) { return json.Marshal(s) }
func (jsonCodec) Unmarshal(data []byte, s *Snapshot) error { return json.Unmarshal(data, s) }

type cborCodec struct {
	enc cbor.EncMode
	dec cbor.DecMode
}

// CBOR returns a canonical CBOR snapshot codec (RFC 8949) for compact
// recordings.
func CBOR() (Codec, error) {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		return nil, err
	}
	dm, err := cbor.DecOptions{}.DecMode()
	if err != nil {
		return nil, err
	}
	return cborCodec{enc: em, dec: dm}, nil
}

func (c cborCodec) ContentType() string { return "application/cbor" }
func (c cborCodec) Marshal(s *Snapshot) ([]byte, error) { return c.enc.Marshal(s) }
func (c cborCodec) Unmarshal(data []byte, s *Snapshot) error { return c.dec.Unmarshal(data, s) }

// ByContentType resolves a codec from its content type or short alias
// ("json", "cbor"). Returns nil when unknown.
func ByContentType(ct string) Codec {
	switch ct {
	case "json", "application/json":
		return JSON()
	case "cbor", "application/cbor":
		c, err := CBOR()
		if err != nil {
			return nil
		}
		return c
	}
	return nil
}
