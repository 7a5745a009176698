package tracking

import (
	"encoding/json"
	"fmt"
	"io"

	cbor "github.com/fxamacker/cbor/v2"
)

// decoder is the shared shape of json.Decoder and cbor.Decoder.
type decoder interface {
	Decode(v any) error
}

// Reader streams snapshots from a recorded session: concatenated JSON
// values (one per line by convention) or a CBOR sequence.
type Reader struct {
	dec decoder
}

// NewReader wraps r with the decoder for format ("json" or "cbor").
func NewReader(r io.Reader, format string) (*Reader, error) {
	switch format {
	case "json", "application/json":
		return &Reader{dec: json.NewDecoder(r)}, nil
	case "cbor", "application/cbor":
		dm, err := cbor.DecOptions{}.DecMode()
		if err != nil {
			return nil, err
		}
		return &Reader{dec: dm.NewDecoder(r)}, nil
	}
	return nil, fmt.Errorf("tracking: unknown record format %q", format)
}

// Next decodes the next snapshot into s. Returns io.EOF at end of stream.
func (r *Reader) Next(s *Snapshot) error {
	*s = Snapshot{}
	return r.dec.Decode(s)
}

// Writer appends snapshots to a recording using the given codec.
type Writer struct {
	w io.Writer
	c Codec
}

// NewWriter wraps w with the codec for format ("json" or "cbor").
func NewWriter(w io.Writer, format string) (*Writer, error) {
	c := ByContentType(format)
	if c == nil {
		return nil, fmt.Errorf("tracking: unknown record format %q", format)
	}
	return &Writer{w: w, c: c}, nil
}

// Write appends one snapshot record. JSON records are newline-delimited so
// recordings stay greppable.
func (w *Writer) Write(s *Snapshot) error {
	data, err := w.c.Marshal(s)
	if err != nil {
		return err
	}
	if w.c.ContentType() == "application/json" {
		data = append(data, '\n')
	}
	_, err = w.w.Write(data)
	return err
}
