// Package osc implements the subset of the OSC 1.0 binary format needed to
// carry VMC traffic: single messages with int32, float32 and string
// arguments. Bundles are not supported; every message is its own datagram.
package osc

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// OSC type tags for the supported argument kinds.
const (
	TagInt32   = 'i'
	TagFloat32 = 'f'
	TagString  = 's'
)

var (
	// ErrBadAddress rejects addresses that are empty, unrooted, or non-ASCII.
	ErrBadAddress = errors.New("osc: bad address")
	// ErrShortPacket signals a truncated packet during decode.
	ErrShortPacket = errors.New("osc: short packet")
)

// Value is one typed OSC argument. The zero Value is invalid; construct
// through Int, Float or String.
type Value struct {
	tag byte
	i   int32
	f   float32
	s   string
}

// Int wraps an int32 argument.
func Int(v int32) Value { return Value{tag: TagInt32, i: v} }

// Float wraps a float32 argument.
func Float(v float32) Value { return Value{tag: TagFloat32, f: v} }

// String wraps a string argument.
func String(v string) Value { return Value{tag: TagString, s: v} }

// Tag returns the OSC type tag byte for v.
func (v Value) Tag() byte { return v.tag }

// Int32 returns the int32 payload; valid only when Tag() == TagInt32.
func (v Value) Int32() int32 { return v.i }

// Float32 returns the float32 payload; valid only when Tag() == TagFloat32.
func (v Value) Float32() float32 { return v.f }

// Str returns the string payload; valid only when Tag() == TagString.
func (v Value) Str() string { return v.s }

// Message is one OSC message: an address pattern plus ordered typed
// arguments. Messages are constructed, serialized and sent within a single
// frame; nothing retains them afterwards.
type Message struct {
	Address string
	Args    []Value
}

// NewMessage builds a message for addr with the given arguments.
func NewMessage(addr string, args ...Value) Message {
	return Message{Address: addr, Args: args}
}

// paddedLen returns the on-wire size of an n-byte string: NUL-terminated,
// then zero-padded to the next 4-byte boundary. Always at least n+1.
func paddedLen(n int) int { return (n/4 + 1) * 4 }

func appendPaddedString(buf []byte, s string) []byte {
	buf = append(buf, s...)
	for pad := paddedLen(len(s)) - len(s); pad > 0; pad-- {
		buf = append(buf, 0)
	}
	return buf
}

// MarshalBinary encodes the message to OSC wire form: padded address,
// ","-prefixed padded type-tag string, then 4-byte big-endian argument
// blocks with strings padded like the address.
func (m Message) MarshalBinary() ([]byte, error) {
	if err := validateAddress(m.Address); err != nil {
		return nil, err
	}

	size := paddedLen(len(m.Address)) + paddedLen(1+len(m.Args))
	for _, a := range m.Args {
		switch a.tag {
		case TagInt32, TagFloat32:
			size += 4
		case TagString:
			size += paddedLen(len(a.s))
		default:
			return nil, fmt.Errorf("osc: unknown type tag %q", a.tag)
		}
	}

	buf := make([]byte, 0, size)
	buf = appendPaddedString(buf, m.Address)

	tags := make([]byte, 1+len(m.Args))
	tags[0] = ','
	for i, a := range m.Args {
		tags[i+1] = a.tag
	}
	buf = appendPaddedString(buf, string(tags))

	var scratch [4]byte
	for _, a := range m.Args {
		switch a.tag {
		case TagInt32:
			binary.BigEndian.PutUint32(scratch[:], uint32(a.i))
			buf = append(buf, scratch[:]...)
		case TagFloat32:
			binary.BigEndian.PutUint32(scratch[:], math.Float32bits(a.f))
			buf = append(buf, scratch[:]...)
		case TagString:
			buf = appendPaddedString(buf, a.s)
		}
	}
	return buf, nil
}

// UnmarshalBinary decodes a single OSC message packet. The send path never
// parses; this exists so tests and inspection tooling can decode what was
// put on the wire.
func (m *Message) UnmarshalBinary(buf []byte) error {
	addr, rest, err := readPaddedString(buf)
	if err != nil {
		return err
	}
	if err := validateAddress(addr); err != nil {
		return err
	}
	tags, rest, err := readPaddedString(rest)
	if err != nil {
		return err
	}
	if len(tags) == 0 || tags[0] != ',' {
		return fmt.Errorf("osc: bad type tag string %q", tags)
	}

	args := make([]Value, 0, len(tags)-1)
	for _, tag := range []byte(tags[1:]) {
		switch tag {
		case TagInt32:
			if len(rest) < 4 {
				return ErrShortPacket
			}
			args = append(args, Int(int32(binary.BigEndian.Uint32(rest[:4]))))
			rest = rest[4:]
		case TagFloat32:
			if len(rest) < 4 {
				return ErrShortPacket
			}
			args = append(args, Float(math.Float32frombits(binary.BigEndian.Uint32(rest[:4]))))
			rest = rest[4:]
		case TagString:
			var s string
			s, rest, err = readPaddedString(rest)
			if err != nil {
				return err
			}
			args = append(args, String(s))
		default:
			return fmt.Errorf("osc: unknown type tag %q", tag)
		}
	}
	m.Address = addr
	m.Args = args
	return nil
}

func readPaddedString(buf []byte) (string, []byte, error) {
	for i, b := range buf {
		if b == 0 {
			end := paddedLen(i)
			if end > len(buf) {
				return "", nil, ErrShortPacket
			}
			return string(buf[:i]), buf[end:], nil
		}
	}
	return "", nil, ErrShortPacket
}

func validateAddress(addr string) error {
	if len(addr) == 0 || addr[0] != '/' {
		return ErrBadAddress
	}
	for i := 0; i < len(addr); i++ {
		if addr[i] == 0 || addr[i] > 0x7f {
			return ErrBadAddress
		}
	}
	return nil
}
