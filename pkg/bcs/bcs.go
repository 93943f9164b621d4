// Package bcs implements the subset of Binary Canonical Serialization used to
// talk to Move programs: ULEB128 lengths, little-endian integers, booleans,
// byte vectors, strings and fixed-width 32-byte addresses.
package bcs

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// AddressLength is the width of an account address or object id.
const AddressLength = 32

var ErrOverflow = errors.New("bcs: uleb128 value overflows uint32")

// Encoder appends BCS values to an in-memory buffer.
type Encoder struct {
	buf bytes.Buffer
}

func NewEncoder() *Encoder {
	return &Encoder{}
}

// Bytes returns the encoded payload.
func (e *Encoder) Bytes() []byte {
	return e.buf.Bytes()
}

func (e *Encoder) ULEB128(v uint32) *Encoder {
	for v >= 0x80 {
		e.buf.WriteByte(byte(v) | 0x80)
		v >>= 7
	}
	e.buf.WriteByte(byte(v))
	return e
}

func (e *Encoder) U8(v uint8) *Encoder {
	e.buf.WriteByte(v)
	return e
}

func (e *Encoder) U16(v uint16) *Encoder {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	e.buf.Write(b[:])
	return e
}

func (e *Encoder) U64(v uint64) *Encoder {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	e.buf.Write(b[:])
	return e
}

func (e *Encoder) Bool(v bool) *Encoder {
	if v {
		return e.U8(1)
	}
	return e.U8(0)
}

// Fixed writes raw bytes without a length prefix.
func (e *Encoder) Fixed(b []byte) *Encoder {
	e.buf.Write(b)
	return e
}

// Vector writes a length-prefixed byte vector.
func (e *Encoder) Vector(b []byte) *Encoder {
	e.ULEB128(uint32(len(b)))
	e.buf.Write(b)
	return e
}

func (e *Encoder) String(s string) *Encoder {
	return e.Vector([]byte(s))
}

func (e *Encoder) Address(a [AddressLength]byte) *Encoder {
	return e.Fixed(a[:])
}

// Addresses writes a vector<address>.
func (e *Encoder) Addresses(addrs [][AddressLength]byte) *Encoder {
	e.ULEB128(uint32(len(addrs)))
	for _, a := range addrs {
		e.Address(a)
	}
	return e
}

// Decoder reads BCS values from a byte slice.
type Decoder struct {
	r *bytes.Reader
}

func NewDecoder(b []byte) *Decoder {
	return &Decoder{r: bytes.NewReader(b)}
}

// Remaining reports the number of unread bytes.
func (d *Decoder) Remaining() int {
	return d.r.Len()
}

func (d *Decoder) ULEB128() (uint32, error) {
	var value uint64
	for shift := uint(0); shift < 32; shift += 7 {
		b, err := d.r.ReadByte()
		if err != nil {
			return 0, fmt.Errorf("failed to read uleb128: %w", io.ErrUnexpectedEOF)
		}
		value |= uint64(b&0x7f) << shift
		if b&0x80 == 0 {
			if value > 0xffffffff {
				return 0, ErrOverflow
			}
			return uint32(value), nil
		}
	}
	return 0, ErrOverflow
}

func (d *Decoder) U8() (uint8, error) {
	b, err := d.r.ReadByte()
	if err != nil {
		return 0, fmt.Errorf("failed to read u8: %w", io.ErrUnexpectedEOF)
	}
	return b, nil
}

func (d *Decoder) U16() (uint16, error) {
	b, err := d.Fixed(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (d *Decoder) U64() (uint64, error) {
	b, err := d.Fixed(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

func (d *Decoder) Bool() (bool, error) {
	b, err := d.U8()
	if err != nil {
		return false, err
	}
	switch b {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, fmt.Errorf("bcs: invalid bool byte %d", b)
	}
}

// Fixed reads exactly n bytes.
func (d *Decoder) Fixed(n int) ([]byte, error) {
	if d.r.Len() < n {
		return nil, fmt.Errorf("failed to read %d bytes: %w", n, io.ErrUnexpectedEOF)
	}
	b := make([]byte, n)
	_, _ = io.ReadFull(d.r, b)
	return b, nil
}

func (d *Decoder) Vector() ([]byte, error) {
	n, err := d.ULEB128()
	if err != nil {
		return nil, err
	}
	return d.Fixed(int(n))
}

func (d *Decoder) String() (string, error) {
	b, err := d.Vector()
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (d *Decoder) Address() ([AddressLength]byte, error) {
	var a [AddressLength]byte
	b, err := d.Fixed(AddressLength)
	if err != nil {
		return a, err
	}
	copy(a[:], b)
	return a, nil
}
