// Package wire implements the versioned wire encoding used for
// authentication credentials exchanged between canopy processes.
//
// Records are big-endian with bare length prefixes (no alignment
// padding). Two encoding tiers exist:
//
//   - ID-tagged (VersionIDTag and newer): [plugin_id:uint32][body]
//   - Type-tagged (VersionMin up to VersionIDTag): [type:string]
//     [reserved:uint32][body]
//
// The body is provider-specific and opaque to this package. Versions
// below VersionMin are rejected outright.
package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Protocol versions are negotiated by the surrounding RPC layer and
// passed down to the codec unmodified. The constants here only mark the
// tier boundaries; individual releases bump the version without moving
// them.
const (
	// VersionMin is the oldest wire revision still accepted. Records
	// below this are rejected without consuming input.
	VersionMin uint16 = 0x2200

	// VersionIDTag is the first revision that tags credentials with the
	// provider's numeric plugin id instead of its type string.
	VersionIDTag uint16 = 0x2600
)

// MaxStringLen bounds length-prefixed strings read from the wire.
// Credential type names and token bodies are small; anything past this
// is a malformed or hostile record.
const MaxStringLen = 64 * 1024

var (
	// ErrVersionTooOld indicates a protocol version below VersionMin.
	ErrVersionTooOld = errors.New("protocol version too old")

	// ErrStringTooLong indicates a length prefix above MaxStringLen.
	ErrStringTooLong = errors.New("wire string exceeds maximum length")
)

// Buffer is a byte buffer credentials are packed into and unpacked
// from. The zero value is an empty buffer ready for writing.
//
// Reads consume from the front; a short buffer fails the read and
// leaves the remaining bytes untouched, so callers can reject a record
// without worrying about partial consumption state.
type Buffer struct {
	data []byte
	off  int
}

// NewBuffer returns a Buffer that reads from b. The buffer does not
// copy b; the caller must not mutate it while decoding.
func NewBuffer(b []byte) *Buffer {
	return &Buffer{data: b}
}

// Bytes returns the encoded record: everything written so far, minus
// anything already consumed by reads.
func (b *Buffer) Bytes() []byte {
	return b.data[b.off:]
}

// Len returns the number of unread bytes.
func (b *Buffer) Len() int {
	return len(b.data) - b.off
}

// WriteUint16 appends v in big-endian order.
func (b *Buffer) WriteUint16(v uint16) {
	b.data = binary.BigEndian.AppendUint16(b.data, v)
}

// WriteUint32 appends v in big-endian order.
func (b *Buffer) WriteUint32(v uint32) {
	b.data = binary.BigEndian.AppendUint32(b.data, v)
}

// WriteBytes appends a length-prefixed byte slice.
func (b *Buffer) WriteBytes(p []byte) {
	b.WriteUint32(uint32(len(p)))
	b.data = append(b.data, p...)
}

// WriteString appends a length-prefixed string.
func (b *Buffer) WriteString(s string) {
	b.WriteUint32(uint32(len(s)))
	b.data = append(b.data, s...)
}

// ReadUint16 consumes a big-endian uint16.
func (b *Buffer) ReadUint16() (uint16, error) {
	if b.Len() < 2 {
		return 0, fmt.Errorf("read uint16: %w", io.ErrUnexpectedEOF)
	}
	v := binary.BigEndian.Uint16(b.data[b.off:])
	b.off += 2
	return v, nil
}

// ReadUint32 consumes a big-endian uint32.
func (b *Buffer) ReadUint32() (uint32, error) {
	if b.Len() < 4 {
		return 0, fmt.Errorf("read uint32: %w", io.ErrUnexpectedEOF)
	}
	v := binary.BigEndian.Uint32(b.data[b.off:])
	b.off += 4
	return v, nil
}

// ReadBytes consumes a length-prefixed byte slice. The returned slice
// aliases the buffer's backing array.
func (b *Buffer) ReadBytes() ([]byte, error) {
	length, err := b.ReadUint32()
	if err != nil {
		return nil, fmt.Errorf("read length prefix: %w", err)
	}
	if length > MaxStringLen {
		// Roll the prefix back so the record stays rejectable as a unit.
		b.off -= 4
		return nil, fmt.Errorf("%w: %d bytes", ErrStringTooLong, length)
	}
	if uint32(b.Len()) < length {
		b.off -= 4
		return nil, fmt.Errorf("read %d bytes: %w", length, io.ErrUnexpectedEOF)
	}
	p := b.data[b.off : b.off+int(length)]
	b.off += int(length)
	return p, nil
}

// ReadString consumes a length-prefixed string.
func (b *Buffer) ReadString() (string, error) {
	p, err := b.ReadBytes()
	if err != nil {
		return "", err
	}
	return string(p), nil
}
