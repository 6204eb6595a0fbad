// Package wire implements the uvarint length-prefix framing every record
// in this repo's on-disk format uses. It is adapted from
// bazil.org/bazil/pb's MarshalPrefixBytes/UnmarshalPrefixAt, which frame
// a protobuf message the same way; this library mints its own wire
// format rather than depending on a protoc toolchain, so the framing
// functions here work directly on byte slices instead of proto.Message.
package wire

import (
	"encoding/binary"
	"errors"
	"io"
)

// ErrCorruptLengthPrefix reports a uvarint length prefix that could not
// be read, matching UnmarshalPrefixAt's "length header is corrupt".
var ErrCorruptLengthPrefix = errors.New("wire: length header is corrupt")

// AppendPrefixed appends field to buf preceded by field's length as a
// uvarint, the way MarshalPrefixBytes prefixes a marshaled message.
func AppendPrefixed(buf, field []byte) []byte {
	buf = binary.AppendUvarint(buf, uint64(len(field)))
	return append(buf, field...)
}

// ReadPrefixed reads one length-prefixed field from r, the streaming
// counterpart to UnmarshalPrefixAt's ReaderAt-based framing.
func ReadPrefixed(r io.Reader) ([]byte, error) {
	length, err := readUvarint(r)
	if err != nil {
		return nil, ErrCorruptLengthPrefix
	}
	buf := make([]byte, length)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// byteReader adapts io.Reader to io.ByteReader one byte at a time, the
// minimum binary.ReadUvarint needs.
type byteReader struct{ io.Reader }

func (b byteReader) ReadByte() (byte, error) {
	var buf [1]byte
	if _, err := io.ReadFull(b.Reader, buf[:]); err != nil {
		return 0, err
	}
	return buf[0], nil
}

func readUvarint(r io.Reader) (uint64, error) {
	if br, ok := r.(io.ByteReader); ok {
		return binary.ReadUvarint(br)
	}
	return binary.ReadUvarint(byteReader{r})
}
