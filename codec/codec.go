// Package codec maps Fobs, Pmid lists and keychain lists to and from the
// self-describing byte layout in spec.md §6. Variable-length fields are
// framed with a uvarint length prefix (a fob's type is a bare uvarint and
// its name a fixed 64 bytes) — the same uvarint-prefix technique
// bazil.org/bazil/pb uses to frame protobuf messages on disk
// (MarshalPrefixBytes/UnmarshalPrefixAt), adapted here to frame raw
// fields directly rather than a generated message type, since this
// library mints its own wire format instead of depending on a .proto
// toolchain (see DESIGN.md).
//
// This is the single boundary at which malformed input is rejected for
// the wire-framing half of decode (incomplete records, tag mismatches);
// fob.FromParts owns the cross-field invariant checks. Every other
// component may assume the inputs it receives from here are already
// well-formed.
package codec

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/gyoyo/MaidSafe-Passport/fob"
	"github.com/gyoyo/MaidSafe-Passport/passporterr"
	"github.com/gyoyo/MaidSafe-Passport/primitives"
	"github.com/gyoyo/MaidSafe-Passport/wire"
)

func appendLengthPrefixed(buf []byte, field []byte) []byte {
	return wire.AppendPrefixed(buf, field)
}

func readLengthPrefixed(r *bytes.Reader) ([]byte, error) {
	field, err := wire.ReadPrefixed(r)
	if err != nil {
		return nil, fmt.Errorf("length-prefixed field: %w", err)
	}
	return field, nil
}

// EncodeFob serializes f as: type (uvarint) | name (64 bytes, fixed) |
// encoded_private_key (length-prefixed) | encoded_public_key
// (length-prefixed) | validation_token (length-prefixed).
func EncodeFob(f *fob.Fob) []byte {
	buf := binary.AppendUvarint(nil, f.Tag().WireValue())

	name := f.Name()
	buf = append(buf, name[:]...)

	buf = appendLengthPrefixed(buf, primitives.EncodePrivateKey(f.PrivateKey()))
	buf = appendLengthPrefixed(buf, primitives.EncodeKey(f.PublicKey()))

	token := f.ValidationToken()
	buf = appendLengthPrefixed(buf, token[:])
	return buf
}

// DecodeFob parses a record produced by EncodeFob and validates it
// against requestedTag. Any of the following produces
// *passporterr.FobParsingError: a truncated or otherwise malformed
// record, an on-wire tag different from requestedTag, trailing bytes
// after the last field, or any invariant fob.FromParts checks.
func DecodeFob(requestedTag fob.Tag, data []byte) (*fob.Fob, error) {
	r := bytes.NewReader(data)

	wireTag, err := binary.ReadUvarint(r)
	if err != nil {
		return nil, &passporterr.FobParsingError{Reason: "truncated type field: " + err.Error()}
	}
	tag, ok := fob.TagFromWire(wireTag)
	if !ok || tag != requestedTag {
		return nil, &passporterr.FobParsingError{Reason: "tag mismatch"}
	}

	name := make([]byte, primitives.HashSize)
	if _, err := io.ReadFull(r, name); err != nil {
		return nil, &passporterr.FobParsingError{Reason: "truncated name field: " + err.Error()}
	}

	encodedPriv, err := readLengthPrefixed(r)
	if err != nil {
		return nil, &passporterr.FobParsingError{Reason: "truncated private key field: " + err.Error()}
	}
	encodedPub, err := readLengthPrefixed(r)
	if err != nil {
		return nil, &passporterr.FobParsingError{Reason: "truncated public key field: " + err.Error()}
	}
	token, err := readLengthPrefixed(r)
	if err != nil {
		return nil, &passporterr.FobParsingError{Reason: "truncated validation token field: " + err.Error()}
	}

	if r.Len() != 0 {
		return nil, &passporterr.FobParsingError{Reason: "trailing bytes after record"}
	}

	return fob.FromParts(requestedTag, name, encodedPriv, encodedPub, token)
}

// EncodePmidList serializes a sequence of Pmid fobs as a container with
// a repeated, length-prefixed pmid field, preserving order.
func EncodePmidList(pmids []*fob.Fob) []byte {
	buf := binary.AppendUvarint(nil, uint64(len(pmids)))
	for _, p := range pmids {
		buf = appendLengthPrefixed(buf, EncodeFob(p))
	}
	return buf
}

// DecodePmidList parses a container produced by EncodePmidList.
func DecodePmidList(data []byte) ([]*fob.Fob, error) {
	r := bytes.NewReader(data)
	count, err := binary.ReadUvarint(r)
	if err != nil {
		return nil, &passporterr.FobParsingError{Reason: "truncated pmid list count: " + err.Error()}
	}
	out := make([]*fob.Fob, 0, count)
	for i := uint64(0); i < count; i++ {
		elem, err := readLengthPrefixed(r)
		if err != nil {
			return nil, &passporterr.FobParsingError{Reason: "truncated pmid list element: " + err.Error()}
		}
		pmid, err := DecodeFob(fob.Pmid, elem)
		if err != nil {
			return nil, err
		}
		out = append(out, pmid)
	}
	if r.Len() != 0 {
		return nil, &passporterr.FobParsingError{Reason: "trailing bytes after pmid list"}
	}
	return out, nil
}

// KeyChain is an Anmaid -> Maid -> Pmid signing chain as stored in a
// development-only keychain list file (spec.md §6.3). Decoding a
// KeyChain does not verify the Pmid/Maid/Anmaid signing relationship;
// each fob is checked only for its own internal coherence by DecodeFob.
// Every record carries private keys, so this format is for local test
// fixtures, never for on-network storage.
type KeyChain struct {
	Anmaid *fob.Fob
	Maid   *fob.Fob
	Pmid   *fob.Fob
}

// EncodeKeyChainList serializes a sequence of KeyChain triples.
func EncodeKeyChainList(chains []KeyChain) []byte {
	buf := binary.AppendUvarint(nil, uint64(len(chains)))
	for _, c := range chains {
		buf = appendLengthPrefixed(buf, EncodeFob(c.Anmaid))
		buf = appendLengthPrefixed(buf, EncodeFob(c.Maid))
		buf = appendLengthPrefixed(buf, EncodeFob(c.Pmid))
	}
	return buf
}

// DecodeKeyChainList parses a container produced by EncodeKeyChainList.
func DecodeKeyChainList(data []byte) ([]KeyChain, error) {
	r := bytes.NewReader(data)
	count, err := binary.ReadUvarint(r)
	if err != nil {
		return nil, &passporterr.FobParsingError{Reason: "truncated keychain list count: " + err.Error()}
	}
	out := make([]KeyChain, 0, count)
	for i := uint64(0); i < count; i++ {
		anmaidBytes, err := readLengthPrefixed(r)
		if err != nil {
			return nil, &passporterr.FobParsingError{Reason: "truncated anmaid field: " + err.Error()}
		}
		maidBytes, err := readLengthPrefixed(r)
		if err != nil {
			return nil, &passporterr.FobParsingError{Reason: "truncated maid field: " + err.Error()}
		}
		pmidBytes, err := readLengthPrefixed(r)
		if err != nil {
			return nil, &passporterr.FobParsingError{Reason: "truncated pmid field: " + err.Error()}
		}

		anmaid, err := DecodeFob(fob.Anmaid, anmaidBytes)
		if err != nil {
			return nil, err
		}
		maid, err := DecodeFob(fob.Maid, maidBytes)
		if err != nil {
			return nil, err
		}
		pmid, err := DecodeFob(fob.Pmid, pmidBytes)
		if err != nil {
			return nil, err
		}
		out = append(out, KeyChain{Anmaid: anmaid, Maid: maid, Pmid: pmid})
	}
	if r.Len() != 0 {
		return nil, &passporterr.FobParsingError{Reason: "trailing bytes after keychain list"}
	}
	return out, nil
}
