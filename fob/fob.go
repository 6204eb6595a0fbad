// Package fob implements the self-authenticating identity record family:
// a typed asymmetric keypair with a content-addressed name and a
// signature establishing its lineage, either self-signed (for the root
// tags) or signed by a parent fob (for Maid, Pmid and Mpid).
//
// A Fob is immutable once constructed or decoded; there is no partially
// valid state. Construction either returns a usable Fob or an error —
// never both a Fob and an error, and never a Fob with a zero name.
package fob

import (
	"bytes"

	"github.com/gyoyo/MaidSafe-Passport/passporterr"
	"github.com/gyoyo/MaidSafe-Passport/primitives"
)

// Fob is a validated identity record: a keypair, the signature
// establishing its lineage, and its content-addressed name.
type Fob struct {
	tag             Tag
	public          primitives.PublicKey
	private         primitives.PrivateKey
	validationToken primitives.Signature
	name            [primitives.HashSize]byte
}

// Tag reports the fob's role.
func (f *Fob) Tag() Tag { return f.tag }

// PublicKey returns the fob's public key.
func (f *Fob) PublicKey() primitives.PublicKey { return f.public }

// PrivateKey returns the fob's private key. Callers must not retain it
// past the fob's own lifetime.
func (f *Fob) PrivateKey() primitives.PrivateKey { return f.private }

// ValidationToken returns the signature establishing the fob's lineage.
func (f *Fob) ValidationToken() primitives.Signature { return f.validationToken }

// Name returns the fob's content-addressed 512-bit identifier.
func (f *Fob) Name() [primitives.HashSize]byte { return f.name }

func nameFromKey(pub primitives.PublicKey, token primitives.Signature) [primitives.HashSize]byte {
	buf := append(primitives.EncodeKey(pub), token[:]...)
	return primitives.Hash(buf)
}

func newRoot(tag Tag) (*Fob, error) {
	pub, priv, err := primitives.GenerateKeyPair()
	if err != nil {
		return nil, err
	}
	token := primitives.Sign(primitives.EncodeKey(pub), priv)
	name := nameFromKey(pub, token)
	return &Fob{tag: tag, public: pub, private: priv, validationToken: token, name: name}, nil
}

func newParentSigned(tag Tag, parent *Fob) (*Fob, error) {
	wantParent, ok := tag.ParentTag()
	if !ok || wantParent != parent.tag {
		return nil, &passporterr.FobParsingError{Reason: "wrong parent tag for " + tag.String()}
	}
	pub, priv, err := primitives.GenerateKeyPair()
	if err != nil {
		return nil, err
	}
	token := primitives.Sign(primitives.EncodeKey(pub), parent.private)
	name := nameFromKey(pub, token)
	return &Fob{tag: tag, public: pub, private: priv, validationToken: token, name: name}, nil
}

// NewAnmid mints a fresh self-signing Anmid root.
func NewAnmid() (*Fob, error) { return newRoot(Anmid) }

// NewAnsmid mints a fresh self-signing Ansmid root.
func NewAnsmid() (*Fob, error) { return newRoot(Ansmid) }

// NewAntmid mints a fresh self-signing Antmid root.
func NewAntmid() (*Fob, error) { return newRoot(Antmid) }

// NewAnmaid mints a fresh self-signing Anmaid root.
func NewAnmaid() (*Fob, error) { return newRoot(Anmaid) }

// NewAnmpid mints a fresh self-signing Anmpid root.
func NewAnmpid() (*Fob, error) { return newRoot(Anmpid) }

// NewMaid mints a Maid signed by anmaid.
func NewMaid(anmaid *Fob) (*Fob, error) { return newParentSigned(Maid, anmaid) }

// NewPmid mints a Pmid signed by maid.
func NewPmid(maid *Fob) (*Fob, error) { return newParentSigned(Pmid, maid) }

// NewMpid mints an Mpid signed by anmpid, with its name derived from
// chosenName rather than from its own public key — the one tag where
// identity is a human-chosen string, not a key hash.
func NewMpid(chosenName []byte, anmpid *Fob) (*Fob, error) {
	if len(chosenName) == 0 {
		return nil, &passporterr.EmptyInputError{Field: "chosen_name"}
	}
	if anmpid.tag != Anmpid {
		return nil, &passporterr.FobParsingError{Reason: "wrong parent tag for Mpid"}
	}
	pub, priv, err := primitives.GenerateKeyPair()
	if err != nil {
		return nil, err
	}
	token := primitives.Sign(primitives.EncodeKey(pub), anmpid.private)
	name := primitives.Hash(chosenName)
	return &Fob{tag: Mpid, public: pub, private: priv, validationToken: token, name: name}, nil
}

// FromParts reconstructs and validates a Fob from its decoded fields.
// This is the invariant-checking half of decode (spec.md §4.2, steps 3
// and 4); the codec package owns the wire-format half (steps 1 and 2:
// malformed framing, tag mismatch) and calls this once it has five clean
// field values.
//
// FromParts rejects (with *passporterr.FobParsingError) whenever:
//   - the encoded keys don't parse,
//   - tag is not Mpid and H(encode(public_key) || validation_token) != name,
//   - the keypair probe decrypt(encrypt(r, public), private) != r fails.
//
// The validation token's signature is never checked against a parent's
// public key here — that requires out-of-band possession of the parent
// fob and is the caller's responsibility.
func FromParts(tag Tag, name, encodedPrivateKey, encodedPublicKey, validationToken []byte) (*Fob, error) {
	if !tag.valid() {
		return nil, &passporterr.FobParsingError{Reason: "unknown tag"}
	}
	if len(name) != primitives.HashSize {
		return nil, &passporterr.FobParsingError{Reason: "bad name length"}
	}

	pub, err := primitives.DecodeKey(encodedPublicKey)
	if err != nil {
		return nil, &passporterr.FobParsingError{Reason: "decode public key: " + err.Error()}
	}
	priv, err := primitives.DecodePrivateKey(encodedPrivateKey)
	if err != nil {
		return nil, &passporterr.FobParsingError{Reason: "decode private key: " + err.Error()}
	}
	if len(validationToken) != primitives.SignatureSize {
		return nil, &passporterr.FobParsingError{Reason: "bad validation token length"}
	}
	var token primitives.Signature
	copy(token[:], validationToken)

	if tag != Mpid {
		want := nameFromKey(pub, token)
		if !bytes.Equal(want[:], name) {
			return nil, &passporterr.FobParsingError{Reason: "name does not match public key and validation token"}
		}
	}

	probe, err := primitives.Random(64)
	if err != nil {
		return nil, err
	}
	sealed, err := primitives.Encrypt(probe, pub)
	if err != nil {
		return nil, &passporterr.FobParsingError{Reason: "keypair probe encrypt: " + err.Error()}
	}
	opened, err := primitives.Decrypt(sealed, priv)
	if err != nil || !bytes.Equal(opened, probe) {
		return nil, &passporterr.FobParsingError{Reason: "keypair probe failed"}
	}

	var fixedName [primitives.HashSize]byte
	copy(fixedName[:], name)
	return &Fob{tag: tag, public: pub, private: priv, validationToken: token, name: fixedName}, nil
}
