// Package primitives implements the cryptographic primitives layer the
// fob, credentials and codec packages build on: a 512-bit hash, an
// AES-256+IV symmetric cipher, a password-based KDF with an explicit
// iteration count, ed25519 signing keypairs with a derived curve25519
// encryption keypair, and the small helpers (XOR, random bytes) the
// credential packets need for master-data obfuscation.
//
// Every operation here is pure and stateless except for those that
// consume the process random source (GenerateKeyPair, Random, Encrypt); the
// random source itself is the only shared, implicitly-synchronized
// resource in the package, same as crypto/rand's.
package primitives

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha512"
	"crypto/subtle"
	"io"

	"github.com/agl/ed25519"
	"github.com/agl/ed25519/extra25519"
	"golang.org/x/crypto/nacl/box"
	"golang.org/x/crypto/pbkdf2"

	"github.com/gyoyo/MaidSafe-Passport/passporterr"
)

const (
	// HashSize is the width of Hash's output, 512 bits.
	HashSize = sha512.Size

	// KeySize is the AES-256 key width in bytes.
	KeySize = 32
	// IVSize is the AES block size, used as the CFB IV width.
	IVSize = aes.BlockSize

	// SignatureSize is the width of an ed25519 signature.
	SignatureSize = 64

	boxNonceSize = 24
)

// MaxKDFIterations caps the iteration count accepted by KDF. The original
// design lets a MidPacket's numeric PIN drive the iteration count
// directly (see credentials.NewMid); an attacker-chosen or just unusually
// large PIN would otherwise be able to force an arbitrarily expensive
// derivation. This is a deliberate divergence from the source behavior,
// recorded as an open question in DESIGN.md.
const MaxKDFIterations = 2_000_000

// Hash returns the 512-bit SHA-512 digest of data.
func Hash(data []byte) [HashSize]byte {
	return sha512.Sum512(data)
}

// Random returns n cryptographically random bytes.
func Random(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return nil, &passporterr.CryptoPrimitiveError{Reason: "random: " + err.Error()}
	}
	return b, nil
}

// XOR returns a XOR b. a and b must have equal length.
func XOR(a, b []byte) ([]byte, error) {
	if len(a) != len(b) {
		return nil, &passporterr.CryptoPrimitiveError{Reason: "xor: length mismatch"}
	}
	out := make([]byte, len(a))
	for i := range a {
		out[i] = a[i] ^ b[i]
	}
	return out, nil
}

// PublicKey is a signing public key paired with the curve25519 public
// key derived from it, used for asymmetric encryption.
type PublicKey struct {
	Sign *[ed25519.PublicKeySize]byte
	Box  [32]byte
}

// PrivateKey is a signing private key paired with the curve25519 private
// key derived from it.
type PrivateKey struct {
	Sign *[ed25519.PrivateKeySize]byte
	Box  [32]byte
}

// Zero overwrites the private key material in place. Callers holding a
// PrivateKey past its useful lifetime must call this.
func (k *PrivateKey) Zero() {
	if k.Sign != nil {
		for i := range k.Sign {
			k.Sign[i] = 0
		}
	}
	for i := range k.Box {
		k.Box[i] = 0
	}
}

// Signature is a detached ed25519 signature.
type Signature [SignatureSize]byte

// GenerateKeyPair creates a fresh signing keypair and derives its
// curve25519 encryption counterpart, the way bazil.org/bazil/server
// derives its box keys from its ed25519 master key at startup.
func GenerateKeyPair() (PublicKey, PrivateKey, error) {
	signPub, signPriv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return PublicKey{}, PrivateKey{}, &passporterr.CryptoPrimitiveError{Reason: "generate keypair: " + err.Error()}
	}

	var boxPriv, boxPub [32]byte
	extra25519.PrivateKeyToCurve25519(&boxPriv, signPriv)
	if ok := extra25519.PublicKeyToCurve25519(&boxPub, signPub); !ok {
		return PublicKey{}, PrivateKey{}, &passporterr.CryptoPrimitiveError{Reason: "generate keypair: public key has no curve25519 representation"}
	}

	pub := PublicKey{Sign: signPub, Box: boxPub}
	priv := PrivateKey{Sign: signPriv, Box: boxPriv}
	return pub, priv, nil
}

// EncodeKey returns the canonical wire encoding of a public key: the
// 32-byte ed25519 key followed by the 32-byte curve25519 key.
func EncodeKey(pub PublicKey) []byte {
	out := make([]byte, 0, ed25519.PublicKeySize+32)
	out = append(out, pub.Sign[:]...)
	out = append(out, pub.Box[:]...)
	return out
}

// DecodeKey parses a public key encoded by EncodeKey.
func DecodeKey(data []byte) (PublicKey, error) {
	if len(data) != ed25519.PublicKeySize+32 {
		return PublicKey{}, &passporterr.CryptoPrimitiveError{Reason: "decode public key: bad length"}
	}
	var signPub [ed25519.PublicKeySize]byte
	copy(signPub[:], data[:ed25519.PublicKeySize])
	var boxPub [32]byte
	copy(boxPub[:], data[ed25519.PublicKeySize:])
	return PublicKey{Sign: &signPub, Box: boxPub}, nil
}

// EncodePrivateKey returns the canonical wire encoding of a private key:
// the 64-byte ed25519 key followed by the 32-byte curve25519 key.
func EncodePrivateKey(priv PrivateKey) []byte {
	out := make([]byte, 0, ed25519.PrivateKeySize+32)
	out = append(out, priv.Sign[:]...)
	out = append(out, priv.Box[:]...)
	return out
}

// DecodePrivateKey parses a private key encoded by EncodePrivateKey.
func DecodePrivateKey(data []byte) (PrivateKey, error) {
	if len(data) != ed25519.PrivateKeySize+32 {
		return PrivateKey{}, &passporterr.CryptoPrimitiveError{Reason: "decode private key: bad length"}
	}
	var signPriv [ed25519.PrivateKeySize]byte
	copy(signPriv[:], data[:ed25519.PrivateKeySize])
	var boxPriv [32]byte
	copy(boxPriv[:], data[ed25519.PrivateKeySize:])
	return PrivateKey{Sign: &signPriv, Box: boxPriv}, nil
}

// Sign returns the ed25519 signature of data under priv.
func Sign(data []byte, priv PrivateKey) Signature {
	sig := ed25519.Sign(priv.Sign, data)
	return Signature(*sig)
}

// Verify reports whether sig is data signed by the private key matching
// pub.
func Verify(data []byte, sig Signature, pub PublicKey) bool {
	s := [SignatureSize]byte(sig)
	return ed25519.Verify(pub.Sign, data, &s)
}

// Encrypt seals plaintext to pub using an anonymous sealed box: an
// ephemeral curve25519 keypair is generated, the message is sealed with
// NaCl box under (ephemeralPriv, pub.Box), and the ephemeral public key
// plus nonce are carried alongside the ciphertext so Decrypt needs only
// the recipient's private key.
func Encrypt(plaintext []byte, pub PublicKey) ([]byte, error) {
	ephPub, ephPriv, err := box.GenerateKey(rand.Reader)
	if err != nil {
		return nil, &passporterr.CryptoPrimitiveError{Reason: "encrypt: " + err.Error()}
	}

	var nonce [boxNonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return nil, &passporterr.CryptoPrimitiveError{Reason: "encrypt: " + err.Error()}
	}

	boxPub := pub.Box
	sealed := box.Seal(nil, plaintext, &nonce, &boxPub, ephPriv)

	out := make([]byte, 0, len(ephPub)+len(nonce)+len(sealed))
	out = append(out, ephPub[:]...)
	out = append(out, nonce[:]...)
	out = append(out, sealed...)
	return out, nil
}

// Decrypt opens a box produced by Encrypt using priv.
func Decrypt(ciphertext []byte, priv PrivateKey) ([]byte, error) {
	if len(ciphertext) < 32+boxNonceSize {
		return nil, &passporterr.CryptoPrimitiveError{Reason: "decrypt: ciphertext too short"}
	}
	var ephPub [32]byte
	copy(ephPub[:], ciphertext[:32])
	var nonce [boxNonceSize]byte
	copy(nonce[:], ciphertext[32:32+boxNonceSize])
	body := ciphertext[32+boxNonceSize:]

	boxPriv := priv.Box
	plain, ok := box.Open(nil, body, &nonce, &ephPub, &boxPriv)
	if !ok {
		return nil, &passporterr.CryptoPrimitiveError{Reason: "decrypt: open failed"}
	}
	return plain, nil
}

// SymmEncrypt encrypts plaintext with AES-256 in CFB mode under key and
// iv. key must be KeySize bytes and iv must be IVSize bytes.
func SymmEncrypt(plaintext []byte, key [KeySize]byte, iv [IVSize]byte) ([]byte, error) {
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, &passporterr.CryptoPrimitiveError{Reason: "symm encrypt: " + err.Error()}
	}
	out := make([]byte, len(plaintext))
	stream := cipher.NewCFBEncrypter(block, iv[:])
	stream.XORKeyStream(out, plaintext)
	return out, nil
}

// SymmDecrypt is the inverse of SymmEncrypt.
func SymmDecrypt(ciphertext []byte, key [KeySize]byte, iv [IVSize]byte) ([]byte, error) {
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, &passporterr.CryptoPrimitiveError{Reason: "symm decrypt: " + err.Error()}
	}
	out := make([]byte, len(ciphertext))
	stream := cipher.NewCFBDecrypter(block, iv[:])
	stream.XORKeyStream(out, ciphertext)
	return out, nil
}

// KDF derives KeySize+IVSize bytes from password and salt using
// PBKDF2-HMAC-SHA512 with the given iteration count. salt must be
// non-empty. iterations is clamped to MaxKDFIterations and floored at 1.
func KDF(password, salt []byte, iterations uint32) ([]byte, error) {
	if len(salt) == 0 {
		return nil, &passporterr.DerivationError{Reason: "empty salt"}
	}
	iter := iterations
	if iter > MaxKDFIterations {
		iter = MaxKDFIterations
	}
	if iter == 0 {
		iter = 1
	}
	out := pbkdf2.Key(password, salt, int(iter), KeySize+IVSize, sha512.New)
	if len(out) < KeySize+IVSize {
		return nil, &passporterr.DerivationError{Reason: "short kdf output"}
	}
	return out, nil
}

// Zero overwrites b with zeroes in place. Go's compiler does not elide
// this the way it would a plain loop over a value about to go out of
// scope, because b escapes through the slice header into this call.
func Zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// ConstantTimeEqual reports whether a and b hold the same bytes, taking
// time independent of where they first differ. Used by credential
// packet comparisons over secret-bearing fields.
func ConstantTimeEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare(a, b) == 1
}
