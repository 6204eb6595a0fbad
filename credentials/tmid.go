package credentials

import (
	"strconv"

	"github.com/gyoyo/MaidSafe-Passport/primitives"
)

// TmidPacket holds an obfuscated, symmetrically encrypted master-data
// blob keyed by (username, PIN, password). Its kind distinguishes the
// main (Tmid) and surrogate (Stmid) login slots; otherwise behavior is
// identical.
type TmidPacket struct {
	username              string
	pin                    string
	password               []byte
	rid                    []byte
	plainTextMasterData    []byte
	obfuscationSalt        []byte
	obfuscatedMasterData   []byte
	encryptedMasterData    []byte
	salt                   []byte
	secureKey              [primitives.KeySize]byte
	secureIV               [primitives.IVSize]byte
	name                   []byte
	kind                   Kind
}

// NewTmidInitialised constructs a Tmid (surrogate == false) or Stmid
// (surrogate == true) packet in the *initialised* state: username, pin
// and rid (= H(pin)) are set, but no payload has been derived yet. This
// is the entry point for TmidPacket.DecryptMasterData, which needs a
// packet that knows (username, pin) without yet holding any master data
// — spec.md §4.6's "initialised" state, payload not yet present.
//
// An empty username or pin quietly yields an empty packet.
func NewTmidInitialised(username, pin string, surrogate bool) *TmidPacket {
	kind := KindTmid
	if surrogate {
		kind = KindStmid
	}
	t := &TmidPacket{kind: kind}
	if username == "" || pin == "" {
		return t
	}
	t.username = username
	t.pin = pin
	ridArr := primitives.Hash([]byte(pin))
	t.rid = ridArr[:]
	return t
}

// NewTmid constructs a populated Tmid (surrogate == false) or Stmid
// (surrogate == true) packet: it derives the secure key, obfuscates
// plainTextMasterData, encrypts the result, and computes
// name = H(encrypted_master_data).
//
// Any sub-step failure resets the packet to empty, matching
// TmidPacket::Initialise's abort-on-first-failure sequencing:
// set_password -> obfuscate_plain_data -> set_plain_data -> name.
func NewTmid(username, pin string, surrogate bool, password, plainTextMasterData []byte) *TmidPacket {
	t := NewTmidInitialised(username, pin, surrogate)
	if t.username == "" {
		return t
	}
	if !t.setPassword(password) {
		t.Clear()
		return t
	}
	if !t.obfuscatePlainData(plainTextMasterData) {
		t.Clear()
		return t
	}
	if !t.setPlainData() {
		t.Clear()
		return t
	}
	nameArr := primitives.Hash(t.encryptedMasterData)
	t.name = nameArr[:]
	return t
}

// Kind reports whether this is a Tmid or Stmid packet.
func (t *TmidPacket) Kind() Kind { return t.kind }

// Name returns the packet's network address (H(encrypted_master_data)),
// or nil if the packet is empty.
func (t *TmidPacket) Name() []byte { return t.name }

// Username returns the username, or "" if the packet is empty.
func (t *TmidPacket) Username() string { return t.username }

// Pin returns the PIN string, or "" if the packet is empty.
func (t *TmidPacket) Pin() string { return t.pin }

// Rid returns H(pin), or nil if the packet is empty.
func (t *TmidPacket) Rid() []byte { return t.rid }

// EncryptedMasterData returns the stored ciphertext, or nil.
func (t *TmidPacket) EncryptedMasterData() []byte { return t.encryptedMasterData }

// PlainTextMasterData returns the last recovered or supplied plaintext,
// or nil.
func (t *TmidPacket) PlainTextMasterData() []byte { return t.plainTextMasterData }

// littleEndianUint32 reads the first 4 bytes of b as an unsigned 32-bit
// little-endian integer: sum(b[i] * 256^i, i=0..3). spec.md §4.4 calls
// out that this exact byte order — not a native/big-endian cast — is
// part of the on-wire contract; any reimplementation that gets this
// wrong derives an incompatible KDF iteration count.
func littleEndianUint32(b []byte) uint32 {
	var n uint32
	var mul uint32 = 1
	for i := 0; i < 4; i++ {
		n += uint32(b[i]) * mul
		mul *= 256
	}
	return n
}

// setPassword derives secure_key/secure_iv from (password,
// salt=H(rid||password), iterations=littleEndianUint32(rid[:4])).
// Rejects an empty password or an rid shorter than 4 bytes, clearing the
// derived key material (but not the rest of the packet — the caller
// decides whether the whole packet resets).
func (t *TmidPacket) setPassword(password []byte) bool {
	if len(password) == 0 || len(t.rid) < 4 {
		t.salt = nil
		t.secureKey = [primitives.KeySize]byte{}
		t.secureIV = [primitives.IVSize]byte{}
		return false
	}

	saltArr := primitives.Hash(append(append([]byte{}, t.rid...), password...))
	t.salt = saltArr[:]

	iterations := littleEndianUint32(t.rid[:4])
	kdfOut, err := primitives.KDF(password, t.salt, iterations)
	if err != nil {
		t.salt = nil
		t.secureKey = [primitives.KeySize]byte{}
		t.secureIV = [primitives.IVSize]byte{}
		return false
	}

	copy(t.secureKey[:], kdfOut[:primitives.KeySize])
	copy(t.secureIV[:], kdfOut[primitives.KeySize:primitives.KeySize+primitives.IVSize])
	t.password = append([]byte(nil), password...)
	return true
}

// obfuscationRounds implements the spec's unusual branch exactly:
// pin/2 == 0 selects pin*3/2, otherwise pin/2. For pin in {0,1} this
// yields rounds in {0,1}; both must reach the KDF verbatim.
func obfuscationRounds(pin uint32) uint32 {
	if pin/2 == 0 {
		return pin * 3 / 2
	}
	return pin / 2
}

func tileToLength(s []byte, n int) []byte {
	out := make([]byte, n)
	if len(s) == 0 {
		return out
	}
	for i := range out {
		out[i] = s[i%len(s)]
	}
	return out
}

// obfuscatePlainData XORs plain against a tiled KDF stream keyed by
// username and obfuscation_salt = H(password || rid), with the
// iteration count from obfuscationRounds(pin).
func (t *TmidPacket) obfuscatePlainData(plain []byte) bool {
	if len(plain) == 0 || t.username == "" || t.pin == "" {
		t.obfuscatedMasterData = nil
		return false
	}

	pinNum, err := strconv.ParseUint(t.pin, 10, 32)
	if err != nil {
		return false
	}

	saltArr := primitives.Hash(append(append([]byte{}, t.password...), t.rid...))
	t.obfuscationSalt = saltArr[:]

	obfStream, err := primitives.KDF([]byte(t.username), t.obfuscationSalt, obfuscationRounds(uint32(pinNum)))
	if err != nil {
		return false
	}

	tiled := tileToLength(obfStream, len(plain))
	xored, err := primitives.XOR(plain, tiled)
	if err != nil {
		return false
	}

	t.obfuscatedMasterData = xored
	t.plainTextMasterData = append([]byte(nil), plain...)
	return true
}

func (t *TmidPacket) setPlainData() bool {
	zeroKey := [primitives.KeySize]byte{}
	zeroIV := [primitives.IVSize]byte{}
	if len(t.obfuscatedMasterData) == 0 || t.secureKey == zeroKey || t.secureIV == zeroIV {
		t.encryptedMasterData = nil
		return false
	}
	encrypted, err := primitives.SymmEncrypt(t.obfuscatedMasterData, t.secureKey, t.secureIV)
	if err != nil || len(encrypted) == 0 {
		t.encryptedMasterData = nil
		return false
	}
	t.encryptedMasterData = encrypted
	return true
}

// clarifyObfuscatedData inverts obfuscatePlainData's XOR, recovering
// plainTextMasterData from obfuscatedMasterData.
func (t *TmidPacket) clarifyObfuscatedData() bool {
	pinNum, err := strconv.ParseUint(t.pin, 10, 32)
	if err != nil {
		return false
	}
	saltArr := primitives.Hash(append(append([]byte{}, t.password...), t.rid...))
	obfStream, err := primitives.KDF([]byte(t.username), saltArr[:], obfuscationRounds(uint32(pinNum)))
	if err != nil {
		return false
	}
	tiled := tileToLength(obfStream, len(t.obfuscatedMasterData))
	plain, err := primitives.XOR(t.obfuscatedMasterData, tiled)
	if err != nil {
		return false
	}
	t.plainTextMasterData = plain
	return true
}

// DecryptMasterData sets password, re-derives secure_key/secure_iv from
// password and the packet's existing rid, decrypts encryptedMasterData,
// and inverts the obfuscation to recover the plaintext master data.
//
// Requires the packet to already be at least initialised (NewTmidInitialised
// or NewTmid); any failure — including calling this on an empty packet —
// returns nil and resets the packet to empty.
func (t *TmidPacket) DecryptMasterData(password, encryptedMasterData []byte) []byte {
	if !t.setPassword(password) {
		t.Clear()
		return nil
	}
	if len(encryptedMasterData) == 0 {
		t.Clear()
		return nil
	}

	t.encryptedMasterData = append([]byte(nil), encryptedMasterData...)
	obfuscated, err := primitives.SymmDecrypt(t.encryptedMasterData, t.secureKey, t.secureIV)
	if err != nil || len(obfuscated) == 0 {
		t.Clear()
		return nil
	}
	t.obfuscatedMasterData = obfuscated

	if !t.clarifyObfuscatedData() {
		t.Clear()
		return nil
	}
	return t.plainTextMasterData
}

// Clear zeroes every field except Kind, transitioning the packet back
// to empty.
func (t *TmidPacket) Clear() {
	primitives.Zero(t.secureKey[:])
	primitives.Zero(t.secureIV[:])
	primitives.Zero(t.password)
	primitives.Zero(t.plainTextMasterData)
	t.secureKey = [primitives.KeySize]byte{}
	t.secureIV = [primitives.IVSize]byte{}
	t.username = ""
	t.pin = ""
	t.password = nil
	t.rid = nil
	t.plainTextMasterData = nil
	t.obfuscationSalt = nil
	t.obfuscatedMasterData = nil
	t.encryptedMasterData = nil
	t.salt = nil
	t.name = nil
}

// Equals compares Kind, name, username, pin, password, rid, plaintext,
// salt, key material and encrypted master data, secret material
// included; the obfuscation salt and obfuscated master data are not
// compared. This comparator is meant for test assertions. For comparisons outside
// tests, prefer ConstantTimeEquals to avoid leaking secret-dependent
// timing.
func (t *TmidPacket) Equals(other *TmidPacket) bool {
	if other == nil {
		return false
	}
	return t.kind == other.kind &&
		string(t.name) == string(other.name) &&
		t.username == other.username &&
		t.pin == other.pin &&
		string(t.password) == string(other.password) &&
		string(t.rid) == string(other.rid) &&
		string(t.plainTextMasterData) == string(other.plainTextMasterData) &&
		string(t.salt) == string(other.salt) &&
		t.secureKey == other.secureKey &&
		t.secureIV == other.secureIV &&
		string(t.encryptedMasterData) == string(other.encryptedMasterData)
}

// ConstantTimeEquals is Equals' timing-safe sibling: it reports equality
// of the same fields as Equals, but compares the secret-bearing ones
// (password, rid, plaintext, key material) with primitives.ConstantTimeEqual
// instead of ==/string comparison. spec.md §9 flags the source's
// field-by-field Equals (intentional for its test suite) as something an
// implementation might want both variants of; this is the timing-safe one.
func (t *TmidPacket) ConstantTimeEquals(other *TmidPacket) bool {
	if other == nil {
		return false
	}
	ok := t.kind == other.kind &&
		string(t.name) == string(other.name) &&
		t.username == other.username &&
		t.pin == other.pin &&
		string(t.salt) == string(other.salt)
	ok = ok && primitives.ConstantTimeEqual(t.password, other.password)
	ok = ok && primitives.ConstantTimeEqual(t.rid, other.rid)
	ok = ok && primitives.ConstantTimeEqual(t.plainTextMasterData, other.plainTextMasterData)
	ok = ok && primitives.ConstantTimeEqual(t.secureKey[:], other.secureKey[:])
	ok = ok && primitives.ConstantTimeEqual(t.secureIV[:], other.secureIV[:])
	ok = ok && primitives.ConstantTimeEqual(t.encryptedMasterData, other.encryptedMasterData)
	return ok
}
