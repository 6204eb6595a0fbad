// Package credentials implements the password-based login credential
// packets: MidPacket (Mid/Smid), which stores a rid keyed by
// username+PIN, and TmidPacket (Tmid/Stmid), which stores an obfuscated
// and symmetrically encrypted master-data blob keyed by
// username+PIN+password.
//
// Both packet types are state machines with three observable states —
// empty, initialised, populated — implemented the way spec.md §4.6
// describes: a failing mutation resets every field (the kind is the one
// exception, see Kind) rather than returning a half-valid object. This
// mirrors the original's deliberate choice not to raise from credential
// mutators: callers detect failure by checking Name() for nil, the
// payload-bearing methods for nil, never by a returned error.
package credentials

import (
	"strconv"

	"github.com/gyoyo/MaidSafe-Passport/primitives"
)

// Kind distinguishes the four credential packet flavors. A packet's Kind
// is fixed at construction and survives Clear.
type Kind int

const (
	KindMid Kind = iota
	KindSmid
	KindTmid
	KindStmid
)

func (k Kind) String() string {
	switch k {
	case KindMid:
		return "Mid"
	case KindSmid:
		return "Smid"
	case KindTmid:
		return "Tmid"
	case KindStmid:
		return "Stmid"
	default:
		return "Unknown"
	}
}

// MidPacket holds the rid a login session needs, encrypted under a key
// derived from (username, PIN).
type MidPacket struct {
	username      string
	pin           string
	smidAppendix  string
	rid           []byte
	encryptedRid  []byte
	salt          []byte
	secureKey     [primitives.KeySize]byte
	secureIV      [primitives.IVSize]byte
	name          []byte
	kind          Kind
}

// NewMid constructs a Mid (smidAppendix == "") or Smid (smidAppendix !=
// "") packet and derives its name, salt and secure key/IV from username
// and pin.
//
// An empty username or pin is not an error: NewMid quietly returns an
// empty packet (Name() == nil), matching the source's Initialise
// behavior — credential flows are stateful retry loops where raising
// across them would complicate the caller.
func NewMid(username, pin, smidAppendix string) *MidPacket {
	kind := KindMid
	if smidAppendix != "" {
		kind = KindSmid
	}
	m := &MidPacket{kind: kind}
	if username == "" || pin == "" {
		return m
	}

	pinNum, err := strconv.ParseUint(pin, 10, 32)
	if err != nil {
		return m
	}

	saltArr := primitives.Hash([]byte(pin + username))
	salt := saltArr[:]

	kdfOut, err := primitives.KDF([]byte(username), salt, uint32(pinNum))
	if err != nil {
		return m
	}

	m.username = username
	m.pin = pin
	m.smidAppendix = smidAppendix
	m.salt = salt
	copy(m.secureKey[:], kdfOut[:primitives.KeySize])
	copy(m.secureIV[:], kdfOut[primitives.KeySize:primitives.KeySize+primitives.IVSize])

	nameArr := primitives.Hash([]byte(username + pin + smidAppendix))
	m.name = nameArr[:]
	return m
}

// Kind reports whether this is a Mid or Smid packet.
func (m *MidPacket) Kind() Kind { return m.kind }

// Name returns the packet's network address, or nil if the packet is
// empty.
func (m *MidPacket) Name() []byte { return m.name }

// Username returns the username, or "" if the packet is empty.
func (m *MidPacket) Username() string { return m.username }

// Pin returns the PIN string, or "" if the packet is empty.
func (m *MidPacket) Pin() string { return m.pin }

// EncryptedRid returns the stored encrypted rid, or nil.
func (m *MidPacket) EncryptedRid() []byte { return m.encryptedRid }

// Rid returns the last rid set or decrypted, or nil.
func (m *MidPacket) Rid() []byte { return m.rid }

// SetRid encrypts rid under the packet's secure key/IV and stores both.
// rid must be non-empty; any failure, including an empty rid, resets the
// packet to empty.
func (m *MidPacket) SetRid(rid []byte) {
	if len(rid) == 0 {
		m.Clear()
		return
	}
	encrypted, err := primitives.SymmEncrypt(rid, m.secureKey, m.secureIV)
	if err != nil || len(encrypted) == 0 {
		m.Clear()
		return
	}
	m.rid = append([]byte(nil), rid...)
	m.encryptedRid = encrypted
}

// DecryptRid decrypts encryptedRid under the packet's secure key/IV,
// returning the recovered rid. Requires the packet to be initialised
// (non-empty username and pin); any failure returns nil and resets the
// packet to empty.
func (m *MidPacket) DecryptRid(encryptedRid []byte) []byte {
	if m.username == "" || m.pin == "" || len(encryptedRid) == 0 {
		m.Clear()
		return nil
	}
	rid, err := primitives.SymmDecrypt(encryptedRid, m.secureKey, m.secureIV)
	if err != nil || len(rid) == 0 {
		m.Clear()
		return nil
	}
	m.encryptedRid = append([]byte(nil), encryptedRid...)
	m.rid = rid
	return rid
}

// Clear zeroes every field except Kind, transitioning the packet back
// to empty.
func (m *MidPacket) Clear() {
	primitives.Zero(m.secureKey[:])
	primitives.Zero(m.secureIV[:])
	m.secureKey = [primitives.KeySize]byte{}
	m.secureIV = [primitives.IVSize]byte{}
	m.name = nil
	m.username = ""
	m.pin = ""
	m.smidAppendix = ""
	m.encryptedRid = nil
	m.salt = nil
	m.rid = nil
}

// Equals compares every field, including Kind. This is total-field
// equality, intended for test assertions; it is not constant time.
func (m *MidPacket) Equals(other *MidPacket) bool {
	if other == nil {
		return false
	}
	return m.kind == other.kind &&
		string(m.name) == string(other.name) &&
		m.username == other.username &&
		m.pin == other.pin &&
		m.smidAppendix == other.smidAppendix &&
		string(m.encryptedRid) == string(other.encryptedRid) &&
		string(m.salt) == string(other.salt) &&
		m.secureKey == other.secureKey &&
		m.secureIV == other.secureIV &&
		string(m.rid) == string(other.rid)
}
