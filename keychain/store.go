package keychain

import (
	"bytes"
	"encoding/binary"
	"errors"
	"sync"

	"github.com/gyoyo/MaidSafe-Passport/codec"
	"github.com/gyoyo/MaidSafe-Passport/fob"
	"github.com/gyoyo/MaidSafe-Passport/passporterr"
	"github.com/gyoyo/MaidSafe-Passport/wire"
)

// ErrPublicIDExists is returned by CreateSelectable when chosenName is
// already pending or confirmed.
var ErrPublicIDExists = errors.New("public id already exists")

// ErrNoSuchPublicID is returned by ConfirmSelectable when chosenName has
// no pending entry.
var ErrNoSuchPublicID = errors.New("no such public id")

// ErrIncompleteBundle is returned by Confirm when the pending bundle is
// missing a fob.
var ErrIncompleteBundle = errors.New("pending bundle is incomplete")

// Store holds a pending Bundle and any pending named SelectableBundles
// until the caller confirms them, at which point they replace whatever
// was previously confirmed. This mirrors Passport's
// pending_fobs_/confirmed_fobs_ split: a caller can mint a fresh bundle
// without disturbing the currently-active one until the mint is known
// good.
//
// Store is the one type in this repo that guards its state with a lock;
// every method takes that lock, matching spec.md §5's "no operation mutates shared
// state" for every other component.
type Store struct {
	mu sync.Mutex

	pending   *Bundle
	confirmed *Bundle

	pendingSelectable   map[string]*SelectableBundle
	confirmedSelectable map[string]*SelectableBundle
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{
		pendingSelectable:   make(map[string]*SelectableBundle),
		confirmedSelectable: make(map[string]*SelectableBundle),
	}
}

// CreateBundle mints a fresh Bundle into the pending slot, matching
// Passport::CreateFobs.
func (s *Store) CreateBundle() error {
	b, err := NewBundle()
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = b
	return nil
}

// Confirm moves the pending bundle into the confirmed slot, matching
// Passport::ConfirmFobs. Returns ErrIncompleteBundle if no complete
// pending bundle exists.
func (s *Store) Confirm() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.pending.complete() {
		return ErrIncompleteBundle
	}
	s.confirmed = s.pending
	s.pending = nil
	return nil
}

// Confirmed returns the currently confirmed bundle, or nil.
func (s *Store) Confirmed() *Bundle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.confirmed
}

// CreateSelectable mints a fresh SelectableBundle for chosenName into
// the pending set, matching Passport::CreateSelectableFobPair.
func (s *Store) CreateSelectable(chosenName string) error {
	b, err := NewSelectableBundle([]byte(chosenName))
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.pendingSelectable[chosenName]; ok {
		return ErrPublicIDExists
	}
	if _, ok := s.confirmedSelectable[chosenName]; ok {
		return ErrPublicIDExists
	}
	s.pendingSelectable[chosenName] = b
	return nil
}

// ConfirmSelectable moves chosenName's pending SelectableBundle into the
// confirmed set, matching Passport::ConfirmSelectableFobPair.
func (s *Store) ConfirmSelectable(chosenName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.pendingSelectable[chosenName]
	if !ok {
		return ErrNoSuchPublicID
	}
	if _, exists := s.confirmedSelectable[chosenName]; exists {
		return ErrPublicIDExists
	}
	s.confirmedSelectable[chosenName] = b
	delete(s.pendingSelectable, chosenName)
	return nil
}

// DeleteSelectable removes chosenName from both the pending and
// confirmed sets, matching Passport::DeleteSelectableFobPair.
func (s *Store) DeleteSelectable(chosenName string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pendingSelectable, chosenName)
	delete(s.confirmedSelectable, chosenName)
}

// ConfirmedSelectable returns the confirmed SelectableBundle for
// chosenName, and whether it exists.
func (s *Store) ConfirmedSelectable(chosenName string) (*SelectableBundle, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.confirmedSelectable[chosenName]
	return b, ok
}

func appendLP(buf, field []byte) []byte {
	return wire.AppendPrefixed(buf, field)
}

func readLP(r *bytes.Reader) ([]byte, error) {
	return wire.ReadPrefixed(r)
}

// Serialise encodes the confirmed bundle and every confirmed selectable
// pair as one self-contained record, matching Passport::Serialise.
// Returns an error if there is no complete confirmed bundle.
func (s *Store) Serialise() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.confirmed.complete() {
		return nil, ErrIncompleteBundle
	}

	var buf []byte
	for _, f := range []*fob.Fob{
		s.confirmed.Anmid,
		s.confirmed.Ansmid,
		s.confirmed.Antmid,
		s.confirmed.Anmaid,
		s.confirmed.Maid,
		s.confirmed.Pmid,
	} {
		buf = appendLP(buf, codec.EncodeFob(f))
	}

	buf = binary.AppendUvarint(buf, uint64(len(s.confirmedSelectable)))
	for name, sb := range s.confirmedSelectable {
		buf = appendLP(buf, []byte(name))
		buf = appendLP(buf, codec.EncodeFob(sb.Anmpid))
		buf = appendLP(buf, codec.EncodeFob(sb.Mpid))
	}
	return buf, nil
}

// Parse decodes a record produced by Serialise into a fresh Store with
// the bundle and selectable pairs already confirmed, matching
// Passport::Parse.
func Parse(data []byte) (*Store, error) {
	r := bytes.NewReader(data)

	decodeNext := func(tag fob.Tag) (*fob.Fob, error) {
		raw, err := readLP(r)
		if err != nil {
			return nil, &passporterr.FobParsingError{Reason: "truncated passport record: " + err.Error()}
		}
		return codec.DecodeFob(tag, raw)
	}

	anmid, err := decodeNext(fob.Anmid)
	if err != nil {
		return nil, err
	}
	ansmid, err := decodeNext(fob.Ansmid)
	if err != nil {
		return nil, err
	}
	antmid, err := decodeNext(fob.Antmid)
	if err != nil {
		return nil, err
	}
	anmaid, err := decodeNext(fob.Anmaid)
	if err != nil {
		return nil, err
	}
	maid, err := decodeNext(fob.Maid)
	if err != nil {
		return nil, err
	}
	pmid, err := decodeNext(fob.Pmid)
	if err != nil {
		return nil, err
	}

	s := NewStore()
	s.confirmed = &Bundle{
		Anmid: anmid, Ansmid: ansmid, Antmid: antmid,
		Anmaid: anmaid, Maid: maid, Pmid: pmid,
	}

	count, err := binary.ReadUvarint(r)
	if err != nil {
		return nil, &passporterr.FobParsingError{Reason: "truncated selectable count: " + err.Error()}
	}
	for i := uint64(0); i < count; i++ {
		nameBytes, err := readLP(r)
		if err != nil {
			return nil, &passporterr.FobParsingError{Reason: "truncated public id: " + err.Error()}
		}
		anmpidBytes, err := readLP(r)
		if err != nil {
			return nil, &passporterr.FobParsingError{Reason: "truncated anmpid: " + err.Error()}
		}
		mpidBytes, err := readLP(r)
		if err != nil {
			return nil, &passporterr.FobParsingError{Reason: "truncated mpid: " + err.Error()}
		}
		anmpid, err := codec.DecodeFob(fob.Anmpid, anmpidBytes)
		if err != nil {
			return nil, err
		}
		mpid, err := codec.DecodeFob(fob.Mpid, mpidBytes)
		if err != nil {
			return nil, err
		}
		s.confirmedSelectable[string(nameBytes)] = &SelectableBundle{Anmpid: anmpid, Mpid: mpid}
	}

	if r.Len() != 0 {
		return nil, &passporterr.FobParsingError{Reason: "trailing bytes after passport record"}
	}
	return s, nil
}
