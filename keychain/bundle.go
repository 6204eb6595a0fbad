// Package keychain composes fob.Fob values into the key-lifecycle
// bundles a caller actually mints and carries around: the six-fob chain
// behind a storage identity, and any number of named public messaging
// identities. This is grounded on
// original_source/src/maidsafe/passport/detail/passport.cc's Passport
// type, which spec.md's distillation left out of the core but which the
// GLOSSARY already assumes exists above it.
package keychain

import (
	"github.com/gyoyo/MaidSafe-Passport/fob"
)

// Bundle is the six self-/parent-signed fobs a storage identity is built
// from: four self-signing roots (Anmid, Ansmid, Antmid, Anmaid), the last
// of which heads the Anmaid->Maid->Pmid signing chain.
type Bundle struct {
	Anmid  *fob.Fob
	Ansmid *fob.Fob
	Antmid *fob.Fob
	Anmaid *fob.Fob
	Maid   *fob.Fob
	Pmid   *fob.Fob
}

// NewBundle mints all six fobs in signing order: the four roots, then
// Maid (signed by Anmaid), then Pmid (signed by Maid). Matches
// Passport::CreateFobs.
func NewBundle() (*Bundle, error) {
	anmid, err := fob.NewAnmid()
	if err != nil {
		return nil, err
	}
	ansmid, err := fob.NewAnsmid()
	if err != nil {
		return nil, err
	}
	antmid, err := fob.NewAntmid()
	if err != nil {
		return nil, err
	}
	anmaid, err := fob.NewAnmaid()
	if err != nil {
		return nil, err
	}
	maid, err := fob.NewMaid(anmaid)
	if err != nil {
		return nil, err
	}
	pmid, err := fob.NewPmid(maid)
	if err != nil {
		return nil, err
	}
	return &Bundle{
		Anmid:  anmid,
		Ansmid: ansmid,
		Antmid: antmid,
		Anmaid: anmaid,
		Maid:   maid,
		Pmid:   pmid,
	}, nil
}

// complete reports whether every fob in the bundle is present, mirroring
// Passport::NoFobsNull.
func (b *Bundle) complete() bool {
	return b != nil &&
		b.Anmid != nil && b.Ansmid != nil && b.Antmid != nil &&
		b.Anmaid != nil && b.Maid != nil && b.Pmid != nil
}

// SelectableBundle is a named public messaging identity: an Anmpid root
// plus the Mpid it signs, whose name is the chosen string itself.
type SelectableBundle struct {
	Anmpid *fob.Fob
	Mpid   *fob.Fob
}

// NewSelectableBundle mints an Anmpid root and the Mpid it signs for
// chosenName. Matches Passport::CreateSelectableFobPair.
func NewSelectableBundle(chosenName []byte) (*SelectableBundle, error) {
	anmpid, err := fob.NewAnmpid()
	if err != nil {
		return nil, err
	}
	mpid, err := fob.NewMpid(chosenName, anmpid)
	if err != nil {
		return nil, err
	}
	return &SelectableBundle{Anmpid: anmpid, Mpid: mpid}, nil
}
