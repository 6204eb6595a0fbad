package keychain

import (
	"testing"

	"github.com/gyoyo/MaidSafe-Passport/primitives"
)

func TestNewBundleIsComplete(t *testing.T) {
	b, err := NewBundle()
	if err != nil {
		t.Fatal(err)
	}
	if !b.complete() {
		t.Fatal("NewBundle produced an incomplete bundle")
	}
}

func TestNewSelectableBundleNameIsChosenName(t *testing.T) {
	sb, err := NewSelectableBundle([]byte("alice"))
	if err != nil {
		t.Fatal(err)
	}
	if sb.Mpid == nil || sb.Anmpid == nil {
		t.Fatal("NewSelectableBundle left a nil fob")
	}
	if sb.Mpid.Name() != primitives.Hash([]byte("alice")) {
		t.Fatal("Mpid name is not H(chosen_name)")
	}
}

func TestStoreCreateAndConfirmBundle(t *testing.T) {
	s := NewStore()
	if err := s.Confirm(); err != ErrIncompleteBundle {
		t.Fatalf("Confirm on empty store = %v, want ErrIncompleteBundle", err)
	}
	if err := s.CreateBundle(); err != nil {
		t.Fatal(err)
	}
	if err := s.Confirm(); err != nil {
		t.Fatal(err)
	}
	if s.Confirmed() == nil {
		t.Fatal("Confirmed() is nil after a successful Confirm")
	}
}

func TestStoreSelectableLifecycle(t *testing.T) {
	s := NewStore()
	if err := s.CreateSelectable("alice"); err != nil {
		t.Fatal(err)
	}
	if err := s.CreateSelectable("alice"); err != ErrPublicIDExists {
		t.Fatalf("second CreateSelectable = %v, want ErrPublicIDExists", err)
	}
	if err := s.ConfirmSelectable("bob"); err != ErrNoSuchPublicID {
		t.Fatalf("ConfirmSelectable on unknown name = %v, want ErrNoSuchPublicID", err)
	}
	if err := s.ConfirmSelectable("alice"); err != nil {
		t.Fatal(err)
	}
	if _, ok := s.ConfirmedSelectable("alice"); !ok {
		t.Fatal("expected alice to be confirmed")
	}
	s.DeleteSelectable("alice")
	if _, ok := s.ConfirmedSelectable("alice"); ok {
		t.Fatal("expected alice to be removed after DeleteSelectable")
	}
}

func TestStoreSerialiseParseRoundTrip(t *testing.T) {
	s := NewStore()
	if err := s.CreateBundle(); err != nil {
		t.Fatal(err)
	}
	if err := s.Confirm(); err != nil {
		t.Fatal(err)
	}
	if err := s.CreateSelectable("alice"); err != nil {
		t.Fatal(err)
	}
	if err := s.ConfirmSelectable("alice"); err != nil {
		t.Fatal(err)
	}

	data, err := s.Serialise()
	if err != nil {
		t.Fatal(err)
	}

	parsed, err := Parse(data)
	if err != nil {
		t.Fatal(err)
	}
	if parsed.Confirmed().Pmid.Name() != s.Confirmed().Pmid.Name() {
		t.Fatal("parsed bundle does not match the original")
	}
	sb, ok := parsed.ConfirmedSelectable("alice")
	if !ok {
		t.Fatal("parsed store is missing the confirmed selectable pair")
	}
	original, _ := s.ConfirmedSelectable("alice")
	if sb.Mpid.Name() != original.Mpid.Name() {
		t.Fatal("parsed selectable pair does not match the original")
	}
}

func TestStoreSerialiseRejectsIncompleteBundle(t *testing.T) {
	s := NewStore()
	if _, err := s.Serialise(); err != ErrIncompleteBundle {
		t.Fatalf("Serialise on empty store = %v, want ErrIncompleteBundle", err)
	}
}
