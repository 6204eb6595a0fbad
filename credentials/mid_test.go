package credentials

import "testing"

func TestNewMidPopulatesFields(t *testing.T) {
	m := NewMid("alice", "1234", "")
	if m.Kind() != KindMid {
		t.Fatalf("Kind() = %s, want Mid", m.Kind())
	}
	if m.Name() == nil {
		t.Fatal("Name() is nil for a valid username/pin")
	}
	if m.Username() != "alice" || m.Pin() != "1234" {
		t.Fatal("username/pin not stored")
	}
}

func TestNewSmidHasDistinctKindAndName(t *testing.T) {
	mid := NewMid("alice", "1234", "")
	smid := NewMid("alice", "1234", "smid-appendix")
	if smid.Kind() != KindSmid {
		t.Fatalf("Kind() = %s, want Smid", smid.Kind())
	}
	if string(mid.Name()) == string(smid.Name()) {
		t.Fatal("Mid and Smid names collided for the same username/pin")
	}
}

func TestNewMidEmptyUsernameOrPinYieldsEmptyPacket(t *testing.T) {
	if got := NewMid("", "1234", ""); got.Name() != nil {
		t.Fatal("expected empty packet for empty username")
	}
	if got := NewMid("alice", "", ""); got.Name() != nil {
		t.Fatal("expected empty packet for empty pin")
	}
}

func TestNewMidRejectsNonNumericPin(t *testing.T) {
	m := NewMid("alice", "not-a-number", "")
	if m.Name() != nil {
		t.Fatal("expected empty packet for a non-numeric pin")
	}
}

func TestSetRidDecryptRidRoundTrip(t *testing.T) {
	sender := NewMid("alice", "1234", "")
	rid := []byte("a session rid value")
	sender.SetRid(rid)
	if sender.EncryptedRid() == nil {
		t.Fatal("SetRid did not store an encrypted rid")
	}

	receiver := NewMid("alice", "1234", "")
	got := receiver.DecryptRid(sender.EncryptedRid())
	if string(got) != string(rid) {
		t.Fatalf("DecryptRid = %q, want %q", got, rid)
	}
}

func TestDecryptRidWrongPinFails(t *testing.T) {
	sender := NewMid("alice", "1234", "")
	sender.SetRid([]byte("a session rid value"))

	receiver := NewMid("alice", "9999", "")
	got := receiver.DecryptRid(sender.EncryptedRid())
	if got != nil {
		t.Fatal("expected DecryptRid to fail with the wrong pin")
	}
	if receiver.Name() != nil {
		t.Fatal("expected packet to reset to empty after a failed decrypt")
	}
}

func TestSetRidEmptyClearsPacket(t *testing.T) {
	m := NewMid("alice", "1234", "")
	m.SetRid(nil)
	if m.Name() != nil || m.Username() != "" {
		t.Fatal("expected SetRid(nil) to clear the packet")
	}
}

func TestMidClear(t *testing.T) {
	m := NewMid("alice", "1234", "")
	m.SetRid([]byte("rid"))
	m.Clear()
	if m.Name() != nil || m.Username() != "" || m.Pin() != "" || m.Rid() != nil || m.EncryptedRid() != nil {
		t.Fatal("Clear left non-zero fields")
	}
	if m.Kind() != KindMid {
		t.Fatal("Clear must not change Kind")
	}
}

func TestMidEquals(t *testing.T) {
	a := NewMid("alice", "1234", "")
	b := NewMid("alice", "1234", "")
	if !a.Equals(b) {
		t.Fatal("two packets built from identical inputs should compare equal")
	}
	a.SetRid([]byte("rid-a"))
	if a.Equals(b) {
		t.Fatal("packets with different rid state should not compare equal")
	}
}
