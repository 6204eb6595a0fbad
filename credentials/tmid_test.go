package credentials

import "testing"

func TestNewTmidPopulatesFields(t *testing.T) {
	tm := NewTmid("alice", "1234", false, []byte("master-password"), []byte("the master data"))
	if tm.Kind() != KindTmid {
		t.Fatalf("Kind() = %s, want Tmid", tm.Kind())
	}
	if tm.Name() == nil {
		t.Fatal("Name() is nil for valid inputs")
	}
	if tm.EncryptedMasterData() == nil {
		t.Fatal("EncryptedMasterData() is nil for valid inputs")
	}
}

func TestNewStmidHasDistinctKind(t *testing.T) {
	stm := NewTmid("alice", "1234", true, []byte("pw"), []byte("data"))
	if stm.Kind() != KindStmid {
		t.Fatalf("Kind() = %s, want Stmid", stm.Kind())
	}
}

func TestNewTmidEmptyInputsYieldEmptyPacket(t *testing.T) {
	if got := NewTmid("", "1234", false, []byte("pw"), []byte("data")); got.Name() != nil {
		t.Fatal("expected empty packet for empty username")
	}
	if got := NewTmid("alice", "1234", false, nil, []byte("data")); got.Name() != nil {
		t.Fatal("expected empty packet for empty password")
	}
	if got := NewTmid("alice", "1234", false, []byte("pw"), nil); got.Name() != nil {
		t.Fatal("expected empty packet for empty plaintext master data")
	}
}

func TestTmidDecryptMasterDataRoundTrip(t *testing.T) {
	plaintext := []byte("the actual master data payload")
	original := NewTmid("alice", "1234", false, []byte("master-password"), plaintext)
	if original.Name() == nil {
		t.Fatal("setup: original packet did not populate")
	}

	sibling := NewTmidInitialised("alice", "1234", false)
	recovered := sibling.DecryptMasterData([]byte("master-password"), original.EncryptedMasterData())
	if string(recovered) != string(plaintext) {
		t.Fatalf("DecryptMasterData = %q, want %q", recovered, plaintext)
	}
}

func TestTmidDecryptMasterDataWrongPasswordFails(t *testing.T) {
	plaintext := []byte("the actual master data payload")
	original := NewTmid("alice", "1234", false, []byte("master-password"), plaintext)

	sibling := NewTmidInitialised("alice", "1234", false)
	recovered := sibling.DecryptMasterData([]byte("wrong-password"), original.EncryptedMasterData())
	if recovered != nil {
		t.Fatal("expected DecryptMasterData to fail with the wrong password")
	}
	if sibling.Username() != "" {
		t.Fatal("expected packet to reset to empty after a failed decrypt")
	}
}

func TestNewTmidInitialisedSetsRidFromPin(t *testing.T) {
	t1 := NewTmidInitialised("alice", "1234", false)
	t2 := NewTmidInitialised("bob", "1234", false)
	if string(t1.Rid()) != string(t2.Rid()) {
		t.Fatal("rid should depend only on pin, not username")
	}
	if t1.Rid() == nil {
		t.Fatal("expected rid to be set")
	}
}

func TestTmidClear(t *testing.T) {
	tm := NewTmid("alice", "1234", false, []byte("pw"), []byte("data"))
	tm.Clear()
	if tm.Name() != nil || tm.Username() != "" || tm.Pin() != "" || tm.EncryptedMasterData() != nil {
		t.Fatal("Clear left non-zero fields")
	}
	if tm.Kind() != KindTmid {
		t.Fatal("Clear must not change Kind")
	}
}

func TestTmidEqualsAndConstantTimeEquals(t *testing.T) {
	a := NewTmid("alice", "1234", false, []byte("pw"), []byte("data"))
	b := NewTmid("alice", "1234", false, []byte("pw"), []byte("data"))
	if !a.Equals(b) {
		t.Fatal("packets built from identical inputs should be Equals")
	}
	if !a.ConstantTimeEquals(b) {
		t.Fatal("packets built from identical inputs should be ConstantTimeEquals")
	}

	c := NewTmid("alice", "1234", false, []byte("pw"), []byte("different data"))
	if a.Equals(c) {
		t.Fatal("packets with different plaintext should not be Equals")
	}
	if a.ConstantTimeEquals(c) {
		t.Fatal("packets with different plaintext should not be ConstantTimeEquals")
	}
}

func TestObfuscationRoundsBranch(t *testing.T) {
	if got := obfuscationRounds(0); got != 0 {
		t.Fatalf("obfuscationRounds(0) = %d, want 0", got)
	}
	if got := obfuscationRounds(1); got != 1 {
		t.Fatalf("obfuscationRounds(1) = %d, want 1", got)
	}
	if got := obfuscationRounds(10); got != 5 {
		t.Fatalf("obfuscationRounds(10) = %d, want 5", got)
	}
}

func TestLittleEndianUint32(t *testing.T) {
	b := []byte{0x01, 0x00, 0x00, 0x00}
	if got := littleEndianUint32(b); got != 1 {
		t.Fatalf("littleEndianUint32 = %d, want 1", got)
	}
	b2 := []byte{0x00, 0x01, 0x00, 0x00}
	if got := littleEndianUint32(b2); got != 256 {
		t.Fatalf("littleEndianUint32 = %d, want 256", got)
	}
}
