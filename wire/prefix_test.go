package wire

import (
	"bytes"
	"testing"
)

func TestAppendReadPrefixedRoundTrip(t *testing.T) {
	var buf []byte
	buf = AppendPrefixed(buf, []byte("first"))
	buf = AppendPrefixed(buf, []byte(""))
	buf = AppendPrefixed(buf, []byte("third"))

	r := bytes.NewReader(buf)
	for _, want := range []string{"first", "", "third"} {
		got, err := ReadPrefixed(r)
		if err != nil {
			t.Fatal(err)
		}
		if string(got) != want {
			t.Fatalf("ReadPrefixed = %q, want %q", got, want)
		}
	}
	if r.Len() != 0 {
		t.Fatal("trailing bytes after reading every field")
	}
}

func TestReadPrefixedRejectsTruncatedField(t *testing.T) {
	buf := AppendPrefixed(nil, []byte("hello"))
	r := bytes.NewReader(buf[:len(buf)-2])
	if _, err := ReadPrefixed(r); err == nil {
		t.Fatal("expected error reading a truncated field")
	}
}
