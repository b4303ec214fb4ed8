package beacon

import "testing"

func TestPercentEncode_LeavesUnreservedCharactersAlone(t *testing.T) {
	in := "Abc123-._~"
	if got := percentEncode(in); got != in {
		t.Errorf("got %q, want %q unchanged", got, in)
	}
}

func TestPercentEncode_UsesUppercaseHex(t *testing.T) {
	got := percentEncode(" ")
	if got != "%20" {
		t.Errorf("got %q, want %%20", got)
	}
}

func TestPercentEncode_EncodesAmpersandAndEquals(t *testing.T) {
	got := percentEncode("a=b&c")
	if got != "a%3Db%26c" {
		t.Errorf("got %q, want a%%3Db%%26c", got)
	}
}

func TestPercentEncode_EncodesUTF8Bytes(t *testing.T) {
	got := percentEncode("é")
	if got != "%C3%A9" {
		t.Errorf("got %q, want %%C3%%A9", got)
	}
}

func TestPercentEncode_EmptyStringIsEmpty(t *testing.T) {
	if got := percentEncode(""); got != "" {
		t.Errorf("got %q, want empty", got)
	}
}
