package alphabet_test

import (
	"testing"

	"github.com/polytools/rlfm/alphabet"
)

func TestEncodeDecode(t *testing.T) {
	cases := []struct {
		symbol byte
		code   uint8
	}{
		{'$', 0}, {'A', 1}, {'C', 2}, {'G', 3}, {'T', 4}, {'N', 5},
	}
	for _, c := range cases {
		code, err := alphabet.Encode(c.symbol)
		if err != nil {
			t.Errorf("unexpected error encoding %q: %v", c.symbol, err)
		}
		if code != c.code {
			t.Errorf("Encode(%q) = %d, want %d", c.symbol, code, c.code)
		}
		if got := alphabet.Symbol(code); got != c.symbol {
			t.Errorf("Symbol(%d) = %q, want %q", code, got, c.symbol)
		}
	}

	if _, err := alphabet.Encode('X'); err == nil {
		t.Error("expected error encoding symbol not in alphabet, got nil")
	}
}

func TestEncodeString(t *testing.T) {
	codes, err := alphabet.EncodeString("ACGTN")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []uint8{1, 2, 3, 4, 5}
	for i := range want {
		if codes[i] != want[i] {
			t.Errorf("codes[%d] = %d, want %d", i, codes[i], want[i])
		}
	}
	if _, err := alphabet.EncodeString("ACX"); err == nil {
		t.Error("expected error for invalid byte, got nil")
	}
}

func TestDecodeString(t *testing.T) {
	got := alphabet.DecodeString([]uint8{0, 1, 2, 3, 4, 5})
	if got != "$ACGTN" {
		t.Errorf("DecodeString = %q, want %q", got, "$ACGTN")
	}
}

func TestCheck(t *testing.T) {
	if i := alphabet.Check("ACGTN"); i != -1 {
		t.Errorf("Check(valid) = %d, want -1", i)
	}
	if i := alphabet.Check("ACxTN"); i != 2 {
		t.Errorf("Check(invalid) = %d, want 2", i)
	}
}

func TestComplement(t *testing.T) {
	cases := []struct{ c, rc uint8 }{
		{0, 0}, {1, 4}, {2, 3}, {3, 2}, {4, 1}, {5, 5},
	}
	for _, tc := range cases {
		if got := alphabet.Complement(tc.c); got != tc.rc {
			t.Errorf("Complement(%d) = %d, want %d", tc.c, got, tc.rc)
		}
		// complement is an involution
		if got := alphabet.Complement(tc.rc); got != tc.c {
			t.Errorf("Complement(Complement(%d)) = %d, want %d", tc.c, got, tc.c)
		}
	}
}

func TestBuildAcc(t *testing.T) {
	// BWT over nt6: one $, two A, one C, three G, zero T, one N
	counts := [alphabet.Size]int64{1, 2, 1, 3, 0, 1}
	acc := alphabet.BuildAcc(counts)

	want := alphabet.Acc{0, 1, 3, 4, 7, 7, 8}
	if acc != want {
		t.Errorf("BuildAcc = %v, want %v", acc, want)
	}
	if acc.Len() != 8 {
		t.Errorf("Len() = %d, want 8", acc.Len())
	}

	for c := 0; c < alphabet.Size; c++ {
		if acc[c] >= acc[c+1] {
			continue
		}
		if got := acc.CharAt(acc[c]); got != uint8(c) {
			t.Errorf("CharAt(%d) = %d, want %d", acc[c], got, c)
		}
		if got := acc.CharAt(acc[c+1] - 1); got != uint8(c) {
			t.Errorf("CharAt(%d) = %d, want %d", acc[c+1]-1, got, c)
		}
	}
}
