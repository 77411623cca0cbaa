package codec_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/polytools/rlfm/internal/codec"
)

func TestDeltaSortedRoundTrip(t *testing.T) {
	xs := make([]int64, 500)
	var v int64
	for i := range xs {
		v += int64(i%7) + 1
		xs[i] = v
	}
	enc := codec.EncodeDeltaSorted(xs)
	got := enc.Decode()
	if diff := cmp.Diff(xs, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestDeltaSortedEmpty(t *testing.T) {
	enc := codec.EncodeDeltaSorted(nil)
	if got := enc.Decode(); got != nil {
		t.Errorf("Decode() on empty input = %v, want nil", got)
	}
}

func TestBitPackedRoundTrip(t *testing.T) {
	xs := []int64{0, 1, 2, 3, 4, 5, 100, 127}
	width := codec.BitWidth(128)
	bp := codec.EncodeBitPacked(xs, width)
	got := bp.Decode()
	if diff := cmp.Diff(xs, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestPhiDaSentinelRoundTrip(t *testing.T) {
	xs := []int64{-1, 0, 5, 41, -1, 99}
	bp := codec.EncodePhiDa(xs, 100)
	got := codec.DecodePhiDa(bp)
	if diff := cmp.Diff(xs, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestBitWidth(t *testing.T) {
	cases := []struct {
		n    int64
		want uint
	}{
		{0, 1}, {1, 1}, {2, 1}, {3, 2}, {4, 2}, {5, 3}, {256, 8}, {257, 9},
	}
	for _, c := range cases {
		if got := codec.BitWidth(c.n); got != c.want {
			t.Errorf("BitWidth(%d) = %d, want %d", c.n, got, c.want)
		}
	}
}

func TestChecksumSensitiveToOrder(t *testing.T) {
	a := []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16}
	b := []byte{16, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 1}
	if codec.Checksum(a) == codec.Checksum(b) {
		t.Error("Checksum did not change when byte order changed")
	}
	if codec.Checksum(a) != codec.Checksum(append([]byte(nil), a...)) {
		t.Error("Checksum not deterministic")
	}
}
