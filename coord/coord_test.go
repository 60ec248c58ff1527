package coord

import (
	"math/big"
	"testing"
)

func TestRoundTrip(t *testing.T) {
	points := []int{0, 1, 2, 3, 255, 256, 1024, 32767, 32768, 65535}
	for _, x := range points {
		for _, y := range points {
			c := FromXY(x, y)
			gx, gy := ToXY(c)
			if gx != x || gy != y {
				t.Fatalf("round trip (%d,%d) -> %d -> (%d,%d)", x, y, c, gx, gy)
			}
		}
	}
}

func TestPacking(t *testing.T) {
	if c := FromXY(2, 3); c != Coord(2+3<<16) {
		t.Fatalf("FromXY(2,3) = %d", c)
	}
	if c := FromXY(0, 0); c != 0 {
		t.Fatalf("FromXY(0,0) = %d", c)
	}
}

func TestWraparound(t *testing.T) {
	// out-of-range components wrap at 16 bits, same as the contract
	if c := FromXY(65536, 0); c != 0 {
		t.Fatalf("x=65536 should wrap to 0, got %d", c)
	}
	if c := FromXY(65537, 1); c != FromXY(1, 1) {
		t.Fatalf("x=65537 should wrap to 1, got %s", c)
	}
}

func TestParse(t *testing.T) {
	want := FromXY(3, 2)
	cases := []struct {
		name string
		in   interface{}
	}{
		{"int", int(3 + 2<<16)},
		{"int64", int64(3 + 2<<16)},
		{"uint64", uint64(3 + 2<<16)},
		{"float64", float64(3 + 2<<16)},
		{"decimal string", "131075"},
		{"hex string", "0x20003"},
		{"big.Int", big.NewInt(3 + 2<<16)},
	}
	for _, tc := range cases {
		got, err := Parse(tc.in)
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if got != want {
			t.Fatalf("%s: got %d want %d", tc.name, got, want)
		}
	}
}

func TestParseErrors(t *testing.T) {
	if _, err := Parse("not a number"); err == nil {
		t.Fatal("expected error for garbage string")
	}
	if _, err := Parse(struct{}{}); err == nil {
		t.Fatal("expected error for unsupported type")
	}
	if _, err := Parse((*big.Int)(nil)); err == nil {
		t.Fatal("expected error for nil big.Int")
	}
}

func TestString(t *testing.T) {
	if s := FromXY(3, 1).String(); s != "3:1" {
		t.Fatalf("String() = %q", s)
	}
}
