package bigint

import "testing"

func TestParseRoundTrip(t *testing.T) {
	for _, s := range []string{"0", "1", "4294967295", "18446744073709551615", "9223372036854775807"} {
		v, ok := Parse(s, 10)
		if !ok {
			t.Fatalf("Parse(%q) failed", s)
		}
		if got := v.String(); got != s {
			t.Errorf("Parse(%q).String() = %q", s, got)
		}
	}
}

func TestFitsSigned(t *testing.T) {
	max, _ := Parse("2147483647", 10)
	if !max.Fits(4, true) {
		t.Error("2147483647 should fit in i32")
	}
	over, _ := Parse("2147483648", 10)
	if over.Fits(4, true) {
		t.Error("2147483648 should not fit in i32")
	}
}

func TestFitsUnsigned(t *testing.T) {
	max, _ := Parse("4294967295", 10)
	if !max.Fits(4, false) {
		t.Error("4294967295 should fit in u32")
	}
	neg := FromInt64(-1)
	if neg.Fits(4, false) {
		t.Error("-1 should not fit in u32")
	}
}

func TestDivModByZero(t *testing.T) {
	one := FromInt64(1)
	zero := FromInt64(0)
	if _, _, ok := one.DivMod(zero); ok {
		t.Error("DivMod by zero should report !ok")
	}
}

func TestDivModTruncates(t *testing.T) {
	seven := FromInt64(7)
	two := FromInt64(2)
	q, r, ok := seven.DivMod(two)
	if !ok || q.String() != "3" || r.String() != "1" {
		t.Errorf("7/2 = %s rem %s, want 3 rem 1", q, r)
	}
}

func TestMulLargeUsesBigfftPath(t *testing.T) {
	// Construct two operands each comfortably above bigfftThreshold
	// 64-bit words (128 * 64 = 8192 bits), and confirm their product
	// matches the same power of two built by repeated doubling.
	base := FromInt64(1)
	shift, _ := Parse("1", 10)
	for i := 0; i < 9000; i++ {
		shift = shift.Add(shift)
	}
	got := shift.Mul(shift)
	want := base
	for i := 0; i < 18000; i++ {
		want = want.Add(want)
	}
	if got.Cmp(want) != 0 {
		t.Errorf("large Mul mismatch: got %s want %s", got, want)
	}
}

func TestNegFlipsSign(t *testing.T) {
	five := FromInt64(5)
	if five.Neg().Sign() != -1 {
		t.Error("Neg of positive should be negative")
	}
}
