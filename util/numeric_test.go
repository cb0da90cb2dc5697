package util

import "testing"

func TestAbs(t *testing.T) {
	// int
	if Abs(-5) != 5 {
		t.Error("Abs(-5) should be 5")
	}
	if Abs(5) != 5 {
		t.Error("Abs(5) should be 5")
	}

	// int32
	if Abs(int32(-100)) != 100 {
		t.Error("Abs(int32(-100)) should be 100")
	}

	// int16
	if Abs(int16(-32)) != 32 {
		t.Error("Abs(int16(-32)) should be 32")
	}

	// float32
	if Abs(float32(-3.14)) != float32(3.14) {
		t.Error("Abs(float32(-3.14)) should be 3.14")
	}
}

func TestClamp(t *testing.T) {
	if Clamp(5, 0, 10) != 5 {
		t.Error("Clamp(5, 0, 10) should be 5")
	}
	if Clamp(-5, 0, 10) != 0 {
		t.Error("Clamp(-5, 0, 10) should be 0")
	}
	if Clamp(15, 0, 10) != 10 {
		t.Error("Clamp(15, 0, 10) should be 10")
	}
	if Clamp(0.5, 0.0, 1.0) != 0.5 {
		t.Error("Clamp(0.5, 0, 1) should be 0.5")
	}
}

func TestSgn(t *testing.T) {
	if Sgn(5.0) != 1.0 {
		t.Error("Sgn(5.0) should be 1.0")
	}
	if Sgn(-5.0) != -1.0 {
		t.Error("Sgn(-5.0) should be -1.0")
	}
	if Sgn(0.0) != 0.0 {
		t.Error("Sgn(0.0) should be 0.0")
	}
}
