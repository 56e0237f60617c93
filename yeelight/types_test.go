package yeelight

import (
	"errors"
	"testing"
)

func TestValidateBrightness(t *testing.T) {
	for _, level := range []int{1, 50, 100} {
		if err := ValidateBrightness(level); err != nil {
			t.Fatalf("level %d: %v", level, err)
		}
	}
	for _, level := range []int{0, -1, 101} {
		if err := ValidateBrightness(level); !errors.Is(err, ErrValueOutOfRange) {
			t.Fatalf("level %d: expected ErrValueOutOfRange, got %v", level, err)
		}
	}
}

func TestValidateHSV(t *testing.T) {
	if err := ValidateHSV(359, 100); err != nil {
		t.Fatalf("upper bounds: %v", err)
	}
	if err := ValidateHSV(0, 0); err != nil {
		t.Fatalf("lower bounds: %v", err)
	}
	if err := ValidateHSV(360, 50); !errors.Is(err, ErrValueOutOfRange) {
		t.Fatalf("hue 360: expected ErrValueOutOfRange, got %v", err)
	}
	if err := ValidateHSV(180, 101); !errors.Is(err, ErrValueOutOfRange) {
		t.Fatalf("sat 101: expected ErrValueOutOfRange, got %v", err)
	}
}

func TestValidateColorTemp(t *testing.T) {
	if err := ValidateColorTemp(4000, 1700, 6500); err != nil {
		t.Fatalf("4000K: %v", err)
	}
	if err := ValidateColorTemp(1600, 1700, 6500); !errors.Is(err, ErrValueOutOfRange) {
		t.Fatalf("1600K: expected ErrValueOutOfRange, got %v", err)
	}
}

func TestPowerValue(t *testing.T) {
	if PowerValue(true) != "on" || PowerValue(false) != "off" {
		t.Fatal("unexpected power values")
	}
}

func TestParsePowerMode(t *testing.T) {
	cases := []struct {
		in   string
		want PowerMode
		ok   bool
	}{
		{"moonlight", PowerModeMoonlight, true},
		{"normal", PowerModeNormal, true},
		{"5", PowerModeMoonlight, true},
		{"0", PowerModeLast, true},
		{"daylight", 0, false},
	}
	for _, tc := range cases {
		got, ok := ParsePowerMode(tc.in)
		if ok != tc.ok || (ok && got != tc.want) {
			t.Fatalf("ParsePowerMode(%q) = %v, %v", tc.in, got, ok)
		}
	}
}
