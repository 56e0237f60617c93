package adapter

import (
	"strconv"
	"testing"

	"github.com/edgeo/drivers/yeelight/yeelight"
)

func TestFieldBindingsCoverDeviceKeys(t *testing.T) {
	wantKeys := map[string]string{
		FieldState:        yeelight.PropPower,
		FieldBrightness:   yeelight.PropCurrentBrightness,
		FieldColor:        yeelight.PropHue,
		FieldSaturation:   yeelight.PropSat,
		FieldTemp:         yeelight.PropCt,
		FieldBgPower:      yeelight.PropBgPower,
		FieldBgBright:     yeelight.PropBgBright,
		FieldBgColor:      yeelight.PropBgHue,
		FieldBgSaturation: yeelight.PropBgSat,
		FieldBgTemp:       yeelight.PropBgCt,
	}

	bindings := fieldBindings()
	if len(bindings) != len(wantKeys) {
		t.Fatalf("expected %d bindings, got %d", len(wantKeys), len(bindings))
	}
	seen := map[string]bool{}
	for _, b := range bindings {
		key, ok := wantKeys[b.field]
		if !ok {
			t.Fatalf("unexpected binding field %q", b.field)
		}
		if b.key != key {
			t.Fatalf("field %q: expected key %q, got %q", b.field, key, b.key)
		}
		if seen[b.field] {
			t.Fatalf("duplicate binding for %q", b.field)
		}
		seen[b.field] = true
	}
}

func TestDecodeOnOff(t *testing.T) {
	cases := map[string]string{
		"on":  "1",
		"off": "0",
		"":    "0",
		"1":   "0",
	}
	for raw, want := range cases {
		if got := decodeOnOff(raw); got != want {
			t.Fatalf("decodeOnOff(%q): expected %q, got %q", raw, want, got)
		}
	}
}

func TestBindingDecodeDefaultsToIdentity(t *testing.T) {
	for _, b := range fieldBindings() {
		if b.decode != nil {
			continue
		}
		if got := b.decodeValue("42"); got != "42" {
			t.Fatalf("field %q: identity decode returned %q", b.field, got)
		}
	}
}

func TestBindingBounds(t *testing.T) {
	capability := DiscoveredCapability(yeelight.ModelSpec{
		Model: "ceiling4", ColorTempMin: 2700, ColorTempMax: 6000,
	})

	for _, b := range fieldBindings() {
		high, low := b.bounds(capability)
		if b.dynamicBounds {
			if high != "6000" || low != "2700" {
				t.Fatalf("field %q: expected capability bounds [2700,6000], got [%s,%s]", b.field, low, high)
			}
			continue
		}
		if high != b.high || low != b.low {
			t.Fatalf("field %q: static bounds changed to [%s,%s]", b.field, low, high)
		}
	}
}

func TestNightLightBinding(t *testing.T) {
	b := nightLightBinding()
	if b.field != FieldNightLight || b.key != yeelight.PropActiveMode {
		t.Fatalf("unexpected binding %q/%q", b.field, b.key)
	}
	if b.kind != FieldBinary {
		t.Fatalf("expected binary kind, got %v", b.kind)
	}
	// Raw active_mode is already 0/1; identity decode applies.
	if got := b.decodeValue("1"); got != "1" {
		t.Fatalf("decode: expected 1, got %q", got)
	}
}

func TestParsePeerValue(t *testing.T) {
	peer := func(name string) (string, error) {
		if name == "saturation" {
			return "45", nil
		}
		return "", ErrUnknownField
	}

	n, err := parsePeerValue(peer, "saturation")
	if err != nil || n != 45 {
		t.Fatalf("expected 45, got %d (err %v)", n, err)
	}
	if _, err := parsePeerValue(peer, "missing"); err == nil {
		t.Fatal("expected error for unknown peer")
	}
}

// Every value inside a binding's registered bounds must also pass the
// device command's validator, or a locally valid write would be rejected
// on dispatch and the base-written value dangle until the next poll.
func TestBindingBoundsMatchCommandValidators(t *testing.T) {
	validators := map[string]func(v int) error{
		FieldBrightness: yeelight.ValidateBrightness,
		FieldBgBright:   yeelight.ValidateBrightness,
		FieldColor:      func(v int) error { return yeelight.ValidateHSV(v, 0) },
		FieldBgColor:    func(v int) error { return yeelight.ValidateHSV(v, 0) },
		FieldSaturation: func(v int) error { return yeelight.ValidateHSV(0, v) },
		FieldBgSaturation: func(v int) error {
			return yeelight.ValidateHSV(0, v)
		},
		FieldBgTemp: func(v int) error {
			return yeelight.ValidateColorTemp(v, yeelight.ColorTempMin, yeelight.ColorTempMax)
		},
	}

	for _, b := range fieldBindings() {
		validate, ok := validators[b.field]
		if !ok {
			continue
		}
		for _, bound := range []string{b.low, b.high} {
			v, err := strconv.Atoi(bound)
			if err != nil {
				t.Fatalf("field %q: bound %q not numeric: %v", b.field, bound, err)
			}
			if err := validate(v); err != nil {
				t.Fatalf("field %q: registered bound %d rejected by command validator: %v", b.field, v, err)
			}
		}
	}
}
