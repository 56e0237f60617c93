package yeelight

import "testing"

func TestLookupSpec(t *testing.T) {
	spec, ok := LookupSpec("color")
	if !ok {
		t.Fatal("color model missing from table")
	}
	if !spec.Color {
		t.Fatal("color model should support color")
	}
	if spec.ColorTempMin <= 0 || spec.ColorTempMax <= spec.ColorTempMin {
		t.Fatalf("implausible color temperature range [%d,%d]", spec.ColorTempMin, spec.ColorTempMax)
	}

	if _, ok := LookupSpec("made-up-model"); ok {
		t.Fatal("unknown model resolved")
	}
}

func TestDefaultSpec(t *testing.T) {
	spec := DefaultSpec()
	if spec.ColorTempMin != 1700 || spec.ColorTempMax != 6500 {
		t.Fatalf("default color temperature range [%d,%d]", spec.ColorTempMin, spec.ColorTempMax)
	}
	if !spec.NightLight {
		t.Fatal("default spec must declare night light support")
	}
}

func TestModelSpecsConsistency(t *testing.T) {
	for _, model := range Models() {
		spec, ok := LookupSpec(model)
		if !ok {
			t.Fatalf("model %q listed but not resolvable", model)
		}
		if spec.Model != model {
			t.Fatalf("model %q: spec carries %q", model, spec.Model)
		}
		if spec.ColorTempMax < spec.ColorTempMin {
			t.Fatalf("model %q: inverted color temperature range [%d,%d]",
				model, spec.ColorTempMin, spec.ColorTempMax)
		}
	}
}
