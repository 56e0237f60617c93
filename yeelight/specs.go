// Copyright 2025 Edgeo SCADA
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package yeelight

// ModelSpec describes the device-specific bounds and optional features of a
// Yeelight model.
type ModelSpec struct {
	Model        string
	ColorTempMin int
	ColorTempMax int
	NightLight   bool
	Color        bool
	Background   bool
}

// modelSpecs is the built-in capability table keyed by the model identifier
// the device reports during pairing. Bounds follow the vendor firmware.
var modelSpecs = map[string]ModelSpec{
	"mono":      {Model: "mono", ColorTempMin: 2700, ColorTempMax: 2700},
	"mono1":     {Model: "mono1", ColorTempMin: 2700, ColorTempMax: 2700},
	"color":     {Model: "color", ColorTempMin: 1700, ColorTempMax: 6500, Color: true},
	"color1":    {Model: "color1", ColorTempMin: 1700, ColorTempMax: 6500, Color: true},
	"color2":    {Model: "color2", ColorTempMin: 2700, ColorTempMax: 6500, Color: true},
	"color4":    {Model: "color4", ColorTempMin: 1700, ColorTempMax: 6500, Color: true},
	"strip1":    {Model: "strip1", ColorTempMin: 1700, ColorTempMax: 6500, Color: true},
	"strip6":    {Model: "strip6", ColorTempMin: 1700, ColorTempMax: 6500, Color: true},
	"ct_bulb":   {Model: "ct_bulb", ColorTempMin: 2700, ColorTempMax: 6500},
	"desklamp":  {Model: "desklamp", ColorTempMin: 2700, ColorTempMax: 6500},
	"bslamp1":   {Model: "bslamp1", ColorTempMin: 1700, ColorTempMax: 6500, Color: true},
	"bslamp2":   {Model: "bslamp2", ColorTempMin: 1700, ColorTempMax: 6500, Color: true, NightLight: true},
	"ceiling1":  {Model: "ceiling1", ColorTempMin: 2700, ColorTempMax: 6500, NightLight: true},
	"ceiling2":  {Model: "ceiling2", ColorTempMin: 2700, ColorTempMax: 6500, NightLight: true},
	"ceiling3":  {Model: "ceiling3", ColorTempMin: 2700, ColorTempMax: 6500, NightLight: true},
	"ceiling4":  {Model: "ceiling4", ColorTempMin: 2700, ColorTempMax: 6500, NightLight: true, Background: true},
	"ceiling10": {Model: "ceiling10", ColorTempMin: 2700, ColorTempMax: 6500, NightLight: true, Background: true},
	"ceiling13": {Model: "ceiling13", ColorTempMin: 2700, ColorTempMax: 6500, NightLight: true},
	"lamp1":     {Model: "lamp1", ColorTempMin: 2600, ColorTempMax: 5000},
	"lamp15":    {Model: "lamp15", ColorTempMin: 1700, ColorTempMax: 6500, Color: true, Background: true},
}

// DefaultSpec is the hard-coded fallback used when the model is unknown or
// capability discovery fails. It is deliberately permissive so that a device
// with an unrecognized model remains controllable.
func DefaultSpec() ModelSpec {
	return ModelSpec{
		Model:        "default",
		ColorTempMin: 1700,
		ColorTempMax: 6500,
		NightLight:   true,
	}
}

// LookupSpec returns the capability spec for a model identifier
func LookupSpec(model string) (ModelSpec, bool) {
	spec, ok := modelSpecs[model]
	return spec, ok
}

// Models returns the list of known model identifiers
func Models() []string {
	out := make([]string, 0, len(modelSpecs))
	for m := range modelSpecs {
		out = append(out, m)
	}
	return out
}
