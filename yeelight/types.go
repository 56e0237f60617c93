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

// Package yeelight provides a client for the Yeelight Wi-Fi LAN control
// protocol used by Yeelight smart bulbs, ceiling lights and lamps.
package yeelight

import (
	"fmt"
	"strconv"
)

// DefaultPort is the standard Yeelight LAN control TCP port
const DefaultPort = 55443

// MaxMessageSize is the maximum accepted length of a single protocol line
const MaxMessageSize = 8192

// PowerMode selects the operating mode when turning the light on
type PowerMode int

const (
	PowerModeLast      PowerMode = 0
	PowerModeNormal    PowerMode = 1
	PowerModeRGB       PowerMode = 2
	PowerModeHSV       PowerMode = 3
	PowerModeColorFlow PowerMode = 4
	PowerModeMoonlight PowerMode = 5
)

func (m PowerMode) String() string {
	names := map[PowerMode]string{
		PowerModeLast:      "last",
		PowerModeNormal:    "normal",
		PowerModeRGB:       "rgb",
		PowerModeHSV:       "hsv",
		PowerModeColorFlow: "color-flow",
		PowerModeMoonlight: "moonlight",
	}
	if name, ok := names[m]; ok {
		return name
	}
	return fmt.Sprintf("power-mode(%d)", int(m))
}

// Effect selects the transition applied to state changes
type Effect string

const (
	EffectSmooth Effect = "smooth"
	EffectSudden Effect = "sudden"
)

// Protocol method names
const (
	MethodGetProp     = "get_prop"
	MethodSetPower    = "set_power"
	MethodSetBright   = "set_bright"
	MethodSetCtAbx    = "set_ct_abx"
	MethodSetHSV      = "set_hsv"
	MethodSetRGB      = "set_rgb"
	MethodSetDefault  = "set_default"
	MethodSetName     = "set_name"
	MethodToggle      = "toggle"
	MethodBgSetPower  = "bg_set_power"
	MethodBgSetBright = "bg_set_bright"
	MethodBgSetCtAbx  = "bg_set_ct_abx"
	MethodBgSetHSV    = "bg_set_hsv"
	MethodBgSetRGB    = "bg_set_rgb"
	MethodBgToggle    = "bg_toggle"
	MethodCronAdd     = "cron_add"
	MethodCronGet     = "cron_get"
	MethodCronDel     = "cron_del"
)

// Property names understood by get_prop. Not every model reports every
// property; unsupported properties come back as empty strings.
const (
	PropPower      = "power"
	PropBright     = "bright"
	PropCt         = "ct"
	PropRGB        = "rgb"
	PropHue        = "hue"
	PropSat        = "sat"
	PropColorMode  = "color_mode"
	PropFlowing    = "flowing"
	PropDelayOff   = "delayoff"
	PropFlowParams = "flow_params"
	PropMusicOn    = "music_on"
	PropName       = "name"
	PropBgPower    = "bg_power"
	PropBgFlowing  = "bg_flowing"
	PropBgCt       = "bg_ct"
	PropBgBright   = "bg_bright"
	PropBgHue      = "bg_hue"
	PropBgSat      = "bg_sat"
	PropBgRGB      = "bg_rgb"
	PropNlBr       = "nl_br"
	PropActiveMode = "active_mode"
)

// PropCurrentBrightness is a synthesized property: the brightness of the
// currently active light source (nl_br in moonlight mode, bright otherwise).
// It never appears on the wire.
const PropCurrentBrightness = "current_brightness"

// TrackedProperties is the full set requested by Client.Properties when no
// explicit list is given.
var TrackedProperties = []string{
	PropPower, PropBright, PropCt, PropRGB, PropHue, PropSat,
	PropColorMode, PropFlowing, PropDelayOff, PropMusicOn, PropName,
	PropBgPower, PropBgFlowing, PropBgCt, PropBgBright, PropBgHue,
	PropBgSat, PropBgRGB, PropNlBr, PropActiveMode,
}

// ColorMode reported by the color_mode property
type ColorMode int

const (
	ColorModeRGB         ColorMode = 1
	ColorModeTemperature ColorMode = 2
	ColorModeHSV         ColorMode = 3
)

func (c ColorMode) String() string {
	switch c {
	case ColorModeRGB:
		return "rgb"
	case ColorModeTemperature:
		return "temperature"
	case ColorModeHSV:
		return "hsv"
	default:
		return fmt.Sprintf("color-mode(%d)", int(c))
	}
}

// Bounds for command arguments
const (
	BrightnessMin = 1
	BrightnessMax = 100
	HueMin        = 0
	HueMax        = 359
	SatMin        = 0
	SatMax        = 100
	ColorTempMin  = 1700
	ColorTempMax  = 6500
)

// ValidateBrightness checks a brightness level for set_bright
func ValidateBrightness(level int) error {
	if level < BrightnessMin || level > BrightnessMax {
		return fmt.Errorf("%w: brightness %d not in [%d,%d]", ErrValueOutOfRange, level, BrightnessMin, BrightnessMax)
	}
	return nil
}

// ValidateHSV checks hue/saturation for set_hsv
func ValidateHSV(hue, sat int) error {
	if hue < HueMin || hue > HueMax {
		return fmt.Errorf("%w: hue %d not in [%d,%d]", ErrValueOutOfRange, hue, HueMin, HueMax)
	}
	if sat < SatMin || sat > SatMax {
		return fmt.Errorf("%w: saturation %d not in [%d,%d]", ErrValueOutOfRange, sat, SatMin, SatMax)
	}
	return nil
}

// ValidateColorTemp checks a color temperature against the given bounds
func ValidateColorTemp(kelvin, min, max int) error {
	if kelvin < min || kelvin > max {
		return fmt.Errorf("%w: color temperature %d not in [%d,%d]", ErrValueOutOfRange, kelvin, min, max)
	}
	return nil
}

// PowerValue converts a boolean power state to its wire representation
func PowerValue(on bool) string {
	if on {
		return "on"
	}
	return "off"
}

// ParsePowerMode maps a power mode name or number to a PowerMode
func ParsePowerMode(s string) (PowerMode, bool) {
	modes := map[string]PowerMode{
		"last":       PowerModeLast,
		"normal":     PowerModeNormal,
		"rgb":        PowerModeRGB,
		"hsv":        PowerModeHSV,
		"color-flow": PowerModeColorFlow,
		"moonlight":  PowerModeMoonlight,
	}
	if m, ok := modes[s]; ok {
		return m, true
	}
	if n, err := strconv.Atoi(s); err == nil && n >= 0 && n <= 5 {
		return PowerMode(n), true
	}
	return 0, false
}
