package adapter

import (
	"context"
	"fmt"
	"strconv"

	"github.com/edgeo/drivers/yeelight/yeelight"
)

// Abstract field names exposed through the registry
const (
	FieldState        = "state"
	FieldBrightness   = "brightness"
	FieldColor        = "color"
	FieldSaturation   = "saturation"
	FieldTemp         = "temp"
	FieldNightLight   = "night_light"
	FieldBgPower      = "bg_power"
	FieldBgBright     = "bg_bright"
	FieldBgColor      = "bg_color"
	FieldBgSaturation = "bg_saturation"
	FieldBgTemp       = "bg_temp"
)

// peerFunc resolves another field's current value during a composed write
type peerFunc func(name string) (string, error)

// binding ties one abstract field to its raw device key, bounds, decode rule
// and write strategy. The strategy returns the raw value to store in the
// state cache after the device accepted the command.
type binding struct {
	field string
	key   string
	high  string
	low   string
	kind  FieldKind

	// dynamicBounds fields take their bounds from the capability spec
	// instead of the literals above
	dynamicBounds bool

	// decode converts the raw device value to the field representation;
	// nil means identity
	decode func(raw string) string

	send func(ctx context.Context, dev Device, peer peerFunc, value string) (string, error)
}

func (b *binding) decodeValue(raw string) string {
	if b.decode == nil {
		return raw
	}
	return b.decode(raw)
}

// bounds returns the registration bounds, substituting capability values for
// dynamic fields
func (b *binding) bounds(cap Capability) (high, low string) {
	if b.dynamicBounds {
		return strconv.Itoa(cap.ColorTempMax), strconv.Itoa(cap.ColorTempMin)
	}
	return b.high, b.low
}

func decodeOnOff(raw string) string {
	if raw == "on" {
		return "1"
	}
	return "0"
}

func parseBinaryValue(value string) (bool, error) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return false, fmt.Errorf("%w: %q is not binary", ErrInvalidValue, value)
	}
	return n == 1, nil
}

func parseNumericValue(value string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not numeric", ErrInvalidValue, value)
	}
	return n, nil
}

func parsePeerValue(peer peerFunc, name string) (int, error) {
	v, err := peer(name)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w: field %q holds non-numeric %q", ErrInvalidValue, name, v)
	}
	return n, nil
}

// nightLightBinding is the conditional auxiliary field, registered only when
// the capability spec declares moonlight support.
func nightLightBinding() *binding {
	return &binding{
		field: FieldNightLight,
		key:   yeelight.PropActiveMode,
		high:  "1",
		low:   "0",
		kind:  FieldBinary,
		send: func(ctx context.Context, dev Device, _ peerFunc, value string) (string, error) {
			on, err := parseBinaryValue(value)
			if err != nil {
				return "", err
			}
			mode := yeelight.PowerModeNormal
			if on {
				mode = yeelight.PowerModeMoonlight
			}
			if err := dev.SetPowerMode(ctx, mode); err != nil {
				return "", err
			}
			return value, nil
		},
	}
}

// fieldBindings is the fixed translation table between abstract fields and
// raw device properties. Registration is gated on the raw key being present
// in the first property fetch, so models without a background channel simply
// never expose the bg_ fields.
func fieldBindings() []*binding {
	return []*binding{
		{
			field:  FieldState,
			key:    yeelight.PropPower,
			high:   "1",
			low:    "0",
			kind:   FieldBinary,
			decode: decodeOnOff,
			send: func(ctx context.Context, dev Device, _ peerFunc, value string) (string, error) {
				on, err := parseBinaryValue(value)
				if err != nil {
					return "", err
				}
				if err := dev.SetPower(ctx, on); err != nil {
					return "", err
				}
				return yeelight.PowerValue(on), nil
			},
		},
		{
			field:  FieldBgPower,
			key:    yeelight.PropBgPower,
			high:   "1",
			low:    "0",
			kind:   FieldBinary,
			decode: decodeOnOff,
			send: func(ctx context.Context, dev Device, _ peerFunc, value string) (string, error) {
				on, err := parseBinaryValue(value)
				if err != nil {
					return "", err
				}
				if err := dev.BackgroundCommand(ctx, yeelight.MethodBgSetPower, yeelight.PowerValue(on)); err != nil {
					return "", err
				}
				return yeelight.PowerValue(on), nil
			},
		},
		{
			field: FieldBrightness,
			key:   yeelight.PropCurrentBrightness,
			high:  strconv.Itoa(yeelight.BrightnessMax),
			low:   strconv.Itoa(yeelight.BrightnessMin),
			kind:  FieldNumeric,
			send: func(ctx context.Context, dev Device, _ peerFunc, value string) (string, error) {
				level, err := parseNumericValue(value)
				if err != nil {
					return "", err
				}
				if err := dev.SetBrightness(ctx, level); err != nil {
					return "", err
				}
				return strconv.Itoa(level), nil
			},
		},
		{
			field: FieldBgBright,
			key:   yeelight.PropBgBright,
			high:  strconv.Itoa(yeelight.BrightnessMax),
			low:   strconv.Itoa(yeelight.BrightnessMin),
			kind:  FieldNumeric,
			send: func(ctx context.Context, dev Device, _ peerFunc, value string) (string, error) {
				level, err := parseNumericValue(value)
				if err != nil {
					return "", err
				}
				if err := dev.BackgroundCommand(ctx, yeelight.MethodBgSetBright, level); err != nil {
					return "", err
				}
				return strconv.Itoa(level), nil
			},
		},
		{
			field: FieldColor,
			key:   yeelight.PropHue,
			high:  strconv.Itoa(yeelight.HueMax),
			low:   strconv.Itoa(yeelight.HueMin),
			kind:  FieldNumeric,
			send: func(ctx context.Context, dev Device, peer peerFunc, value string) (string, error) {
				hue, err := parseNumericValue(value)
				if err != nil {
					return "", err
				}
				// The device command takes hue and saturation together;
				// compose with the saturation field's current value.
				sat, err := parsePeerValue(peer, FieldSaturation)
				if err != nil {
					return "", err
				}
				if err := dev.SetHSV(ctx, hue, sat); err != nil {
					return "", err
				}
				return strconv.Itoa(hue), nil
			},
		},
		{
			field: FieldBgColor,
			key:   yeelight.PropBgHue,
			high:  strconv.Itoa(yeelight.HueMax),
			low:   strconv.Itoa(yeelight.HueMin),
			kind:  FieldNumeric,
			send: func(ctx context.Context, dev Device, peer peerFunc, value string) (string, error) {
				hue, err := parseNumericValue(value)
				if err != nil {
					return "", err
				}
				sat, err := parsePeerValue(peer, FieldBgSaturation)
				if err != nil {
					return "", err
				}
				if err := dev.BackgroundCommand(ctx, yeelight.MethodBgSetHSV, hue, sat); err != nil {
					return "", err
				}
				return strconv.Itoa(hue), nil
			},
		},
		{
			field: FieldSaturation,
			key:   yeelight.PropSat,
			high:  strconv.Itoa(yeelight.SatMax),
			low:   strconv.Itoa(yeelight.SatMin),
			kind:  FieldNumeric,
			send: func(ctx context.Context, dev Device, peer peerFunc, value string) (string, error) {
				sat, err := parseNumericValue(value)
				if err != nil {
					return "", err
				}
				hue, err := parsePeerValue(peer, FieldColor)
				if err != nil {
					return "", err
				}
				if err := dev.SetHSV(ctx, hue, sat); err != nil {
					return "", err
				}
				return strconv.Itoa(sat), nil
			},
		},
		{
			field: FieldBgSaturation,
			key:   yeelight.PropBgSat,
			high:  strconv.Itoa(yeelight.SatMax),
			low:   strconv.Itoa(yeelight.SatMin),
			kind:  FieldNumeric,
			send: func(ctx context.Context, dev Device, peer peerFunc, value string) (string, error) {
				sat, err := parseNumericValue(value)
				if err != nil {
					return "", err
				}
				hue, err := parsePeerValue(peer, FieldBgColor)
				if err != nil {
					return "", err
				}
				if err := dev.BackgroundCommand(ctx, yeelight.MethodBgSetHSV, hue, sat); err != nil {
					return "", err
				}
				return strconv.Itoa(sat), nil
			},
		},
		{
			field:         FieldTemp,
			key:           yeelight.PropCt,
			kind:          FieldNumeric,
			dynamicBounds: true,
			send: func(ctx context.Context, dev Device, _ peerFunc, value string) (string, error) {
				kelvin, err := parseNumericValue(value)
				if err != nil {
					return "", err
				}
				// Color temperature only applies in normal mode; leave
				// moonlight first.
				if err := dev.SetPowerMode(ctx, yeelight.PowerModeNormal); err != nil {
					return "", err
				}
				if err := dev.SetColorTemp(ctx, kelvin); err != nil {
					return "", err
				}
				return strconv.Itoa(kelvin), nil
			},
		},
		{
			field: FieldBgTemp,
			key:   yeelight.PropBgCt,
			high:  strconv.Itoa(yeelight.ColorTempMax),
			low:   strconv.Itoa(yeelight.ColorTempMin),
			kind:  FieldNumeric,
			send: func(ctx context.Context, dev Device, _ peerFunc, value string) (string, error) {
				kelvin, err := parseNumericValue(value)
				if err != nil {
					return "", err
				}
				if err := dev.BackgroundCommand(ctx, yeelight.MethodBgSetCtAbx, kelvin); err != nil {
					return "", err
				}
				return strconv.Itoa(kelvin), nil
			},
		},
	}
}
