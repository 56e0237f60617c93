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

package adapter

import (
	"fmt"

	"github.com/edgeo/drivers/yeelight/yeelight"
)

// SpecOrigin records how a capability spec was obtained
type SpecOrigin int

const (
	// SpecDiscovered means the spec came from the device's model table
	SpecDiscovered SpecOrigin = iota
	// SpecDefault means discovery failed and the built-in fallback is in use
	SpecDefault
)

func (o SpecOrigin) String() string {
	switch o {
	case SpecDiscovered:
		return "discovered"
	case SpecDefault:
		return "default"
	default:
		return fmt.Sprintf("spec-origin(%d)", int(o))
	}
}

// Capability is the device capability spec with its origin tag. Downstream
// code consumes both variants uniformly.
type Capability struct {
	yeelight.ModelSpec
	Origin SpecOrigin
}

// DiscoveredCapability wraps a successfully discovered model spec
func DiscoveredCapability(spec yeelight.ModelSpec) Capability {
	return Capability{ModelSpec: spec, Origin: SpecDiscovered}
}

// FallbackCapability returns the built-in default spec, used whenever
// capability discovery fails so that initialization never depends on the
// optional capability query succeeding.
func FallbackCapability() Capability {
	return Capability{ModelSpec: yeelight.DefaultSpec(), Origin: SpecDefault}
}
