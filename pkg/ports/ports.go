/*-
 * Copyright (c) 2019, The NECOS Project Authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *    http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package ports

import (
	"errors"
	"fmt"
)

// ErrUnknownResource is returned when a logical resource name has no
// physical port mapping
var ErrUnknownResource = errors.New("unknown resource")

// Registry holds the static port mappings for one deployment: logical
// resource name to physical port on the programmable switch, and physical
// port to the corresponding port on the legacy switch's control VLAN.
// The mappings are fixed at startup; Registry is safe for concurrent reads.
type Registry struct {
	resources map[string]uint32
	control   map[uint32]int
}

// NewRegistry builds a Registry from a validated Config
func NewRegistry(cfg *Config) (*Registry, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	reg := &Registry{
		resources: make(map[string]uint32),
		control:   make(map[uint32]int),
	}
	for name, port := range cfg.Resources {
		reg.resources[name] = port
	}
	for port, ctrlPort := range cfg.ControlPorts {
		reg.control[port] = ctrlPort
	}
	return reg, nil
}

// ResolvePort translates a logical resource name (e.g. icarus1) to its
// physical port number on the programmable switch
func (reg *Registry) ResolvePort(name string) (uint32, error) {
	port, found := reg.resources[name]
	if !found {
		return 0, fmt.Errorf("%w: %q", ErrUnknownResource, name)
	}
	return port, nil
}

// ResolveControlPort translates a physical port to its port number on the
// legacy switch's control VLAN. A port without a mapping is simply not
// control-VLAN-eligible, so absence is signaled via the bool, not an error.
func (reg *Registry) ResolveControlPort(port uint32) (int, bool) {
	ctrlPort, found := reg.control[port]
	return ctrlPort, found
}
