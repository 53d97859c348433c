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
	"fmt"
	"io/ioutil"

	yaml "gopkg.in/yaml.v2"
)

// Config is the on-disk form of the port mappings
type Config struct {
	// Logical resource name to physical port on the programmable switch
	Resources map[string]uint32 `yaml:"resources"`
	// Physical port to port number on the legacy switch's control VLAN.
	// Only ports that also sit on the control VLAN have an entry.
	ControlPorts map[uint32]int `yaml:"controlPorts"`
}

// DefaultConfig returns the mappings for the reference deployment: the
// Icarus bare-metal nodes on the Pronto switch and their Brocade ports
func DefaultConfig() *Config {
	return &Config{
		Resources: map[string]uint32{
			"icarus1": 1,
			"icarus5": 3,
			"icarus8": 5,
			"icarus9": 7,
			"entry1":  9,
			"entry2":  13,
		},
		ControlPorts: map[uint32]int{
			1: 7,
			3: 3,
			5: 9,
			7: 5,
		},
	}
}

// LoadConfig reads a Config from a YAML file
func LoadConfig(path string) (*Config, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read port config: %v", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("could not parse port config: %v", err)
	}
	return &cfg, nil
}

// Validate checks the mappings before first use: every resource needs a
// port, no two resources may share a physical port, and every control
// mapping must refer to a mapped physical port
func (cfg *Config) Validate() error {
	if len(cfg.Resources) == 0 {
		return fmt.Errorf("port config defines no resources")
	}

	seen := make(map[uint32]string)
	for name, port := range cfg.Resources {
		if prev, dup := seen[port]; dup {
			return fmt.Errorf(
				"resources %q and %q share physical port %d", prev, name, port)
		}
		seen[port] = name
	}

	for port := range cfg.ControlPorts {
		if _, found := seen[port]; !found {
			return fmt.Errorf(
				"control mapping references unmapped physical port %d", port)
		}
	}
	return nil
}
