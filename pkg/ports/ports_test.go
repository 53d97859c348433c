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
	"io/ioutil"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Registry tests", func() {
	var reg *Registry
	BeforeEach(func() {
		var err error
		reg, err = NewRegistry(DefaultConfig())
		Expect(err).ToNot(HaveOccurred())
	})

	It("resolves logical resources to physical ports", func() {
		port, err := reg.ResolvePort("icarus1")
		Expect(err).ToNot(HaveOccurred())
		Expect(port).To(Equal(uint32(1)))

		port, err = reg.ResolvePort("entry2")
		Expect(err).ToNot(HaveOccurred())
		Expect(port).To(Equal(uint32(13)))
	})

	It("fails on unknown resources", func() {
		_, err := reg.ResolvePort("icarus99")
		Expect(err).To(HaveOccurred())
		Expect(errors.Is(err, ErrUnknownResource)).To(BeTrue())
	})

	It("resolves control ports", func() {
		ctrlPort, found := reg.ResolveControlPort(1)
		Expect(found).To(BeTrue())
		Expect(ctrlPort).To(Equal(7))

		ctrlPort, found = reg.ResolveControlPort(3)
		Expect(found).To(BeTrue())
		Expect(ctrlPort).To(Equal(3))
	})

	It("signals ports outside the control VLAN via the bool", func() {
		_, found := reg.ResolveControlPort(9)
		Expect(found).To(BeFalse())
		_, found = reg.ResolveControlPort(13)
		Expect(found).To(BeFalse())
	})
})

var _ = Describe("Config tests", func() {
	It("rejects an empty resource map", func() {
		cfg := &Config{}
		Expect(cfg.Validate()).To(HaveOccurred())
	})

	It("rejects duplicate physical ports", func() {
		cfg := &Config{
			Resources: map[string]uint32{"a": 1, "b": 1},
		}
		err := cfg.Validate()
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("share physical port 1"))
	})

	It("rejects dangling control mappings", func() {
		cfg := &Config{
			Resources:    map[string]uint32{"a": 1},
			ControlPorts: map[uint32]int{3: 3},
		}
		err := cfg.Validate()
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("unmapped physical port 3"))
	})

	It("accepts the default config", func() {
		Expect(DefaultConfig().Validate()).ToNot(HaveOccurred())
	})

	It("loads a config file", func() {
		dir, err := ioutil.TempDir("", "ports")
		Expect(err).ToNot(HaveOccurred())
		defer os.RemoveAll(dir)

		path := filepath.Join(dir, "ports.yaml")
		data := []byte(
			"resources:\n" +
				"  node1: 2\n" +
				"  node2: 4\n" +
				"controlPorts:\n" +
				"  2: 11\n")
		Expect(ioutil.WriteFile(path, data, 0644)).To(Succeed())

		cfg, err := LoadConfig(path)
		Expect(err).ToNot(HaveOccurred())

		reg, err := NewRegistry(cfg)
		Expect(err).ToNot(HaveOccurred())

		port, err := reg.ResolvePort("node1")
		Expect(err).ToNot(HaveOccurred())
		Expect(port).To(Equal(uint32(2)))

		ctrlPort, found := reg.ResolveControlPort(2)
		Expect(found).To(BeTrue())
		Expect(ctrlPort).To(Equal(11))
	})

	It("fails on a missing config file", func() {
		_, err := LoadConfig("/does/not/exist.yaml")
		Expect(err).To(HaveOccurred())
	})
})
