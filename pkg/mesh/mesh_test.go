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

package mesh

import (
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Mesh tests", func() {
	It("builds a rule per member excluding itself", func() {
		rules := BuildMeshRules([]uint32{1, 3, 5})
		Expect(rules).To(HaveLen(3))
		Expect(rules[0]).To(Equal(RuleSpec{MatchPort: 1, ActionPorts: []uint32{3, 5}}))
		Expect(rules[1]).To(Equal(RuleSpec{MatchPort: 3, ActionPorts: []uint32{1, 5}}))
		Expect(rules[2]).To(Equal(RuleSpec{MatchPort: 5, ActionPorts: []uint32{1, 3}}))
	})

	It("builds the two-member mesh", func() {
		rules := BuildMeshRules([]uint32{1, 3})
		Expect(rules).To(Equal([]RuleSpec{
			{MatchPort: 1, ActionPorts: []uint32{3}},
			{MatchPort: 3, ActionPorts: []uint32{1}},
		}))
	})

	It("meshes a single member to nowhere", func() {
		rules := BuildMeshRules([]uint32{7})
		Expect(rules).To(HaveLen(1))
		Expect(rules[0].MatchPort).To(Equal(uint32(7)))
		Expect(rules[0].ActionPorts).To(BeEmpty())
	})

	It("builds nothing for no members", func() {
		Expect(BuildMeshRules(nil)).To(BeEmpty())
		Expect(BuildRemovalMatches(nil)).To(BeEmpty())
	})

	It("builds one removal match per member", func() {
		matches := BuildRemovalMatches([]uint32{1, 3})
		Expect(matches).To(Equal([]Match{{InPort: 1}, {InPort: 3}}))
	})
})
