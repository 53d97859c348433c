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

// Package mesh synthesizes the forwarding rules that realize a full mesh
// among the member ports of a slice: one rule per port, forwarding traffic
// arriving on that port out every other member port.
package mesh

// RuleSpec is a (match-port, action-port-list) forwarding directive.
// RuleSpecs are derived from a slice's member set during a create call and
// never persisted on their own.
type RuleSpec struct {
	MatchPort   uint32
	ActionPorts []uint32
}

// Match identifies previously installed rules by their in-port, which is
// sufficient for the switch to remove a rule regardless of its action list
type Match struct {
	InPort uint32
}

// BuildMeshRules computes the complete forwarding state for a slice with
// the given member ports: exactly one RuleSpec per port, each forwarding to
// every member port except itself
func BuildMeshRules(members []uint32) []RuleSpec {
	rules := make([]RuleSpec, 0, len(members))
	for _, inPort := range members {
		actions := make([]uint32, 0, len(members)-1)
		for _, outPort := range members {
			if outPort != inPort {
				actions = append(actions, outPort)
			}
		}
		rules = append(rules, RuleSpec{
			MatchPort:   inPort,
			ActionPorts: actions,
		})
	}
	return rules
}

// BuildRemovalMatches computes the matches needed to tear down a slice's
// forwarding state, one per member port
func BuildRemovalMatches(members []uint32) []Match {
	matches := make([]Match, 0, len(members))
	for _, inPort := range members {
		matches = append(matches, Match{InPort: inPort})
	}
	return matches
}
