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

package manager

// Client defines the interface to the programmable switch's forwarding table
type Client interface {
	// Installs a forwarding rule: traffic arriving on matchPort is sent out
	// every port in actionPorts. Rules have no expiration; they persist
	// until explicitly removed.
	SubmitRule(matchPort uint32, actionPorts []uint32, priority uint16) error
	// Removes any previously installed rule matching traffic that enters
	// matchPort, regardless of the rule's action list
	RemoveRule(matchPort uint32) error
}
