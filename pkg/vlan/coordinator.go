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

package vlan

import (
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/necos-project/netslice-ctlr/pkg/ports"
)

// ErrControlPlaneUnreachable is returned when the command channel to the
// legacy switch could not connect, authenticate, or execute
var ErrControlPlaneUnreachable = errors.New("control plane unreachable")

// Struct to allow NewCoordinator to receive all or some parameters
type CoordinatorParams struct {
	// Control VLAN identifier on the legacy switch
	VlanID int
	// Minimum wait after sending a command block, giving the remote CLI
	// time to apply configuration before the session drops
	SettleDelay time.Duration
	Dial        DialFunc
}

// Coordinator keeps a port's control-VLAN membership and its slice
// membership mutually exclusive: ports are removed from the control VLAN
// while they forward slice traffic and added back once they stop. Ports
// without a control mapping are left alone.
type Coordinator struct {
	registry *ports.Registry
	params   CoordinatorParams
}

func NewCoordinator(registry *ports.Registry, params *CoordinatorParams) *Coordinator {
	return &Coordinator{
		registry: registry,
		params:   *params,
	}
}

// ExcludeFromControl removes a port from the control VLAN. No-op when the
// port has no control mapping.
func (coord *Coordinator) ExcludeFromControl(port uint32) error {
	ctrlPort, found := coord.registry.ResolveControlPort(port)
	if !found {
		return nil
	}

	log.Infof("Removing port 1/%d from control VLAN %d", ctrlPort, coord.params.VlanID)
	script := fmt.Sprintf(
		"enable\nconfig t\nvlan %d\nno untagged ethernet 1/%d\nwrite memory\nexit\n",
		coord.params.VlanID, ctrlPort)
	return coord.run(script)
}

// RestoreToControl adds a port back to the control VLAN. No-op when the
// port has no control mapping.
func (coord *Coordinator) RestoreToControl(port uint32) error {
	ctrlPort, found := coord.registry.ResolveControlPort(port)
	if !found {
		return nil
	}

	log.Infof("Adding port 1/%d to control VLAN %d", ctrlPort, coord.params.VlanID)
	script := fmt.Sprintf(
		"enable\nconfig t\nvlan %d\nuntagged ethernet 1/%d\nwrite memory\nexit\n",
		coord.params.VlanID, ctrlPort)
	return coord.run(script)
}

// Runs one command block in a scoped session: open, send, settle, close.
// The session is closed on every exit path.
func (coord *Coordinator) run(script string) error {
	sess, err := coord.params.Dial()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrControlPlaneUnreachable, err)
	}

	if err := sess.Send(script); err != nil {
		sess.Close()
		return fmt.Errorf("%w: %v", ErrControlPlaneUnreachable, err)
	}

	// The CLI applies configuration asynchronously; closing too early
	// loses commands
	time.Sleep(coord.params.SettleDelay)

	if err := sess.Close(); err != nil {
		log.Warningf("Error closing switch session: %v", err)
	}
	return nil
}
