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

package controller

import (
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/necos-project/netslice-ctlr/pkg/manager"
	"github.com/necos-project/netslice-ctlr/pkg/mesh"
	"github.com/necos-project/netslice-ctlr/pkg/ports"
	sliceStore "github.com/necos-project/netslice-ctlr/pkg/store"
)

// Priority of mesh forwarding rules on the programmable switch
const meshRulePriority = 1

// VlanCoordinator defines the control-VLAN side of a slice operation
type VlanCoordinator interface {
	// Removes a port from the control VLAN; no-op for unmapped ports
	ExcludeFromControl(port uint32) error
	// Adds a port back to the control VLAN; no-op for unmapped ports
	RestoreToControl(port uint32) error
}

// Controller manages the slice lifecycle: it translates logical members
// into physical ports, installs/removes the full-mesh forwarding rules, and
// coordinates the companion control-VLAN change, in that order. There is no
// transactional guarantee across the two switches: a failed create leaves
// state partially applied, and callers converge by retrying DeleteSlice,
// which tolerates partial or absent prior state.
type Controller struct {
	fClient  manager.Client
	vCoord   VlanCoordinator
	registry *ports.Registry
	// Store for tracking active slices
	store *sliceStore.Store
	// One operation drives one pass to completion before the next starts
	opMutex sync.Mutex
}

// NewController creates a Controller object
func NewController(
	fClient manager.Client,
	vCoord VlanCoordinator,
	registry *ports.Registry,
) *Controller {
	return &Controller{
		fClient:  fClient,
		vCoord:   vCoord,
		registry: registry,
		store:    sliceStore.NewStore(),
	}
}

// CreateSlice grants the named members mutual forwarding and pulls them out
// of the control VLAN. Creating an id that already exists is flagged and
// overwrites the previous registration.
func (ctlr *Controller) CreateSlice(sliceID string, members []string) error {
	ctlr.opMutex.Lock()
	defer ctlr.opMutex.Unlock()

	if ctlr.store.Exists(sliceID) {
		log.Warningf("Slice (%s) already exists", sliceID)
	}
	ctlr.store.Put(sliceID, members)

	// Fail fast on unknown members; nothing external has happened yet
	memberPorts, err := ctlr.resolveMembers(members)
	if err != nil {
		return err
	}

	for _, port := range memberPorts {
		if owner := ctlr.portOwner(port, sliceID); owner != "" {
			log.Warningf("Port %d is already claimed by slice (%s)", port, owner)
		}
	}

	for _, rule := range mesh.BuildMeshRules(memberPorts) {
		// Pull the port out of the control VLAN before meshing it, so
		// there is no window where it is both control-reachable and
		// slice-forwarding
		if err := ctlr.vCoord.ExcludeFromControl(rule.MatchPort); err != nil {
			return err
		}
		if err := ctlr.fClient.SubmitRule(rule.MatchPort, rule.ActionPorts, meshRulePriority); err != nil {
			return err
		}
	}

	log.Infof("Created slice %s with members %v", sliceID, members)
	return nil
}

// DeleteSlice tears down the members' forwarding rules and restores them to
// the control VLAN. Deleting an unregistered slice is flagged but member
// cleanup still runs, so delete doubles as the convergence path after a
// partially applied create.
func (ctlr *Controller) DeleteSlice(sliceID string, members []string) error {
	ctlr.opMutex.Lock()
	defer ctlr.opMutex.Unlock()

	if !ctlr.store.Exists(sliceID) {
		log.Warningf("Slice (%s) does not exist", sliceID)
	}
	ctlr.store.Remove(sliceID)

	memberPorts, err := ctlr.resolveMembers(members)
	if err != nil {
		return err
	}

	for _, match := range mesh.BuildRemovalMatches(memberPorts) {
		// Restore control reachability before tearing the mesh rule down:
		// fail toward excluded-from-slice, included-in-control
		if err := ctlr.vCoord.RestoreToControl(match.InPort); err != nil {
			return err
		}
		if err := ctlr.fClient.RemoveRule(match.InPort); err != nil {
			return err
		}
	}

	log.Infof("Deleted slice %s with members %v", sliceID, members)
	return nil
}

// ActiveSlices returns the ids of all registered slices
func (ctlr *Controller) ActiveSlices() []string {
	return ctlr.store.SliceIDs()
}

// Translates each logical member name to its physical port
func (ctlr *Controller) resolveMembers(members []string) ([]uint32, error) {
	memberPorts := make([]uint32, 0, len(members))
	for _, member := range members {
		port, err := ctlr.registry.ResolvePort(member)
		if err != nil {
			return nil, err
		}
		memberPorts = append(memberPorts, port)
	}
	return memberPorts, nil
}

// Returns the id of another registered slice currently claiming a port.
// Overlap is not prevented, only surfaced.
func (ctlr *Controller) portOwner(port uint32, selfID string) string {
	for _, id := range ctlr.store.SliceIDs() {
		if id == selfID {
			continue
		}
		for _, member := range ctlr.store.Members(id) {
			if p, err := ctlr.registry.ResolvePort(member); err == nil && p == port {
				return id
			}
		}
	}
	return ""
}
