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

package store

import (
	"sort"
	"sync"
)

// Store is the table of active slices, keyed by slice id. Slice state is
// process-lifetime-scoped; nothing here is persisted. A single writer may
// mutate the table while readers run concurrently.
type Store struct {
	mutex  sync.RWMutex
	slices map[string][]string
}

func NewStore() *Store {
	var st Store
	st.slices = make(map[string][]string)
	return &st
}

// Returns whether a slice id is registered
func (st *Store) Exists(sliceID string) bool {
	st.mutex.RLock()
	defer st.mutex.RUnlock()

	_, found := st.slices[sliceID]
	return found
}

// Registers a slice and its member set. Putting an existing id overwrites
// its members; the caller decides whether that is a conflict worth flagging.
func (st *Store) Put(sliceID string, members []string) {
	st.mutex.Lock()
	defer st.mutex.Unlock()

	copied := make([]string, len(members))
	copy(copied, members)
	st.slices[sliceID] = copied
}

// Removes a slice. Removing an absent id is a no-op.
func (st *Store) Remove(sliceID string) {
	st.mutex.Lock()
	defer st.mutex.Unlock()

	delete(st.slices, sliceID)
}

// Returns the members of a slice, sorted for stable comparison
func (st *Store) Members(sliceID string) []string {
	st.mutex.RLock()
	defer st.mutex.RUnlock()

	members, found := st.slices[sliceID]
	if !found {
		return nil
	}
	copied := make([]string, len(members))
	copy(copied, members)
	sort.Strings(copied)
	return copied
}

// Returns the ids of all registered slices, sorted
func (st *Store) SliceIDs() []string {
	st.mutex.RLock()
	defer st.mutex.RUnlock()

	var ids []string
	for id := range st.slices {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Count returns the number of registered slices
func (st *Store) Count() int {
	st.mutex.RLock()
	defer st.mutex.RUnlock()

	return len(st.slices)
}
