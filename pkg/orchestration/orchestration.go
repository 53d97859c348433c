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

package orchestration

// SliceDriver defines the slice lifecycle operations the front end drives
type SliceDriver interface {
	CreateSlice(sliceID string, members []string) error
	DeleteSlice(sliceID string, members []string) error
}

// Defines the interface the request front end should implement
type Client interface {
	// Runs the client, serving slice requests until stopCh closes
	Run(stopCh <-chan struct{}) error
}
