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

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/necos-project/netslice-ctlr/pkg/ports"
	"github.com/necos-project/netslice-ctlr/pkg/vlan"
)

type sliceCall struct {
	sliceID string
	members []string
}

// Mocks the slice lifecycle engine
type mockDriver struct {
	created   []sliceCall
	deleted   []sliceCall
	createErr error
	deleteErr error
}

func (drv *mockDriver) CreateSlice(sliceID string, members []string) error {
	if drv.createErr != nil {
		return drv.createErr
	}
	drv.created = append(drv.created, sliceCall{sliceID, members})
	return nil
}

func (drv *mockDriver) DeleteSlice(sliceID string, members []string) error {
	if drv.deleteErr != nil {
		return drv.deleteErr
	}
	drv.deleted = append(drv.deleted, sliceCall{sliceID, members})
	return nil
}

var _ = Describe("REST client tests", func() {
	var driver *mockDriver
	var rClient *RESTClient

	do := func(method, path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		rec := httptest.NewRecorder()
		rClient.Handler().ServeHTTP(rec, req)
		return rec
	}

	BeforeEach(func() {
		driver = &mockDriver{}
		rClient = NewRESTClient(driver, &RESTParams{ListenAddr: ":0"})
		Expect(rClient).ToNot(BeNil())
	})

	It("creates a slice", func() {
		rec := do("POST", "/networkmanager/create_slice/",
			`{"slice_id": "slice1", "ports": ["icarus1", "icarus5"]}`)
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(driver.created).To(Equal([]sliceCall{
			{sliceID: "slice1", members: []string{"icarus1", "icarus5"}},
		}))
	})

	It("deletes a slice", func() {
		rec := do("DELETE", "/networkmanager/delete_slice/",
			`{"slice_id": "slice1", "ports": ["icarus1", "icarus5"]}`)
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(driver.deleted).To(Equal([]sliceCall{
			{sliceID: "slice1", members: []string{"icarus1", "icarus5"}},
		}))
	})

	It("rejects malformed bodies", func() {
		rec := do("POST", "/networkmanager/create_slice/", `{not json`)
		Expect(rec.Code).To(Equal(http.StatusBadRequest))
		Expect(driver.created).To(BeEmpty())
	})

	It("rejects a missing slice id", func() {
		rec := do("POST", "/networkmanager/create_slice/", `{"ports": ["icarus1"]}`)
		Expect(rec.Code).To(Equal(http.StatusBadRequest))
		Expect(driver.created).To(BeEmpty())
	})

	It("maps unknown resources to a client error", func() {
		driver.createErr = fmt.Errorf("%w: %q", ports.ErrUnknownResource, "bogus")
		rec := do("POST", "/networkmanager/create_slice/",
			`{"slice_id": "slice1", "ports": ["bogus"]}`)
		Expect(rec.Code).To(Equal(http.StatusBadRequest))
	})

	It("maps an unreachable control plane to a gateway error", func() {
		driver.createErr = fmt.Errorf("%w: connection refused", vlan.ErrControlPlaneUnreachable)
		rec := do("POST", "/networkmanager/create_slice/",
			`{"slice_id": "slice1", "ports": ["icarus1"]}`)
		Expect(rec.Code).To(Equal(http.StatusBadGateway))
	})

	It("maps rule submission failures to a gateway error", func() {
		driver.deleteErr = fmt.Errorf("rule removal for port 1 failed: broken pipe")
		rec := do("DELETE", "/networkmanager/delete_slice/",
			`{"slice_id": "slice1", "ports": ["icarus1"]}`)
		Expect(rec.Code).To(Equal(http.StatusBadGateway))
	})

	It("rejects unsupported methods", func() {
		rec := do("GET", "/networkmanager/create_slice/", "")
		Expect(rec.Code).To(Equal(http.StatusMethodNotAllowed))
	})
})
