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
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/necos-project/netslice-ctlr/pkg/ports"
	"github.com/necos-project/netslice-ctlr/pkg/vlan"
)

// Struct to allow NewRESTClient to receive all or some parameters
type RESTParams struct {
	ListenAddr string
}

// RESTClient decodes slice requests from the management API and drives the
// slice lifecycle engine, mapping engine errors onto HTTP status codes
type RESTClient struct {
	driver SliceDriver
	params RESTParams
	router *mux.Router
}

// sliceRequest is the wire form of a create/delete request. The member
// list keeps the reference API's field name.
type sliceRequest struct {
	SliceID string   `json:"slice_id"`
	Ports   []string `json:"ports"`
}

func NewRESTClient(driver SliceDriver, params *RESTParams) *RESTClient {
	rClient := &RESTClient{
		driver: driver,
		params: *params,
	}

	router := mux.NewRouter()
	router.HandleFunc("/networkmanager/create_slice/", rClient.createSlice).Methods("POST")
	router.HandleFunc("/networkmanager/delete_slice/", rClient.deleteSlice).Methods("DELETE")
	rClient.router = router

	return rClient
}

// Handler exposes the route table
func (rClient *RESTClient) Handler() http.Handler {
	return rClient.router
}

// Run serves the slice API until stopCh closes or the listener fails
func (rClient *RESTClient) Run(stopCh <-chan struct{}) error {
	server := &http.Server{
		Addr:    rClient.params.ListenAddr,
		Handler: rClient.router,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	log.Infof("Serving slice API on %s", rClient.params.ListenAddr)
	select {
	case err := <-errCh:
		return err
	case <-stopCh:
		return server.Close()
	}
}

func (rClient *RESTClient) createSlice(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeRequest(w, r)
	if !ok {
		return
	}
	writeResult(w, rClient.driver.CreateSlice(req.SliceID, req.Ports))
}

func (rClient *RESTClient) deleteSlice(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeRequest(w, r)
	if !ok {
		return
	}
	writeResult(w, rClient.driver.DeleteSlice(req.SliceID, req.Ports))
}

func decodeRequest(w http.ResponseWriter, r *http.Request) (*sliceRequest, bool) {
	var req sliceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "malformed request body", http.StatusBadRequest)
		return nil, false
	}
	if req.SliceID == "" {
		http.Error(w, "slice_id is required", http.StatusBadRequest)
		return nil, false
	}
	return &req, true
}

// Unknown members are the caller's fault; backend failures are not
func writeResult(w http.ResponseWriter, err error) {
	switch {
	case err == nil:
		w.WriteHeader(http.StatusOK)
	case errors.Is(err, ports.ErrUnknownResource):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, vlan.ErrControlPlaneUnreachable):
		http.Error(w, err.Error(), http.StatusBadGateway)
	default:
		log.Errorf("Slice operation failed: %v", err)
		http.Error(w, err.Error(), http.StatusBadGateway)
	}
}
