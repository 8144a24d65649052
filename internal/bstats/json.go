/*
Copyright (c) The wisun-br-linux Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package bstats

import (
	"encoding/json"
	"fmt"
	"net/http"

	log "github.com/sirupsen/logrus"
)

// JSONServer serves a Counters registry's current snapshot as JSON
// over HTTP, grounded on ptp4u stats' JSONStats/Start/handleRequest
// shape.
type JSONServer struct {
	counters *Counters
}

// NewJSONServer builds a JSONServer over counters.
func NewJSONServer(counters *Counters) *JSONServer {
	return &JSONServer{counters: counters}
}

// Start runs the HTTP server on monitoringPort. It blocks; run it in
// its own goroutine.
func (s *JSONServer) Start(monitoringPort int) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleRequest)
	addr := fmt.Sprintf(":%d", monitoringPort)
	log.Infof("starting bstats json server on %s", addr)
	return http.ListenAndServe(addr, mux)
}

func (s *JSONServer) handleRequest(w http.ResponseWriter, _ *http.Request) {
	js, err := json.Marshal(s.counters.Snapshot())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write(js); err != nil {
		log.Errorf("bstats: failed to reply: %v", err)
	}
}
