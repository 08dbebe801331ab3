package server

import "net/http"

type endpointInfo struct {
	Path        string   `json:"path"`
	Methods     []string `json:"methods"`
	Description string   `json:"description"`
}

type discoveryResponse struct {
	Name        string         `json:"name"`
	Version     string         `json:"version"`
	Description string         `json:"description"`
	Endpoints   []endpointInfo `json:"endpoints"`
}

func (s *Server) handleDiscovery(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	respondOK(w, reqID, discoveryResponse{
		Name:        "lottsched API",
		Version:     "v1",
		Description: "Lottery scheduling simulator: run workloads and compare observed CPU shares with ticket shares",
		Endpoints: []endpointInfo{
			{"/api/v1/runs", []string{"GET", "POST"}, "Simulation runs. POST takes a YAML or JSON workload; ?seed= and ?quanta= override it"},
			{"/api/v1/runs/{id}", []string{"GET", "DELETE"}, "Single run with per-unit shares"},
			{"/api/v1/policies", []string{"GET"}, "Registered scheduling policies"},
			{"/api/v1/health", []string{"GET"}, "Server health and version"},
			{"/metrics", []string{"GET"}, "Draw, redistribution and transfer counters (Prometheus text)"},
		},
	})
}
