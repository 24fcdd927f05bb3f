package mux

import (
	"net/http"

	"variate-server/pkg/source"
)

type healthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

func (m *Mux) getHealth() http.HandlerFunc {
	payload := healthResponse{
		Status:  "OK",
		Version: m.version,
	}

	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, payload)
	}
}

type sourceResponse struct {
	Names   []string `json:"names"`
	Default string   `json:"default"`
}

func (m *Mux) getSource() http.HandlerFunc {
	payload := sourceResponse{
		Names:   source.Names(),
		Default: source.DefaultName,
	}

	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, payload)
	}
}
