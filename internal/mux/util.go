package mux

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/sirupsen/logrus"

	"variate-server/pkg/checkpoint"
	"variate-server/pkg/session"
	"variate-server/pkg/source"
	"variate-server/pkg/variate"
)

// parseCount reads the `n` query parameter
func (m *Mux) parseCount(r *http.Request) (int, error) {
	nStr := r.FormValue("n")
	if nStr == "" {
		return 1, nil
	}

	n, err := strconv.Atoi(nStr)
	if err != nil {
		return 0, err
	}

	return m.checkCount(n)
}

func (m *Mux) checkCount(n int) (int, error) {
	if n < 0 {
		return 0, errors.New("n cannot be less than zero")
	}

	if n > m.config.maxBatch {
		return 0, fmt.Errorf("n cannot be greater than %d", m.config.maxBatch)
	}

	return n, nil
}

func decodeRequest(w http.ResponseWriter, r *http.Request, payload interface{}) bool {
	if ct := r.Header.Get("Content-Type"); ct != "application/json" && ct != "text/json" {
		writeJSONError(w, http.StatusUnsupportedMediaType, nil)
		return false
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSONError(w, http.StatusBadRequest, err)
		return false
	}

	return true
}

func writeJSON(w http.ResponseWriter, statusCode int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logrus.WithError(err).Error("could not write JSON response")
	}
}

type errorResponse struct {
	Message    string `json:"message"`
	StatusCode int    `json:"statusCode"`
}

// statusCodeForError maps generator, source and store errors onto HTTP status codes
func statusCodeForError(err error) int {
	var mismatch *variate.StateMismatchError

	switch {
	case errors.As(err, &mismatch):
		return http.StatusConflict
	case errors.Is(err, checkpoint.ErrNotFound), errors.Is(err, session.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, session.ErrTooManySessions):
		return http.StatusTooManyRequests
	case errors.Is(err, checkpoint.ErrInvalidName),
		errors.Is(err, source.ErrNotRepeatable),
		errors.Is(err, source.ErrUnknownSource):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	writeJSONError(w, statusCodeForError(err), err)
}

func writeJSONError(w http.ResponseWriter, statusCode int, err error) {
	var msg string

	if statusCode < 500 && err != nil {
		msg = err.Error()
	} else {
		msg = http.StatusText(statusCode)
	}

	if statusCode >= 500 {
		logrus.WithField("statusCode", statusCode).Error(err)
	}

	writeJSON(w, statusCode, errorResponse{
		Message:    msg,
		StatusCode: statusCode,
	})
}
