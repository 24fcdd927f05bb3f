package mux

import (
	"net/http"

	gmux "github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"variate-server/internal/jwt"
	"variate-server/pkg/session"
	"variate-server/pkg/variate"
)

type sessionResponse struct {
	UUID        string       `json:"uuid"`
	Token       string       `json:"token,omitempty"`
	Info        variate.Info `json:"info"`
	Initialized bool         `json:"initialized"`
	Checkpoints int          `json:"checkpoints"`
}

type seedRequest struct {
	// Seed re-initializes repeatably. If nil, the generator is seeded unpredictably.
	Seed *int64 `json:"seed"`
}

type valuesResponse struct {
	Values []float64 `json:"values"`
}

type checkpointsResponse struct {
	Checkpoints int `json:"checkpoints"`
}

type storedResponse struct {
	Names []string `json:"names"`
}

func describeSession(s *session.Session) sessionResponse {
	resp := sessionResponse{
		UUID: s.UUID,
	}

	_ = s.Do(func(g *variate.Generator) error {
		resp.Info = g.Info()
		resp.Initialized = g.Initialized()
		resp.Checkpoints = g.Checkpoints()
		return nil
	})

	return resp
}

func (m *Mux) postSession() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var opts session.Options
		if !decodeRequest(w, r, &opts) {
			return
		}

		s, err := m.registry.Create(opts)
		if err != nil {
			writeError(w, err)
			return
		}

		token, err := jwt.Sign(s.UUID)
		if err != nil {
			_ = m.registry.Remove(s.UUID)
			writeJSONError(w, http.StatusInternalServerError, err)
			return
		}

		resp := describeSession(s)
		resp.Token = token

		logrus.WithField("uuid", s.UUID).WithField("source", resp.Info.Source).Info("session started")
		writeJSON(w, http.StatusCreated, resp)
	}
}

func (m *Mux) getSessionUUID() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, describeSession(sessionFromRequest(r)))
	}
}

func (m *Mux) deleteSessionUUID() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := m.registry.Remove(sessionFromRequest(r).UUID); err != nil {
			writeError(w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func (m *Mux) postSessionUUIDSeed() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req seedRequest
		if !decodeRequest(w, r, &req) {
			return
		}

		s := sessionFromRequest(r)
		err := s.Do(func(g *variate.Generator) error {
			if req.Seed == nil {
				return g.InitializeNonRepeatable()
			}

			return g.InitializeRepeatable(*req.Seed)
		})

		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, describeSession(s))
	}
}

func (m *Mux) getSessionUUIDUniform() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n, err := m.parseCount(r)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, err)
			return
		}

		values := make([]float64, n)
		err = sessionFromRequest(r).Do(func(g *variate.Generator) error {
			for i := range values {
				v, err := g.Uniform()
				if err != nil {
					return err
				}

				values[i] = v
			}

			return nil
		})

		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, valuesResponse{Values: values})
	}
}

func (m *Mux) getSessionUUIDNormal() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n, err := m.parseCount(r)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, err)
			return
		}

		values := make([]float64, n)
		err = sessionFromRequest(r).Do(func(g *variate.Generator) error {
			return g.NormalBatch(values)
		})

		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, valuesResponse{Values: values})
	}
}

func (m *Mux) postSessionUUIDCheckpoint() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var resp checkpointsResponse
		err := sessionFromRequest(r).Do(func(g *variate.Generator) error {
			if err := g.Save(); err != nil {
				return err
			}

			resp.Checkpoints = g.Checkpoints()
			return nil
		})

		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, resp)
	}
}

func (m *Mux) deleteSessionUUIDCheckpoint() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var resp checkpointsResponse
		err := sessionFromRequest(r).Do(func(g *variate.Generator) error {
			if err := g.RestoreLast(); err != nil {
				return err
			}

			resp.Checkpoints = g.Checkpoints()
			return nil
		})

		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, resp)
	}
}

func (m *Mux) getSessionUUIDState() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var snapshot variate.Snapshot
		err := sessionFromRequest(r).Do(func(g *variate.Generator) (err error) {
			snapshot, err = g.SaveState()
			return err
		})

		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, snapshot)
	}
}

func (m *Mux) putSessionUUIDState() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var snapshot variate.Snapshot
		if !decodeRequest(w, r, &snapshot) {
			return
		}

		s := sessionFromRequest(r)
		if err := s.Do(func(g *variate.Generator) error {
			return g.RestoreState(snapshot)
		}); err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, describeSession(s))
	}
}

func (m *Mux) getSessionUUIDStored() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		names, err := m.store.List(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, storedResponse{Names: names})
	}
}

func (m *Mux) putSessionUUIDStoredName() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := gmux.Vars(r)["name"]

		var snapshot variate.Snapshot
		err := sessionFromRequest(r).Do(func(g *variate.Generator) (err error) {
			snapshot, err = g.SaveState()
			return err
		})

		if err == nil {
			err = m.store.Put(r.Context(), name, snapshot)
		}

		if err != nil {
			writeError(w, err)
			return
		}

		logrus.WithField("name", name).WithField("source", snapshot.Source).Debug("stored checkpoint")
		w.WriteHeader(http.StatusNoContent)
	}
}

func (m *Mux) postSessionUUIDStoredName() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snapshot, err := m.store.Get(r.Context(), gmux.Vars(r)["name"])
		if err != nil {
			writeError(w, err)
			return
		}

		s := sessionFromRequest(r)
		if err := s.Do(func(g *variate.Generator) error {
			return g.RestoreState(snapshot)
		}); err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, describeSession(s))
	}
}
