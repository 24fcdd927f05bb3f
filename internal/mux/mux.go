package mux

import (
	"context"
	"net/http"
	"strings"

	gmux "github.com/gorilla/mux"

	"variate-server/internal/jwt"
	"variate-server/pkg/checkpoint"
	"variate-server/pkg/session"
)

type ctxKey int

const (
	ctxSessionKey ctxKey = iota
)

// Mux handles HTTP requests
type Mux struct {
	*gmux.Router
	config   config
	version  string
	registry *session.Registry
	store    checkpoint.Store

	// store for testing purposes
	sessionRouter *gmux.Router
}

type config struct {
	// maxBatch is the most values a single request may ask for
	maxBatch int
}

// NewMux returns a new HTTP mux
func NewMux(version string, registry *session.Registry, store checkpoint.Store, maxBatch int) *Mux {
	this := &Mux{
		Router:   gmux.NewRouter(),
		version:  version,
		registry: registry,
		store:    store,
		config: config{
			maxBatch: maxBatch,
		},
	}

	// unauthorized endpoints
	{
		r := this.Router
		r.Methods(http.MethodGet).Path("/health").Handler(this.getHealth())
		r.Methods(http.MethodGet).Path("/source").Handler(this.getSource())
		r.Methods(http.MethodPost).Path("/session").Handler(this.postSession())
	}

	// requires a bearer token issued for the session
	{
		r := this.Router.PathPrefix("/session/{uuid:(?i)[a-f0-9]{8}(?:-[a-f0-9]{4}){3}-[a-f0-9]{12}}").Subrouter()
		r.Use(this.sessionMiddleware)
		this.sessionRouter = r

		r.Methods(http.MethodGet).Path("").Handler(this.getSessionUUID())
		r.Methods(http.MethodDelete).Path("").Handler(this.deleteSessionUUID())
		r.Methods(http.MethodPost).Path("/seed").Handler(this.postSessionUUIDSeed())
		r.Methods(http.MethodGet).Path("/uniform").Handler(this.getSessionUUIDUniform())
		r.Methods(http.MethodGet).Path("/normal").Handler(this.getSessionUUIDNormal())
		r.Methods(http.MethodPost).Path("/checkpoint").Handler(this.postSessionUUIDCheckpoint())
		r.Methods(http.MethodDelete).Path("/checkpoint").Handler(this.deleteSessionUUIDCheckpoint())
		r.Methods(http.MethodGet).Path("/state").Handler(this.getSessionUUIDState())
		r.Methods(http.MethodPut).Path("/state").Handler(this.putSessionUUIDState())
		r.Methods(http.MethodGet).Path("/stored").Handler(this.getSessionUUIDStored())
		r.Methods(http.MethodPut).Path("/stored/{name}").Handler(this.putSessionUUIDStoredName())
		r.Methods(http.MethodPost).Path("/stored/{name}").Handler(this.postSessionUUIDStoredName())
		r.Methods(http.MethodGet).Path("/ws").Handler(this.getSessionUUIDWS())
	}

	return this
}

func (m *Mux) sessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := r.FormValue("access_token")
		if token == "" {
			authHeader := strings.Split(r.Header.Get("Authorization"), " ")
			if len(authHeader) != 2 || strings.ToLower(authHeader[0]) != "bearer" {
				writeJSONError(w, http.StatusUnauthorized, nil)
				return
			}

			token = authHeader[1]
		}

		id, err := jwt.ValidSessionUUID(token)
		if err != nil {
			writeJSONError(w, http.StatusUnauthorized, nil)
			return
		}

		if !strings.EqualFold(id, gmux.Vars(r)["uuid"]) {
			writeJSONError(w, http.StatusForbidden, nil)
			return
		}

		s, err := m.registry.Get(id)
		if err != nil {
			writeJSONError(w, http.StatusNotFound, err)
			return
		}

		newCtx := context.WithValue(r.Context(), ctxSessionKey, s)
		next.ServeHTTP(w, r.WithContext(newCtx))
	})
}

func sessionFromRequest(r *http.Request) *session.Session {
	return r.Context().Value(ctxSessionKey).(*session.Session)
}
