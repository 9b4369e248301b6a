package mux

import (
	"context"
	"net/http"
	"strings"

	gmux "github.com/gorilla/mux"

	"holdem-server/internal/jwt"
	"holdem-server/pkg/holdem"
	"holdem-server/pkg/room"
)

type ctxKey int

const (
	ctxOccupantKey ctxKey = iota
	ctxTableKey
)

// tableIDPattern matches the {id} path variable
const tableIDPattern = "{id:[A-Za-z0-9_-]{1,64}}"

// Mux handles HTTP requests
type Mux struct {
	*gmux.Router
	config      config
	version     string
	pitBoss     *room.PitBoss
	tableConfig holdem.Config

	// store for testing purposes
	authRouter  *gmux.Router
	adminRouter *gmux.Router
}

type config struct {
	// admins may create tables and read replays
	admins map[string]bool
}

// NewMux returns a new HTTP mux
// Tables created without a configuration use tableConfig.
func NewMux(version string, pitBoss *room.PitBoss, admins []string, tableConfig holdem.Config) *Mux {
	this := &Mux{
		Router:      gmux.NewRouter(),
		version:     version,
		pitBoss:     pitBoss,
		tableConfig: tableConfig,
		config: config{
			admins: make(map[string]bool, len(admins)),
		},
	}

	for _, admin := range admins {
		this.config.admins[admin] = true
	}

	this.authRouter = this.Router.NewRoute().Subrouter()
	this.authRouter.Use(this.authMiddleware)

	this.adminRouter = this.authRouter.NewRoute().Subrouter()
	this.adminRouter.Use(this.adminMiddleware)

	// unauthorized endpoints
	{
		r := this.Router
		r.Methods(http.MethodGet).Path("/health").Handler(this.getHealth())

		tr := r.PathPrefix("/table/" + tableIDPattern).Subrouter()
		tr.Use(this.tableMiddleware)
		tr.Methods(http.MethodGet).Path("").Handler(this.getTableID())

		// spectators connect without a token
		wr := tr.NewRoute().Subrouter()
		wr.Use(this.optionalAuthMiddleware)
		wr.Methods(http.MethodGet).Path("/ws").Handler(this.getTableIDWS())
	}

	// requires bearer authorization
	{
		r := this.authRouter
		r.Methods(http.MethodGet).Path("/table/" + tableIDPattern + "/hand/{handId}").Handler(this.getTableIDHand())
	}

	// requires admin access
	// depends on authMiddleware
	{
		r := this.adminRouter
		r.Methods(http.MethodPost).Path("/table").Handler(this.postTable())
		r.Methods(http.MethodGet).Path("/admin/table").Handler(this.getAdminTable())
		r.Methods(http.MethodGet).Path("/admin/table/" + tableIDPattern + "/replay").Handler(this.getAdminTableIDReplay())
	}

	return this
}

// bearerToken returns the access token from the query string or the Authorization header
func bearerToken(r *http.Request) (string, bool) {
	if token := r.FormValue("access_token"); token != "" {
		return token, true
	}

	authHeader := strings.Split(r.Header.Get("Authorization"), " ")
	if len(authHeader) != 2 || strings.ToLower(authHeader[0]) != "bearer" {
		return "", false
	}

	return authHeader[1], true
}

func (m *Mux) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			writeJSONError(w, http.StatusUnauthorized, nil)
			return
		}

		occupantID, err := jwt.ValidOccupantID(token)
		if err != nil {
			writeJSONError(w, http.StatusUnauthorized, nil)
			return
		}

		newCtx := context.WithValue(r.Context(), ctxOccupantKey, occupantID)
		w.Header().Set("Holdem-OccupantID", occupantID)
		next.ServeHTTP(w, r.WithContext(newCtx))
	})
}

// optionalAuthMiddleware identifies the occupant if a token is present
// A request without a token continues as a spectator; an invalid token is rejected.
func (m *Mux) optionalAuthMiddleware(next http.Handler) http.Handler {
	auth := m.authMiddleware(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := bearerToken(r); ok {
			auth.ServeHTTP(w, r)
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxOccupantKey, "")))
	})
}

// adminMiddleware requires authMiddleware to execute first
func (m *Mux) adminMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		occupantID := r.Context().Value(ctxOccupantKey).(string)
		if !m.config.admins[occupantID] {
			writeJSONError(w, http.StatusForbidden, nil)
			return
		}

		next.ServeHTTP(w, r)
	})
}
