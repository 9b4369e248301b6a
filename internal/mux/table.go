package mux

import (
	"context"
	"errors"
	"net/http"
	"regexp"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"holdem-server/pkg/handlog"
	"holdem-server/pkg/holdem"
	"holdem-server/pkg/room"
)

type postTablePayload struct {
	TableID string `json:"tableId"`
	// Config is optional and defaults to the server's table configuration
	Config *holdem.Config `json:"config"`
}

func (m *Mux) postTable() http.HandlerFunc {
	var validTableID = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}\z`)
	return func(w http.ResponseWriter, r *http.Request) {
		var pp postTablePayload
		if !decodeRequest(w, r, &pp) {
			return
		}

		if pp.TableID == "" {
			pp.TableID = uuid.New().String()
		}

		if !validTableID.MatchString(pp.TableID) {
			writeJSONError(w, http.StatusBadRequest, errors.New("table id must be 1-64 letters, digits, dashes or underscores"))
			return
		}

		cfg := m.tableConfig
		if pp.Config != nil {
			cfg = *pp.Config
		}

		if err := cfg.Validate(); err != nil {
			writeJSONError(w, http.StatusBadRequest, err)
			return
		}

		tbl, err := m.pitBoss.CreateTable(r.Context(), pp.TableID, cfg)
		if err != nil {
			writeRoomError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, room.Redact(tbl, ""))
	}
}

func (m *Mux) getTableID() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tbl := r.Context().Value(ctxTableKey).(*holdem.Table)
		writeJSON(w, http.StatusOK, tbl)
	})
}

func (m *Mux) getTableIDHand() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)
		entries, err := m.pitBoss.HandHistory(r.Context(), vars["id"], vars["handId"])
		if err != nil {
			writeRoomError(w, err)
			return
		}

		if len(entries) == 0 {
			writeJSONError(w, http.StatusNotFound, nil)
			return
		}

		writeJSON(w, http.StatusOK, entries)
	})
}

func (m *Mux) getAdminTable() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start, rows, err := parsePaginationOptions(r)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, err)
			return
		}

		ids, err := m.pitBoss.Tables(r.Context())
		if err != nil {
			writeRoomError(w, err)
			return
		}

		page := []string{}
		if start < int64(len(ids)) {
			end := int(start) + rows
			if end > len(ids) {
				end = len(ids)
			}

			page = ids[start:end]
		}

		writeJSON(w, http.StatusOK, page)
	}
}

func (m *Mux) getAdminTableIDReplay() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tbl, err := m.pitBoss.Replay(r.Context(), mux.Vars(r)["id"])
		if err != nil {
			writeRoomError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, tbl)
	}
}

func (m *Mux) tableMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]
		tbl, err := m.pitBoss.Table(r.Context(), id)
		if err != nil {
			writeRoomError(w, err)
			return
		}

		newCtx := context.WithValue(r.Context(), ctxTableKey, tbl)

		next.ServeHTTP(w, r.WithContext(newCtx))
	})
}

// writeRoomError maps table errors to a status code
func writeRoomError(w http.ResponseWriter, err error) {
	var ruleErr holdem.RuleError
	switch {
	case errors.Is(err, holdem.ErrMissingTable), errors.Is(err, handlog.ErrNoEvents):
		writeJSONError(w, http.StatusNotFound, nil)
	case errors.Is(err, room.ErrTableExists):
		writeJSONError(w, http.StatusConflict, err)
	case errors.Is(err, room.ErrUnavailable):
		writeJSONError(w, http.StatusServiceUnavailable, err)
	case errors.As(err, &ruleErr):
		writeJSONError(w, http.StatusBadRequest, err)
	default:
		writeJSONError(w, http.StatusInternalServerError, err)
	}
}
