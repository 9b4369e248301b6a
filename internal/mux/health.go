package mux

import (
	"context"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

const healthTimeout = 2 * time.Second

type healthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	// Dealers is the number of tables this instance is running
	Dealers int `json:"dealers"`
}

func (m *Mux) getHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()

		payload := healthResponse{
			Status:  "OK",
			Version: m.version,
			Dealers: m.pitBoss.DealerCount(),
		}

		if err := m.pitBoss.Ping(ctx); err != nil {
			logrus.WithField("remoteAddr", remoteAddr(r)).WithError(err).Error("health check failed")
			payload.Status = "unavailable"
			writeJSON(w, http.StatusServiceUnavailable, payload)
			return
		}

		writeJSON(w, http.StatusOK, payload)
	}
}
