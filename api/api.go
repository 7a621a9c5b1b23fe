// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/vechain/stakepool/api/middleware"
	poolapi "github.com/vechain/stakepool/api/pool"
	"github.com/vechain/stakepool/api/utils"
	"github.com/vechain/stakepool/health"
	"github.com/vechain/stakepool/log"
	"github.com/vechain/stakepool/pool"
)

var logger = log.WithContext("pkg", "api")

type Options struct {
	AllowedOrigins       string
	EnableReqLogger      *atomic.Bool
	SlowQueriesThreshold time.Duration
	EnableMetrics        bool
	// Health is served under /health when set.
	Health *health.Health
}

// New return api router
func New(p *pool.Pool, opts Options) http.Handler {
	origins := strings.Split(strings.TrimSpace(opts.AllowedOrigins), ",")
	for i, o := range origins {
		origins[i] = strings.ToLower(strings.TrimSpace(o))
	}

	router := mux.NewRouter()
	poolapi.New(p).
		Mount(router, "/pool")

	if opts.Health != nil {
		router.Path("/health").
			Methods(http.MethodGet).
			Name("health").
			HandlerFunc(handleHealth(opts.Health))
	}

	if opts.EnableMetrics {
		router.Use(metricsMiddleware)
	}
	enabled := opts.EnableReqLogger
	if enabled == nil {
		enabled = &atomic.Bool{}
	}
	router.Use(middleware.RequestLoggerMiddleware(logger, enabled, opts.SlowQueriesThreshold))

	handler := handlers.CompressHandler(router)
	handler = handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedHeaders([]string{"content-type"}),
	)(handler)
	return handler
}

// handleHealth answers 503 while the keeper is not making progress.
func handleHealth(h *health.Health) http.HandlerFunc {
	return utils.WrapHandlerFunc(func(w http.ResponseWriter, _ *http.Request) error {
		status := h.Status()
		if !status.Healthy {
			w.Header().Set("Content-Type", utils.JSONContentType)
			w.WriteHeader(http.StatusServiceUnavailable)
			return json.NewEncoder(w).Encode(status)
		}
		return utils.WriteJSON(w, status)
	})
}
