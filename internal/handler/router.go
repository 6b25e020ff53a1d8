package handler

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/cors"

	"github.com/efreitasn/terminalsim/internal/service"
)

// Deps are the services and auxiliary handlers the router mounts.
type Deps struct {
	Orders   *service.OrderService
	Terminal *service.TerminalService
	Risk     *service.RiskService
	Accounts *service.AccountService

	// Streamer and StreamCtx back /streaming/*; cycles started over HTTP
	// stop when StreamCtx is cancelled.
	Streamer  Streamer
	StreamCtx context.Context

	Stream  http.Handler // websocket endpoint, optional
	Metrics http.Handler // prometheus endpoint, optional

	CORSOrigins []string
	Logger      *slog.Logger
}

// NewRouter creates a chi router with all routes registered, CORS, request
// logging, and Content-Type validation middleware.
func NewRouter(d Deps) chi.Router {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	origins := d.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()

	// Global middleware.
	r.Use(cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
	}).Handler)
	r.Use(requestLogging(logger))
	r.Use(contentTypeJSON)

	orderH := NewOrderHandler(d.Orders)
	terminalH := NewTerminalHandler(d.Terminal, d.Risk)

	// Health check.
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Watchlist routes.
	r.Get("/watchlist", terminalH.GetWatchlist)
	r.Put("/watchlist", terminalH.SetWatchlist)
	r.Post("/watchlist/move", terminalH.MoveSymbol)
	r.Post("/watchlist/{symbol}", terminalH.AddSymbol)
	r.Delete("/watchlist/{symbol}", terminalH.RemoveSymbol)

	// Market data routes.
	r.Get("/ticks", terminalH.ListTicks)
	r.Get("/ticks/{symbol}", terminalH.GetTick)

	// Order routes.
	r.Get("/orders", orderH.ListOrders)
	r.Post("/orders", orderH.SubmitOrder)
	r.Get("/orders/{order_id}", orderH.GetOrder)
	r.Patch("/orders/{order_id}", orderH.UpdateOrder)
	r.Delete("/orders/{order_id}", orderH.CancelOrder)

	// Blotter routes.
	r.Get("/fills", terminalH.ListFills)
	r.Get("/positions", terminalH.ListPositions)
	r.Get("/positions/{symbol}", terminalH.GetPosition)

	// Risk routes.
	r.Get("/risk", terminalH.ListRisk)
	r.Get("/risk/latest", terminalH.LatestRisk)
	r.Get("/risk/summary", terminalH.RiskSummary)

	r.Get("/connection", terminalH.GetConnection)

	if d.Accounts != nil {
		accountH := NewAccountHandler(d.Accounts)
		r.Get("/accounts", accountH.ListAccounts)
		r.Get("/accounts/{account_id}", accountH.GetAccount)
	}

	if d.Streamer != nil {
		streamingH := NewStreamingHandler(d.StreamCtx, d.Streamer)
		r.Get("/streaming", streamingH.Status)
		r.Post("/streaming/start", streamingH.Start)
		r.Post("/streaming/stop", streamingH.Stop)
	}
	if d.Stream != nil {
		r.Handle("/stream", d.Stream)
	}
	if d.Metrics != nil {
		r.Handle("/metrics", d.Metrics)
	}

	return r
}

// requestLogging returns middleware that logs each request's method, path,
// status code, and duration using slog.
func requestLogging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(ww, r)
			logger.Info("request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.status),
				slog.Duration("duration", time.Since(start)),
			)
		})
	}
}

// statusWriter wraps http.ResponseWriter to capture the status code.
type statusWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *statusWriter) WriteHeader(code int) {
	if !w.wroteHeader {
		w.status = code
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(code)
}

// Unwrap exposes the underlying writer so http.ResponseController and the
// websocket upgrader can reach its Hijacker.
func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// Hijack lets the websocket upgrader take over the connection.
func (w *statusWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not support hijacking")
	}
	w.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

// contentTypeJSON is middleware that validates Content-Type for POST, PUT,
// and PATCH requests that carry a body. If the Content-Type header doesn't
// start with "application/json", it returns 400 Bad Request before the
// handler runs. Bodiless commands such as POST /streaming/start pass through.
func contentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch {
			if r.ContentLength == 0 {
				next.ServeHTTP(w, r)
				return
			}
			ct := r.Header.Get("Content-Type")
			if ct == "" || !strings.HasPrefix(ct, "application/json") {
				WriteError(w, http.StatusBadRequest, codeInvalidRequest,
					"Content-Type must be application/json")
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
