// Package gateway is the http surface of the ballot.
// All replies are JSON. The failures are returned in the ErrorBody.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/blocklords/ballot/ballot"
	"github.com/blocklords/ballot/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const (
	Surface         = "http"
	ShutdownTimeout = 5 * time.Second
)

// Ballot is the core of the ballot
type Ballot interface {
	GrantVotingRight(ctx context.Context, request ballot.GrantRequest) ballot.GrantOutcome
	Delegate(delegateAddress string) ballot.DelegateView
	GetVotingSnapshot(ctx context.Context) (*ballot.Snapshot, error)
}

// Metrics counts the requests and exposes the counters
type Metrics interface {
	CountRequest(surface string, command string)
	CountLimited()
	Handler() http.Handler
}

type Gateway struct {
	core    Ballot
	metrics Metrics
	limiter *limiter
	logger  *log.Logger
}

// New gateway. The give_right_to_vote route is limited per remote host.
func New(core Ballot, metrics Metrics, limit Limit, parent *log.Logger) *Gateway {
	return &Gateway{
		core:    core,
		metrics: metrics,
		limiter: newLimiter(limit),
		logger:  parent.Child("gateway"),
	}
}

// Router returns the routes of the gateway
func (g *Gateway) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Method(http.MethodGet, "/metrics", g.metrics.Handler())

	r.Get("/", g.snapshot)
	r.With(g.limit).Get("/give_right_to_vote", g.giveRightToVote)
	r.Get("/delegate", g.delegate)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not-found", "no route "+r.URL.Path, nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method-not-allowed", r.Method+" is not allowed", nil)
	})

	return r
}

// Run serves the routes on the address until the context is cancelled.
func (g *Gateway) Run(ctx context.Context, addr string) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           g.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errs := make(chan error, 1)
	go func() {
		g.logger.Info("listening", "addr", addr)
		errs <- server.ListenAndServe()
	}()

	select {
	case err := <-errs:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server.ListenAndServe: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server.Shutdown: %w", err)
		}
		g.logger.Info("stopped")
		return nil
	}
}

func remoteHost(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func (g *Gateway) limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !g.limiter.allow(remoteHost(r), time.Now()) {
			g.metrics.CountLimited()
			writeError(w, http.StatusTooManyRequests, "rate-limited", "too many requests, try later", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (g *Gateway) snapshot(w http.ResponseWriter, r *http.Request) {
	g.metrics.CountRequest(Surface, "snapshot")

	snapshot, err := g.core.GetVotingSnapshot(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, "snapshot-read", err.Error(), nil)
		return
	}

	writeJSON(w, http.StatusOK, snapshot)
}

// grantStatus is the http status of the grant outcome
func grantStatus(state ballot.GrantState) int {
	switch state {
	case ballot.Completed:
		return http.StatusOK
	case ballot.Unauthorized:
		return http.StatusForbidden
	case ballot.MissingTarget, ballot.InvalidTarget:
		return http.StatusBadRequest
	case ballot.Timeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}

func (g *Gateway) giveRightToVote(w http.ResponseWriter, r *http.Request) {
	g.metrics.CountRequest(Surface, "give-right-to-vote")

	query := r.URL.Query()
	outcome := g.core.GrantVotingRight(r.Context(), ballot.GrantRequest{
		Target: query.Get("give_address"),
		Caller: query.Get("my_address"),
	})

	status := grantStatus(outcome.State)
	if status == http.StatusOK {
		writeJSON(w, status, outcome)
		return
	}
	writeError(w, status, string(outcome.State), outcome.Description(), outcome)
}

func (g *Gateway) delegate(w http.ResponseWriter, r *http.Request) {
	g.metrics.CountRequest(Surface, "delegate")

	writeJSON(w, http.StatusOK, g.core.Delegate(r.URL.Query().Get("delegate_address")))
}
