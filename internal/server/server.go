// Package server exposes the grader over a local JSON HTTP API.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/flamego/flamego"
	"golang.org/x/sync/errgroup"

	"github.com/Hanaasagi/labgrade/internal/input"
	"github.com/Hanaasagi/labgrade/internal/report"
	"github.com/Hanaasagi/labgrade/pkg/ctcae"
)

const (
	// DefaultPort is used when neither --port nor CTCAE_PORT is set.
	DefaultPort = 18080

	// EnvPort names the environment variable holding the listen port.
	EnvPort = "CTCAE_PORT"

	shutdownTimeout = 5 * time.Second
)

// Options configures the HTTP handler.
type Options struct {
	Name    string
	Version string

	// MaxBodyBytes caps request bodies. Zero means input.DefaultMaxBytes.
	MaxBodyBytes int64
}

// EvaluateRequest is the body of POST /api/evaluate. Omitted or non-positive
// reference values fall back to the configured defaults.
type EvaluateRequest struct {
	Text             string   `json:"text"`
	Sex              string   `json:"sex,omitempty"`
	ULNAST           *float64 `json:"uln_ast,omitempty"`
	ULNALT           *float64 `json:"uln_alt,omitempty"`
	LLNK             *float64 `json:"lln_k,omitempty"`
	LLNHb            *float64 `json:"lln_hb,omitempty"`
	BaselineAbnormal bool     `json:"baseline_abnormal,omitempty"`
}

// Overrides converts the request into grading overrides.
func (r EvaluateRequest) Overrides() (ctcae.Overrides, error) {
	o := ctcae.Overrides{Sex: ctcae.SexFemale, BaselineAbnormal: r.BaselineAbnormal}
	if r.Sex != "" {
		sex, ok := ctcae.ParseSex(r.Sex)
		if !ok {
			return o, fmt.Errorf("invalid sex %q (want M or F)", r.Sex)
		}
		o.Sex = sex
	}

	refs := map[string]*float64{
		ctcae.RefULNAST: r.ULNAST,
		ctcae.RefULNALT: r.ULNALT,
		ctcae.RefLLNK:   r.LLNK,
		ctcae.RefLLNHb:  r.LLNHb,
	}
	for key, v := range refs {
		if v == nil {
			continue
		}
		if o.Refs == nil {
			o.Refs = make(map[string]float64, len(refs))
		}
		o.Refs[key] = *v
	}
	return o, nil
}

type errorResponse struct {
	Error string `json:"error"`
}

type healthResponse struct {
	OK      bool   `json:"ok"`
	Name    string `json:"name"`
	Version string `json:"version"`
}

// New builds the flamego application serving g.
func New(g *ctcae.Grader, opts Options) *flamego.Flame {
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = input.DefaultMaxBytes
	}

	f := flamego.New()
	f.Use(flamego.Recovery())
	f.Use(RequestLogger)
	f.Map(g)

	f.Get("/health", func(c flamego.Context) {
		writeJSON(c, http.StatusOK, healthResponse{OK: true, Name: opts.Name, Version: opts.Version})
	})
	f.Post("/api/evaluate", evaluate(opts.MaxBodyBytes))

	f.NotFound(func(c flamego.Context) {
		writeJSON(c, http.StatusNotFound, errorResponse{Error: "not found"})
	})

	return f
}

func evaluate(maxBytes int64) func(c flamego.Context, g *ctcae.Grader) {
	return func(c flamego.Context, g *ctcae.Grader) {
		body := http.MaxBytesReader(c.ResponseWriter(), c.Request().Request.Body, maxBytes)

		var req EvaluateRequest
		if err := json.NewDecoder(body).Decode(&req); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				writeJSON(c, http.StatusRequestEntityTooLarge, errorResponse{Error: input.ErrInputTooLarge.Error()})
				return
			}
			writeJSON(c, http.StatusBadRequest, errorResponse{Error: "bad json"})
			return
		}

		o, err := req.Overrides()
		if err != nil {
			writeJSON(c, http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}

		findings := g.Grade(req.Text, o)
		slog.Debug("Evaluated report", "findings", len(findings), "bytes", len(req.Text))
		writeJSON(c, http.StatusOK, report.NewDocument(findings))
	}
}

func writeJSON(c flamego.Context, status int, v any) {
	w := c.ResponseWriter()
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("Failed to write response", "error", err)
	}
}

// RequestLogger logs request metadata and timing for each HTTP request.
func RequestLogger(c flamego.Context) {
	start := time.Now()

	c.Next()

	status := c.ResponseWriter().Status()
	if status == 0 {
		status = http.StatusOK
	}

	slog.Info("request",
		"method", c.Request().Method,
		"path", c.Request().URL.Path,
		"status", status,
		"duration_ms", time.Since(start).Milliseconds(),
	)
}

// Addr returns the loopback listen address for port.
func Addr(port int) string {
	return net.JoinHostPort("127.0.0.1", strconv.Itoa(port))
}

// ListenAndServe serves h on addr until ctx is cancelled, then shuts down
// gracefully.
func ListenAndServe(ctx context.Context, addr string, h http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}
	slog.Info("Serving", "addr", ln.Addr().String())

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
