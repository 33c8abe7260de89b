package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/lien-cli/internal/extraction"
	"github.com/sells-group/lien-cli/internal/model"
	"github.com/sells-group/lien-cli/internal/pipeline"
	"github.com/sells-group/lien-cli/internal/site"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start HTTP server accepting extraction batches",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if servePort != 0 {
			cfg.Server.Port = servePort
		}
		env, err := initRunEnv(ctx, envOptions{mode: "serve"})
		if err != nil {
			return err
		}
		defer env.Close()

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
			Handler:           newRouter(env),
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("starting server", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return eris.Wrap(err, "server listen")
		}
		return nil
	},
}

// runRequest is the POST /runs body.
type runRequest struct {
	Sites       []string        `json:"sites"`
	MaxResults  int             `json:"max_results"`
	DryRun      bool            `json:"dry_run"`
	Extractions json.RawMessage `json:"extractions"`
}

// runResponse is the POST /runs reply.
type runResponse struct {
	Summary    model.RunSummary   `json:"summary"`
	Records    []model.LienRecord `json:"records"`
	Duplicates int                `json:"duplicates"`
}

type server struct {
	env     *runEnv
	maxBody int64
	// runs are serialized so keys written by one are seen by the next.
	mu sync.Mutex
}

// newRouter builds the HTTP handler over env.
func newRouter(env *runEnv) http.Handler {
	s := &server{env: env, maxBody: int64(cfg.Server.MaxBodyMB) << 20}
	limiter := newClientLimiter(cfg.Server.RateLimit, cfg.Server.RateBurst)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.Server.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", s.health)
	r.Get("/sites", s.sites)
	r.With(limiter.Middleware).Post("/runs", s.createRun)
	return r
}

func (s *server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *server) sites(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.env.Sites.All())
}

func (s *server) createRun(w http.ResponseWriter, r *http.Request) {
	if s.maxBody > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.maxBody)
	}

	var req runRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Extractions) == 0 {
		writeError(w, http.StatusBadRequest, "extractions is required")
		return
	}

	exts, err := extraction.ReadJSONArray(r.Context(), bytes.NewReader(req.Extractions), extraction.Options{})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.mu.Lock()
	res, err := s.env.withMaxResults(req.MaxResults).execute(r.Context(),
		pipeline.Request{Sites: req.Sites, Extractions: exts}, req.DryRun)
	s.mu.Unlock()
	if err != nil {
		var cfgErr *site.ConfigError
		if errors.As(err, &cfgErr) {
			writeError(w, http.StatusBadRequest, cfgErr.Error())
			return
		}
		zap.L().Error("run request failed",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Error(err),
		)
		writeError(w, http.StatusInternalServerError, "run failed")
		return
	}

	zap.L().Info("run request complete",
		zap.String("request_id", middleware.GetReqID(r.Context())),
		zap.String("run_id", res.Summary.RunID),
		zap.Int("written", res.Summary.RecordsWritten),
	)
	writeJSON(w, http.StatusOK, runResponse{
		Summary:    res.Summary,
		Records:    res.Records,
		Duplicates: len(res.Duplicates),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
