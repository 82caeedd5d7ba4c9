package network

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/leengari/labcheck/internal/highlight"
	"github.com/leengari/labcheck/internal/storage"
)

// MaxBodyBytes bounds a request body; the engine's cell ceiling applies after decoding
const MaxBodyBytes = 64 << 20

// ValidateRequest is the body of POST /v1/formulas/validate
type ValidateRequest struct {
	Formulas []storage.FormulaRecord `json:"formulas"`
}

// NewRouter builds the HTTP API
func NewRouter(svc *Service, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(requestLogger(svc.Logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		MaxAge:         300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/v1", func(r chi.Router) {
		r.Post("/evaluate", func(w http.ResponseWriter, r *http.Request) {
			result, ok := evaluate(w, r, svc)
			if ok {
				writeJSON(w, http.StatusOK, result)
			}
		})

		r.Post("/export", func(w http.ResponseWriter, r *http.Request) {
			result, ok := evaluate(w, r, svc)
			if ok {
				writeJSON(w, http.StatusOK, highlight.ForExport(result.Cells))
			}
		})

		r.Post("/formulas/validate", func(w http.ResponseWriter, r *http.Request) {
			var req ValidateRequest
			if !decode(w, r, &req) {
				return
			}
			diags := svc.Validate(req.Formulas)
			writeJSON(w, http.StatusOK, map[string]interface{}{
				"valid":       len(diags) == 0,
				"diagnostics": diags,
			})
		})

		r.Get("/formula-sets", func(w http.ResponseWriter, r *http.Request) {
			if svc.Sets == nil {
				writeError(w, http.StatusNotFound, ErrSetsNotConfigured.Error())
				return
			}
			names, err := svc.Sets.List()
			if err != nil {
				writeError(w, http.StatusInternalServerError, err.Error())
				return
			}
			writeJSON(w, http.StatusOK, map[string][]string{"sets": names})
		})

		r.Get("/formula-sets/{name}", func(w http.ResponseWriter, r *http.Request) {
			if svc.Sets == nil {
				writeError(w, http.StatusNotFound, ErrSetsNotConfigured.Error())
				return
			}
			formulas, err := svc.Sets.Get(chi.URLParam(r, "name"))
			if err != nil {
				writeError(w, setErrorStatus(err), err.Error())
				return
			}
			writeJSON(w, http.StatusOK, map[string]interface{}{"formulas": formulas})
		})

		r.Put("/formula-sets/{name}", func(w http.ResponseWriter, r *http.Request) {
			var body storage.FormulaFile
			if !decode(w, r, &body) {
				return
			}
			diags, err := svc.SaveSet(chi.URLParam(r, "name"), body.Formulas)
			if err != nil {
				writeError(w, setErrorStatus(err), err.Error())
				return
			}
			if len(diags) > 0 {
				writeJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
					"valid":       false,
					"diagnostics": diags,
				})
				return
			}
			writeJSON(w, http.StatusOK, map[string]int{"formulas": len(body.Formulas)})
		})

		r.Post("/formula-sets/{name}/reload", func(w http.ResponseWriter, r *http.Request) {
			if svc.Sets == nil {
				writeError(w, http.StatusNotFound, ErrSetsNotConfigured.Error())
				return
			}
			formulas, err := svc.Sets.Reload(chi.URLParam(r, "name"))
			if err != nil {
				writeError(w, setErrorStatus(err), err.Error())
				return
			}
			writeJSON(w, http.StatusOK, map[string]int{"formulas": len(formulas)})
		})
	})

	return r
}

// ListenAndServe runs the router on addr until ctx is cancelled
func ListenAndServe(ctx context.Context, addr string, handler http.Handler, logger *slog.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP API listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func evaluate(w http.ResponseWriter, r *http.Request, svc *Service) (*Response, bool) {
	var req Request
	if !decode(w, r, &req) {
		return nil, false
	}
	result, err := svc.Evaluate(req)
	if err != nil {
		writeError(w, setErrorStatus(err), err.Error())
		return nil, false
	}
	return &Response{Result: &result}, true
}

func decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

func setErrorStatus(err error) int {
	if errors.Is(err, storage.ErrSetNotFound) || errors.Is(err, ErrSetsNotConfigured) {
		return http.StatusNotFound
	}
	return http.StatusBadRequest
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, Response{Error: msg})
}

func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Info("http request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.Status()),
				slog.Int("bytes", ww.BytesWritten()),
				slog.Duration("duration", time.Since(start)),
				slog.String("request_id", chimw.GetReqID(r.Context())),
			)
		})
	}
}
