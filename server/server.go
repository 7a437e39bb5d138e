package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"purchase-explorer/render"
	"purchase-explorer/utils"
	"purchase-explorer/viewer"
)

const maxEventBytes = 4 << 10

// Server exposes one Controller over HTTP. The page posts interaction events
// to /events and swaps in the returned panel fragment.
type Server struct {
	ctrl   *viewer.Controller
	writer *render.Writer
	logger *utils.Logger
}

// New builds a Server around an existing controller.
func New(ctrl *viewer.Controller, writer *render.Writer, logger *utils.Logger) *Server {
	return &Server{ctrl: ctrl, writer: writer, logger: logger}
}

// Routes returns the root router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(requestLogger(s.logger.Zap()))
	r.Use(chimw.Recoverer)

	r.Get("/", s.page)
	r.Get("/panels", s.panels)
	r.Post("/events", s.events)
	r.Get("/api/view", s.viewJSON)
	r.Get("/healthz", s.health)
	r.Handle("/metrics", promhttp.Handler())
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(render.Static()))))
	return r
}

// page starts a fresh session: the slider returns to the oldest age and the
// selection is cleared.
func (s *Server) page(w http.ResponseWriter, r *http.Request) {
	v := s.ctrl.Dispatch(viewer.Reset{})
	eventsTotal.WithLabelValues(viewer.Reset{}.Type()).Inc()

	var buf bytes.Buffer
	timer := prometheus.NewTimer(renderDuration.WithLabelValues("page"))
	err := s.writer.Page(&buf, v, render.PageOptions{})
	timer.ObserveDuration()
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

func (s *Server) panels(w http.ResponseWriter, r *http.Request) {
	s.writePanels(w, r, s.ctrl.View())
}

func (s *Server) events(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxEventBytes))
	if err != nil {
		rejectedEventsTotal.Inc()
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, "event body too large", http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, "read event body", http.StatusBadRequest)
		return
	}
	ev, err := viewer.DecodeEvent(body)
	if err != nil {
		rejectedEventsTotal.Inc()
		s.logger.Warn("rejected event: %v", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	eventsTotal.WithLabelValues(ev.Type()).Inc()
	v := s.ctrl.Dispatch(ev)
	s.logger.Debug("event %s -> bound=%d selection=%s kind=%s", ev.Type(), v.Bound, v.SelectionName, v.Kind)
	s.writePanels(w, r, v)
}

func (s *Server) writePanels(w http.ResponseWriter, r *http.Request, v viewer.View) {
	var buf bytes.Buffer
	timer := prometheus.NewTimer(renderDuration.WithLabelValues("panels"))
	err := s.writer.Panels(&buf, v)
	timer.ObserveDuration()
	if err != nil {
		s.fail(w, r, err)
		return
	}
	rendersTotal.WithLabelValues(string(v.Kind)).Inc()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("X-Bound", strconv.Itoa(v.Bound))
	w.Header().Set("X-Bound-Label", v.BoundLabel)
	w.Header().Set("X-Render-Kind", string(v.Kind))
	w.Write(buf.Bytes())
}

func (s *Server) viewJSON(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.ctrl.View()); err != nil {
		s.logger.Warn("encode view: %v", err)
	}
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Error("%s %s: %v", r.Method, r.URL.Path, err)
	http.Error(w, "render failed", http.StatusInternalServerError)
}

// Serve listens on addr until ctx is cancelled, then drains in-flight
// requests for up to five seconds.
func (s *Server) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Viewer for %s listening on http://%s", s.ctrl.Region(), addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.logger.Info("Shutting down viewer")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Debug("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("elapsed", time.Since(start)),
				zap.String("request_id", chimw.GetReqID(r.Context())),
			)
		})
	}
}
