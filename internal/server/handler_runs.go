package server

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/me/lottsched/internal/simulator"
	"github.com/me/lottsched/internal/workload"
	"github.com/me/lottsched/pkg/model"
)

// maxWorkloadBytes caps the size of a POSTed workload document.
const maxWorkloadBytes = 1 << 20

func (s *Server) handleCreateRun(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWorkloadBytes))
	if err != nil {
		respondError(w, reqID, http.StatusBadRequest,
			model.NewValidationError("cannot read body: "+err.Error()))
		return
	}

	// JSON is a subset of YAML, so one parser serves both content types.
	wl, err := workload.Parse(body)
	if err != nil {
		respondError(w, reqID, http.StatusBadRequest, model.NewValidationError(err.Error()))
		return
	}

	cfg := simulator.Config{Metrics: s.metrics}
	q := r.URL.Query()
	if v := q.Get("seed"); v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			respondError(w, reqID, http.StatusBadRequest, model.NewValidationError("invalid query parameter",
				model.FieldError{Field: "seed", Message: "must be an integer"}))
			return
		}
		cfg.Seed = seed
	}
	if v := q.Get("quanta"); v != "" {
		quanta, err := strconv.Atoi(v)
		if err != nil || quanta <= 0 {
			respondError(w, reqID, http.StatusBadRequest, model.NewValidationError("invalid query parameter",
				model.FieldError{Field: "quanta", Message: "must be a positive integer"}))
			return
		}
		cfg.Quanta = quanta
	}

	quanta := wl.Quanta
	if cfg.Quanta > 0 {
		quanta = cfg.Quanta
	}
	if s.config.MaxQuanta > 0 && quanta > s.config.MaxQuanta {
		respondError(w, reqID, http.StatusBadRequest, model.NewValidationError("simulation too long",
			model.FieldError{Field: "quanta", Message: "must not exceed " + strconv.Itoa(s.config.MaxQuanta)}))
		return
	}

	run, runErr := simulator.Simulate(r.Context(), wl, cfg, s.logger)
	if runErr != nil && run == nil {
		var apiErr *model.APIError
		if errors.As(runErr, &apiErr) {
			respondError(w, reqID, http.StatusBadRequest, apiErr)
			return
		}
		respondInternal(w, reqID, runErr)
		return
	}

	if err := s.store.CreateRun(r.Context(), run); err != nil {
		respondInternal(w, reqID, err)
		return
	}
	if runErr != nil {
		s.logger.Error("simulation failed", "id", run.ID, "workload", run.Workload, "error", runErr)
		respondInternal(w, reqID, runErr)
		return
	}

	s.logger.Info("run created", "id", run.ID, "workload", run.Workload, "quanta", run.Quanta)
	respondCreated(w, reqID, run)
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())

	opts := model.DefaultListOptions()
	q := r.URL.Query()
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			opts.Limit = n
		}
	}
	if v := q.Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			opts.Offset = n
		}
	}
	if state := q.Get("state"); state != "" {
		opts.State = model.RunState(state)
	}
	opts.Workload = q.Get("workload")
	opts.Clamp()

	runs, total, err := s.store.ListRuns(r.Context(), opts)
	if err != nil {
		respondInternal(w, reqID, err)
		return
	}
	if runs == nil {
		runs = []*model.Run{}
	}

	respondList(w, reqID, runs, model.PaginationFor(opts, total))
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	id := chi.URLParam(r, "id")

	run, err := s.store.GetRun(r.Context(), id)
	if err != nil {
		respondInternal(w, reqID, err)
		return
	}
	if run == nil {
		respondError(w, reqID, http.StatusNotFound, model.NewNotFoundError("run", id))
		return
	}

	respondOK(w, reqID, run)
}

func (s *Server) handleDeleteRun(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	id := chi.URLParam(r, "id")

	run, err := s.store.GetRun(r.Context(), id)
	if err != nil {
		respondInternal(w, reqID, err)
		return
	}
	if run == nil {
		respondError(w, reqID, http.StatusNotFound, model.NewNotFoundError("run", id))
		return
	}
	if err := s.store.DeleteRun(r.Context(), id); err != nil {
		respondInternal(w, reqID, err)
		return
	}

	s.logger.Info("run deleted", "id", id)
	respondOK(w, reqID, map[string]string{"id": id, "status": "deleted"})
}
