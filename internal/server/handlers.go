package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/gimiv/stayfull-research/internal/model"
	"github.com/gimiv/stayfull-research/internal/research"
	"github.com/gimiv/stayfull-research/internal/store"
)

// researchRequest is the body of POST /v1/research.
type researchRequest struct {
	HotelName string `json:"hotel_name"`
	City      string `json:"city"`
	State     string `json:"state"`
	Country   string `json:"country"`
	Website   string `json:"website"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	body := map[string]any{
		"status":  "ok",
		"sources": s.researcher.Sources(),
	}
	if s.guards != nil {
		circuits := make(map[string]string)
		for name, state := range s.guards.States() {
			circuits[name] = state.String()
		}
		body["circuits"] = circuits
	}
	writeJSON(w, http.StatusOK, body)
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req researchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	q := model.NewQuery(req.HotelName, req.City, req.State)
	q.Country = strings.ToUpper(strings.TrimSpace(req.Country))
	if q.Country == "" {
		q.Country = s.country
	}
	if site := strings.TrimSpace(req.Website); site != "" {
		q = q.WithWebsite(site)
	}
	if err := q.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	run, err := s.store.CreateRun(r.Context(), q)
	if err != nil {
		zap.L().Error("server: create run", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not create run")
		return
	}

	s.start(run.ID, q)

	writeJSON(w, http.StatusAccepted, map[string]string{
		"run_id": run.ID,
		"status": string(model.RunStatusQueued),
	})
}

// start runs research for a stored run in the background.
func (s *Server) start(runID string, q model.Query) {
	// Store writes outlive request cancellation but not shutdown.
	storeCtx := context.WithoutCancel(s.ctx)
	sink := store.NewProgressSink(storeCtx, s.store, runID)
	lr := &liveRun{
		tracker: research.NewTracker(sink, research.LogSink{}),
		done:    make(chan struct{}),
	}

	s.mu.Lock()
	s.live[runID] = lr
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			s.mu.Lock()
			delete(s.live, runID)
			s.mu.Unlock()
			close(lr.done)
		}()

		log := zap.L().With(zap.String("run_id", runID), zap.String("hotel", q.Name))
		if err := s.store.UpdateRunStatus(storeCtx, runID, model.RunStatusResearch); err != nil {
			log.Warn("server: mark run researching", zap.Error(err))
		}

		out, err := s.researcher.Research(s.ctx, q, lr.tracker)
		sink.Close()
		if err != nil {
			log.Error("server: research failed", zap.Error(err))
			if ferr := s.store.FailRun(storeCtx, runID, err.Error()); ferr != nil {
				log.Error("server: record failure", zap.Error(ferr))
			}
			return
		}

		profile, err := json.Marshal(out.Profile)
		if err != nil {
			log.Error("server: marshal profile", zap.Error(err))
			_ = s.store.FailRun(storeCtx, runID, err.Error())
			return
		}
		if err := s.store.CompleteRun(storeCtx, runID, out.Score.Total, profile); err != nil {
			log.Error("server: complete run", zap.Error(err))
		}
	}()
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	run, err := s.store.GetRun(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "run not found")
		return
	}
	if err != nil {
		zap.L().Error("server: get run", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not load run")
		return
	}

	// In-flight progress is fresher in memory than in the store.
	if lr, ok := s.lookup(run.ID); ok {
		run.Progress = lr.tracker.Snapshot()
	}
	writeJSON(w, http.StatusOK, run)
}
