package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/julienschmidt/httprouter"
	"github.com/tbxark/tripwizard"
	"github.com/tbxark/tripwizard/session"
	"github.com/tbxark/tripwizard/submit"
	"github.com/tbxark/tripwizard/types"
	"github.com/tbxark/tripwizard/wizard"
	"go.uber.org/zap"
)

const defaultTripLimit = 20

var errBadRequest = errors.New("bad request")

func decodeBody(w http.ResponseWriter, r *http.Request, out any) error {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("%w: failed to read body: %v", errBadRequest, err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil
	}
	if err := sonic.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: invalid JSON body: %v", errBadRequest, err)
	}
	return nil
}

func (s *Server) health(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	RespondWithJSON(w, http.StatusOK, M{"status": "ok"})
}

func (s *Server) intentSchema(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	w.Header().Set("Content-Type", "application/schema+json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(s.intents.raw))
}

type createRequest struct {
	Prompt string          `json:"prompt"`
	Intent json.RawMessage `json:"intent,omitempty"`
}

// createWizard opens a run from a prompt, or from an intent the client
// already filled in.
func (s *Server) createWizard(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req createRequest
	if err := decodeBody(w, r, &req); err != nil {
		RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	var (
		run  *tripwizard.Run
		resp *tripwizard.Response
		err  error
	)
	if len(req.Intent) > 0 && string(req.Intent) != "null" {
		problems, verr := s.intents.Validate(req.Intent)
		if verr != nil {
			RespondWithError(w, http.StatusBadRequest, verr.Error())
			return
		}
		if len(problems) > 0 {
			RespondWithJSON(w, http.StatusBadRequest, M{"error": "invalid intent", "details": problems})
			return
		}
		var intent types.Intent
		if err := sonic.Unmarshal(req.Intent, &intent); err != nil {
			RespondWithError(w, http.StatusBadRequest, "invalid intent: "+err.Error())
			return
		}
		run, resp, err = s.assistant.StartWithIntent(r.Context(), intent)
	} else {
		run, resp, err = s.assistant.Start(r.Context(), req.Prompt)
	}
	if err != nil {
		s.logger.Warn("failed to start wizard", zap.Error(err))
		respondWizard(w, 0, resp, err)
		return
	}

	ctx := session.WithSessionKey(r.Context(), run.ID)
	if err := s.runs.Set(ctx, run.Checkpoint()); err != nil {
		s.logger.Error("failed to store wizard", zap.String("run", run.ID), zap.Error(err))
		RespondWithError(w, http.StatusInternalServerError, "failed to store wizard")
		return
	}
	fields := []zap.Field{zap.String("run", run.ID), zap.Int("steps", resp.Total), zap.Bool("degraded", run.Degraded)}
	if agent, ok := AgentIDFromContext(r.Context()); ok {
		fields = append(fields, zap.String("agent", agent))
	}
	s.logger.Info("wizard started", fields...)
	RespondWithJSON(w, http.StatusCreated, resp)
}

func (s *Server) getWizard(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")
	cp, err := s.runs.Load(session.WithSessionKey(r.Context(), id))
	if err != nil {
		respondWizard(w, 0, nil, err)
		return
	}
	run, err := s.assistant.Resume(cp)
	if err != nil {
		respondWizard(w, 0, nil, err)
		return
	}
	respondWizard(w, http.StatusOK, s.assistant.Current(r.Context(), run), nil)
}

type runAction func(ctx context.Context, run *tripwizard.Run) (*tripwizard.Response, error)

// withRun loads the run named in the path, applies fn and stores the result.
// Finished runs are dropped from the session store. A run that is already
// being worked on answers 409.
func (s *Server) withRun(w http.ResponseWriter, r *http.Request, ps httprouter.Params, fn runAction) {
	id := ps.ByName("id")
	unlock, ok := s.locks.TryLock(id)
	if !ok {
		respondWizard(w, 0, nil, wizard.ErrBusy)
		return
	}
	defer unlock()

	ctx := session.WithSessionKey(r.Context(), id)
	cp, err := s.runs.Load(ctx)
	if err != nil {
		respondWizard(w, 0, nil, err)
		return
	}
	run, err := s.assistant.Resume(cp)
	if err != nil {
		s.logger.Error("failed to resume wizard", zap.String("run", id), zap.Error(err))
		respondWizard(w, 0, nil, err)
		return
	}

	resp, err := fn(ctx, run)

	var storeErr error
	if run.State.Phase().Finished() {
		storeErr = s.runs.Del(ctx)
	} else {
		storeErr = s.runs.Set(ctx, run.Checkpoint())
	}
	if storeErr != nil {
		s.logger.Error("failed to store wizard", zap.String("run", id), zap.Error(storeErr))
		RespondWithError(w, http.StatusInternalServerError, "failed to store wizard")
		return
	}
	respondWizard(w, http.StatusOK, resp, err)
}

type commandRequest struct {
	wizard.Command
	Form url.Values `json:"form,omitempty"`
}

func (s *Server) dispatch(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req commandRequest
	if err := decodeBody(w, r, &req); err != nil {
		RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.withRun(w, r, ps, func(ctx context.Context, run *tripwizard.Run) (*tripwizard.Response, error) {
		cmd := req.Command
		if len(req.Form) > 0 && (cmd.Type == wizard.CommandAdvance || cmd.Type == wizard.CommandRetreat) {
			values, err := s.assistant.Collect(run, req.Form)
			if err != nil {
				return s.assistant.Current(ctx, run), err
			}
			cmd.Values = values
		}
		return s.assistant.Dispatch(ctx, run, cmd)
	})
}

func (s *Server) generateProgram(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	s.withRun(w, r, ps, s.assistant.GenerateProgram)
}

type placeRequest struct {
	PlaceID string `json:"place_id"`
}

func (s *Server) selectPlace(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req placeRequest
	if err := decodeBody(w, r, &req); err != nil {
		RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.PlaceID) == "" {
		RespondWithError(w, http.StatusBadRequest, "place_id is required")
		return
	}
	s.withRun(w, r, ps, func(ctx context.Context, run *tripwizard.Run) (*tripwizard.Response, error) {
		return s.assistant.SelectPlace(ctx, run, req.PlaceID)
	})
}

func (s *Server) preview(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	s.withRun(w, r, ps, s.assistant.Preview)
}

type confirmRequest struct {
	Status string `json:"status"`
}

func (s *Server) confirm(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req confirmRequest
	if err := decodeBody(w, r, &req); err != nil {
		RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	var status submit.Status
	if req.Status != "" {
		parsed, ok := submit.ParseStatus(req.Status)
		if !ok {
			RespondWithError(w, http.StatusBadRequest, "unknown status: "+req.Status)
			return
		}
		status = parsed
	}
	s.withRun(w, r, ps, func(ctx context.Context, run *tripwizard.Run) (*tripwizard.Response, error) {
		return s.assistant.Confirm(ctx, run, status)
	})
}

func (s *Server) autocomplete(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		RespondWithError(w, http.StatusBadRequest, "q is required")
		return
	}
	predictions, err := s.assistant.Autocomplete(r.Context(), query)
	if err != nil {
		RespondWithError(w, statusFor(err), err.Error())
		return
	}
	RespondWithJSON(w, http.StatusOK, M{"predictions": predictions})
}

func (s *Server) placeDetails(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	details, err := s.assistant.PlaceDetails(r.Context(), ps.ByName("placeID"))
	if err != nil {
		RespondWithError(w, statusFor(err), err.Error())
		return
	}
	RespondWithJSON(w, http.StatusOK, details)
}

func (s *Server) listTrips(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	q := r.URL.Query()
	var status submit.Status
	if raw := q.Get("status"); raw != "" {
		parsed, ok := submit.ParseStatus(raw)
		if !ok {
			RespondWithError(w, http.StatusBadRequest, "unknown status: "+raw)
			return
		}
		status = parsed
	}
	limit := defaultTripLimit
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			RespondWithError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}
	trips, err := s.trips.List(r.Context(), status, limit)
	if err != nil {
		s.logger.Error("failed to list trips", zap.Error(err))
		RespondWithError(w, http.StatusInternalServerError, "failed to list trips")
		return
	}
	RespondWithJSON(w, http.StatusOK, M{"trips": trips})
}

func (s *Server) getTrip(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	trip, err := s.trips.Get(r.Context(), ps.ByName("tripID"))
	if err != nil {
		RespondWithError(w, statusFor(err), err.Error())
		return
	}
	RespondWithJSON(w, http.StatusOK, trip)
}
