package rest

import (
	"encoding/json"
	"net/http"
	"sort"

	"github.com/mohitkumar/flowrt/logger"
	"github.com/mohitkumar/flowrt/model"
	"go.uber.org/zap"
)

type WorkRequest struct {
	Type       string         `json:"type"`
	Parameters map[string]any `json:"parameters"`
}

func (req WorkRequest) descriptor() model.WorkDescriptor {
	names := make([]string, 0, len(req.Parameters))
	for name := range req.Parameters {
		names = append(names, name)
	}
	sort.Strings(names)
	params := make([]model.Parameter, 0, len(names))
	for _, name := range names {
		params = append(params, model.Parameter{Name: name, Value: req.Parameters[name]})
	}
	return model.NewWorkDescriptor(req.Type, params...)
}

type DelayRequest struct {
	Delay *int64 `json:"delay"`
}

func (s *Server) HandleSubmitWork(w http.ResponseWriter, r *http.Request) {
	var req WorkRequest
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid work request")
		return
	}
	if len(req.Type) == 0 {
		respondWithError(w, http.StatusBadRequest, "work type is required")
		return
	}
	id, err := s.scheduler.Submit(req.descriptor())
	if err != nil {
		logger.Error("error submitting work", zap.String("type", req.Type), zap.Error(err))
		respondWithError(w, httpStatus(err), err.Error())
		return
	}
	respondOK(w, map[string]any{"id": id})
}

func (s *Server) HandleGetDelay(w http.ResponseWriter, r *http.Request) {
	respondOK(w, map[string]any{"delay": s.scheduler.GetDelay()})
}

func (s *Server) HandleSetDelay(w http.ResponseWriter, r *http.Request) {
	var req DelayRequest
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Delay == nil {
		respondWithError(w, http.StatusBadRequest, "delay in milliseconds is required")
		return
	}
	if *req.Delay < 0 {
		respondWithError(w, http.StatusBadRequest, "delay can not be negative")
		return
	}
	s.scheduler.SetDelay(*req.Delay)
	respondOK(w, map[string]any{"delay": s.scheduler.GetDelay()})
}
