package rest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/mohitkumar/flowrt/logger"
	"github.com/mohitkumar/flowrt/model"
	"go.uber.org/zap"
)

type TriggerRequest struct {
	Name           string      `json:"name"`
	Kind           string      `json:"kind"`
	StartDate      *time.Time  `json:"startDate"`
	EndDate        *time.Time  `json:"endDate"`
	Priority       int         `json:"priority"`
	MisfirePolicy  string      `json:"misfirePolicy"`
	Count          int         `json:"count"`
	IntervalMillis int64       `json:"intervalMillis"`
	Expression     string      `json:"expression"`
	Work           WorkRequest `json:"work"`
}

func (req TriggerRequest) trigger() (model.Trigger, error) {
	policy, err := model.ToMisfirePolicy(strings.ToUpper(req.MisfirePolicy))
	if err != nil {
		return model.Trigger{}, err
	}
	start := time.Now()
	if req.StartDate != nil {
		start = *req.StartDate
	}
	switch strings.ToUpper(req.Kind) {
	case "", model.ONE_SHOT.String():
		return model.NewOneShotTrigger(req.Name, start, req.Priority, policy)
	case model.REPEATING.String():
		return model.NewRepeatTrigger(req.Name, start, req.Priority, policy, req.Count, req.IntervalMillis)
	case model.CRON.String():
		return model.NewCronTrigger(req.Name, req.Expression, start, req.EndDate, req.Priority, policy)
	}
	return model.Trigger{}, fmt.Errorf("unknown trigger kind %s", req.Kind)
}

func (s *Server) HandleScheduleTrigger(w http.ResponseWriter, r *http.Request) {
	var req TriggerRequest
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid trigger request")
		return
	}
	if len(req.Work.Type) == 0 {
		respondWithError(w, http.StatusBadRequest, "work type is required")
		return
	}
	trigger, err := req.trigger()
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.triggers.Schedule(trigger, req.Work.descriptor()); err != nil {
		logger.Error("error scheduling trigger", zap.String("trigger", req.Name), zap.Error(err))
		respondWithError(w, http.StatusConflict, err.Error())
		return
	}
	respondOK(w, map[string]any{"name": trigger.Name()})
}

func (s *Server) HandleUnscheduleTrigger(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	if !s.triggers.Unschedule(name) {
		respondWithError(w, http.StatusNotFound, fmt.Sprintf("trigger %s not found", name))
		return
	}
	respondOKWithoutBody(w)
}
