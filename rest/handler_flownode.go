package rest

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/mohitkumar/flowrt/logger"
	"go.uber.org/zap"
)

func (s *Server) HandleRetryFlowNode(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "flow node instance id should be a number")
		return
	}
	if err := s.retrier.Retry(r.Context(), id); err != nil {
		logger.Error("error retrying flow node", zap.Int64("flowNodeInstanceId", id), zap.Error(err))
		respondWithError(w, httpStatus(err), err.Error())
		return
	}
	respondOK(w, map[string]any{"flowNodeInstanceId": id})
}
