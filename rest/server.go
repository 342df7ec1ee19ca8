package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/mohitkumar/flowrt/logger"
	"github.com/mohitkumar/flowrt/model"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type FlowNodeRetrier interface {
	Retry(ctx context.Context, flowNodeInstanceID int64) error
}

type WorkScheduler interface {
	Submit(descriptor model.WorkDescriptor) (string, error)
	SetDelay(delayMillis int64)
	GetDelay() int64
}

type TriggerScheduler interface {
	Schedule(trigger model.Trigger, descriptor model.WorkDescriptor) error
	Unschedule(name string) bool
}

type Server struct {
	http.Server
	Port      int
	retrier   FlowNodeRetrier
	scheduler WorkScheduler
	triggers  TriggerScheduler
}

func NewServer(httpPort int, retrier FlowNodeRetrier, scheduler WorkScheduler, triggers TriggerScheduler, metrics http.Handler) (*Server, error) {
	s := &Server{
		Server: http.Server{
			Addr:        fmt.Sprintf(":%d", httpPort),
			IdleTimeout: 2 * time.Second,
		},
		retrier:   retrier,
		scheduler: scheduler,
		triggers:  triggers,
		Port:      httpPort,
	}

	router := mux.NewRouter()
	router.HandleFunc("/flownode/{id}/retry", s.HandleRetryFlowNode).Methods(http.MethodPost)

	router.HandleFunc("/scheduler/delay", s.HandleGetDelay).Methods(http.MethodGet)
	router.HandleFunc("/scheduler/delay", s.HandleSetDelay).Methods(http.MethodPut)

	router.HandleFunc("/work", s.HandleSubmitWork).Methods(http.MethodPost)

	router.HandleFunc("/trigger", s.HandleScheduleTrigger).Methods(http.MethodPost)
	router.HandleFunc("/trigger/{name}", s.HandleUnscheduleTrigger).Methods(http.MethodDelete)

	if metrics != nil {
		router.Handle("/metrics", metrics).Methods(http.MethodGet)
	}

	router.Use(loggingMiddleware)
	s.Handler = router
	return s, nil
}

func (s *Server) Start() error {
	logger.Info("starting http server on", zap.Int("port", s.Port))
	if err := s.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Stop() error {
	logger.Info("stopping http server")
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	err := s.Shutdown(ctx)
	if err != nil {
		logger.Error("error shutting down http server", zap.Error(err))
	}
	return nil
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.Debug(r.RequestURI, zap.String("method", r.Method))
		next.ServeHTTP(w, r)
	})
}

// httpStatus maps the status of a typed error to the http code answered.
func httpStatus(err error) int {
	switch status.Code(err) {
	case codes.NotFound:
		return http.StatusNotFound
	case codes.FailedPrecondition:
		return http.StatusConflict
	case codes.InvalidArgument:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, _ := json.Marshal(payload)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func respondOK(w http.ResponseWriter, message map[string]any) {
	respondWithJSON(w, http.StatusOK, message)
}

func respondOKWithoutBody(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}
