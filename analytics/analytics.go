package analytics

import (
	"fmt"
	"time"
)

type DataCollectorConfig struct {
	FileName      string
	CollectorType DataCollectorType
}

type DataCollectorType string

const PROMETHEUS_DATA_COLLECTOR DataCollectorType = "PROMETHEUS"
const LOG_FILE_DATA_COLLECTOR DataCollectorType = "LOG_FILE"
const NOOP_DATA_COLLECTOR DataCollectorType = "NOOP"

// WorkDataCollector receives the outcome of every work attempt and of every
// flow node retry.
type WorkDataCollector interface {
	RecordAttempt(workType string, attempt int)
	RecordSuccess(workType string, attempt int, duration time.Duration)
	RecordRetry(workType string, attempt int, delay time.Duration)
	RecordFailure(workType string, attempt int, reason string)
	RecordFlowNodeRetry(flowNodeInstanceID int64, result string)
}

const FLOW_NODE_RETRY_OK = "ok"
const FLOW_NODE_RETRY_NOT_FOUND = "not_found"
const FLOW_NODE_RETRY_INVALID_STATE = "invalid_state"
const FLOW_NODE_RETRY_ERROR = "error"

func NewDataCollector(config DataCollectorConfig) (WorkDataCollector, error) {
	switch config.CollectorType {
	case PROMETHEUS_DATA_COLLECTOR, "":
		return NewPrometheusDataCollector(), nil
	case LOG_FILE_DATA_COLLECTOR:
		return NewLogFileDataCollector(config.FileName)
	case NOOP_DATA_COLLECTOR:
		return NewNoopDataCollector(), nil
	}
	return nil, fmt.Errorf("unsupported data collector %s", config.CollectorType)
}

var _ WorkDataCollector = new(noopDataCollector)

type noopDataCollector struct{}

func NewNoopDataCollector() *noopDataCollector {
	return &noopDataCollector{}
}

func (n *noopDataCollector) RecordAttempt(string, int) {}
func (n *noopDataCollector) RecordSuccess(string, int, time.Duration) {}
func (n *noopDataCollector) RecordRetry(string, int, time.Duration) {}
func (n *noopDataCollector) RecordFailure(string, int, string) {}
func (n *noopDataCollector) RecordFlowNodeRetry(flowNodeInstanceID int64, result string) {}
