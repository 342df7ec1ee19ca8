package analytics

import (
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var _ WorkDataCollector = new(LogFileDataCollector)

// LogFileDataCollector appends one json line per event to a file.
type LogFileDataCollector struct {
	fileName string
	logger   *zap.Logger
}

func NewLogFileDataCollector(fileName string) (*LogFileDataCollector, error) {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.StacktraceKey = ""
	fileEncoder := zapcore.NewJSONEncoder(encoderConfig)
	logFile, err := os.OpenFile(fileName, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	core := zapcore.NewCore(fileEncoder, zapcore.AddSync(logFile), zapcore.InfoLevel)
	return &LogFileDataCollector{
		fileName: fileName,
		logger:   zap.New(core),
	}, nil
}

func (lc *LogFileDataCollector) RecordAttempt(workType string, attempt int) {
	lc.logger.Info("attempt", zap.String("type", workType), zap.Int("attempt", attempt))
}

func (lc *LogFileDataCollector) RecordSuccess(workType string, attempt int, duration time.Duration) {
	lc.logger.Info("success", zap.String("type", workType), zap.Int("attempt", attempt), zap.Duration("duration", duration))
}

func (lc *LogFileDataCollector) RecordRetry(workType string, attempt int, delay time.Duration) {
	lc.logger.Info("retry", zap.String("type", workType), zap.Int("attempt", attempt), zap.Duration("delay", delay))
}

func (lc *LogFileDataCollector) RecordFailure(workType string, attempt int, reason string) {
	lc.logger.Info("failure", zap.String("type", workType), zap.Int("attempt", attempt), zap.String("reason", reason))
}

func (lc *LogFileDataCollector) RecordFlowNodeRetry(flowNodeInstanceID int64, result string) {
	lc.logger.Info("flownode retry", zap.Int64("flowNodeInstanceId", flowNodeInstanceID), zap.String("result", result))
}

func (lc *LogFileDataCollector) Sync() error {
	return lc.logger.Sync()
}
