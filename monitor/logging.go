package monitor

import (
	"time"

	"go.uber.org/zap"
)

// Logging logs each observed operation: debug on success, error on failure.
// The error is recorded here and still returned to the caller by the façade.
type Logging struct {
	log *zap.Logger
}

func NewLogging(log *zap.Logger) Logging {
	if log == nil {
		log = zap.NewNop()
	}
	return Logging{log: log}
}

func (l Logging) Observe(op string, took time.Duration, err error) {
	if err != nil {
		l.log.Error("kv store op failed",
			zap.String("op", op),
			zap.Duration("took", took),
			zap.Error(err),
		)
		return
	}
	l.log.Debug("kv store op",
		zap.String("op", op),
		zap.Duration("took", took),
	)
}
