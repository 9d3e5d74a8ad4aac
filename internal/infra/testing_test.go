package infra

import (
	"github.com/Vovarama1992/go-utils/logger"
	"go.uber.org/zap"
)

func nopLogger() *logger.ZapLogger {
	return logger.NewZapLogger(zap.NewNop().Sugar())
}
