package main

import (
	"log"
	"log/slog"

	"hamutea-admin/pkg/logging"
)

// newServerErrorLog 把 http.Server 内部错误（连接被重置、请求头过大等）转入结构化日志
func newServerErrorLog(l *logging.Logger) *log.Logger {
	return slog.NewLogLogger(l.Named("http-server").Handler(), slog.LevelWarn)
}
