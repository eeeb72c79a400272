// Package logger 基于 zap 的结构化日志
package logger

import (
	"go.uber.org/zap"
)

const (
	EnvDev  = "dev"
	EnvProd = "prod"
)

var logger = zap.NewNop()

// New 按环境创建 logger：prod 输出 JSON，其余为开发格式
func New(env string) (*zap.Logger, error) {
	if env == EnvProd {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// Init 创建并设置全局 logger
func Init(env string) (*zap.Logger, error) {
	l, err := New(env)
	if err != nil {
		return nil, err
	}
	logger = l
	zap.ReplaceGlobals(l)
	return l, nil
}

// L 返回全局 logger
func L() *zap.Logger {
	return logger
}

func Info(msg string, fields ...zap.Field) {
	logger.Info(msg, fields...)
}

func Warn(msg string, fields ...zap.Field) {
	logger.Warn(msg, fields...)
}

func Error(msg string, fields ...zap.Field) {
	logger.Error(msg, fields...)
}

func Fatal(msg string, fields ...zap.Field) {
	logger.Fatal(msg, fields...)
}

// Sync 刷新缓冲
func Sync() {
	_ = logger.Sync()
}
