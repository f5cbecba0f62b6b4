// Package logging builds the zap loggers used across cubefs.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/cube-soft/cube.core-sub000/internal/config"
)

// New creates a logger from the logging section of the configuration.
// Format "json" (default) is meant for machines, "text" for terminals.
func New(cfg config.LoggingConfig) (*zap.Logger, error) {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	development := cfg.Format == "text" || cfg.Format == "console"
	zapCfg := zap.Config{
		Level:             zap.NewAtomicLevelAt(level),
		Development:       development,
		Encoding:          encodingFormat(development),
		EncoderConfig:     encoderConfig(development),
		OutputPaths:       outputPaths(cfg.Output),
		ErrorOutputPaths:  []string{"stderr"},
		DisableStacktrace: !development,
	}
	return zapCfg.Build()
}

func parseLevel(level string) (zapcore.Level, error) {
	if level == "" {
		return zapcore.InfoLevel, nil
	}
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return zapcore.InfoLevel, fmt.Errorf("parsing log level %q: %w", level, err)
	}
	return l, nil
}

func outputPaths(output string) []string {
	if output == "" {
		return []string{"stderr"}
	}
	return []string{output}
}

func encodingFormat(development bool) string {
	if development {
		return "console"
	}
	return "json"
}

func encoderConfig(development bool) zapcore.EncoderConfig {
	if development {
		return zapcore.EncoderConfig{
			TimeKey:        "T",
			LevelKey:       "L",
			NameKey:        "N",
			MessageKey:     "M",
			StacktraceKey:  "S",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    zapcore.CapitalLevelEncoder,
			EncodeTime:     zapcore.ISO8601TimeEncoder,
			EncodeDuration: zapcore.StringDurationEncoder,
		}
	}

	return zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "message",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
}
