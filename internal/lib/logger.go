package lib

import (
	"io"
	"os"

	"gitlab.com/TitanInd/hashfarm/internal/interfaces"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const timeLayout = "2006-01-02T15:04:05.000"

type Logger struct {
	*zap.SugaredLogger
}

// NewLogger builds a console logger, teeing into filepath when it is set
func NewLogger(level string, color, isProd, isJSON bool, filepath string) (*Logger, error) {
	return newSugared(level, color, isProd, isJSON, filepath, nil)
}

// NewLoggerMemory additionally copies every entry to wr, used to inspect output in tests
func NewLoggerMemory(level string, wr io.Writer) (*Logger, error) {
	return newSugared(level, false, false, false, "", wr)
}

// NewTestLogger logs only to stdout
func NewTestLogger() *Logger {
	l, _ := newSugared("debug", false, false, false, "", nil)
	return l
}

func (l *Logger) Named(name string) interfaces.ILogger {
	return &Logger{l.SugaredLogger.Named(name)}
}

func (l *Logger) With(args ...interface{}) interfaces.ILogger {
	return &Logger{l.SugaredLogger.With(args...)}
}

func newSugared(levelStr string, color, isProd, isJSON bool, filepath string, extra io.Writer) (*Logger, error) {
	level, err := zapcore.ParseLevel(levelStr)
	if err != nil {
		return nil, err
	}

	cores := []zapcore.Core{
		zapcore.NewCore(newEncoder(isProd, color, isJSON), zapcore.AddSync(os.Stdout), level),
	}

	if filepath != "" {
		file, err := os.OpenFile(filepath, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0o666)
		if err != nil {
			return nil, err
		}
		cores = append(cores, zapcore.NewCore(newEncoder(isProd, false, isJSON), zapcore.AddSync(file), zapcore.DebugLevel))
	}

	if extra != nil {
		cores = append(cores, zapcore.NewCore(newEncoder(false, false, false), zapcore.AddSync(extra), level))
	}

	opts := []zap.Option{zap.AddStacktrace(zap.ErrorLevel)}
	if !isProd {
		opts = append(opts, zap.Development())
	}

	return &Logger{zap.New(zapcore.NewTee(cores...), opts...).Sugar()}, nil
}

func newEncoder(isProd, color, isJSON bool) zapcore.Encoder {
	var cfg zapcore.EncoderConfig
	if isProd {
		cfg = zap.NewProductionEncoderConfig()
	} else {
		cfg = zap.NewDevelopmentEncoderConfig()
	}
	cfg.EncodeTime = zapcore.TimeEncoderOfLayout(timeLayout)

	if isJSON {
		return zapcore.NewJSONEncoder(cfg)
	}
	if color {
		cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	return zapcore.NewConsoleEncoder(cfg)
}
