package lib

import "gitlab.com/TitanInd/hashfarm/internal/interfaces"

// LoggerMock discards everything
type LoggerMock struct{}

func NewLoggerMock() *LoggerMock {
	return &LoggerMock{}
}

func (l *LoggerMock) Debug(args ...interface{}) {}
func (l *LoggerMock) Info(args ...interface{}) {}
func (l *LoggerMock) Warn(args ...interface{}) {}
func (l *LoggerMock) Error(args ...interface{}) {}

func (l *LoggerMock) Debugf(template string, args ...interface{}) {}
func (l *LoggerMock) Infof(template string, args ...interface{}) {}
func (l *LoggerMock) Warnf(template string, args ...interface{}) {}
func (l *LoggerMock) Errorf(template string, args ...interface{}) {}

func (l *LoggerMock) Named(name string) interfaces.ILogger { return l }
func (l *LoggerMock) With(args ...interface{}) interfaces.ILogger { return l }
func (l *LoggerMock) Sync() error { return nil }
