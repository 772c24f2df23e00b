package easyws

import "go.uber.org/zap"

// zapLogger adapts a zap logger to the package logger interface.
type zapLogger struct {
	sugar *zap.SugaredLogger
}

func newZapLogger(l *zap.Logger) logger {
	return &zapLogger{sugar: l.Sugar()}
}

func (l *zapLogger) WithField(key string, value any) logger {
	return &zapLogger{sugar: l.sugar.With(key, value)}
}

func (l *zapLogger) Debug(args ...any) {
	l.sugar.Debug(args...)
}

func (l *zapLogger) Debugf(format string, args ...any) {
	l.sugar.Debugf(format, args...)
}

func (l *zapLogger) Debugln(args ...any) {
	l.sugar.Debugln(args...)
}

func (l *zapLogger) Info(args ...any) {
	l.sugar.Info(args...)
}

func (l *zapLogger) Infof(format string, args ...any) {
	l.sugar.Infof(format, args...)
}

func (l *zapLogger) Infoln(args ...any) {
	l.sugar.Infoln(args...)
}

func (l *zapLogger) Warn(args ...any) {
	l.sugar.Warn(args...)
}

func (l *zapLogger) Warnf(format string, args ...any) {
	l.sugar.Warnf(format, args...)
}

func (l *zapLogger) Warnln(args ...any) {
	l.sugar.Warnln(args...)
}

func (l *zapLogger) Error(args ...any) {
	l.sugar.Error(args...)
}

func (l *zapLogger) Errorf(format string, args ...any) {
	l.sugar.Errorf(format, args...)
}

func (l *zapLogger) Errorln(args ...any) {
	l.sugar.Errorln(args...)
}
