package easyws

type logger interface {
	WithField(key string, value any) logger
	Debug(args ...any)
	Debugf(format string, args ...any)
	Debugln(args ...any)
	Info(args ...any)
	Infof(format string, args ...any)
	Infoln(args ...any)
	Warn(args ...any)
	Warnf(format string, args ...any)
	Warnln(args ...any)
	Error(args ...any)
	Errorf(format string, args ...any)
	Errorln(args ...any)
}

// noopLogger discards everything. It is the default sink until the builder
// is handed a real one.
type noopLogger struct{}

func (n noopLogger) WithField(string, any) logger { return n }
func (n noopLogger) Debug(...any)                 {}
func (n noopLogger) Debugf(string, ...any)        {}
func (n noopLogger) Debugln(...any)               {}
func (n noopLogger) Info(...any)                  {}
func (n noopLogger) Infof(string, ...any)         {}
func (n noopLogger) Infoln(...any)                {}
func (n noopLogger) Warn(...any)                  {}
func (n noopLogger) Warnf(string, ...any)         {}
func (n noopLogger) Warnln(...any)                {}
func (n noopLogger) Error(...any)                 {}
func (n noopLogger) Errorf(string, ...any)        {}
func (n noopLogger) Errorln(...any)               {}
