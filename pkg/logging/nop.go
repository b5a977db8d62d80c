package logging

type nopLogger struct{}

// NewNopLogger returns a logger that discards everything.
//
// Used as a null-object in tests and as the default before configuration
// has been loaded.
func NewNopLogger() Interface {
	return nopLogger{}
}

func (n nopLogger) WithField(key string, value interface{}) Interface { return n }
func (n nopLogger) WithError(err error) Interface                     { return n }
func (n nopLogger) Debug(msg string)                                  {}
func (n nopLogger) Info(msg string)                                   {}
func (n nopLogger) Warn(msg string)                                   {}
func (n nopLogger) Error(msg string)                                  {}
func (n nopLogger) Fatal(msg string)                                  {}
func (n nopLogger) Debugf(format string, args ...interface{})         {}
func (n nopLogger) Infof(format string, args ...interface{})          {}
func (n nopLogger) Warnf(format string, args ...interface{})          {}
func (n nopLogger) Errorf(format string, args ...interface{})         {}
func (n nopLogger) Fatalf(format string, args ...interface{})         {}
