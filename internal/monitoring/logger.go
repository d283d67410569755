package monitoring

import "log"

// Logf is the package-level diagnostic logger for the trajectory pipeline.
// It defaults to log.Printf but may be replaced via SetLogger so tools and
// tests can redirect or silence pipeline diagnostics.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the package logger. Passing nil installs a no-op
// logger, muting all pipeline diagnostics.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}
