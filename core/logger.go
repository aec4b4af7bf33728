package core

// Logger is any leveled logging service.
//
// Implementations may extract known types from `args` (errors, the acting
// user) for structured reporting; everything else is printed as-is.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
