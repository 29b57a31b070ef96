// Package logger wraps a global zap sugared logger, console or JSON encoded,
// with context helpers (ToContext, FromContext, WithName, WithKV), level
// parsing and leveled helpers such as InfoKV and ErrorKV.
//
// The alarm coordinator, observers and transports accept a context and extract
// the logger from it, so every log line carries the component name.
package logger
