package middleware

import "time"

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
}

type Metrics interface {
	ObserveHTTPRequest(method, route string, status int, duration time.Duration)
}
