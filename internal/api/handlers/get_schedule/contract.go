package get_schedule

type Logger interface {
	Info(format string, v ...interface{})
	Error(format string, v ...interface{})
}
