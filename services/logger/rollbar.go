package logsvc

import (
	"log"

	"github.com/rollbar/rollbar-go"
	"github.com/rollbar/rollbar-go/errors"

	"github.com/classio/classio/core"
	"github.com/classio/classio/core/user"
)

// RollbarLogger reports to rollbar and echoes everything to a console
// logger. When a user.User appears among the args it is attached to the
// rollbar occurrence as the affected person.
type RollbarLogger struct {
	echo *ConsoleLogger
}

var _ core.Logger = (*RollbarLogger)(nil)

func NewRollbarLogger(std *log.Logger, conf *core.Config) *RollbarLogger {
	rollbar.SetToken(conf.RollbarToken)
	rollbar.SetEnvironment(conf.Env)
	rollbar.SetCodeVersion(conf.Build)
	rollbar.SetStackTracer(errors.StackTracer)
	return &RollbarLogger{echo: NewConsoleLogger(std)}
}

func (l RollbarLogger) Enable(enabled bool) {
	rollbar.SetEnabled(enabled)
}

func (l RollbarLogger) report(send func(...interface{}), msg string, args []interface{}) []interface{} {
	payload := make([]interface{}, 0, len(args)+1)
	payload = append(payload, msg)

	var person *user.User
	rest := args[:0:0]
	for _, arg := range args {
		if usr, ok := arg.(user.User); ok && person == nil {
			person = &usr
			continue
		}
		payload = append(payload, arg)
		rest = append(rest, arg)
	}
	if person != nil {
		rollbar.SetPerson(person.ID, person.Name, person.Email)
	} else {
		rollbar.ClearPerson()
	}
	send(payload...)
	return rest
}

func (l RollbarLogger) Debug(msg string, args ...interface{}) {
	l.echo.Debug(msg, l.report(rollbar.Debug, msg, args)...)
}

func (l RollbarLogger) Info(msg string, args ...interface{}) {
	l.echo.Info(msg, l.report(rollbar.Info, msg, args)...)
}

func (l RollbarLogger) Warn(msg string, args ...interface{}) {
	l.echo.Warn(msg, l.report(rollbar.Warning, msg, args)...)
}

func (l RollbarLogger) Error(msg string, args ...interface{}) {
	l.echo.Error(msg, l.report(rollbar.Error, msg, args)...)
}

func (l RollbarLogger) Fatal(msg string, args ...interface{}) {
	l.echo.Fatal(msg, l.report(rollbar.Critical, msg, args)...)
}
