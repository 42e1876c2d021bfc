package logsvc

import (
	"context"
	"log"

	"github.com/rollbar/rollbar-go"
	"github.com/rollbar/rollbar-go/errors"

	"github.com/trezcool/schoolsaas/core"
	"github.com/trezcool/schoolsaas/core/user"
)

// RollbarLogger writes every entry to a std logger and reports it to rollbar when enabled.
type RollbarLogger struct {
	std    *log.Logger
	client *rollbar.Client
}

var _ core.Logger = (*RollbarLogger)(nil)

func NewRollbarLogger(std *log.Logger, conf *core.Config) *RollbarLogger {
	client := rollbar.New(conf.RollbarToken, conf.Env, conf.Build, conf.Server.Host, conf.WorkDir)
	client.SetStackTracer(errors.StackTracer)
	client.SetEnabled(conf.RollbarToken != "")
	return &RollbarLogger{std: std, client: client}
}

// Enable turns rollbar reporting on or off. Reporting also needs a token.
func (l *RollbarLogger) Enable(enabled bool) {
	l.client.SetEnabled(enabled && l.client.Token() != "")
}

// Close waits for the pending rollbar reports.
func (l *RollbarLogger) Close() error {
	return l.client.Close()
}

// args may hold an error, a map of extra data and the user.User the entry is about.
// The user goes into the rollbar person context, the rest is reported as is.
func (l *RollbarLogger) log(level, msg string, args []interface{}) {
	ctx := context.Background()
	fields := make([]interface{}, 0, len(args)+2)
	fields = append(fields, msg)
	for _, arg := range args {
		var usr *user.User
		switch v := arg.(type) {
		case user.User:
			usr = &v
		case *user.User:
			usr = v
		}
		if usr != nil {
			ctx = rollbar.NewPersonContext(ctx, &rollbar.Person{Id: usr.ID, Username: usr.FullName(), Email: usr.Email})
			continue
		}
		fields = append(fields, arg)
	}
	fields = append(fields, ctx)
	l.client.Log(level, fields...)

	l.std.Printf("[%s] %s", level, msg)
	for _, arg := range args {
		if _, ok := arg.(error); ok {
			l.std.Printf("%+v", arg)
		}
	}
}

func (l *RollbarLogger) Debug(msg string, args ...interface{}) { l.log(rollbar.DEBUG, msg, args) }
func (l *RollbarLogger) Info(msg string, args ...interface{})  { l.log(rollbar.INFO, msg, args) }
func (l *RollbarLogger) Warn(msg string, args ...interface{})  { l.log(rollbar.WARN, msg, args) }
func (l *RollbarLogger) Error(msg string, args ...interface{}) { l.log(rollbar.ERR, msg, args) }

func (l *RollbarLogger) Fatal(msg string, args ...interface{}) {
	l.log(rollbar.CRIT, msg, args)
	_ = l.client.Close()
	l.std.Fatal(msg)
}
