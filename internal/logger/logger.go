package logger

import (
	"context"
	"log"
	"os"
	"strconv"

	"github.com/rollbar/rollbar-go"
	"github.com/rollbar/rollbar-go/errors"
)

// Logger reports to rollbar and mirrors every entry to a std logger.
// Arguments may be an error, a map[string]interface{} of extra fields, or
// a Person identifying the Telegram user the entry is about.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}

type Person struct {
	ChatID   int64
	Username string
}

type Options struct {
	Token   string
	Env     string
	Service string
}

type RollbarLogger struct {
	std *log.Logger
}

var _ Logger = (*RollbarLogger)(nil)

func New(opts Options) *RollbarLogger {
	rollbar.SetToken(opts.Token)
	rollbar.SetEnvironment(opts.Env)
	rollbar.SetServerHost(opts.Service)
	rollbar.SetStackTracer(errors.StackTracer)
	rollbar.SetEnabled(opts.Token != "")
	return &RollbarLogger{std: log.New(os.Stderr, "["+opts.Service+"] ", log.LstdFlags)}
}

// NewStd returns a logger that only writes to std.
func NewStd(std *log.Logger) *RollbarLogger {
	rollbar.SetEnabled(false)
	return &RollbarLogger{std: std}
}

// prepare turns args into rollbar arguments. The first Person travels in a
// context attached to this entry only, so concurrent callers never see each
// other's person.
func (l RollbarLogger) prepare(msg string, args []interface{}) []interface{} {
	var personSet bool
	out := make([]interface{}, 0, len(args)+1)
	out = append(out, msg)
	for _, arg := range args {
		if p, ok := arg.(Person); ok {
			if !personSet {
				out = append(out, rollbar.NewPersonContext(context.Background(), &rollbar.Person{
					Id:       formatID(p.ChatID),
					Username: p.Username,
				}))
				personSet = true
			}
			continue
		}
		out = append(out, arg)
	}
	return out
}

func (l RollbarLogger) print(msg string, args []interface{}) {
	l.std.Println(msg)
	for _, arg := range args {
		l.std.Printf("  %+v\n", arg)
	}
}

func (l RollbarLogger) Debug(msg string, args ...interface{}) {
	rollbar.Debug(l.prepare(msg, args)...)
	l.print(msg, args)
}

func (l RollbarLogger) Info(msg string, args ...interface{}) {
	rollbar.Info(l.prepare(msg, args)...)
	l.print(msg, args)
}

func (l RollbarLogger) Warn(msg string, args ...interface{}) {
	rollbar.Warning(l.prepare(msg, args)...)
	l.print(msg, args)
}

func (l RollbarLogger) Error(msg string, args ...interface{}) {
	rollbar.Error(l.prepare(msg, args)...)
	l.print(msg, args)
}

func (l RollbarLogger) Fatal(msg string, args ...interface{}) {
	rollbar.Critical(l.prepare(msg, args)...)
	l.print(msg, args)
	rollbar.Wait()
	l.std.Fatal(msg)
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
