package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/guiguit045/tailored-trainer-coach/pkg"

	"github.com/getsentry/sentry-go"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// rotated file size, in megabytes
const maxLogFileSizeMB = 50

type LoggerSetupParams struct {
	LogFileName      string
	LogToStdout      bool
	LogToStderr      bool
	LogLevel         string
	LogFormatJSON    bool
	Environment      string
	SentryEnabled    bool
	SentryDSN        string
	SentryServerName string
	// zero keeps rotated files forever
	MaxBackups int
	MaxAgeDays int
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Setup configures the package level logrus logger. The returned closer
// flushes sentry and closes the log file, if any.
func Setup(params LoggerSetupParams) io.Closer {
	if params.LogFormatJSON {
		logrus.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339Nano})
	}
	logrus.SetLevel(GetLevel(params.LogLevel))

	if params.SentryEnabled {
		setupSentry(params)
	}

	if params.LogFileName == "" {
		// stdio MCP servers own stdout, so they log to stderr
		if params.LogToStderr {
			logrus.SetOutput(os.Stderr)
		} else {
			logrus.SetOutput(os.Stdout)
			logrus.Debugln("writing logs only to STDOUT")
		}
		return nopCloser{}
	}

	if !strings.HasSuffix(params.LogFileName, ".log") {
		params.LogFileName += ".log"
	}
	logFile := &lumberjack.Logger{
		Filename:   params.LogFileName,
		MaxSize:    maxLogFileSizeMB,
		MaxBackups: params.MaxBackups,
		MaxAge:     params.MaxAgeDays,
		LocalTime:  false,
		Compress:   true,
	}

	if !params.LogToStdout {
		logrus.SetOutput(logFile)
		return logFile
	}

	out := pkg.NewCombinedWriter(os.Stdout, logFile)
	logrus.SetOutput(out)
	logrus.Debugf("writing logs to [%s] and STDOUT", params.LogFileName)
	return out
}

func setupSentry(params LoggerSetupParams) {
	err := sentry.Init(sentry.ClientOptions{
		Environment:      params.Environment,
		Dsn:              params.SentryDSN,
		TracesSampleRate: 1.0,
		ServerName:       params.SentryServerName,
	})
	if err != nil {
		logrus.Errorf("sentry init: %s", err)
		return
	}

	logrus.AddHook(NewSentryHook([]logrus.Level{
		logrus.PanicLevel,
		logrus.FatalLevel,
		logrus.ErrorLevel,
	}))
	logrus.Infoln("sentry set up")
}

// Flush waits for buffered sentry events, used before exiting.
func Flush() {
	sentry.Flush(2 * time.Second)
}

func GetLevel(level string) logrus.Level {
	switch strings.ToLower(level) {
	case "debug":
		return logrus.DebugLevel
	case "error":
		return logrus.ErrorLevel
	case "fatal":
		return logrus.FatalLevel
	case "info":
		return logrus.InfoLevel
	case "trace":
		return logrus.TraceLevel
	case "warn":
		return logrus.WarnLevel
	default:
		return logrus.TraceLevel
	}
}
