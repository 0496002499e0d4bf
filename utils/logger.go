package utils

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Log is the process-wide structured logger.
var Log = newLogger()

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.Out = os.Stdout
	l.Formatter = &logrus.TextFormatter{
		DisableLevelTruncation: true,
		PadLevelText:           true,
		TimestampFormat:        "2006/01/02 15:04:05",
		FullTimestamp:          true,
	}
	return l
}

// SetLogLevel accepts logrus level names; unknown names keep the current level.
func SetLogLevel(name string) {
	level, err := logrus.ParseLevel(name)
	if err != nil {
		Log.WithField("level", name).Warn("unknown log level, keeping " + Log.GetLevel().String())
		return
	}
	Log.SetLevel(level)
}
