package log

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

var logger = logrus.New()

func init() {
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05.000",
	})
	logger.SetOutput(os.Stdout)
	logger.SetLevel(logrus.InfoLevel)
}

// Setup switches the logger to file output with rotation. Empty filename
// keeps stdout only.
func Setup(filename string, level string) {
	if lv, err := logrus.ParseLevel(level); err == nil {
		logger.SetLevel(lv)
	}
	if filename == "" {
		return
	}
	rotator := &lumberjack.Logger{
		Filename:   filename,
		MaxSize:    100, // MB
		MaxBackups: 10,
		MaxAge:     30, // days
		Compress:   true,
	}
	logger.SetOutput(io.MultiWriter(os.Stdout, rotator))
}

func Debug(args ...interface{}) { logger.Debug(args...) }

func Debugf(format string, args ...interface{}) { logger.Debugf(format, args...) }

func Info(args ...interface{}) { logger.Info(args...) }

func Infof(format string, args ...interface{}) { logger.Infof(format, args...) }

func Warn(args ...interface{}) { logger.Warn(args...) }

func Warnf(format string, args ...interface{}) { logger.Warnf(format, args...) }

func Error(args ...interface{}) { logger.Error(args...) }

func Errorf(format string, args ...interface{}) { logger.Errorf(format, args...) }

func Fatal(args ...interface{}) { logger.Fatal(args...) }

func Fatalf(format string, args ...interface{}) { logger.Fatalf(format, args...) }
