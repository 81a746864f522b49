package log

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// logger : 프로젝트 전역 logrus 인스턴스
var logger = newLogger(os.Stderr)

func newLogger(out io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(out)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	l.SetLevel(logrus.InfoLevel)
	return l
}

// SetLevel : "debug", "info", "warn", "error" 등. 잘못된 값이면 info 유지
func SetLevel(level string) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		logger.Warnf("unknown log level %q, keep %s", level, logger.GetLevel())
		return
	}
	logger.SetLevel(lvl)
}

// SetOutput : 테스트에서 출력 캡처용
func SetOutput(out io.Writer) {
	logger.SetOutput(out)
}

// Writer : 다른 라이브러리 로그를 info 레벨로 흘려보낼 때 사용
func Writer() *io.PipeWriter {
	return logger.Writer()
}

// SetJSON : 파일/수집기로 보낼 때 JSON 포맷
func SetJSON() {
	logger.SetFormatter(&logrus.JSONFormatter{})
}

func WithFields(fields map[string]interface{}) *logrus.Entry {
	return logger.WithFields(fields)
}

func Debug(args ...interface{})                 { logger.Debug(args...) }
func Debugf(format string, args ...interface{}) { logger.Debugf(format, args...) }
func Info(args ...interface{})                  { logger.Info(args...) }
func Infof(format string, args ...interface{})  { logger.Infof(format, args...) }
func Warn(args ...interface{})                  { logger.Warn(args...) }
func Warnf(format string, args ...interface{})  { logger.Warnf(format, args...) }
func Error(args ...interface{})                 { logger.Error(args...) }
func Errorf(format string, args ...interface{}) { logger.Errorf(format, args...) }
func Fatal(args ...interface{})                 { logger.Fatal(args...) }
func Fatalf(format string, args ...interface{}) { logger.Fatalf(format, args...) }
