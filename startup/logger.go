package startup

import (
	"fmt"
	"github.com/google/uuid"
	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	"github.com/sirupsen/logrus"
	"os"
	"time"
)

var Logger = logrus.New()

type CustomFormatter struct{}

func (f *CustomFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	entry.Data["id"] = generateUniqueID()

	msg := fmt.Sprintf("[%s] [%s] [%s] %s",
		entry.Time.Format("2006-01-02T15:04:05Z07:00"),
		entry.Level,
		entry.Data["id"],
		entry.Message,
	)
	for key, value := range entry.Data {
		if key == "id" {
			continue
		}
		msg += fmt.Sprintf(" %s=%v", key, value)
	}

	return []byte(msg + "\n"), nil
}

func generateUniqueID() string {
	return "ID-" + uuid.NewString()
}

// initLogger writes to stdout unless a log file path is configured, in which
// case the file is rotated hourly and kept for a week.
func initLogger(logFilePath string) {
	Logger.SetFormatter(&CustomFormatter{})
	Logger.SetLevel(logrus.InfoLevel)
	if logFilePath == "" {
		Logger.SetOutput(os.Stdout)
		return
	}

	writer, err := rotatelogs.New(
		logFilePath+"_%Y%m%d%H%M",
		rotatelogs.WithRotationTime(time.Hour),
		rotatelogs.WithMaxAge(7*24*time.Hour),
	)
	if err != nil {
		Logger.Fatalf("Failed to create rotatelogs hook: %v", err)
	}
	Logger.SetOutput(writer)
}
