package middleware

import (
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

const correlationIDField = "correlationID"

type CustomLogFormatter struct {
	log.TextFormatter
}

// override the TextFormatter.Format method as we need the customFormat in
// logging. The correlation id travels inside the entry's own fields so
// concurrent requests never read each other's id.
func (f *CustomLogFormatter) Format(entry *log.Entry) ([]byte, error) {
	timestamp := entry.Time.Format("2006-01-02T15:04:05.000-07:00")

	correlationID := "-"
	var fields string
	if len(entry.Data) > 0 {
		fieldStr := make([]string, 0, len(entry.Data))
		for k, v := range entry.Data {
			if k == correlationIDField {
				correlationID = fmt.Sprintf("%v", v)
				continue
			}
			fieldStr = append(fieldStr, fmt.Sprintf("%v=%v", k, v))
		}
		if len(fieldStr) > 0 {
			fields = " " + strings.Join(fieldStr, " ")
		}
	}

	logMessage := fmt.Sprintf("%s %s %s %s %s\n",
		timestamp,
		strings.ToUpper(entry.Level.String()),
		correlationID,
		" "+entry.Message,
		fields,
	)

	return []byte(logMessage), nil
}

type extendWriter struct {
	http.ResponseWriter
	statusCode int
}

func (e *extendWriter) WriteHeader(statusCode int) {
	e.ResponseWriter.WriteHeader(statusCode)
	e.statusCode = statusCode
}

var customizeOnce sync.Once

func Logging(next http.Handler) http.Handler {
	customizeOnce.Do(func() {
		log.SetFormatter(&CustomLogFormatter{})
	})
	fn := func(w http.ResponseWriter, r *http.Request) {
		startTime := time.Now()
		cid := r.Context().Value(correlationIDKey).(string)
		extendedWriter := &extendWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}
		next.ServeHTTP(extendedWriter, r)
		log.WithField(correlationIDField, cid).Info(r.Method, " ", r.URL, " ", extendedWriter.statusCode, " ", time.Since(startTime))
	}
	return http.HandlerFunc(fn)
}
