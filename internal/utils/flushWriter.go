package utils

import "net/http"

// FlushWriter pushes each written chunk to the client immediately so a large
// posting file starts downloading before the last row is rendered.
type FlushWriter struct {
	http.ResponseWriter
}

func (fw FlushWriter) Flush() {
	if flusher, ok := fw.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

func NewFlushWriter(w http.ResponseWriter) FlushWriter {
	return FlushWriter{ResponseWriter: w}
}
