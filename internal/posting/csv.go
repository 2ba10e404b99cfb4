package posting

import (
	"encoding/csv"
	"io"

	"lanehub/internal/schema"
)

// RenderCSV streams the posting table, header row first. After every row the
// csv buffer is drained and, when the destination can flush (an http response
// through FlushWriter), pushed to the client so large batches start
// downloading before the last row is rendered.
func RenderCSV(w io.Writer, table *schema.PostingTable) error {
	flusher, _ := w.(interface{ Flush() })
	writer := csv.NewWriter(w)
	if err := writer.Write(table.Header); err != nil {
		return err
	}
	for _, row := range table.Rows {
		if err := writer.Write(row); err != nil {
			return err
		}
		writer.Flush()
		if err := writer.Error(); err != nil {
			return err
		}
		if flusher != nil {
			flusher.Flush()
		}
	}
	writer.Flush()
	return writer.Error()
}
