package logging

import (
	"encoding/json"
	"net/http"
)

// HTTPHandler serves the ring buffer's entries as a JSON array, oldest
// first. Mounted next to the metrics endpoint for remote inspection.
func HTTPHandler(buffer *RingBuffer) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		entries := buffer.ReadAll()
		if entries == nil {
			entries = []LogEntry{}
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(entries); err != nil {
			http.Error(w, "failed to encode logs", http.StatusInternalServerError)
		}
	})
}
