package live

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// HeartbeatInterval keeps idle streams open through proxies
var HeartbeatInterval = 25 * time.Second

// Snapshot produces the current state of a collection for streaming
type Snapshot func(ctx context.Context) (any, error)

// ServeSSE streams a snapshot of the topic on connect and after every change.
// The subscription ends with the request.
func ServeSSE(w http.ResponseWriter, r *http.Request, bus *Bus, topic string, snapshot Snapshot, logger *zap.Logger) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "stream unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ctx := r.Context()
	changes, cancel := bus.Subscribe(topic)
	defer cancel()

	send := func() bool {
		data, err := snapshot(ctx)
		if err != nil {
			logger.Warn("Failed to load live snapshot", zap.String("topic", topic), zap.Error(err))
			_, _ = w.Write([]byte("event: error\ndata: {}\n\n"))
			flusher.Flush()
			return true
		}
		payload, err := json.Marshal(data)
		if err != nil {
			logger.Error("Failed to encode live snapshot", zap.String("topic", topic), zap.Error(err))
			return false
		}
		_, _ = w.Write([]byte("data: "))
		_, _ = w.Write(payload)
		_, _ = w.Write([]byte("\n\n"))
		flusher.Flush()
		return true
	}

	if !send() {
		return
	}

	ticker := time.NewTicker(HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_, _ = w.Write([]byte(": ping\n\n"))
			flusher.Flush()
		case _, ok := <-changes:
			if !ok || !send() {
				return
			}
		}
	}
}
