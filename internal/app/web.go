package app

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/relabs-tech/run_tracker/internal/panel"
)

// NewWebHandler serves the tracker page, its websocket and the JSON API.
// staticDir is served at / when not empty.
func NewWebHandler(hub *Hub, staticDir string) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/ws", hub.HandleWS)

	// JSON API endpoint: latest screen
	mux.HandleFunc("/api/state", func(w http.ResponseWriter, r *http.Request) {
		s, ok := hub.Last()
		if !ok {
			http.Error(w, "no data yet", http.StatusServiceUnavailable)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(s); err != nil {
			log.Printf("web: json encode error: %v", err)
		}
	})

	mux.HandleFunc("/api/help", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(map[string]string{"help": panel.HelpText}); err != nil {
			log.Printf("web: json encode error: %v", err)
		}
	})

	// Commands without a websocket, e.g. from curl.
	mux.HandleFunc("/api/command", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var cmd panel.Command
		if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil || cmd.Action == "" {
			http.Error(w, "invalid command", http.StatusBadRequest)
			return
		}
		hub.submit(cmd)
		w.WriteHeader(http.StatusAccepted)
	})

	if staticDir != "" {
		mux.Handle("/", http.FileServer(http.Dir(staticDir)))
	}
	return mux
}
