package platform

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"hellorun/internal/messages"

	"github.com/go-chi/chi/v5"
	"github.com/nats-io/nats.go/jetstream"
)

// Health returns 200 OK.
func Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// SendCommand handles all typed command submissions. The body carries the
// command fields plus a _messageType discriminator; JSON bodies are also
// schema-checked before the typed command is built. The surface id always
// comes from the cookie session, so a client cannot address another surface.
func SendCommand(js jetstream.JetStream) http.HandlerFunc {
	publisher := messages.NewPublisher(js)

	return func(w http.ResponseWriter, r *http.Request) {
		sid := SurfaceID(r)
		if sid == "" {
			http.Error(w, "missing surface id", http.StatusBadRequest)
			return
		}

		var data map[string]any
		var raw []byte // set for JSON bodies only

		// Parse request body - support JSON, multipart/form-data, and
		// x-www-form-urlencoded.
		contentType := r.Header.Get("Content-Type")
		switch {
		case strings.Contains(contentType, "application/json"):
			body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<20))
			if err != nil {
				http.Error(w, "unreadable body", http.StatusBadRequest)
				return
			}
			if err := json.Unmarshal(body, &data); err != nil {
				http.Error(w, "invalid JSON", http.StatusBadRequest)
				return
			}
			raw = body
		case strings.Contains(contentType, "multipart/form-data"):
			// The constant 10 << 20 limits the total memory used for parts to 10MB.
			if err := r.ParseMultipartForm(10 << 20); err != nil {
				http.Error(w, "invalid multipart form data", http.StatusBadRequest)
				return
			}
			data = formToMap(r)
		default:
			// Standard form data (x-www-form-urlencoded and query params).
			if err := r.ParseForm(); err != nil {
				http.Error(w, "invalid form data", http.StatusBadRequest)
				return
			}
			data = formToMap(r)
		}

		messageType, ok := data["_messageType"].(string)
		if !ok {
			http.Error(w, "missing _messageType", http.StatusBadRequest)
			return
		}
		delete(data, "_messageType")

		if raw != nil {
			if err := messages.ValidateJSON(messageType, raw); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
		}

		data["surface_id"] = sid

		cmd, err := messages.BuildCommand(messageType, data)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		// Publisher validates again before the wire; validating here keeps
		// the error on the 400 side.
		if err := cmd.Validate(); err != nil {
			http.Error(w, fmt.Sprintf("validation error: %v", err), http.StatusBadRequest)
			return
		}

		if err := publisher.PublishCommand(r.Context(), cmd); err != nil {
			http.Error(w, fmt.Sprintf("publish error: %v", err), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{
			"status": "sent",
			"type":   messageType,
		})
	}
}

func formToMap(r *http.Request) map[string]any {
	data := make(map[string]any)
	for key, values := range r.Form {
		if len(values) == 1 {
			data[key] = values[0]
		} else {
			data[key] = values
		}
	}
	return data
}

// ToolRunHandler publishes a run command for one catalog tool. Unknown ids
// pass validation here; the tool engine answers them with a rejection event
// so the surface still sees why nothing ran.
func ToolRunHandler(js jetstream.JetStream) http.HandlerFunc {
	publisher := messages.NewPublisher(js)

	return func(w http.ResponseWriter, r *http.Request) {
		sid := SurfaceID(r)
		if sid == "" {
			http.Error(w, "missing surface id", http.StatusBadRequest)
			return
		}

		cmd := messages.NewToolRunCommand(chi.URLParam(r, "tool"), sid)
		if err := cmd.Validate(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err := publisher.PublishCommand(r.Context(), cmd); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusAccepted)
	}
}

// SurfaceViewHandler publishes a view switch for the caller's surface.
func SurfaceViewHandler(js jetstream.JetStream) http.HandlerFunc {
	publisher := messages.NewPublisher(js)

	return func(w http.ResponseWriter, r *http.Request) {
		sid := SurfaceID(r)
		if sid == "" {
			http.Error(w, "missing surface id", http.StatusBadRequest)
			return
		}

		cmd := messages.NewSurfaceViewCommand(sid, chi.URLParam(r, "view"))
		if err := cmd.Validate(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err := publisher.PublishCommand(r.Context(), cmd); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusAccepted)
	}
}

// ConsoleCommandHandler publishes the prompt line to console.surface.<sid>.command.
func ConsoleCommandHandler(js jetstream.JetStream) http.HandlerFunc {
	publisher := messages.NewPublisher(js)

	return func(w http.ResponseWriter, r *http.Request) {
		sid := SurfaceID(r)
		if sid == "" {
			http.Error(w, "missing surface id", http.StatusBadRequest)
			return
		}

		var line string
		contentType := r.Header.Get("Content-Type")
		if strings.Contains(contentType, "application/json") {
			var body struct {
				Line string `json:"line"`
			}
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				http.Error(w, "bad body", http.StatusBadRequest)
				return
			}
			line = body.Line
		} else {
			if strings.Contains(contentType, "multipart/form-data") {
				_ = r.ParseMultipartForm(10 << 20)
			} else {
				_ = r.ParseForm()
			}
			line = r.FormValue("line")
		}

		if line == "" {
			http.Error(w, "missing line", http.StatusBadRequest)
			return
		}

		cmd := messages.NewConsoleCommandMessage(sid, line)
		if err := publisher.PublishCommand(r.Context(), cmd); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusAccepted)
	}
}

// CommandSchemaHandler returns the field schema for one command type, for
// clients that build command forms dynamically.
func CommandSchemaHandler(w http.ResponseWriter, r *http.Request) {
	messageType := chi.URLParam(r, "type")
	fields := messages.GetFieldSchemas(messageType)
	if fields == nil {
		http.Error(w, "unknown command type", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"type":   messageType,
		"fields": fields,
	})
}
