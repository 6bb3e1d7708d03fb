package platform

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// withSurface runs a handler behind the surface middleware so SurfaceID(r)
// resolves, the way it does behind the real router.
func withSurface(h http.Handler) http.Handler {
	return SurfaceMiddleware(sessions.NewCookieStore([]byte("test-key")))(h)
}

func TestHealth(t *testing.T) {
	rec := httptest.NewRecorder()
	Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestSurfaceMiddlewareAssignsID(t *testing.T) {
	var sid string
	h := withSurface(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sid = SurfaceID(r)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.NotEmpty(t, sid)
	require.NotEmpty(t, rec.Result().Cookies(), "first visit must set the surface cookie")
}

// The command endpoint's reject paths never reach NATS, so a nil JetStream
// context is safe here.

func TestSendCommandRejectsMissingType(t *testing.T) {
	h := withSurface(SendCommand(nil))

	form := url.Values{"view": {"tools"}}
	req := httptest.NewRequest(http.MethodPost, "/command/x", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "_messageType")
}

func TestSendCommandRejectsBadJSON(t *testing.T) {
	h := withSurface(SendCommand(nil))

	req := httptest.NewRequest(http.MethodPost, "/command/x", strings.NewReader("{nope"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSendCommandSchemaChecksJSON(t *testing.T) {
	h := withSurface(SendCommand(nil))

	body := `{"_messageType":"SurfaceViewCommand","view":"dashboard"}`
	req := httptest.NewRequest(http.MethodPost, "/command/x", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "schema validation failed")
}

func TestSendCommandRejectsUnknownType(t *testing.T) {
	h := withSurface(SendCommand(nil))

	body := `{"_messageType":"DropTablesCommand"}`
	req := httptest.NewRequest(http.MethodPost, "/command/x", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "unknown command type")
}

func TestConsoleCommandRequiresLine(t *testing.T) {
	h := withSurface(ConsoleCommandHandler(nil))

	req := httptest.NewRequest(http.MethodPost, "/console", strings.NewReader(""))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "missing line")
}

func TestCommandSchemaHandler(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/schema/{type}", CommandSchemaHandler)

	t.Run("known type", func(t *testing.T) {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/schema/SurfaceViewCommand", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"view"`)
	})

	t.Run("unknown type", func(t *testing.T) {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/schema/Bogus", nil))

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
