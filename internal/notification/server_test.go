package notification

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weidustudio/studio/internal/config"
	"github.com/weidustudio/studio/internal/pushsubscription/repositoryimpl"
	"github.com/weidustudio/studio/pkg/cerr"
	"github.com/weidustudio/studio/pkg/storage"
)

func newRouter(s *Server) http.Handler {
	r := chi.NewRouter()
	r.Use(cerr.NewJSONResponseChiMiddleware())
	s.Mount(r)
	return r
}

func serve(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, strings.NewReader(body)))
	return rec
}

func TestServer_PushSubscriptions(t *testing.T) {
	repo := repositoryimpl.NewYAMLRepository(storage.NewMemoryStorage())
	h := newRouter(NewServer(&config.NotifyEnv{VAPIDPublicKey: "pub"}, repo, NewMulti()))

	rec := serve(h, http.MethodGet, "/push/vapid-public-key", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"public_key":"pub"}`, rec.Body.String())

	body := `{"endpoint":"https://push.example.com/x","p256dh_key":"k","auth_key":"a"}`
	rec = serve(h, http.MethodPost, "/push/subscriptions", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	rec = serve(h, http.MethodPost, "/push/subscriptions", body)
	require.Equal(t, http.StatusCreated, rec.Code)

	all, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 1)

	rec = serve(h, http.MethodPost, "/push/subscriptions", `{"endpoint":"https://push.example.com/y"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(h, http.MethodDelete, "/push/subscriptions?endpoint=https://push.example.com/x", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = serve(h, http.MethodDelete, "/push/subscriptions", `{"endpoint":"https://push.example.com/x"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_VapidKeyMissing(t *testing.T) {
	repo := repositoryimpl.NewYAMLRepository(storage.NewMemoryStorage())
	h := newRouter(NewServer(&config.NotifyEnv{}, repo, NewMulti()))
	assert.Equal(t, http.StatusPreconditionFailed, serve(h, http.MethodGet, "/push/vapid-public-key", "").Code)
}

func TestServer_SendTestNotification(t *testing.T) {
	repo := repositoryimpl.NewYAMLRepository(storage.NewMemoryStorage())
	rec := &recorder{name: "rec"}
	h := newRouter(NewServer(&config.NotifyEnv{}, repo, rec))
	assert.Equal(t, http.StatusNoContent, serve(h, http.MethodPost, "/push/test", "").Code)
	assert.Len(t, rec.messages(), 1)

	rec.err = errors.New("offline")
	assert.Equal(t, http.StatusServiceUnavailable, serve(h, http.MethodPost, "/push/test", "").Code)
}

func TestFromEnv(t *testing.T) {
	repo := repositoryimpl.NewYAMLRepository(storage.NewMemoryStorage())
	m, err := FromEnv(context.Background(), &config.NotifyEnv{}, repo)
	require.NoError(t, err)
	assert.Equal(t, 1, m.Len())

	m, err = FromEnv(context.Background(), &config.NotifyEnv{
		NtfyServer: "https://ntfy.sh", NtfyTopic: "studio",
		SlackBotToken: "xoxb", SlackChannel: "C1",
	}, repo)
	require.NoError(t, err)
	assert.Equal(t, 3, m.Len())
}
