package notification

import (
	"context"
	"crypto/ecdh"
	"crypto/rand"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	webpush "github.com/SherClockHolmes/webpush-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weidustudio/studio/internal/config"
	"github.com/weidustudio/studio/internal/pushsubscription"
	"github.com/weidustudio/studio/internal/pushsubscription/repositoryimpl"
	"github.com/weidustudio/studio/pkg/storage"
)

func vapidEnv(t *testing.T) *config.NotifyEnv {
	t.Helper()
	priv, pub, err := webpush.GenerateVAPIDKeys()
	require.NoError(t, err)
	return &config.NotifyEnv{VAPIDPublicKey: pub, VAPIDPrivateKey: priv, VAPIDContact: "mailto:test@example.com"}
}

func browserSubscription(t *testing.T, endpoint string) *pushsubscription.Subscription {
	t.Helper()
	key, err := ecdh.P256().GenerateKey(rand.Reader)
	require.NoError(t, err)
	auth := make([]byte, 16)
	_, err = rand.Read(auth)
	require.NoError(t, err)
	return &pushsubscription.Subscription{
		Endpoint:  endpoint,
		P256dhKey: base64.RawURLEncoding.EncodeToString(key.PublicKey().Bytes()),
		AuthKey:   base64.RawURLEncoding.EncodeToString(auth),
	}
}

func TestWebPush_SendsAndPrunesGoneSubscriptions(t *testing.T) {
	var mu sync.Mutex
	hits := map[string]int{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		hits[r.URL.Path]++
		mu.Unlock()
		assert.Equal(t, "aes128gcm", r.Header.Get("Content-Encoding"))
		assert.Contains(t, r.Header.Get("Authorization"), "vapid")
		if r.URL.Path == "/gone" {
			w.WriteHeader(http.StatusGone)
			return
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	ctx := context.Background()
	repo := repositoryimpl.NewYAMLRepository(storage.NewMemoryStorage())
	now := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	for _, path := range []string{"/alive", "/gone"} {
		_, err := pushsubscription.Register(ctx, repo, browserSubscription(t, srv.URL+path), now)
		require.NoError(t, err)
	}

	wp := NewWebPush(vapidEnv(t), repo).WithHTTPClient(srv.Client())
	require.NoError(t, wp.Notify(ctx, &Message{Title: "Reminder", Body: "Painting starts today", Urgent: true}))

	assert.Equal(t, map[string]int{"/alive": 1, "/gone": 1}, hits)
	left, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, srv.URL+"/alive", left[0].Endpoint)
}

func TestWebPush_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	ctx := context.Background()
	repo := repositoryimpl.NewYAMLRepository(storage.NewMemoryStorage())
	_, err := pushsubscription.Register(ctx, repo, browserSubscription(t, srv.URL+"/bad"), time.Now())
	require.NoError(t, err)

	err = NewWebPush(vapidEnv(t), repo).WithHTTPClient(srv.Client()).Notify(ctx, &Message{Title: "x"})
	assert.ErrorContains(t, err, "400")
}

func TestWebPush_SkipsWithoutKeys(t *testing.T) {
	repo := repositoryimpl.NewYAMLRepository(storage.NewMemoryStorage())
	assert.NoError(t, NewWebPush(&config.NotifyEnv{}, repo).Notify(context.Background(), &Message{Title: "x"}))
}
