package notification

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/weidustudio/studio/internal/config"
	"github.com/weidustudio/studio/internal/pushsubscription"
	"github.com/weidustudio/studio/pkg/cerr"
	"github.com/weidustudio/studio/pkg/clog"
)

type Server struct {
	env      *config.NotifyEnv
	repo     pushsubscription.Repository
	notifier Notifier
	now      func() time.Time
}

func NewServer(env *config.NotifyEnv, repo pushsubscription.Repository, notifier Notifier) *Server {
	return &Server{
		env:      env,
		repo:     repo,
		notifier: notifier,
		now:      time.Now,
	}
}

func (s *Server) Mount(r chi.Router) {
	r.Get("/push/vapid-public-key", s.GetVapidPublicKey)
	r.Post("/push/subscriptions", s.RegisterPushSubscription)
	r.Delete("/push/subscriptions", s.UnregisterPushSubscription)
	r.Post("/push/test", s.SendTestNotification)
}

type subscriptionRequest struct {
	Endpoint  string `json:"endpoint"`
	P256dhKey string `json:"p256dh_key"`
	AuthKey   string `json:"auth_key"`
}

func (s *Server) GetVapidPublicKey(w http.ResponseWriter, r *http.Request) {
	if s.env.VAPIDPublicKey == "" {
		cerr.SetNewJSONError(r.Context(), cerr.FailedPrecondition, "VAPID keys not configured", nil)
		return
	}
	cerr.SetJSONResponse(r.Context(), map[string]string{"public_key": s.env.VAPIDPublicKey})
}

func (s *Server) RegisterPushSubscription(w http.ResponseWriter, r *http.Request) {
	var req subscriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		cerr.SetNewJSONError(r.Context(), cerr.InvalidArgument, "invalid request body", err)
		return
	}
	sub, err := pushsubscription.Register(r.Context(), s.repo, &pushsubscription.Subscription{
		Endpoint:  req.Endpoint,
		P256dhKey: req.P256dhKey,
		AuthKey:   req.AuthKey,
		UserAgent: r.UserAgent(),
	}, s.now())
	if err != nil {
		cerr.SetJSONError(r.Context(), err)
		return
	}
	clog.AddAttribute(r.Context(), "subscription_id", sub.ID)
	cerr.SetJSONResponseWithStatus(r.Context(), http.StatusCreated, map[string]string{"id": sub.ID})
}

// UnregisterPushSubscription takes the endpoint from the body or, for
// clients that cannot send a DELETE body, from ?endpoint=.
func (s *Server) UnregisterPushSubscription(w http.ResponseWriter, r *http.Request) {
	endpoint := r.URL.Query().Get("endpoint")
	if endpoint == "" {
		var req subscriptionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			cerr.SetNewJSONError(r.Context(), cerr.InvalidArgument, "invalid request body", err)
			return
		}
		endpoint = req.Endpoint
	}
	if err := pushsubscription.Unregister(r.Context(), s.repo, endpoint); err != nil {
		cerr.SetJSONError(r.Context(), err)
		return
	}
	cerr.SetJSONResponse(r.Context(), nil)
}

func (s *Server) SendTestNotification(w http.ResponseWriter, r *http.Request) {
	err := s.notifier.Notify(r.Context(), &Message{
		Title: "Studio test",
		Body:  "Notifications are working!",
		Tag:   "test",
	})
	if err != nil {
		cerr.SetNewJSONError(r.Context(), cerr.Unavailable, "notification failed", err)
		return
	}
	cerr.SetJSONResponse(r.Context(), nil)
}
