package pushsubscription

import (
	"time"

	"github.com/weidustudio/studio/pkg/validation"
)

// Subscription is a browser's Web Push registration.
type Subscription struct {
	ID        string    `yaml:"id" json:"id"`
	Endpoint  string    `yaml:"endpoint" json:"endpoint" validate:"required,url,max=512"`
	P256dhKey string    `yaml:"p256dh_key" json:"p256dh_key" validate:"required,max=256"`
	AuthKey   string    `yaml:"auth_key" json:"auth_key" validate:"required,max=256"`
	UserAgent string    `yaml:"user_agent,omitempty" json:"user_agent,omitempty" validate:"max=512"`
	CreatedAt time.Time `yaml:"created_at" json:"created_at"`
}

func (s *Subscription) Validate() error {
	return validation.Struct(s, "invalid push subscription")
}
