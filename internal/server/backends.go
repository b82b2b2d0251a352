package server

import (
	"fmt"
	"log/slog"

	"github.com/Tyrowin/oxidechat/internal/auth"
	"github.com/Tyrowin/oxidechat/internal/captcha"
	"github.com/Tyrowin/oxidechat/internal/chat"
	"github.com/Tyrowin/oxidechat/internal/config"
	"github.com/Tyrowin/oxidechat/internal/store"
	"github.com/Tyrowin/oxidechat/internal/user"
	"github.com/dgraph-io/badger/v4"
)

// Backends are the collaborators selected by configuration.
type Backends struct {
	Auth     auth.Service
	Captcha  captcha.Service
	Resolver chat.ReceiverResolver
	Policy   chat.Policy

	// Memberships is nil unless the membership user backend is selected.
	Memberships *user.MembershipService
}

// NewBackends picks every backend named in cfg. Persistent backends share db.
func NewBackends(cfg config.Config, db *badger.DB, log *slog.Logger) (Backends, error) {
	var b Backends

	switch cfg.AuthBackend {
	case config.BackendFake:
		b.Auth = auth.NewFakeService()
	case config.BackendJWT:
		b.Auth = auth.NewJWTService(store.NewUserRepository(db), cfg.JWTSecret,
			cfg.AccessTokenTTL, cfg.RefreshTokenTTL, log.With("component", "auth"))
	default:
		return Backends{}, fmt.Errorf("unknown auth backend %q", cfg.AuthBackend)
	}

	switch cfg.CaptchaBackend {
	case config.BackendFake:
		b.Captcha = captcha.NewFakeService(cfg.CaptchaTTL)
	case config.BackendImage:
		b.Captcha = captcha.NewImageService(store.NewCaptchaRepository(db), cfg.CaptchaTTL,
			log.With("component", "captcha"))
	default:
		return Backends{}, fmt.Errorf("unknown captcha backend %q", cfg.CaptchaBackend)
	}

	switch cfg.UserBackend {
	case config.BackendFake:
		b.Resolver = user.NewFakeService()
	case config.BackendMembership:
		b.Memberships = user.NewMembershipService(store.NewMembershipRepository(db),
			log.With("component", "membership"))
		b.Resolver = b.Memberships
	default:
		return Backends{}, fmt.Errorf("unknown user backend %q", cfg.UserBackend)
	}

	switch cfg.ChatPolicy {
	case config.PolicyBroadcast:
		b.Policy = chat.BroadcastPolicy{}
	case config.PolicyConversation:
		b.Policy = chat.ConversationPolicy{Resolver: b.Resolver, Log: log.With("component", "policy")}
	default:
		return Backends{}, fmt.Errorf("unknown chat policy %q", cfg.ChatPolicy)
	}

	log.Info("Backends selected",
		"auth", cfg.AuthBackend,
		"captcha", cfg.CaptchaBackend,
		"user", cfg.UserBackend,
		"policy", cfg.ChatPolicy)
	return b, nil
}
