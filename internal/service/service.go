package service

import (
	"github.com/abdxl-cloud/RuqyaHub/internal/config"
	"github.com/abdxl-cloud/RuqyaHub/internal/repository"
	"github.com/abdxl-cloud/RuqyaHub/internal/service/auth"
	"github.com/abdxl-cloud/RuqyaHub/internal/service/chat"
)

// Services bundles the business services.
type Services struct {
	Chat   *chat.Service
	Auth   *auth.Service
	Config *config.Config
}

// NewServices wires all services over the repositories.
func NewServices(repos *repository.Repositories, cfg *config.Config) *Services {
	return &Services{
		Chat:   chat.NewService(repos),
		Auth:   auth.NewService(repos, &cfg.Auth),
		Config: cfg,
	}
}
