package service

import (
	"context"
	"encoding/json"

	"github.com/Kiranppatil21/glass/internal/config"
	"github.com/Kiranppatil21/glass/internal/settings/domain"
	"github.com/Kiranppatil21/glass/internal/settings/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	Defaults *config.AdvancePolicyHolder
	Repo     repository.Repository
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	defaults *config.AdvancePolicyHolder
	repo     repository.Repository
}

func NewService(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("settings.service"),
		defaults: p.Defaults,
		repo:     p.Repo,
	}
}

func (s *Service) AdvancePolicy(ctx context.Context) (config.AdvancePolicy, error) {
	policy := s.defaults.Get()

	setting, err := s.repo.FindByType(ctx, s.db, domain.TypeAdvanceSettings)
	if err != nil {
		return config.AdvancePolicy{}, err
	}
	if setting == nil {
		return policy, nil
	}

	// Stored payload overrides defaults field by field.
	if err := json.Unmarshal(setting.Payload, &policy); err != nil {
		s.log.Warn("malformed advance settings row, using defaults", zap.Error(err))
		return s.defaults.Get(), nil
	}
	return policy, nil
}
