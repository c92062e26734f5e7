package service

import (
	"context"

	"github.com/Kiranppatil21/glass/internal/customer/domain"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB   *gorm.DB
	Log  *zap.Logger
	Repo domain.Repository
}

type Service struct {
	db   *gorm.DB
	log  *zap.Logger
	repo domain.Repository
}

func NewService(p Params) domain.Service {
	return &Service{
		db:   p.DB,
		log:  p.Log.Named("customer.service"),
		repo: p.Repo,
	}
}

func (s *Service) GetActiveProfile(ctx context.Context, id snowflake.ID) (*domain.CustomerProfile, error) {
	if id == 0 {
		return nil, domain.ErrInvalidID
	}
	profile, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if profile == nil || profile.Status != domain.ProfileStatusActive {
		return nil, domain.ErrNotFound
	}
	return profile, nil
}
