//go:build !wasm
// +build !wasm

package gorm

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	oa "github.com/panyam/oauthgate"
)

// AutoMigrate runs database migrations for all oauthgate tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&UserModel{},
		&OauthProfileModel{},
	)
}

// GORMUser implements the oa.User interface
type GORMUser struct {
	model *UserModel
}

func (u *GORMUser) Id() string    { return u.model.ID }
func (u *GORMUser) Email() string { return u.model.Email }

// Store implements oa.UserStore using GORM
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (oa.User, error) {
	if email == "" {
		return nil, oa.ErrNotFound
	}
	var model UserModel
	err := s.db.WithContext(ctx).First(&model, "email = ?", email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, oa.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &GORMUser{model: &model}, nil
}

func (s *Store) AddUserByEmail(ctx context.Context, email string, profile *oa.Profile) (oa.User, error) {
	model := &UserModel{
		ID:    uuid.NewString(),
		Email: email,
	}
	if profile != nil {
		model.Name = profile.Name
		model.GivenName = profile.GivenName
		model.FamilyName = profile.FamilyName
		model.Picture = profile.Picture
	}
	if err := s.db.WithContext(ctx).Create(model).Error; err != nil {
		return nil, err
	}
	return &GORMUser{model: model}, nil
}

func (s *Store) GetOauthProfileBySub(ctx context.Context, sub string) (*oa.OauthProfile, error) {
	var model OauthProfileModel
	err := s.db.WithContext(ctx).First(&model, "sub = ?", sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, oa.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &oa.OauthProfile{Sub: model.Sub, UserID: model.UserID, ProfileJSON: model.ProfileJSON}, nil
}

func (s *Store) UpsertOauthProfile(ctx context.Context, sub, userID, profileJSON string) (*oa.OauthProfile, error) {
	model := &OauthProfileModel{
		Sub:         sub,
		UserID:      userID,
		ProfileJSON: profileJSON,
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "sub"}},
		DoUpdates: clause.AssignmentColumns([]string{"user_id", "profile_json", "updated_at"}),
	}).Create(model).Error
	if err != nil {
		return nil, err
	}
	return &oa.OauthProfile{Sub: sub, UserID: userID, ProfileJSON: profileJSON}, nil
}
