//go:build !wasm
// +build !wasm

// Package gorm provides a GORM-based implementation of the oauthgate user
// store. It supports any database that GORM supports (PostgreSQL, MySQL,
// SQLite, etc.); the embedding application supplies the *gorm.DB.
//
// # Database Schema
//
// The package auto-migrates the following tables:
//   - users: Local user accounts
//   - oauth_profiles: Provider profile snapshots keyed by subject
//
// # Usage
//
//	db, _ := gorm.Open(postgres.Open(dsn), &gorm.Config{})
//	gormstore.AutoMigrate(db)
//	users := gormstore.NewStore(db)
package gorm
