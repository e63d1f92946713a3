package oauthgate

import (
	"context"
	"errors"
)

// Resolver maps a downloaded provider profile to a local user, creating the
// user on first login and keeping the stored profile snapshot fresh on every
// login.
type Resolver struct {
	Store UserStore

	// Reconcile, when set, updates an existing user's attributes from the
	// freshly stored snapshot. It is skipped for users created in the same
	// resolution so a brand-new user is not initialized twice.
	Reconcile ReconcileUserFunc
}

// ResolveOrCreate returns the local user id for profile.
//
// Profiles without an email get a fresh local user per distinct subject; a
// stored snapshot for the subject reuses its user. Profiles with an email
// find or create the user by email. In both cases the snapshot for
// (sub, userID) is then overwritten with the new profile. A store failure at
// any step aborts the whole resolution.
func (r *Resolver) ResolveOrCreate(ctx context.Context, profile *Profile) (string, error) {
	var userID string
	created := false

	if profile.Email == "" {
		saved, err := r.Store.GetOauthProfileBySub(ctx, profile.Sub)
		switch {
		case err == nil:
			userID = saved.UserID
		case errors.Is(err, ErrNotFound):
			user, err := r.Store.AddUserByEmail(ctx, "", profile)
			if err != nil {
				return "", err
			}
			userID = user.Id()
			created = true
		default:
			return "", err
		}
	} else {
		user, err := r.Store.GetUserByEmail(ctx, profile.Email)
		if errors.Is(err, ErrNotFound) {
			user, err = r.Store.AddUserByEmail(ctx, profile.Email, profile)
			created = true
		}
		if err != nil {
			return "", err
		}
		userID = user.Id()
	}

	stored, err := r.Store.UpsertOauthProfile(ctx, profile.Sub, userID, profile.JSON())
	if err != nil {
		return "", err
	}
	if r.Reconcile != nil && !created {
		if err := r.Reconcile(ctx, userID, stored); err != nil {
			return "", err
		}
	}
	return userID, nil
}
