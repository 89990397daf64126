package services

import (
	"context"
	"fmt"

	"incoin/domain/entities"
	"incoin/domain/interfaces"
)

// RegistrationService manages sign-up and account summaries
type RegistrationService struct {
	deps Dependencies
}

// NewRegistrationService creates a new registration service
func NewRegistrationService(deps Dependencies) *RegistrationService {
	return &RegistrationService{deps: deps}
}

// AccountSummary is an account together with the name of its company
type AccountSummary struct {
	User        *entities.UserAccount
	CompanyName string
}

// Register marks the account as registered so it starts being persisted
func (s *RegistrationService) Register(ctx context.Context, userID int64, username string) (*entities.UserAccount, error) {
	unlock := s.deps.Store.Lock(interfaces.UserLockKey(userID))
	defer unlock()

	user := s.deps.Store.User(ctx, userID)
	if user.IsRegistered {
		return nil, newRuleError("あなたは既にいんコインシステムに登録済みです。")
	}

	user.IsRegistered = true
	if username != "" {
		user.Username = username
	}
	if err := s.deps.saveUsers(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// IsRegistered reports whether the user signed up. An account that cannot
// be loaded is an error, not an unregistered user.
func (s *RegistrationService) IsRegistered(ctx context.Context, userID int64) (bool, error) {
	user, err := s.deps.Store.LoadUser(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("failed to load user %d: %w", userID, err)
	}
	return user.IsRegistered, nil
}

// Summary returns the account of a registered user, detaching it from a
// company that no longer exists
func (s *RegistrationService) Summary(ctx context.Context, userID int64) (*AccountSummary, error) {
	unlock := s.deps.Store.Lock(interfaces.UserLockKey(userID))
	defer unlock()

	user := s.deps.Store.User(ctx, userID)
	if !user.IsRegistered {
		return nil, newRuleError("このユーザーはいんコインシステムに登録されていません。")
	}

	summary := &AccountSummary{User: user}
	if !user.HasCompany() {
		return summary, nil
	}

	company := s.deps.Store.Company(ctx, user.CompanyID)
	if company == nil {
		user.LeaveCompany()
		if err := s.deps.saveUsers(ctx, user); err != nil {
			return nil, err
		}
		return summary, nil
	}
	summary.CompanyName = company.Name
	return summary, nil
}
