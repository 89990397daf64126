package services

import (
	"context"
	"fmt"
	"time"

	"incoin/domain/entities"
	"incoin/domain/interfaces"
	"incoin/events"

	log "github.com/sirupsen/logrus"
)

// maxLockAttempts bounds how often a lock set is recomputed when the records
// it was derived from change before the locks are held
const maxLockAttempts = 3

// Dependencies are shared by every economy service of one guild
type Dependencies struct {
	Store     interfaces.RecordStore
	Publisher interfaces.EventPublisher
	Notifier  interfaces.Notifier
	Random    interfaces.RandomSource
	Now       func() time.Time
}

func (d Dependencies) now() time.Time {
	if d.Now == nil {
		return time.Now()
	}
	return d.Now()
}

func (d Dependencies) publish(evs ...events.Event) error {
	if d.Publisher == nil {
		return nil
	}
	for _, ev := range evs {
		if err := d.Publisher.Publish(ev); err != nil {
			return fmt.Errorf("failed to publish %s event: %w", ev.Type(), err)
		}
	}
	return nil
}

// notify sends a direct message, logging instead of failing
func (d Dependencies) notify(ctx context.Context, userID int64, title, body string) {
	if d.Notifier == nil {
		return
	}
	if err := d.Notifier.DirectMessage(ctx, userID, title, body); err != nil {
		log.WithFields(log.Fields{
			"guild_id": d.Store.GuildID(),
			"user_id":  userID,
			"title":    title,
			"error":    err,
		}).Warn("Failed to send direct message")
	}
}

func (d Dependencies) saveUsers(ctx context.Context, users ...*entities.UserAccount) error {
	for _, u := range users {
		if err := d.Store.PutUser(ctx, u); err != nil {
			return fmt.Errorf("failed to save user %d: %w", u.UserID, err)
		}
	}
	return nil
}

func (d Dependencies) saveCompany(ctx context.Context, company *entities.Company) error {
	if err := d.Store.PutCompany(ctx, company); err != nil {
		return fmt.Errorf("failed to save company %s: %w", company.ID, err)
	}
	return nil
}

// lockUserWithCompany locks a user together with the company it belongs to
// and returns both as read under the lock. company is nil when the user has
// none or when the referenced company no longer exists.
func (d Dependencies) lockUserWithCompany(ctx context.Context, userID int64, extraKeys ...string) (*entities.UserAccount, *entities.Company, func()) {
	var (
		user   *entities.UserAccount
		unlock func()
	)
	companyID := d.Store.User(ctx, userID).CompanyID
	for attempt := 1; ; attempt++ {
		keys := append([]string{interfaces.UserLockKey(userID)}, extraKeys...)
		if companyID != "" {
			keys = append(keys, interfaces.CompanyLockKey(companyID))
		}
		unlock = d.Store.Lock(keys...)

		user = d.Store.User(ctx, userID)
		if user.CompanyID == companyID || attempt == maxLockAttempts {
			break
		}
		unlock()
		companyID = user.CompanyID
	}

	if user.CompanyID != companyID {
		// Membership kept changing; proceed without the company
		return user, nil, unlock
	}
	return user, d.Store.Company(ctx, companyID), unlock
}

func balanceChanged(user *entities.UserAccount, reason events.ChangeReason, walletBefore, bankBefore int64) events.BalanceChangedEvent {
	return events.BalanceChangedEvent{
		GuildID:        user.GuildID,
		UserID:         user.UserID,
		Reason:         reason,
		WalletDelta:    user.Balance - walletBefore,
		BankDelta:      user.BankBalance - bankBefore,
		NewBalance:     user.Balance,
		NewBankBalance: user.BankBalance,
	}
}

// lockCompanyMembers locks a company, its stock and every member account and
// returns the company as read under the lock, or nil when it no longer exists
func (d Dependencies) lockCompanyMembers(ctx context.Context, companyID string) (*entities.Company, func()) {
	members := memberSet(d.Store.Company(ctx, companyID))
	for attempt := 1; ; attempt++ {
		keys := []string{interfaces.CompanyLockKey(companyID), interfaces.StockLockKey(companyID)}
		for id := range members {
			keys = append(keys, interfaces.UserLockKey(id))
		}
		unlock := d.Store.Lock(keys...)

		company := d.Store.Company(ctx, companyID)
		current := memberSet(company)
		if sameMembers(members, current) || attempt == maxLockAttempts {
			if !sameMembers(members, current) {
				log.WithFields(log.Fields{
					"guild_id":   d.Store.GuildID(),
					"company_id": companyID,
				}).Warn("Company membership kept changing while locking, continuing with a partial lock set")
			}
			return company, unlock
		}
		unlock()
		members = current
	}
}

func memberSet(company *entities.Company) map[int64]struct{} {
	set := make(map[int64]struct{})
	if company == nil {
		return set
	}
	set[company.OwnerID] = struct{}{}
	for _, m := range company.Members {
		set[m.ID] = struct{}{}
	}
	return set
}

func sameMembers(a, b map[int64]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for id := range a {
		if _, ok := b[id]; !ok {
			return false
		}
	}
	return true
}
