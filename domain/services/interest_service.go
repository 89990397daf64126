package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"incoin/domain/entities"
	"incoin/domain/interfaces"
	"incoin/events"

	log "github.com/sirupsen/logrus"
)

const (
	// InterestInterval is the minimum time between two settlements of one account
	InterestInterval = 7 * 24 * time.Hour

	interestPercent        int64 = 3
	negativeCreditFeeRate  int64 = 10
	negativeCreditDecrease int64 = 1
)

// InterestService runs the weekly bank settlement
type InterestService struct {
	deps Dependencies
}

// NewInterestService creates a new interest service
func NewInterestService(deps Dependencies) *InterestService {
	return &InterestService{deps: deps}
}

// InterestReport summarizes one weekly pass over a guild
type InterestReport struct {
	Checked     int
	Credited    int
	Penalized   int
	TotalPaid   int64
	TotalCharge int64
}

// ApplyWeekly pays interest on positive credit and charges a fee on negative
// credit, for every registered account not settled within the last week
func (s *InterestService) ApplyWeekly(ctx context.Context) (*InterestReport, error) {
	users, err := s.deps.Store.Users(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	report := &InterestReport{}
	var errs []error
	for _, u := range users {
		if ctx.Err() != nil {
			return report, ctx.Err()
		}
		if !u.IsRegistered {
			continue
		}
		report.Checked++

		if err := s.settleUser(ctx, u.UserID, report); err != nil {
			log.WithFields(log.Fields{
				"guild_id": s.deps.Store.GuildID(),
				"user_id":  u.UserID,
				"error":    err,
			}).Error("Failed to apply weekly interest")
			errs = append(errs, err)
		}
	}
	return report, errors.Join(errs...)
}

func (s *InterestService) settleUser(ctx context.Context, userID int64, report *InterestReport) error {
	unlock := s.deps.Store.Lock(interfaces.UserLockKey(userID))
	defer unlock()

	now := s.deps.now()
	user := s.deps.Store.User(ctx, userID)
	if !user.LastInterestTime.IsZero() && now.Sub(user.LastInterestTime) < InterestInterval-entities.ScheduleTolerance {
		return nil
	}

	bankBefore := user.BankBalance
	updated, creditDelta := applyInterest(user)
	if !updated {
		return nil
	}
	user.LastInterestTime = now

	if err := s.deps.saveUsers(ctx, user); err != nil {
		return err
	}

	bankDelta := user.BankBalance - bankBefore
	if creditDelta < 0 {
		report.Penalized++
		report.TotalCharge -= bankDelta
	} else {
		report.Credited++
		report.TotalPaid += bankDelta
	}

	return s.deps.publish(
		events.InterestAppliedEvent{
			GuildID:     user.GuildID,
			UserID:      user.UserID,
			BankDelta:   bankDelta,
			CreditDelta: creditDelta,
		},
		balanceChanged(user, events.ReasonInterest, user.Balance, bankBefore),
	)
}

// applyInterest mutates the account for one weekly settlement and reports
// whether anything changed. A negative credit score always changes the
// account since the score itself drops.
func applyInterest(user *entities.UserAccount) (bool, int64) {
	if user.CreditPoint < 0 {
		user.AddBankBalance(-percentOf(user.BankBalance, negativeCreditFeeRate))
		user.AddCreditPoint(-negativeCreditDecrease)
		return true, -negativeCreditDecrease
	}

	interest := percentOf(user.BankBalance, interestPercent)
	if interest <= 0 {
		return false, 0
	}
	user.AddBankBalance(interest)
	return true, 0
}
