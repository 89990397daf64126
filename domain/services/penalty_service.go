package services

import (
	"context"
	"fmt"

	"incoin/domain/entities"
	"incoin/domain/interfaces"
	"incoin/domain/utils"
	"incoin/events"
)

const (
	penaltyMinPercent int64 = 75
	penaltyMaxPercent int64 = 90
)

// PenaltyService confiscates assets of accounts whose credit went negative
type PenaltyService struct {
	deps Dependencies
}

// NewPenaltyService creates a new penalty service
func NewPenaltyService(deps Dependencies) *PenaltyService {
	return &PenaltyService{deps: deps}
}

// PenaltyResult describes an applied penalty
type PenaltyResult struct {
	Percentage  int64
	FromBank    int64
	FromWallet  int64
	CreditPoint int64
}

// Total is everything that was confiscated
func (r *PenaltyResult) Total() int64 {
	return r.FromBank + r.FromWallet
}

// Apply punishes the user once per negative-credit excursion. It returns nil
// when no penalty was due.
func (s *PenaltyService) Apply(ctx context.Context, userID int64) (*PenaltyResult, error) {
	unlock := s.deps.Store.Lock(interfaces.UserLockKey(userID))
	defer unlock()

	user := s.deps.Store.User(ctx, userID)
	if user.CreditPoint >= 0 || user.PunishedForNegativeCredit {
		return nil, nil
	}

	total := user.TotalAssets()
	if total <= 0 {
		return nil, nil
	}

	pct := randInt(s.deps.Random, penaltyMinPercent, penaltyMaxPercent)
	penalty := percentOf(total, pct)

	fromBank := min(penalty, user.BankBalance)
	fromWallet := min(penalty-fromBank, user.Balance)

	walletBefore, bankBefore := user.Balance, user.BankBalance
	user.AddBankBalance(-fromBank)
	user.AddBalance(-fromWallet)
	user.CreditPoint = entities.PenaltyCreditPoint
	user.PunishedForNegativeCredit = true

	if err := s.deps.saveUsers(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to apply penalty: %w", err)
	}

	result := &PenaltyResult{
		Percentage:  pct,
		FromBank:    fromBank,
		FromWallet:  fromWallet,
		CreditPoint: user.CreditPoint,
	}

	if err := s.deps.publish(
		events.PenaltyAppliedEvent{
			GuildID:      user.GuildID,
			UserID:       user.UserID,
			Percentage:   pct,
			FromBank:     fromBank,
			FromWallet:   fromWallet,
			CreditPoints: user.CreditPoint,
		},
		balanceChanged(user, events.ReasonPenalty, walletBefore, bankBefore),
	); err != nil {
		return nil, err
	}

	s.deps.notify(ctx, userID, "信用ポイント低下によるペナルティ",
		fmt.Sprintf("信用ポイントがマイナスになったため、資産の%d%%にあたる %s いんコインが没収されました。\n銀行から: %s いんコイン\n所持金から: %s いんコイン\n信用ポイントは %d にリセットされました。",
			pct,
			utils.FormatCoins(result.Total()),
			utils.FormatCoins(fromBank),
			utils.FormatCoins(fromWallet),
			user.CreditPoint,
		))

	return result, nil
}
