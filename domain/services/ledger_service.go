package services

import (
	"context"

	"incoin/domain/entities"
	"incoin/domain/interfaces"
	"incoin/domain/utils"
	"incoin/events"
)

// LedgerService moves money between wallets and bank accounts
type LedgerService struct {
	deps Dependencies
}

// NewLedgerService creates a new ledger service
func NewLedgerService(deps Dependencies) *LedgerService {
	return &LedgerService{deps: deps}
}

// TransferResult describes a completed give-money transfer
type TransferResult struct {
	Giver      *entities.UserAccount
	Recipients []int64
	Amount     int64
	Total      int64
}

// AddBalance changes a wallet by delta, saturating at zero
func (s *LedgerService) AddBalance(ctx context.Context, userID, delta int64, reason events.ChangeReason) (*entities.UserAccount, error) {
	return s.mutate(ctx, userID, reason, func(u *entities.UserAccount) error {
		u.AddBalance(delta)
		return nil
	})
}

// AddBankBalance changes a bank balance by delta, saturating at zero
func (s *LedgerService) AddBankBalance(ctx context.Context, userID, delta int64, reason events.ChangeReason) (*entities.UserAccount, error) {
	return s.mutate(ctx, userID, reason, func(u *entities.UserAccount) error {
		u.AddBankBalance(delta)
		return nil
	})
}

// AddCreditPoint changes a credit score
func (s *LedgerService) AddCreditPoint(ctx context.Context, userID, delta int64) (*entities.UserAccount, error) {
	unlock := s.deps.Store.Lock(interfaces.UserLockKey(userID))
	defer unlock()

	user := s.deps.Store.User(ctx, userID)
	user.AddCreditPoint(delta)
	if err := s.deps.saveUsers(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Deposit moves amount from the wallet to the bank
func (s *LedgerService) Deposit(ctx context.Context, userID, amount int64) (*entities.UserAccount, error) {
	return s.mutate(ctx, userID, events.ReasonDeposit, func(u *entities.UserAccount) error {
		if amount < 1 {
			return errInvalidAmount
		}
		if u.Balance < amount {
			return errInsufficientFunds
		}
		u.AddBalance(-amount)
		u.AddBankBalance(amount)
		return nil
	})
}

// Withdraw moves amount from the bank to the wallet
func (s *LedgerService) Withdraw(ctx context.Context, userID, amount int64) (*entities.UserAccount, error) {
	return s.mutate(ctx, userID, events.ReasonWithdraw, func(u *entities.UserAccount) error {
		if amount < 1 {
			return errInvalidAmount
		}
		if u.BankBalance < amount {
			return newRuleError("銀行残高が足りません。")
		}
		u.AddBankBalance(-amount)
		u.AddBalance(amount)
		return nil
	})
}

// Give pays amount from the giver's wallet to every recipient. The giver is
// never paid; naming only yourself is rejected.
func (s *LedgerService) Give(ctx context.Context, giverID int64, recipientIDs []int64, amount int64) (*TransferResult, error) {
	if amount < 1 {
		return nil, errInvalidAmount
	}

	recipients := make([]int64, 0, len(recipientIDs))
	seen := make(map[int64]struct{}, len(recipientIDs))
	for _, id := range recipientIDs {
		if id == giverID {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		recipients = append(recipients, id)
	}
	if len(recipients) == 0 {
		if len(recipientIDs) > 0 {
			return nil, newRuleError("自分自身にお金を渡すことはできません。")
		}
		return nil, newRuleError("お金を渡す相手がいません。")
	}

	keys := []string{interfaces.UserLockKey(giverID)}
	for _, id := range recipients {
		keys = append(keys, interfaces.UserLockKey(id))
	}
	unlock := s.deps.Store.Lock(keys...)
	defer unlock()

	giver := s.deps.Store.User(ctx, giverID)
	total := amount * int64(len(recipients))
	if giver.Balance < total {
		return nil, newRuleError("所持金が足りません。（必要: %s いんコイン）", utils.FormatCoins(total))
	}

	walletBefore, bankBefore := giver.Balance, giver.BankBalance
	giver.AddBalance(-total)
	if err := s.deps.saveUsers(ctx, giver); err != nil {
		return nil, err
	}
	evs := []events.Event{balanceChanged(giver, events.ReasonTransfer, walletBefore, bankBefore)}

	for _, id := range recipients {
		recipient := s.deps.Store.User(ctx, id)
		before := recipient.Balance
		recipient.AddBalance(amount)
		if err := s.deps.saveUsers(ctx, recipient); err != nil {
			return nil, err
		}
		evs = append(evs, balanceChanged(recipient, events.ReasonTransfer, before, recipient.BankBalance))
	}

	if err := s.deps.publish(evs...); err != nil {
		return nil, err
	}

	return &TransferResult{
		Giver:      giver,
		Recipients: recipients,
		Amount:     amount,
		Total:      total,
	}, nil
}

// AdminAdjust adds delta to the wallet of every user. Negative deltas
// saturate at zero.
func (s *LedgerService) AdminAdjust(ctx context.Context, userIDs []int64, delta int64) ([]*entities.UserAccount, error) {
	if delta == 0 {
		return nil, errInvalidAmount
	}
	if len(userIDs) == 0 {
		return nil, newRuleError("対象のユーザーがいません。")
	}

	keys := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		keys = append(keys, interfaces.UserLockKey(id))
	}
	unlock := s.deps.Store.Lock(keys...)
	defer unlock()

	updated := make([]*entities.UserAccount, 0, len(userIDs))
	evs := make([]events.Event, 0, len(userIDs))
	seen := make(map[int64]struct{}, len(userIDs))
	for _, id := range userIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}

		user := s.deps.Store.User(ctx, id)
		before := user.Balance
		user.AddBalance(delta)
		if err := s.deps.saveUsers(ctx, user); err != nil {
			return nil, err
		}
		updated = append(updated, user)
		evs = append(evs, balanceChanged(user, events.ReasonAdmin, before, user.BankBalance))
	}

	if err := s.deps.publish(evs...); err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *LedgerService) mutate(ctx context.Context, userID int64, reason events.ChangeReason, fn func(u *entities.UserAccount) error) (*entities.UserAccount, error) {
	unlock := s.deps.Store.Lock(interfaces.UserLockKey(userID))
	defer unlock()

	user := s.deps.Store.User(ctx, userID)
	walletBefore, bankBefore := user.Balance, user.BankBalance
	if err := fn(user); err != nil {
		return nil, err
	}
	if err := s.deps.saveUsers(ctx, user); err != nil {
		return nil, err
	}
	if err := s.deps.publish(balanceChanged(user, reason, walletBefore, bankBefore)); err != nil {
		return nil, err
	}
	return user, nil
}
