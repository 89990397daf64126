package services

import (
	"context"
	"math"
	"time"

	"incoin/domain/entities"
	"incoin/domain/interfaces"
	"incoin/events"
)

const (
	// RobCooldown is the minimum time between two rob attempts
	RobCooldown = 3 * time.Hour

	gambleMultiplierSpread = 2.35
	gambleMultiplierFloor  = 0.005

	robSuccessRate            = 0.65
	robStealMinRate           = 0.50
	robStealMaxRate           = 0.65
	robFineMinRate            = 0.30
	robFineMaxRate            = 0.45
	robSuccessCreditHit int64 = 5
	robFailureCreditHit int64 = 3
)

// GamblingService implements the gambling and robbing commands
type GamblingService struct {
	deps Dependencies
}

// NewGamblingService creates a new gambling service
func NewGamblingService(deps Dependencies) *GamblingService {
	return &GamblingService{deps: deps}
}

// GambleResult describes a finished bet
type GambleResult struct {
	Bet        int64
	Multiplier float64
	Payout     int64
	User       *entities.UserAccount
}

// Won reports whether the payout exceeded the stake
func (r *GambleResult) Won() bool {
	return r.Multiplier > 1
}

// RobResult describes a finished rob attempt
type RobResult struct {
	Success bool
	// Amount is what was stolen on success or lost on failure
	Amount int64
	// Rate is the share of the wallet that was taken
	Rate   float64
	Robber *entities.UserAccount
	Target *entities.UserAccount
}

// Gamble stakes bet and pays out floor(bet * multiplier) in its place
func (s *GamblingService) Gamble(ctx context.Context, userID, bet int64) (*GambleResult, error) {
	if bet < 1 {
		return nil, errInvalidAmount
	}

	unlock := s.deps.Store.Lock(interfaces.UserLockKey(userID))
	defer unlock()

	user := s.deps.Store.User(ctx, userID)
	if user.CreditPoint < 0 {
		return nil, errNegativeCredit
	}
	if user.Balance < bet {
		return nil, errInsufficientFunds
	}

	multiplier := s.deps.Random.Float64()*gambleMultiplierSpread + gambleMultiplierFloor
	payout := int64(math.Floor(float64(bet) * multiplier))

	walletBefore, bankBefore := user.Balance, user.BankBalance
	user.AddBalance(payout - bet)
	if multiplier <= 1 {
		user.AddCreditPoint(-1)
	}

	if err := s.deps.saveUsers(ctx, user); err != nil {
		return nil, err
	}
	if err := s.deps.publish(balanceChanged(user, events.ReasonGamble, walletBefore, bankBefore)); err != nil {
		return nil, err
	}

	return &GambleResult{
		Bet:        bet,
		Multiplier: multiplier,
		Payout:     payout,
		User:       user,
	}, nil
}

// Rob tries to steal from target's wallet. targetIsBot is supplied by the
// caller since bots have no account.
func (s *GamblingService) Rob(ctx context.Context, robberID, targetID int64, targetIsBot bool) (*RobResult, error) {
	if robberID == targetID {
		return nil, newRuleError("自分自身から盗むことはできません。")
	}
	if targetIsBot {
		return nil, newRuleError("Botから盗むことはできません。")
	}

	unlock := s.deps.Store.Lock(interfaces.UserLockKey(robberID), interfaces.UserLockKey(targetID))
	defer unlock()

	now := s.deps.now()
	robber := s.deps.Store.User(ctx, robberID)
	if robber.CreditPoint < 0 {
		return nil, errNegativeCredit
	}
	if !robber.LastRobTime.IsZero() {
		if elapsed := now.Sub(robber.LastRobTime); elapsed < RobCooldown {
			minutes := int64(math.Ceil((RobCooldown - elapsed).Minutes()))
			return nil, newRuleError("まだ強盗できません。あと %d 分待ってください。", minutes)
		}
	}

	target := s.deps.Store.User(ctx, targetID)
	if target.Balance <= 0 {
		return nil, newRuleError("相手は所持金を持っていません。")
	}

	robber.LastRobTime = now
	result := &RobResult{Robber: robber, Target: target}

	robberWallet, robberBank := robber.Balance, robber.BankBalance
	targetWallet, targetBank := target.Balance, target.BankBalance

	if s.deps.Random.Float64() < robSuccessRate {
		result.Success = true
		result.Rate = s.randRate(robStealMinRate, robStealMaxRate)
		result.Amount = int64(math.Floor(float64(target.Balance) * result.Rate))
		target.AddBalance(-result.Amount)
		robber.AddBalance(result.Amount)
		robber.AddCreditPoint(-robSuccessCreditHit)
	} else {
		result.Rate = s.randRate(robFineMinRate, robFineMaxRate)
		result.Amount = int64(math.Floor(float64(robber.Balance) * result.Rate))
		robber.AddBalance(-result.Amount)
		robber.AddCreditPoint(-robFailureCreditHit)
	}

	if err := s.deps.saveUsers(ctx, robber, target); err != nil {
		return nil, err
	}

	evs := []events.Event{balanceChanged(robber, events.ReasonRob, robberWallet, robberBank)}
	if result.Success {
		evs = append(evs, balanceChanged(target, events.ReasonRob, targetWallet, targetBank))
	}
	if err := s.deps.publish(evs...); err != nil {
		return nil, err
	}
	return result, nil
}

// randRate returns a uniform fraction in [min, max)
func (s *GamblingService) randRate(min, max float64) float64 {
	return min + s.deps.Random.Float64()*(max-min)
}
