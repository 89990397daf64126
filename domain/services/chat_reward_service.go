package services

import (
	"context"

	"incoin/domain/entities"
	"incoin/domain/interfaces"
	"incoin/events"
)

// negativeCreditRewardPercent is the share of chat income kept while credit is negative
const negativeCreditRewardPercent int64 = 30

// ChatRewardService pays users for chatting in configured channels
type ChatRewardService struct {
	deps Dependencies
}

// NewChatRewardService creates a new chat reward service
func NewChatRewardService(deps Dependencies) *ChatRewardService {
	return &ChatRewardService{deps: deps}
}

// Configure sets the reward range of a channel. A zero max disables it.
func (s *ChatRewardService) Configure(ctx context.Context, channelID, min, max int64) (*entities.ChannelReward, error) {
	if min < 0 || max < 0 {
		return nil, newRuleError("金額は0以上を指定してください。")
	}
	if min > max {
		return nil, newRuleError("最低金額は最大金額以下である必要があります。")
	}

	unlock := s.deps.Store.Lock(interfaces.ChannelRewardLockKey(channelID))
	defer unlock()

	reward := entities.NewChannelReward(s.deps.Store.GuildID(), channelID, min, max)
	if err := s.deps.Store.PutChannelReward(ctx, reward); err != nil {
		return nil, err
	}
	return reward, nil
}

// Reward pays for one message. It returns the amount earned, zero when the
// channel has no reward.
func (s *ChatRewardService) Reward(ctx context.Context, channelID, userID int64) (int64, error) {
	reward := s.deps.Store.ChannelReward(ctx, channelID)
	if !reward.IsActive() {
		return 0, nil
	}

	unlock := s.deps.Store.Lock(interfaces.UserLockKey(userID))
	defer unlock()

	user := s.deps.Store.User(ctx, userID)
	earned := randInt(s.deps.Random, reward.Min, reward.Max)
	if user.CreditPoint < 0 {
		earned = percentOf(earned, negativeCreditRewardPercent)
	}
	if earned <= 0 {
		return 0, nil
	}

	walletBefore, bankBefore := user.Balance, user.BankBalance
	user.AddBalance(earned)
	if err := s.deps.saveUsers(ctx, user); err != nil {
		return 0, err
	}
	if err := s.deps.publish(balanceChanged(user, events.ReasonChatReward, walletBefore, bankBefore)); err != nil {
		return 0, err
	}
	return earned, nil
}
