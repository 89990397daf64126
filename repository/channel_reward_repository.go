package repository

import (
	"context"
	"fmt"
	"strconv"

	"incoin/database"
	"incoin/domain/entities"
)

// ChannelRewardRepository implements interfaces.ChannelRewardRepository on Postgres
type ChannelRewardRepository struct {
	q       Queryable
	guildID int64
}

// NewChannelRewardRepository creates a repository on the pool for one guild
func NewChannelRewardRepository(db *database.DB, guildID int64) *ChannelRewardRepository {
	return &ChannelRewardRepository{q: db.Pool, guildID: guildID}
}

// NewChannelRewardRepositoryScoped creates a repository bound to a transaction and guild
func NewChannelRewardRepositoryScoped(tx Queryable, guildID int64) *ChannelRewardRepository {
	return &ChannelRewardRepository{q: tx, guildID: guildID}
}

// Get loads a channel's reward config, returning nil when none is set
func (r *ChannelRewardRepository) Get(ctx context.Context, channelID int64) (*entities.ChannelReward, error) {
	doc, err := channelRewardsTable.get(ctx, r.q, r.guildID, channelID)
	if err != nil {
		return nil, fmt.Errorf("failed to get channel reward %d in guild %d: %w", channelID, r.guildID, err)
	}
	if doc == nil {
		return nil, nil
	}
	return entities.DecodeChannelReward(r.guildID, channelID, doc.SchemaVersion, doc.Data)
}

// Upsert writes the reward document
func (r *ChannelRewardRepository) Upsert(ctx context.Context, reward *entities.ChannelReward) error {
	data, err := entities.Encode(reward)
	if err != nil {
		return err
	}
	if err := channelRewardsTable.upsert(ctx, r.q, r.guildID, reward.ChannelID, entities.CurrentSchemaVersion, data); err != nil {
		return fmt.Errorf("failed to save channel reward %d in guild %d: %w", reward.ChannelID, r.guildID, err)
	}
	return nil
}

// Delete removes the reward document
func (r *ChannelRewardRepository) Delete(ctx context.Context, channelID int64) error {
	if err := channelRewardsTable.delete(ctx, r.q, r.guildID, channelID); err != nil {
		return fmt.Errorf("failed to delete channel reward %d in guild %d: %w", channelID, r.guildID, err)
	}
	return nil
}

// List returns every reward config of the guild
func (r *ChannelRewardRepository) List(ctx context.Context) ([]*entities.ChannelReward, error) {
	docs, err := channelRewardsTable.list(ctx, r.q, r.guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to list channel rewards in guild %d: %w", r.guildID, err)
	}

	rewards := make([]*entities.ChannelReward, 0, len(docs))
	for _, doc := range docs {
		channelID, err := strconv.ParseInt(doc.Key, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid channel id %q in guild %d: %w", doc.Key, r.guildID, err)
		}
		reward, err := entities.DecodeChannelReward(r.guildID, channelID, doc.SchemaVersion, doc.Data)
		if err != nil {
			return nil, err
		}
		rewards = append(rewards, reward)
	}
	return rewards, nil
}
