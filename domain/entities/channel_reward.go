package entities

// ChannelReward configures passive income for messages posted in a channel
type ChannelReward struct {
	GuildID   int64 `json:"-"`
	ChannelID int64 `json:"-"`

	Min int64 `json:"min"`
	Max int64 `json:"max"`

	SchemaVersion int `json:"-"`
}

// NewChannelReward returns a reward config for a channel
func NewChannelReward(guildID, channelID, min, max int64) *ChannelReward {
	return &ChannelReward{
		GuildID:       guildID,
		ChannelID:     channelID,
		Min:           min,
		Max:           max,
		SchemaVersion: CurrentSchemaVersion,
	}
}

// IsActive reports whether messages in the channel earn anything
func (r *ChannelReward) IsActive() bool {
	return r != nil && r.Max > 0
}

// Clone returns a copy
func (r *ChannelReward) Clone() *ChannelReward {
	if r == nil {
		return nil
	}
	cp := *r
	return &cp
}
