package telegram

import "context"

// ChannelChecker binds a Client to one channel, satisfying the enrollment
// service's membership contract.
type ChannelChecker struct {
	client    *Client
	channelID string
}

// NewChannelChecker creates a checker for the configured channel.
func NewChannelChecker(client *Client, channelID string) *ChannelChecker {
	return &ChannelChecker{client: client, channelID: channelID}
}

// IsChannelMember reports whether the user belongs to the channel.
func (c *ChannelChecker) IsChannelMember(ctx context.Context, userID string) (bool, error) {
	return c.client.IsChannelMember(ctx, c.channelID, userID)
}
