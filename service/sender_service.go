package service

import (
	"context"
	"fmt"
	"log"

	"github.com/bizpilot/bizpilot-be/types"
)

// Sender is the boundary to the outbound channel adapters (SendGrid,
// Twilio and friends live behind it, outside this service).
type Sender interface {
	Send(ctx context.Context, channel types.Channel, to, subject, body string) (externalID string, err error)
}

// DryRunSender logs instead of sending. Used when no channel adapter is
// configured.
type DryRunSender struct{}

func NewDryRunSender() *DryRunSender { return &DryRunSender{} }

func (s *DryRunSender) Send(ctx context.Context, channel types.Channel, to, subject, body string) (string, error) {
	switch channel {
	case types.ChannelEmail, types.ChannelSMS, types.ChannelWhatsApp:
		log.Printf("dry run send: channel=%s to=%s subject=%q", channel, to, subject)
		return "dry_run_" + string(channel), nil
	default:
		return "", fmt.Errorf("unsupported channel: %s", channel)
	}
}
