package interfaces

import (
	"context"

	domaintypes "secretchannel/internal/domain/types"
)

// ChannelClient is how a peer talks to a running secret channel service.
type ChannelClient interface {
	ExchangeIdentity(
		ctx context.Context,
		req domaintypes.IdentityRequest,
	) (domaintypes.IdentityResponse, error)
	ExchangeSignedKey(
		ctx context.Context,
		req domaintypes.SignedKey,
	) (domaintypes.SignedKey, error)
	FetchChallenge(ctx context.Context) (domaintypes.Challenge, error)
}
