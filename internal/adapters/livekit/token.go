// Package livekit mints media-session credentials for the LiveKit SFU.
package livekit

import (
	"errors"
	"fmt"
	"time"

	"github.com/livekit/protocol/auth"
)

const DefaultTokenTTL = 10 * time.Hour

var ErrNoCredentials = errors.New("livekit credentials not configured")

// Grant is what a minted token allows: one identity in one room.
type Grant struct {
	Room     string
	Identity string
	Name     string
}

type Issuer struct {
	url       string
	apiKey    string
	apiSecret string
	ttl       time.Duration
}

func NewIssuer(url, apiKey, apiSecret string, ttl time.Duration) *Issuer {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &Issuer{url: url, apiKey: apiKey, apiSecret: apiSecret, ttl: ttl}
}

// URL is the SFU address clients connect to with the token.
func (i *Issuer) URL() string { return i.url }

// Issue signs a join token for g. Publishing and subscribing are both
// allowed; muting is enforced client side.
func (i *Issuer) Issue(g Grant) (string, error) {
	if i.apiKey == "" || i.apiSecret == "" {
		return "", ErrNoCredentials
	}
	canPublish := true
	canSubscribe := true

	at := auth.NewAccessToken(i.apiKey, i.apiSecret)
	at.AddGrant(&auth.VideoGrant{
		RoomJoin:     true,
		Room:         g.Room,
		CanPublish:   &canPublish,
		CanSubscribe: &canSubscribe,
	}).
		SetIdentity(g.Identity).
		SetName(g.Name).
		SetValidFor(i.ttl)

	token, err := at.ToJWT()
	if err != nil {
		return "", fmt.Errorf("sign livekit token: %w", err)
	}
	return token, nil
}
