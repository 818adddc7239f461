package app

import (
	"fmt"
	"time"

	"github.com/form3tech-oss/jwt-go"
)

// VoiceService issues short-lived access tokens for the in-room voice channel,
// so participants can ask and answer questions out loud. Tokens follow the
// Vivox claim layout (vxa action, f/t URIs) signed with HS256.
type VoiceService struct {
	secret string
	issuer string
	domain string
	ttl    time.Duration
}

const (
	VoiceActionLogin = "login"
	VoiceActionJoin  = "join"
)

// NewVoiceService constructs a token issuer for the given voice backend
// credentials. A non-positive ttl falls back to one hour.
func NewVoiceService(secret, issuer, domain string, ttl time.Duration) *VoiceService {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &VoiceService{
		secret: secret,
		issuer: issuer,
		domain: domain,
		ttl:    ttl,
	}
}

// Token signs a voice access token for the participant. Join tokens target
// the room's conference channel; login tokens target the participant itself.
func (s *VoiceService) Token(participantID, action, roomID string) (string, error) {
	if s == nil {
		return "", fmt.Errorf("voice service is nil")
	}
	if participantID == "" {
		return "", fmt.Errorf("participant id is required")
	}
	if s.secret == "" || s.issuer == "" || s.domain == "" {
		return "", fmt.Errorf("voice config is incomplete")
	}

	fromURI := s.participantURI(participantID)
	toURI, err := s.targetURI(action, roomID, fromURI)
	if err != nil {
		return "", err
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"iss": s.issuer,
		"sub": participantID,
		"exp": now.Add(s.ttl).Unix(),
		"vxa": action,
		"vxi": now.UnixNano(),
		"f":   fromURI,
		"t":   toURI,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.secret))
}

func (s *VoiceService) participantURI(participantID string) string {
	return "sip:." + s.issuer + "." + participantID + ".@" + s.domain
}

func (s *VoiceService) channelURI(roomID string) string {
	return "sip:confctl-g-room-" + roomID + "@" + s.domain
}

func (s *VoiceService) targetURI(action, roomID, fromURI string) (string, error) {
	switch action {
	case VoiceActionLogin:
		return fromURI, nil
	case VoiceActionJoin:
		if roomID == "" {
			return "", fmt.Errorf("room id is required for join tokens")
		}
		return s.channelURI(roomID), nil
	default:
		return "", fmt.Errorf("unsupported voice action: %s", action)
	}
}
