package app

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"mafiaville/internal/domain"

	"github.com/form3tech-oss/jwt-go"
)

// VoiceService signs Vivox access tokens for the town and mafia voice channels of a match.
type VoiceService struct {
	secret string
	issuer string
	domain string
	ttl    time.Duration
	now    func() time.Time
}

const (
	VoiceActionLogin = "login"
	VoiceActionJoin  = "join"
)

// VoiceChannel is one of the per-match voice rooms.
type VoiceChannel string

const (
	ChannelTown  VoiceChannel = "town"
	ChannelMafia VoiceChannel = "mafia"
)

var (
	ErrVoiceDenied     = errors.New("voice channel not allowed")
	ErrVoiceConfig     = errors.New("voice config is incomplete")
	ErrUnknownChannel  = errors.New("unknown voice channel")
	ErrUnsupportedVerb = errors.New("unsupported voice action")
)

// VoiceStanding is what the voice policy needs to know about the requesting player.
type VoiceStanding struct {
	Seated    bool
	InGame    bool
	Alive     bool
	Alignment domain.Alignment
}

func NewVoiceService(secret, issuer, domain string) *VoiceService {
	return &VoiceService{
		secret: secret,
		issuer: issuer,
		domain: domain,
		ttl:    time.Hour,
		now:    time.Now,
	}
}

// Authorize applies the channel policy: seated players talk in town until
// they die, and only living Mafia members may enter the mafia channel.
func Authorize(st VoiceStanding, ch VoiceChannel) error {
	if !st.Seated {
		return ErrVoiceDenied
	}
	switch ch {
	case ChannelTown:
		if st.InGame && !st.Alive {
			return ErrVoiceDenied
		}
		return nil
	case ChannelMafia:
		if !st.InGame || !st.Alive || st.Alignment != domain.AlignmentMafia {
			return ErrVoiceDenied
		}
		return nil
	}
	return ErrUnknownChannel
}

// ChannelName derives the Vivox channel name of a match room.
func ChannelName(matchID string, ch VoiceChannel) string {
	id := strings.NewReplacer(".", "-", ":", "-").Replace(matchID)
	return "mafiaville-" + id + "-" + string(ch)
}

// GenerateToken signs a login token or a join token for channelName.
func (s *VoiceService) GenerateToken(user, action, channelName string) (string, error) {
	if s == nil || s.secret == "" || s.issuer == "" || s.domain == "" {
		return "", ErrVoiceConfig
	}
	if user == "" {
		return "", fmt.Errorf("user is required")
	}

	from := s.userURI(user)
	var to string
	switch action {
	case VoiceActionLogin:
		to = from
	case VoiceActionJoin:
		if channelName == "" {
			return "", fmt.Errorf("channel name is required for join tokens")
		}
		to = s.channelURI(channelName)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedVerb, action)
	}

	now := s.now()
	claims := jwt.MapClaims{
		"iss": s.issuer,
		"sub": user,
		"exp": now.Add(s.ttl).Unix(),
		"vxa": action,
		"vxi": fmt.Sprintf("%d-%d", now.UnixNano(), rand.Int63()),
		"f":   from,
		"t":   to,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.secret))
}

func (s *VoiceService) userURI(user string) string {
	return "sip:." + s.issuer + "." + user + ".@" + s.domain
}

func (s *VoiceService) channelURI(channelName string) string {
	return "sip:confctl-g-" + channelName + "@" + s.domain
}
