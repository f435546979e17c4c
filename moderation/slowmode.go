package moderation

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"
)

// MaxSlowmode is the platform's upper bound for a channel's per-user delay.
const MaxSlowmode = 21600

var slowmodePattern = regexp.MustCompile(`^(\d+)([smh]?)$`)

// ParseSlowmode accepts "off", "disable", "disabled", "none", a bare number
// of seconds, or "<n>s", "<n>m", "<n>h". The result is clamped to
// [0, MaxSlowmode]. ok is false when s is not recognised.
func ParseSlowmode(s string) (seconds int, ok bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "off", "disable", "disabled", "none", "0":
		return 0, true
	}
	m := slowmodePattern.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	n, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		// Digits only, so this is an overflow; clamp like any large value.
		return MaxSlowmode, true
	}
	unit := int64(1)
	switch m[2] {
	case "m":
		unit = 60
	case "h":
		unit = 3600
	}
	// compare before multiplying so huge values cannot wrap around
	if n > MaxSlowmode/unit {
		return MaxSlowmode, true
	}
	return int(n * unit), true
}

// SetSlowmode updates a channel's per-user message delay.
func SetSlowmode(ctx context.Context, p Platform, channelID string, seconds int, reason string) error {
	if reason == "" {
		reason = "Slowmode updated"
	}
	_, err := p.ChannelEdit(channelID, &discordgo.ChannelEdit{RateLimitPerUser: &seconds}, requestOptions(ctx, reason)...)
	if err != nil {
		return platformErr("edit slowmode", err)
	}
	return nil
}
