package settings

import (
	"fmt"
	"log/slog"
	"maps"
	"strings"

	"smsnotify/internal/common"
	"smsnotify/internal/domain/channel"

	"github.com/spf13/cast"
)

// KeyDefaultChannel names the default channel in a snapshot.
const KeyDefaultChannel = "default_channel"

const enabledField = "enabled"

// Snapshot is the flat settings representation shared with the store and the API:
//
//	default_channel   = twilio
//	twilio.enabled    = true
//	twilio.auth_token = ...
type Snapshot map[string]string

// Clone returns an independent copy of s.
func (s Snapshot) Clone() Snapshot {
	if s == nil {
		return Snapshot{}
	}
	return maps.Clone(s)
}

// Merge returns a copy of s overlaid with every key of other.
func (s Snapshot) Merge(other Snapshot) Snapshot {
	out := s.Clone()
	maps.Copy(out, other)
	return out
}

// Masked returns a copy with every credential value replaced, for display.
func (s Snapshot) Masked() Snapshot {
	out := make(Snapshot, len(s))
	for k, v := range s {
		_, field, ok := strings.Cut(k, ".")
		if ok && field != enabledField && v != "" {
			v = "********"
		}
		out[k] = v
	}
	return out
}

// Parse converts the snapshot into a registry configuration. Keys that name
// channels unknown to state are skipped with a warning. A credential key for
// a channel replaces that channel's whole credential bundle.
func (s Snapshot) Parse(state *channel.State) (channel.Configuration, error) {
	cfg := channel.Configuration{
		Enabled:     make(map[string]bool),
		Credentials: make(map[string]channel.Credentials),
		Default:     strings.TrimSpace(s[KeyDefaultChannel]),
	}

	skipped := make(map[string]bool)
	for key, value := range s {
		if key == KeyDefaultChannel {
			continue
		}

		id, field, ok := strings.Cut(key, ".")
		if !ok || id == "" || field == "" {
			return channel.Configuration{}, common.NewValidationError(fmt.Sprintf("malformed settings key %q", key))
		}
		if _, err := state.Lookup(id); err != nil {
			if !skipped[id] {
				slog.Warn("ignoring settings for unregistered channel", "channel", id)
				skipped[id] = true
			}
			continue
		}

		if field == enabledField {
			enabled, err := cast.ToBoolE(strings.TrimSpace(value))
			if err != nil {
				return channel.Configuration{}, common.NewValidationError(fmt.Sprintf("invalid boolean for %q: %s", key, value))
			}
			cfg.Enabled[id] = enabled
			continue
		}

		creds, ok := cfg.Credentials[id]
		if !ok {
			creds = channel.Credentials{}
			cfg.Credentials[id] = creds
		}
		creds[field] = value
	}

	return cfg, nil
}
