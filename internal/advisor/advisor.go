package advisor

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"sync"

	logger "github.com/PolarWolf314/refuge/internal/logging"
	"github.com/PolarWolf314/refuge/internal/store"
)

// ConfigTrusted is the ConfigStore key holding the trusted network list.
const ConfigTrusted = "network.trusted"

type Level int

const (
	LevelGood Level = iota
	LevelModerate
	LevelCaution
	LevelOffline
)

func (l Level) String() string {
	switch l {
	case LevelGood:
		return "good"
	case LevelModerate:
		return "moderate"
	case LevelCaution:
		return "caution"
	case LevelOffline:
		return "offline"
	default:
		return "unknown"
	}
}

type Kind int

const (
	KindNone Kind = iota
	KindWiFi
	KindCellular
	KindWired
	KindOther
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindWiFi:
		return "wifi"
	case KindCellular:
		return "cellular"
	case KindWired:
		return "wired"
	default:
		return "other"
	}
}

// Attachment is what a Source knows about the active network.
type Attachment struct {
	Kind       Kind
	Identifier string
	// IdentifierKnown is false when the platform would not reveal the identifier.
	IdentifierKnown bool
}

type Source interface {
	Current(ctx context.Context) (Attachment, error)
}

// NetworkPrivacyStatus is a point-in-time classification.
type NetworkPrivacyStatus struct {
	Level      Level
	Kind       Kind
	Identifier string
	Trusted    bool
	Message    string
}

// DefaultPublicFragments are substrings common in public hotspot names.
var DefaultPublicFragments = []string{
	"public", "guest", "free", "wifi", "wi-fi", "hotspot", "open",
	"airport", "hotel", "cafe", "coffee", "starbucks", "mcdonalds",
	"library", "station", "mall", "visitor", "xfinitywifi", "attwifi",
}

type Advisor struct {
	mu        sync.Mutex
	source    Source
	config    store.ConfigStore
	fragments []string
	log       logger.Logger
}

// New returns an Advisor. A nil or empty fragments slice uses DefaultPublicFragments.
func New(source Source, config store.ConfigStore, fragments []string, log logger.Logger) *Advisor {
	if len(fragments) == 0 {
		fragments = DefaultPublicFragments
	}
	lowered := make([]string, 0, len(fragments))
	for _, f := range fragments {
		if f = strings.ToLower(strings.TrimSpace(f)); f != "" {
			lowered = append(lowered, f)
		}
	}
	return &Advisor{source: source, config: config, fragments: lowered, log: log}
}

// Classify reads the current attachment and rates it.
func (a *Advisor) Classify(ctx context.Context) (NetworkPrivacyStatus, error) {
	att, err := a.source.Current(ctx)
	if err != nil {
		return NetworkPrivacyStatus{}, fmt.Errorf("reading network attachment: %w", err)
	}

	trusted, err := a.Trusted()
	if err != nil {
		return NetworkPrivacyStatus{}, err
	}
	return a.classify(att, trusted), nil
}

func (a *Advisor) classify(att Attachment, trusted []string) NetworkPrivacyStatus {
	status := NetworkPrivacyStatus{Kind: att.Kind, Identifier: att.Identifier}

	switch att.Kind {
	case KindNone:
		status.Level = LevelOffline
		status.Message = "No network connection. Saved resources are still available."

	case KindCellular:
		status.Level = LevelGood
		status.Message = "Mobile data is harder to monitor than shared Wi-Fi."

	case KindWired:
		status.Level = LevelModerate
		status.Message = "Wired connection. Whoever runs this network can see which sites you visit."

	case KindWiFi:
		switch {
		case !att.IdentifierKnown:
			status.Level = LevelModerate
			status.Message = "Allow location access so the network name can be checked. The name never leaves this device."
		case slices.Contains(trusted, att.Identifier):
			status.Level = LevelGood
			status.Trusted = true
			status.Message = "You marked this network as trusted."
		case a.looksPublic(att.Identifier):
			status.Level = LevelCaution
			status.Message = "This looks like a public network. Consider using Tor or mobile data."
		default:
			status.Level = LevelModerate
			status.Message = "Unknown Wi-Fi network. Mark it as trusted if it is your own."
		}

	default:
		status.Level = LevelModerate
		status.Message = "Unrecognized connection type."
	}

	return status
}

func (a *Advisor) looksPublic(identifier string) bool {
	name := strings.ToLower(identifier)
	for _, f := range a.fragments {
		if strings.Contains(name, f) {
			return true
		}
	}
	return false
}

// Trusted returns the trusted identifiers.
func (a *Advisor) Trusted() ([]string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.trustedLocked()
}

// Trust adds identifier to the trusted set. Adding an existing entry is a no-op.
func (a *Advisor) Trust(identifier string) error {
	if strings.TrimSpace(identifier) == "" {
		return fmt.Errorf("network identifier must not be empty")
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	trusted, err := a.trustedLocked()
	if err != nil {
		return err
	}
	if slices.Contains(trusted, identifier) {
		return nil
	}
	return a.saveLocked(append(trusted, identifier))
}

// Untrust removes identifier from the trusted set.
func (a *Advisor) Untrust(identifier string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	trusted, err := a.trustedLocked()
	if err != nil {
		return err
	}
	i := slices.Index(trusted, identifier)
	if i < 0 {
		return nil
	}
	return a.saveLocked(slices.Delete(trusted, i, i+1))
}

func (a *Advisor) trustedLocked() ([]string, error) {
	v, ok, err := a.config.Get(ConfigTrusted)
	if err != nil {
		return nil, fmt.Errorf("loading trusted networks: %w", err)
	}
	if !ok || v == "" {
		return nil, nil
	}

	var trusted []string
	if err := json.Unmarshal([]byte(v), &trusted); err != nil {
		a.log.Warnf("Ignoring malformed trusted network list")
		return nil, nil
	}
	return trusted, nil
}

func (a *Advisor) saveLocked(trusted []string) error {
	data, err := json.Marshal(trusted)
	if err != nil {
		return fmt.Errorf("encoding trusted networks: %w", err)
	}
	if err := a.config.Put(ConfigTrusted, string(data)); err != nil {
		return fmt.Errorf("saving trusted networks: %w", err)
	}
	return nil
}
