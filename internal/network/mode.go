package network

import (
	"fmt"
	"strings"

	kerrors "github.com/PolarWolf314/refuge/internal/errors"
)

type PrivacyMode int

const (
	ModeStandard PrivacyMode = iota
	ModeFronting
	ModeTor
)

// Modes lists every privacy mode in order of increasing protection.
var Modes = []PrivacyMode{ModeStandard, ModeFronting, ModeTor}

func (m PrivacyMode) String() string {
	switch m {
	case ModeStandard:
		return "standard"
	case ModeFronting:
		return "fronting"
	case ModeTor:
		return "tor"
	default:
		return fmt.Sprintf("PrivacyMode(%d)", int(m))
	}
}

// Description is a one-line explanation shown to the user.
func (m PrivacyMode) Description() string {
	switch m {
	case ModeStandard:
		return "Direct connection to the directory"
	case ModeFronting:
		return "Hides the destination behind a large CDN"
	case ModeTor:
		return "Routes through Tor for the strongest anonymity"
	default:
		return ""
	}
}

func ParseMode(s string) (PrivacyMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "standard", "direct":
		return ModeStandard, nil
	case "fronting", "domain-fronting", "domain_fronting":
		return ModeFronting, nil
	case "tor", "onion":
		return ModeTor, nil
	default:
		return ModeStandard, fmt.Errorf("%q: %w", s, kerrors.ErrInvalidPrivacyMode)
	}
}

type CDNProvider int

const (
	ProviderCloudflare CDNProvider = iota
	ProviderFastly
	ProviderAzure
)

var Providers = []CDNProvider{ProviderCloudflare, ProviderFastly, ProviderAzure}

func (p CDNProvider) String() string {
	switch p {
	case ProviderCloudflare:
		return "cloudflare"
	case ProviderFastly:
		return "fastly"
	case ProviderAzure:
		return "azure"
	default:
		return fmt.Sprintf("CDNProvider(%d)", int(p))
	}
}

func ParseProvider(s string) (CDNProvider, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "cloudflare":
		return ProviderCloudflare, nil
	case "fastly":
		return ProviderFastly, nil
	case "azure":
		return ProviderAzure, nil
	default:
		return ProviderCloudflare, fmt.Errorf("%q: %w", s, kerrors.ErrInvalidProvider)
	}
}

// Endpoint is where fronted traffic is addressed and where it is dialed.
type Endpoint struct {
	// ReflectorURL is the service behind the CDN, sent as the Host header.
	ReflectorURL string
	// FrontDomain is the innocuous CDN hostname used for DNS, TCP and SNI.
	FrontDomain string
}

var defaultEndpoints = map[CDNProvider]Endpoint{
	ProviderCloudflare: {
		ReflectorURL: "https://refuge-reflector.refuge-directory.workers.dev",
		FrontDomain:  "www.cloudflare.com",
	},
	ProviderFastly: {
		ReflectorURL: "https://refuge-directory.global.ssl.fastly.net",
		FrontDomain:  "www.fastly.com",
	},
	ProviderAzure: {
		ReflectorURL: "https://refuge-directory.azureedge.net",
		FrontDomain:  "ajax.aspnetcdn.com",
	},
}
