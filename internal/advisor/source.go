package advisor

import (
	"context"
	"net"
	"os/exec"
	"strings"
	"time"
)

// StaticSource reports a fixed attachment.
type StaticSource Attachment

func (s StaticSource) Current(ctx context.Context) (Attachment, error) {
	return Attachment(s), nil
}

// SystemSource inspects the host's interfaces. The Wi-Fi name is read with
// iwgetid when it is installed.
type SystemSource struct {
	// Interfaces defaults to net.Interfaces.
	Interfaces func() ([]net.Interface, error)
	// SSID defaults to running "iwgetid -r".
	SSID func(ctx context.Context) (string, error)
}

func (s SystemSource) Current(ctx context.Context) (Attachment, error) {
	list := s.Interfaces
	if list == nil {
		list = net.Interfaces
	}
	ifaces, err := list()
	if err != nil {
		return Attachment{}, err
	}

	kind := KindNone
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		k := interfaceKind(iface.Name)
		if k == KindOther {
			continue
		}
		// Wi-Fi wins over wired so the public network check still runs.
		if kind == KindNone || k == KindWiFi {
			kind = k
		}
	}

	att := Attachment{Kind: kind}
	if kind != KindWiFi {
		return att, nil
	}

	ssid := s.SSID
	if ssid == nil {
		ssid = iwgetid
	}
	name, err := ssid(ctx)
	if err == nil && name != "" {
		att.Identifier = name
		att.IdentifierKnown = true
	}
	return att, nil
}

func interfaceKind(name string) Kind {
	switch {
	case strings.HasPrefix(name, "wl"), strings.HasPrefix(name, "wifi"), strings.HasPrefix(name, "ath"):
		return KindWiFi
	case strings.HasPrefix(name, "wwan"), strings.HasPrefix(name, "rmnet"), strings.HasPrefix(name, "ccmni"), strings.HasPrefix(name, "pdp_ip"):
		return KindCellular
	case strings.HasPrefix(name, "en"), strings.HasPrefix(name, "eth"):
		return KindWired
	default:
		return KindOther
	}
}

func iwgetid(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	out, err := exec.CommandContext(ctx, "iwgetid", "-r").Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}
