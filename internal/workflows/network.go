package workflows

import (
	"context"
	"sync"

	"github.com/PolarWolf314/refuge/internal/advisor"
	"github.com/PolarWolf314/refuge/internal/audit"
	"github.com/PolarWolf314/refuge/internal/network"
)

// SetPrivacyMode stores the mode chosen by the user.
func (o *Orchestrator) SetPrivacyMode(mode network.PrivacyMode) error {
	done, err := o.beginUnlocked()
	if err != nil {
		return err
	}
	defer done()

	if err := o.opts.Router.SetMode(mode); err != nil {
		return err
	}
	o.journal(audit.Entry{Event: audit.EventModeChanged, Mode: mode.String()})
	return nil
}

// SetProvider stores the CDN provider used for fronting.
func (o *Orchestrator) SetProvider(p network.CDNProvider) error {
	done, err := o.beginUnlocked()
	if err != nil {
		return err
	}
	defer done()

	return o.opts.Router.SetProvider(p)
}

// SetAutoDetect turns censorship detection on or off.
func (o *Orchestrator) SetAutoDetect(enabled bool) error {
	done, err := o.beginUnlocked()
	if err != nil {
		return err
	}
	defer done()

	return o.opts.Router.SetAutoDetect(enabled)
}

// NetworkSettings is the user's stored routing preferences.
type NetworkSettings struct {
	Mode       network.PrivacyMode
	Provider   network.CDNProvider
	AutoDetect bool
}

// NetworkSettings reads the stored routing preferences.
func (o *Orchestrator) NetworkSettings() (NetworkSettings, error) {
	done, err := o.begin()
	if err != nil {
		return NetworkSettings{}, err
	}
	defer done()

	var s NetworkSettings
	if s.Mode, err = o.opts.Router.Mode(); err != nil {
		return NetworkSettings{}, err
	}
	if s.Provider, err = o.opts.Router.Provider(); err != nil {
		return NetworkSettings{}, err
	}
	if s.AutoDetect, err = o.opts.Router.AutoDetect(); err != nil {
		return NetworkSettings{}, err
	}
	return s, nil
}

// Resolve returns the route for the next request.
func (o *Orchestrator) Resolve(ctx context.Context) (*network.Resolution, error) {
	done, err := o.begin()
	if err != nil {
		return nil, err
	}
	defer done()

	ctx, cancel := o.inflightContext(ctx)
	defer cancel()

	return o.opts.Router.Resolve(ctx)
}

// TestConnection performs one health request through the resolved route.
func (o *Orchestrator) TestConnection(ctx context.Context) (network.ConnectionReport, error) {
	done, err := o.begin()
	if err != nil {
		return network.ConnectionReport{}, err
	}
	defer done()

	ctx, cancel := o.inflightContext(ctx)
	defer cancel()

	return o.opts.Router.TestConnection(ctx), nil
}

// AdviseNetwork classifies the current network attachment.
func (o *Orchestrator) AdviseNetwork(ctx context.Context) (advisor.NetworkPrivacyStatus, error) {
	done, err := o.begin()
	if err != nil {
		return advisor.NetworkPrivacyStatus{}, err
	}
	defer done()

	ctx, cancel := o.inflightContext(ctx)
	defer cancel()

	return o.opts.Advisor.Classify(ctx)
}

// TrustNetwork adds a network to the trusted set.
func (o *Orchestrator) TrustNetwork(id string) error {
	done, err := o.beginUnlocked()
	if err != nil {
		return err
	}
	defer done()

	return o.opts.Advisor.Trust(id)
}

// UntrustNetwork removes a network from the trusted set.
func (o *Orchestrator) UntrustNetwork(id string) error {
	done, err := o.beginUnlocked()
	if err != nil {
		return err
	}
	defer done()

	return o.opts.Advisor.Untrust(id)
}

// TrustedNetworks lists the trusted set.
func (o *Orchestrator) TrustedNetworks() ([]string, error) {
	done, err := o.beginUnlocked()
	if err != nil {
		return nil, err
	}
	defer done()

	return o.opts.Advisor.Trusted()
}

// PrivacyStatus is a combined snapshot computed on every call.
type PrivacyStatus struct {
	PinEnabled        bool
	EncryptionEnabled bool
	Incognito         bool
	Unlocked          bool

	// Mode is the stored privacy mode.
	Mode network.PrivacyMode

	// Resolution is nil when ResolveErr is set.
	Resolution *network.Resolution
	ResolveErr error

	Network    advisor.NetworkPrivacyStatus
	NetworkErr error
}

// PrivacyStatus resolves the route and classifies the network concurrently.
func (o *Orchestrator) PrivacyStatus(ctx context.Context) (*PrivacyStatus, error) {
	done, err := o.begin()
	if err != nil {
		return nil, err
	}
	defer done()

	status := &PrivacyStatus{Incognito: o.Incognito(), Unlocked: o.isUnlocked()}

	if status.PinEnabled, err = o.opts.Guard.Enabled(); err != nil {
		return nil, err
	}
	if status.EncryptionEnabled, err = o.opts.Encryption.Enabled(); err != nil {
		return nil, err
	}
	if status.Mode, err = o.opts.Router.Mode(); err != nil {
		return nil, err
	}

	ctx, cancel := o.inflightContext(ctx)
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		status.Resolution, status.ResolveErr = o.opts.Router.Resolve(ctx)
	}()
	go func() {
		defer wg.Done()
		status.Network, status.NetworkErr = o.opts.Advisor.Classify(ctx)
	}()
	wg.Wait()

	return status, nil
}
