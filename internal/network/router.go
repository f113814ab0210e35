package network

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/PolarWolf314/refuge/internal/configs"
	kerrors "github.com/PolarWolf314/refuge/internal/errors"
	logger "github.com/PolarWolf314/refuge/internal/logging"
	"github.com/PolarWolf314/refuge/internal/store"
)

// ConfigStore keys owned by the router.
const (
	ConfigMode       = "privacy.mode"
	ConfigProvider   = "privacy.cdn_provider"
	ConfigAutoDetect = "network.auto_censorship_detection"
)

// Config holds the endpoints and timeouts the router works with.
type Config struct {
	DirectURL  string
	OnionURL   string
	HealthPath string
	ControlURL string

	TorSOCKSAddr string
	// TorStrict reports an unreachable proxy as an error instead of stepping
	// down to fronting.
	TorStrict bool

	// AutoDetect is used until the user stores a preference.
	AutoDetect bool

	LocalProbeTimeout  time.Duration
	RemoteProbeTimeout time.Duration
	DirectTimeout      time.Duration
	FrontingTimeout    time.Duration
	TorTimeout         time.Duration

	Endpoints map[CDNProvider]Endpoint
}

// ConfigFromSettings builds a router Config from the settings file, applying
// any provider overrides on top of the built-in endpoints.
func ConfigFromSettings(s configs.NetworkSettings) (Config, error) {
	cfg := Config{
		DirectURL:          s.DirectURL,
		OnionURL:           s.OnionURL,
		HealthPath:         s.HealthPath,
		ControlURL:         s.ControlURL,
		TorSOCKSAddr:       s.TorSOCKSAddr,
		TorStrict:          s.TorStrict,
		AutoDetect:         s.AutoCensorshipDetection,
		LocalProbeTimeout:  s.LocalProbeTimeout,
		RemoteProbeTimeout: s.RemoteProbeTimeout,
		DirectTimeout:      s.DirectTimeout,
		FrontingTimeout:    s.FrontingTimeout,
		TorTimeout:         s.TorTimeout,
		Endpoints:          make(map[CDNProvider]Endpoint, len(defaultEndpoints)),
	}

	for p, e := range defaultEndpoints {
		cfg.Endpoints[p] = e
	}

	for name, override := range s.Providers {
		p, err := ParseProvider(name)
		if err != nil {
			return Config{}, fmt.Errorf("network.providers: %w", err)
		}
		e := cfg.Endpoints[p]
		if override.ReflectorURL != "" {
			e.ReflectorURL = override.ReflectorURL
		}
		if override.FrontDomain != "" {
			e.FrontDomain = override.FrontDomain
		}
		cfg.Endpoints[p] = e
	}

	return cfg, nil
}

// Resolution is the outcome of one Resolve call.
type Resolution struct {
	Requested PrivacyMode
	Effective PrivacyMode
	Provider  CDNProvider
	BaseURL   string
	Transport TransportConfig

	// Degraded is set when Tor was requested but fronting is in use.
	Degraded bool
	// CensorshipDetected is set when the direct endpoint looked blocked.
	CensorshipDetected bool

	Status string
}

// ConnectionReport is the result of TestConnection.
type ConnectionReport struct {
	Success   bool
	LatencyMs int64
	Message   string
	Mode      PrivacyMode
	Degraded  bool
}

type Router struct {
	cfg    Config
	config store.ConfigStore
	log    logger.Logger

	// probeClient carries the censorship probes, which always go direct.
	probeClient *http.Client
}

func NewRouter(cfg Config, config store.ConfigStore, log logger.Logger) *Router {
	if cfg.Endpoints == nil {
		cfg.Endpoints = defaultEndpoints
	}
	if cfg.HealthPath == "" {
		cfg.HealthPath = "/health"
	}
	if cfg.LocalProbeTimeout == 0 {
		cfg.LocalProbeTimeout = 2500 * time.Millisecond
	}
	if cfg.RemoteProbeTimeout == 0 {
		cfg.RemoteProbeTimeout = 8 * time.Second
	}

	probeClient, _ := TransportConfig{Kind: TransportDirect, Timeout: cfg.RemoteProbeTimeout}.HTTPClient()

	return &Router{cfg: cfg, config: config, log: log, probeClient: probeClient}
}

// Mode returns the stored privacy mode, standard when none is stored.
func (r *Router) Mode() (PrivacyMode, error) {
	v, ok, err := r.config.Get(ConfigMode)
	if err != nil {
		return ModeStandard, fmt.Errorf("loading privacy mode: %w", err)
	}
	if !ok {
		return ModeStandard, nil
	}
	mode, err := ParseMode(v)
	if err != nil {
		r.log.Warnf("Ignoring stored privacy mode %q", v)
		return ModeStandard, nil
	}
	return mode, nil
}

func (r *Router) SetMode(mode PrivacyMode) error {
	if mode < ModeStandard || mode > ModeTor {
		return kerrors.ErrInvalidPrivacyMode
	}
	if err := r.config.Put(ConfigMode, mode.String()); err != nil {
		return fmt.Errorf("saving privacy mode: %w", err)
	}
	return nil
}

// Provider returns the stored CDN provider, cloudflare when none is stored.
func (r *Router) Provider() (CDNProvider, error) {
	v, ok, err := r.config.Get(ConfigProvider)
	if err != nil {
		return ProviderCloudflare, fmt.Errorf("loading cdn provider: %w", err)
	}
	if !ok {
		return ProviderCloudflare, nil
	}
	p, err := ParseProvider(v)
	if err != nil {
		r.log.Warnf("Ignoring stored cdn provider %q", v)
		return ProviderCloudflare, nil
	}
	return p, nil
}

func (r *Router) SetProvider(p CDNProvider) error {
	if _, ok := r.cfg.Endpoints[p]; !ok {
		return kerrors.ErrInvalidProvider
	}
	if err := r.config.Put(ConfigProvider, p.String()); err != nil {
		return fmt.Errorf("saving cdn provider: %w", err)
	}
	return nil
}

func (r *Router) AutoDetect() (bool, error) {
	v, ok, err := r.config.Get(ConfigAutoDetect)
	if err != nil {
		return false, fmt.Errorf("loading censorship detection flag: %w", err)
	}
	if !ok {
		return r.cfg.AutoDetect, nil
	}
	enabled, err := strconv.ParseBool(v)
	if err != nil {
		return r.cfg.AutoDetect, nil
	}
	return enabled, nil
}

func (r *Router) SetAutoDetect(enabled bool) error {
	if err := r.config.Put(ConfigAutoDetect, strconv.FormatBool(enabled)); err != nil {
		return fmt.Errorf("saving censorship detection flag: %w", err)
	}
	return nil
}

// Resolve picks the effective mode, base URL and transport for the next
// request. It never changes the stored mode.
func (r *Router) Resolve(ctx context.Context) (*Resolution, error) {
	mode, err := r.Mode()
	if err != nil {
		return nil, err
	}
	provider, err := r.Provider()
	if err != nil {
		return nil, err
	}

	switch mode {
	case ModeStandard:
		return r.resolveStandard(ctx, provider)
	case ModeFronting:
		res, err := r.fronting(ModeFronting, provider)
		if err != nil {
			return nil, err
		}
		res.Status = fmt.Sprintf("Domain fronting through %s", provider)
		return res, nil
	case ModeTor:
		return r.resolveTor(ctx, provider)
	default:
		return nil, kerrors.ErrInvalidPrivacyMode
	}
}

func (r *Router) direct() *Resolution {
	return &Resolution{
		Requested: ModeStandard,
		Effective: ModeStandard,
		BaseURL:   r.cfg.DirectURL,
		Transport: TransportConfig{Kind: TransportDirect, Timeout: r.cfg.DirectTimeout},
		Status:    "Direct connection",
	}
}

func (r *Router) fronting(requested PrivacyMode, provider CDNProvider) (*Resolution, error) {
	e, ok := r.cfg.Endpoints[provider]
	if !ok {
		return nil, fmt.Errorf("%s: %w", provider, kerrors.ErrInvalidProvider)
	}
	return &Resolution{
		Requested: requested,
		Effective: ModeFronting,
		Provider:  provider,
		BaseURL:   e.ReflectorURL,
		Transport: TransportConfig{
			Kind:        TransportFronted,
			Timeout:     r.cfg.FrontingTimeout,
			FrontDomain: e.FrontDomain,
		},
	}, nil
}

func (r *Router) resolveStandard(ctx context.Context, provider CDNProvider) (*Resolution, error) {
	autoDetect, err := r.AutoDetect()
	if err != nil {
		return nil, err
	}
	if !autoDetect {
		return r.direct(), nil
	}

	healthy, controlOK := r.probeCensorship(ctx)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if !healthy && controlOK {
		r.log.Infof("Direct endpoint unreachable while the internet works, using fronting for this request")
		res, err := r.fronting(ModeStandard, provider)
		if err != nil {
			return nil, err
		}
		res.CensorshipDetected = true
		res.Status = fmt.Sprintf("The directory looks blocked on this network, using domain fronting through %s for this request", provider)
		return res, nil
	}

	res := r.direct()
	if !healthy && !controlOK {
		res.Status = "Direct connection (network appears offline)"
	}
	return res, nil
}

// probeCensorship runs the backend health probe and the control probe
// concurrently.
func (r *Router) probeCensorship(ctx context.Context) (healthy, controlOK bool) {
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		healthy = fetchOK(ctx, r.probeClient, joinURL(r.cfg.DirectURL, r.cfg.HealthPath), r.cfg.RemoteProbeTimeout)
	}()
	go func() {
		defer wg.Done()
		controlOK = fetchOK(ctx, r.probeClient, r.cfg.ControlURL, r.cfg.RemoteProbeTimeout)
	}()

	wg.Wait()
	r.log.Debugf("Censorship probes: health=%t control=%t", healthy, controlOK)
	return healthy, controlOK
}

func (r *Router) resolveTor(ctx context.Context, provider CDNProvider) (*Resolution, error) {
	if TorAvailable(ctx, r.cfg.TorSOCKSAddr, r.cfg.LocalProbeTimeout) {
		return &Resolution{
			Requested: ModeTor,
			Effective: ModeTor,
			BaseURL:   r.cfg.OnionURL,
			Transport: TransportConfig{
				Kind:      TransportSOCKS5,
				Timeout:   r.cfg.TorTimeout,
				ProxyAddr: r.cfg.TorSOCKSAddr,
			},
			Status: "Connected through Tor",
		}, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if r.cfg.TorStrict {
		return nil, fmt.Errorf("no proxy listening on %s: %w", r.cfg.TorSOCKSAddr, kerrors.ErrProxyUnavailable)
	}

	r.log.Warnf("Tor is not running on %s, stepping down to domain fronting", r.cfg.TorSOCKSAddr)
	res, err := r.fronting(ModeTor, provider)
	if err != nil {
		return nil, err
	}
	res.Degraded = true
	res.Status = "Tor is not running. Start Tor (or Orbot) for the strongest protection. Using domain fronting for now"
	return res, nil
}

// TorAvailable reports whether a SOCKS proxy accepts connections on addr.
func TorAvailable(ctx context.Context, addr string, timeout time.Duration) bool {
	return dialTCP(ctx, addr, timeout)
}

// TestConnection resolves the current route and performs one health
// request through it.
func (r *Router) TestConnection(ctx context.Context) ConnectionReport {
	res, err := r.Resolve(ctx)
	if err != nil {
		mode, _ := r.Mode()
		return ConnectionReport{Mode: mode, Message: describeFailure(err)}
	}

	report := ConnectionReport{Mode: res.Effective, Degraded: res.Degraded}

	client, err := res.Transport.HTTPClient()
	if err != nil {
		report.Message = describeFailure(err)
		return report
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, joinURL(res.BaseURL, r.cfg.HealthPath), nil)
	if err != nil {
		report.Message = describeFailure(err)
		return report
	}

	start := time.Now()
	resp, err := client.Do(req)
	report.LatencyMs = time.Since(start).Milliseconds()
	if err != nil {
		report.Message = describeFailure(err)
		return report
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		report.Message = fmt.Sprintf("Server responded with %s", resp.Status)
		return report
	}

	report.Success = true
	report.Message = fmt.Sprintf("Connected via %s in %dms", res.Effective, report.LatencyMs)
	if res.Degraded {
		report.Message += " (Tor unavailable)"
	}
	return report
}

func describeFailure(err error) string {
	switch {
	case errors.Is(err, kerrors.ErrProxyUnavailable):
		return "Tor is not running"
	case errors.Is(err, context.DeadlineExceeded):
		return "Connection timed out"
	case errors.Is(err, context.Canceled):
		return "Connection test cancelled"
	default:
		return fmt.Sprintf("Connection failed: %v", err)
	}
}

func joinURL(base, path string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}
