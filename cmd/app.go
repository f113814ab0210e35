package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"runtime"
	"sync"

	"github.com/PolarWolf314/refuge/internal/advisor"
	"github.com/PolarWolf314/refuge/internal/audit"
	"github.com/PolarWolf314/refuge/internal/cache"
	"github.com/PolarWolf314/refuge/internal/configs"
	"github.com/PolarWolf314/refuge/internal/guard"
	"github.com/PolarWolf314/refuge/internal/network"
	"github.com/PolarWolf314/refuge/internal/secrets"
	"github.com/PolarWolf314/refuge/internal/store"
	"github.com/PolarWolf314/refuge/internal/utils"
	"github.com/PolarWolf314/refuge/internal/workflows"
)

// cliHost drives the terminal on quick exit and wipe.
type cliHost struct {
	mu         sync.Mutex
	terminated bool
}

// Background clears the screen and scrollback.
func (h *cliHost) Background() error {
	if !utils.IsTerminal() {
		return nil
	}
	return utils.ClearScreen()
}

// OpenURL hands url to the desktop's default browser.
func (h *cliHost) OpenURL(ctx context.Context, url string) error {
	var c *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		c = exec.CommandContext(ctx, "open", url)
	case "windows":
		c = exec.CommandContext(ctx, "rundll32", "url.dll,FileProtocolHandler", url)
	default:
		c = exec.CommandContext(ctx, "xdg-open", url)
	}
	return c.Start()
}

// Terminate marks the process for exit once the command returns.
func (h *cliHost) Terminate() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.terminated = true
}

func (h *cliHost) Terminated() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.terminated
}

// app holds everything one CLI invocation opens.
type app struct {
	paths    configs.Paths
	settings *configs.Settings
	secrets  *store.BoltSecrets
	config   *store.FileConfig
	host     *cliHost
	orch     *workflows.Orchestrator
}

// openApp loads settings, opens the stores and builds the orchestrator.
// Callers must defer app.Close.
func openApp() (*app, error) {
	paths, err := configs.DefaultPaths()
	if err != nil {
		return nil, err
	}
	Logger.Debugf("Config dir: %s, data dir: %s", paths.ConfigDir, paths.DataDir)

	settings, err := configs.LoadSettings(paths.SettingsFile)
	if err != nil {
		return nil, err
	}

	if err := paths.EnsureDataDir(); err != nil {
		return nil, err
	}

	secretStore, err := store.OpenBoltSecrets(paths.SecretsDB)
	if err != nil {
		return nil, err
	}

	configStore, err := store.OpenFileConfig(paths.StateFile)
	if err != nil {
		secretStore.Close()
		return nil, err
	}

	netCfg, err := network.ConfigFromSettings(settings.Network)
	if err != nil {
		secretStore.Close()
		return nil, err
	}

	g := guard.New(guard.Options{
		Secrets:            secretStore,
		Config:             configStore,
		Params:             settings.Guard.HashParams(),
		DefaultMaxAttempts: settings.Guard.MaxFailedAttempts,
		DefaultPanicWipe:   settings.Guard.PanicWipe,
		Logger:             Logger,
	})

	enc := secrets.NewManager(secretStore, configStore, Logger)
	host := &cliHost{}

	orch, err := workflows.New(workflows.Options{
		Guard:        g,
		Encryption:   enc,
		Router:       network.NewRouter(netCfg, configStore, Logger),
		Advisor:      advisor.New(advisor.SystemSource{}, configStore, settings.Network.PublicNameFragments, Logger),
		Cache:        cache.New(paths.CacheDir, enc, Logger),
		Journal:      audit.NewJournal(paths.JournalFile),
		Secrets:      secretStore,
		Config:       configStore,
		Host:         host,
		CoverURL:     settings.Session.CoverURL,
		HistoryLimit: settings.Session.HistoryLimit,
		Logger:       Logger,
	})
	if err != nil {
		secretStore.Close()
		return nil, err
	}

	return &app{
		paths:    paths,
		settings: settings,
		secrets:  secretStore,
		config:   configStore,
		host:     host,
		orch:     orch,
	}, nil
}

// Close releases the secret store. After a wipe the database file itself is
// shredded, since deleted bbolt values can linger in free pages.
func (a *app) Close() {
	if err := a.secrets.Close(); err != nil {
		Logger.Warnf("Failed to close secret store: %v", err)
	}
	if !a.host.Terminated() {
		return
	}
	if err := utils.ShredFile(a.paths.SecretsDB); err != nil && !errors.Is(err, fs.ErrNotExist) {
		Logger.Warnf("Failed to shred %s: %v", a.paths.SecretsDB, err)
	}
}

// errWipedNow is returned by commands whose PIN prompt triggered the wipe.
var errWipedNow = errors.New("too many failed attempts, all local data has been erased")

// requireUnlock prompts for the PIN when one is set. Every CLI invocation is
// its own session, so commands that need an unlocked session call this first.
func (a *app) requireUnlock(ctx context.Context) error {
	if a.orch.Unlocked() {
		return nil
	}

	pin, err := utils.ReadPIN("Enter PIN: ")
	if err != nil {
		return err
	}

	res, err := a.orch.Unlock(ctx, pin)
	if res != nil && res.Wiped {
		fmt.Println(wipedMessage())
		return errWipedNow
	}
	if err != nil {
		if res != nil && res.PinRequired {
			fmt.Println(failedUnlockMessage(res.Remaining))
		}
		return err
	}
	Logger.Debugf("Unlocked session %s", res.SessionID)
	return nil
}
