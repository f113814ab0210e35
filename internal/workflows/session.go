package workflows

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/PolarWolf314/refuge/internal/audit"
)

// ConfigStore keys for persisted history.
const (
	ConfigRecent = "history.recent"
	ConfigSearch = "history.search"
)

const defaultHistoryLimit = 25

// History holds recently viewed items and searches, newest first.
type History struct {
	Recent   []string
	Searches []string
	// Incognito is true when these lists come from the volatile buffers.
	Incognito bool
}

// QuickExit locks the session, drops incognito buffers, hides the app and
// then opens the cover page. A navigation failure is logged, not returned.
func (o *Orchestrator) QuickExit(ctx context.Context) error {
	done, err := o.begin()
	if err != nil {
		return err
	}
	defer done()

	o.journal(audit.Entry{Event: audit.EventQuickExit})
	o.lockSession()

	if o.opts.Host == nil {
		return nil
	}
	if err := o.opts.Host.Background(); err != nil {
		return fmt.Errorf("hiding app: %w", err)
	}

	if o.opts.CoverURL != "" {
		if err := o.opts.Host.OpenURL(ctx, o.opts.CoverURL); err != nil {
			o.opts.Logger.Warnf("Could not open cover page: %v", err)
		}
	}
	return nil
}

// StartIncognitoSession routes history to memory until EndIncognitoSession.
// The journal is paused for the same period.
func (o *Orchestrator) StartIncognitoSession() (string, error) {
	done, err := o.beginUnlocked()
	if err != nil {
		return "", err
	}
	defer done()

	o.sessionMu.Lock()
	defer o.sessionMu.Unlock()

	if !o.incognito {
		o.incognito = true
		o.incognitoRecent = nil
		o.incognitoSearch = nil
	}
	return o.sessionID, nil
}

// EndIncognitoSession discards everything recorded during the session.
func (o *Orchestrator) EndIncognitoSession() error {
	done, err := o.begin()
	if err != nil {
		return err
	}
	defer done()

	o.sessionMu.Lock()
	defer o.sessionMu.Unlock()

	o.incognito = false
	o.incognitoRecent = nil
	o.incognitoSearch = nil
	return nil
}

// Incognito reports whether an incognito session is active.
func (o *Orchestrator) Incognito() bool {
	o.sessionMu.Lock()
	defer o.sessionMu.Unlock()
	return o.incognito
}

// RecordRecent remembers a viewed item. Nothing is recorded while locked.
func (o *Orchestrator) RecordRecent(item string) error {
	return o.record(ConfigRecent, item, func() *[]string { return &o.incognitoRecent })
}

// RecordSearch remembers a search query. Nothing is recorded while locked.
func (o *Orchestrator) RecordSearch(query string) error {
	return o.record(ConfigSearch, query, func() *[]string { return &o.incognitoSearch })
}

func (o *Orchestrator) record(key, value string, buffer func() *[]string) error {
	done, err := o.begin()
	if err != nil {
		return err
	}
	defer done()

	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}

	o.sessionMu.Lock()
	if !o.unlocked {
		o.sessionMu.Unlock()
		return nil
	}
	if o.incognito {
		buf := buffer()
		*buf = pushFront(*buf, value, o.opts.HistoryLimit)
		o.sessionMu.Unlock()
		return nil
	}
	o.sessionMu.Unlock()

	o.historyMu.Lock()
	defer o.historyMu.Unlock()

	list, err := o.loadList(key)
	if err != nil {
		return err
	}
	return o.saveList(key, pushFront(list, value, o.opts.HistoryLimit))
}

// History returns the incognito buffers during an incognito session and the
// persisted lists otherwise.
func (o *Orchestrator) History() (History, error) {
	done, err := o.beginUnlocked()
	if err != nil {
		return History{}, err
	}
	defer done()

	o.sessionMu.Lock()
	if o.incognito {
		h := History{
			Recent:    slices.Clone(o.incognitoRecent),
			Searches:  slices.Clone(o.incognitoSearch),
			Incognito: true,
		}
		o.sessionMu.Unlock()
		return h, nil
	}
	o.sessionMu.Unlock()

	recent, err := o.loadList(ConfigRecent)
	if err != nil {
		return History{}, err
	}
	searches, err := o.loadList(ConfigSearch)
	if err != nil {
		return History{}, err
	}
	return History{Recent: recent, Searches: searches}, nil
}

// ClearHistory removes the persisted lists.
func (o *Orchestrator) ClearHistory() error {
	done, err := o.beginUnlocked()
	if err != nil {
		return err
	}
	defer done()

	o.historyMu.Lock()
	defer o.historyMu.Unlock()

	for _, key := range []string{ConfigRecent, ConfigSearch} {
		if err := o.opts.Config.Delete(key); err != nil {
			return fmt.Errorf("clearing %s: %w", key, err)
		}
	}
	return nil
}

// pushFront moves value to the front, removing an older copy and trimming
// the list to limit entries.
func pushFront(list []string, value string, limit int) []string {
	out := make([]string, 0, len(list)+1)
	out = append(out, value)
	for _, v := range list {
		if v != value {
			out = append(out, v)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// History lists are stored as base64 of the JSON array passed through the
// encryption manager, so they are sealed whenever encryption is on.
func (o *Orchestrator) loadList(key string) ([]string, error) {
	v, ok, err := o.opts.Config.Get(key)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", key, err)
	}
	if !ok || v == "" {
		return nil, nil
	}

	raw, err := base64.StdEncoding.DecodeString(v)
	if err != nil {
		o.opts.Logger.Warnf("Ignoring malformed %s", key)
		return nil, nil
	}
	plain, err := o.opts.Encryption.Decrypt(raw)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", key, err)
	}

	var list []string
	if err := json.Unmarshal(plain, &list); err != nil {
		o.opts.Logger.Warnf("Ignoring malformed %s", key)
		return nil, nil
	}
	return list, nil
}

func (o *Orchestrator) saveList(key string, list []string) error {
	data, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	sealed, err := o.opts.Encryption.Encrypt(data)
	if err != nil {
		return fmt.Errorf("sealing %s: %w", key, err)
	}
	if err := o.opts.Config.Put(key, base64.StdEncoding.EncodeToString(sealed)); err != nil {
		return fmt.Errorf("saving %s: %w", key, err)
	}
	return nil
}
