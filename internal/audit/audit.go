package audit

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/PolarWolf314/refuge/internal/utils"
)

// Event names.
const (
	EventUnlock            = "unlock"
	EventUnlockFailed      = "unlock_failed"
	EventBiometricUnlock   = "biometric_unlock"
	EventPinSet            = "pin_set"
	EventPinChanged        = "pin_changed"
	EventPinRemoved        = "pin_removed"
	EventPanicWipeSetting  = "panic_wipe_setting"
	EventModeChanged       = "mode_changed"
	EventEncryptionEnabled = "encryption_enabled"
	EventEncryptionOff     = "encryption_disabled"
	EventIncognitoStart    = "incognito_start"
	EventIncognitoEnd      = "incognito_end"
	EventQuickExit         = "quick_exit"
)

// Entry represents a single journal entry.
type Entry struct {
	Timestamp string `json:"ts"`
	Event     string `json:"event"`
	Session   string `json:"session,omitempty"`

	// Optional fields depending on event.
	Mode      string `json:"mode,omitempty"`      // For mode_changed.
	Remaining int    `json:"remaining,omitempty"` // For unlock_failed.
	Enabled   *bool  `json:"enabled,omitempty"`   // For panic_wipe_setting.
}

type Journal struct {
	mu   sync.Mutex
	path string
	now  func() time.Time
}

func NewJournal(path string) *Journal {
	return &Journal{path: path, now: time.Now}
}

// Path returns the journal file location.
func (j *Journal) Path() string {
	return j.path
}

// Log appends an entry. Failures are dropped.
func (j *Journal) Log(entry Entry) {
	if entry.Timestamp == "" {
		entry.Timestamp = j.now().UTC().Format("2006-01-02T15:04:05.000000Z")
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(j.path), 0700); err != nil {
		return
	}

	f, err := os.OpenFile(j.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return
	}
	defer f.Close()

	_, _ = f.Write(append(data, '\n'))
}

// Entries reads every entry. A missing journal has no entries.
func (j *Journal) Entries() ([]Entry, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	data, err := os.ReadFile(j.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return ParseEntries(data)
}

// Destroy shreds the journal file.
func (j *Journal) Destroy() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if err := utils.ShredFile(j.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// ParseEntries parses JSON Lines data into entries.
// Malformed lines are silently skipped.
func ParseEntries(data []byte) ([]Entry, error) {
	if len(data) == 0 {
		return nil, nil
	}

	var entries []Entry
	start := 0

	for i := 0; i <= len(data); i++ {
		if i == len(data) || data[i] == '\n' {
			line := data[start:i]
			start = i + 1

			if len(line) == 0 {
				continue
			}

			var entry Entry
			if err := json.Unmarshal(line, &entry); err != nil {
				continue
			}
			entries = append(entries, entry)
		}
	}

	return entries, nil
}
