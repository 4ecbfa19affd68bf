// Package session manages the captured platform session: the primary
// platform token, the secondary platform points balance, and the
// authenticated identity. The session file is written both by this
// process and by the external capture tool, so it is watched for
// changes.
package session

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/mbridges/modpay-tui/internal/logger"
	"github.com/mbridges/modpay-tui/internal/models"
)

// File is the JSON structure of the session file.
type File struct {
	Version        int     `json:"version,omitempty"`
	ModrinthToken  string  `json:"modrinthToken,omitempty"`
	Points         float64 `json:"curseforgePoints,omitempty"`
	UserID         string  `json:"userId,omitempty"`
	Username       string  `json:"username,omitempty"`
	AvatarURL      string  `json:"avatarUrl,omitempty"`
	TargetCurrency string  `json:"targetCurrency,omitempty"`
	CapturedAt     string  `json:"capturedAt,omitempty"`
}

// Event represents a session service event.
type Event struct {
	Type  EventType
	Error error
}

// EventType defines the type of session event.
type EventType int

const (
	// EventSessionLoaded indicates the initial session load finished.
	EventSessionLoaded EventType = iota
	// EventSessionChanged indicates the session file changed externally.
	EventSessionChanged
	// EventIdentityChanged indicates the active user identity switched.
	// Consumers must drop any cached per-user state.
	EventIdentityChanged
	// EventError indicates a session load or watch failure.
	EventError
)

// Service holds the session state and watches the backing file.
type Service struct {
	mu            sync.RWMutex
	file          File
	filePath      string
	tokenOverride string
	watcher       *fsnotify.Watcher
	eventChan     chan Event
	stopChan      chan struct{}
	debounceTimer *time.Timer
}

// New creates a session service and starts file watching. tokenOverride,
// when non-empty, takes precedence over the token in the session file.
func New(filePath, tokenOverride string) (*Service, error) {
	s := &Service{
		filePath:      filePath,
		tokenOverride: tokenOverride,
		eventChan:     make(chan Event, 100),
		stopChan:      make(chan struct{}),
	}

	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create session directory: %w", err)
	}

	if err := s.load(); err != nil {
		if os.IsNotExist(err) {
			if err := s.save(); err != nil {
				return nil, fmt.Errorf("failed to create session file: %w", err)
			}
		} else {
			return nil, fmt.Errorf("failed to load session: %w", err)
		}
	}

	if err := s.startWatcher(); err != nil {
		return nil, fmt.Errorf("failed to start session watcher: %w", err)
	}

	s.sendEvent(Event{Type: EventSessionLoaded})

	return s, nil
}

// Events returns the event channel for subscribing to session changes.
func (s *Service) Events() <-chan Event {
	return s.eventChan
}

// Token returns the primary platform token, preferring the configured
// override.
func (s *Service) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.tokenOverride != "" {
		return s.tokenOverride
	}
	return s.file.ModrinthToken
}

// Points returns the last captured points balance. Implements the
// secondary source's points provider.
func (s *Service) Points() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.file.Points
}

// TargetCurrency returns the configured display currency, or empty when
// unset.
func (s *Service) TargetCurrency() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.file.TargetCurrency
}

// Profile returns the stored identity profile.
func (s *Service) Profile() models.Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return models.Profile{
		UserID:    s.file.UserID,
		Username:  s.file.Username,
		AvatarURL: s.file.AvatarURL,
	}
}

// UserID returns the stable identifier partitioning all snapshot
// queries. When the platform id is unknown but a token exists, a
// deterministic id is derived from the token so history written before
// the first successful profile fetch stays attributable.
func (s *Service) UserID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userIDLocked()
}

func (s *Service) userIDLocked() string {
	if s.file.UserID != "" {
		return s.file.UserID
	}

	token := s.tokenOverride
	if token == "" {
		token = s.file.ModrinthToken
	}
	if token == "" {
		return ""
	}
	return fmt.Sprintf("auto_generated_%x", sha256.Sum256([]byte(token)))
}

// Onboarded reports whether any revenue source is configured.
func (s *Service) Onboarded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tokenOverride != "" || s.file.ModrinthToken != "" || s.file.Points > 0
}

// SetProfile stores the identity surfaced by a successful primary
// fetch. Emits EventIdentityChanged when the user id switched.
func (s *Service) SetProfile(profile models.Profile) error {
	s.mu.Lock()
	previousID := s.userIDLocked()

	s.file.UserID = profile.UserID
	s.file.Username = profile.Username
	if profile.AvatarURL != "" {
		s.file.AvatarURL = profile.AvatarURL
	}
	newID := s.userIDLocked()

	err := s.saveLocked()
	s.mu.Unlock()

	if err != nil {
		return err
	}

	if previousID != "" && previousID != newID {
		s.sendEvent(Event{Type: EventIdentityChanged})
	}
	return nil
}

// SetTargetCurrency stores the display currency preference.
func (s *Service) SetTargetCurrency(currency string) error {
	s.mu.Lock()
	s.file.TargetCurrency = currency
	err := s.saveLocked()
	s.mu.Unlock()

	if err != nil {
		return err
	}
	s.sendEvent(Event{Type: EventSessionChanged})
	return nil
}

// Reset clears the captured session (logout / account reset).
func (s *Service) Reset() error {
	s.mu.Lock()
	s.file = File{Version: s.file.Version}
	err := s.saveLocked()
	s.mu.Unlock()

	if err != nil {
		return err
	}
	s.sendEvent(Event{Type: EventIdentityChanged})
	return nil
}

// load reads the session file. Caller must not hold the lock.
func (s *Service) load() error {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		return err
	}

	var file File
	if err := json.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to parse session file: %w", err)
	}

	s.mu.Lock()
	s.file = file
	s.mu.Unlock()
	return nil
}

// save writes the session file atomically.
func (s *Service) save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked()
}

func (s *Service) saveLocked() error {
	if s.file.Version == 0 {
		s.file.Version = 1
	}

	data, err := json.MarshalIndent(s.file, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	// Write to temp file first, then rename
	tmpFile := s.filePath + ".tmp"
	if err := os.WriteFile(tmpFile, data, 0o600); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := os.Rename(tmpFile, s.filePath); err != nil {
		if removeErr := os.Remove(tmpFile); removeErr != nil {
			logger.Error("failed to remove temp file", "error", removeErr)
		}
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	return nil
}

// startWatcher starts the file system watcher.
func (s *Service) startWatcher() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	s.watcher = watcher

	// Watch the directory (to catch file creation/deletion)
	dir := filepath.Dir(s.filePath)
	if err := watcher.Add(dir); err != nil {
		if closeErr := watcher.Close(); closeErr != nil {
			logger.Error("failed to close watcher", "error", closeErr)
		}
		return err
	}

	go s.watchLoop()
	return nil
}

// watchLoop handles file system events with debouncing.
func (s *Service) watchLoop() {
	const debounceInterval = 100 * time.Millisecond

	for {
		select {
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}

			// Only care about our session file
			if filepath.Base(event.Name) != filepath.Base(s.filePath) {
				continue
			}

			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				// Debounce rapid changes
				if s.debounceTimer != nil {
					s.debounceTimer.Stop()
				}
				s.debounceTimer = time.AfterFunc(debounceInterval, func() {
					s.handleFileChange()
				})
			}

		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.sendEvent(Event{Type: EventError, Error: err})

		case <-s.stopChan:
			return
		}
	}
}

// handleFileChange reloads the session after an external change.
func (s *Service) handleFileChange() {
	previousID := s.UserID()

	if err := s.load(); err != nil {
		s.sendEvent(Event{Type: EventError, Error: err})
		return
	}

	if newID := s.UserID(); newID != previousID {
		s.sendEvent(Event{Type: EventIdentityChanged})
	}
	s.sendEvent(Event{Type: EventSessionChanged})
}

// sendEvent sends an event to the event channel non-blocking.
func (s *Service) sendEvent(event Event) {
	select {
	case s.eventChan <- event:
	default:
		// Channel full, drop oldest event
		select {
		case <-s.eventChan:
		default:
		}
		select {
		case s.eventChan <- event:
		default:
		}
	}
}

// Close stops the file watcher and cleans up resources.
func (s *Service) Close() error {
	close(s.stopChan)

	if s.debounceTimer != nil {
		s.debounceTimer.Stop()
	}

	if s.watcher != nil {
		return s.watcher.Close()
	}
	return nil
}
