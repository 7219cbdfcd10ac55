// Package app provides the main Bubble Tea application model and state management.
package app

import (
	"sync"
	"time"

	"github.com/j-veylop/claude-quota-tui/internal/cache"
	"github.com/j-veylop/claude-quota-tui/internal/models"
)

// NotificationType defines the type of notification.
type NotificationType int

const (
	// NotificationSuccess represents a success notification.
	NotificationSuccess NotificationType = iota
	// NotificationError represents an error notification.
	NotificationError
	// NotificationWarning represents a warning notification.
	NotificationWarning
	// NotificationInfo represents an informational notification.
	NotificationInfo
	// NotificationLoading represents a loading notification with spinner.
	NotificationLoading
)

const (
	// LoadingNotificationID is the fixed ID for loading notifications.
	LoadingNotificationID = "__loading__"
)

// String returns the string representation of a NotificationType.
func (n NotificationType) String() string {
	switch n {
	case NotificationSuccess:
		return "success"
	case NotificationError:
		return "error"
	case NotificationWarning:
		return "warning"
	case NotificationInfo:
		return "info"
	default:
		return "unknown"
	}
}

// Notification represents a user-facing notification message.
type Notification struct {
	ID        string
	Type      NotificationType
	Message   string
	CreatedAt time.Time
	Duration  time.Duration
}

// IsExpired returns true if the notification has expired.
func (n *Notification) IsExpired() bool {
	if n.Duration <= 0 {
		return false
	}
	return time.Since(n.CreatedAt) > n.Duration
}

// State is the shared application state. The root model writes into it from
// service events; tabs read from it at render time.
type State struct {
	mu sync.RWMutex

	report     *models.Report
	cacheStats *cache.Stats
	fatalErr   error

	initialLoading bool
	lastUpdated    time.Time

	notifications   []Notification
	notificationSeq int
}

// NewState creates the shared state, starting in the initial-loading phase.
func NewState() *State {
	return &State{
		notifications:  make([]Notification, 0),
		initialLoading: true,
	}
}

// SetReport stores the latest report and ends the initial-loading phase.
func (s *State) SetReport(report *models.Report) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.report = report
	s.initialLoading = false
	s.lastUpdated = time.Now()
}

// Report returns the latest report, nil before the first tick completes.
func (s *State) Report() *models.Report {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.report
}

// SetCacheStats stores the latest cache statistics.
func (s *State) SetCacheStats(stats cache.Stats) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cacheStats = &stats
}

// CacheStats returns the latest cache statistics, nil before the first tick.
func (s *State) CacheStats() *cache.Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cacheStats
}

// SetFatal records the error that is about to terminate the application.
func (s *State) SetFatal(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fatalErr = err
}

// FatalError returns the terminating error, nil during normal operation.
func (s *State) FatalError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fatalErr
}

// SetInitialLoading overrides the initial-loading phase.
func (s *State) SetInitialLoading(loading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.initialLoading = loading
}

// IsInitialLoading returns true until the first report arrives.
func (s *State) IsInitialLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.initialLoading
}

// LastUpdated returns the wall-clock time of the last report.
func (s *State) LastUpdated() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastUpdated
}

// AddNotification adds a new notification and returns its ID.
func (s *State) AddNotification(notifType NotificationType, message string, duration time.Duration) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.notificationSeq++
	id := time.Now().Format("20060102150405") + "-" + string(rune('A'+s.notificationSeq%26))

	notification := Notification{
		ID:        id,
		Type:      notifType,
		Message:   message,
		CreatedAt: time.Now(),
		Duration:  duration,
	}

	s.notifications = append(s.notifications, notification)

	// Keep only the last 10 notifications
	if len(s.notifications) > 10 {
		s.notifications = s.notifications[len(s.notifications)-10:]
	}

	return id
}

// RemoveNotification removes a notification by ID.
func (s *State) RemoveNotification(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, n := range s.notifications {
		if n.ID == id {
			s.notifications = append(s.notifications[:i], s.notifications[i+1:]...)
			return
		}
	}
}

// ClearExpiredNotifications removes all expired notifications.
func (s *State) ClearExpiredNotifications() {
	s.mu.Lock()
	defer s.mu.Unlock()

	active := make([]Notification, 0, len(s.notifications))
	for _, n := range s.notifications {
		if !n.IsExpired() {
			active = append(active, n)
		}
	}
	s.notifications = active
}

// GetNotifications returns a copy of all active notifications.
func (s *State) GetNotifications() []Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// Clear expired inline when reading
	active := make([]Notification, 0, len(s.notifications))
	for _, n := range s.notifications {
		if !n.IsExpired() {
			active = append(active, n)
		}
	}

	return active
}

// SetLoadingNotification sets a loading notification message.
func (s *State) SetLoadingNotification(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, n := range s.notifications {
		if n.ID == LoadingNotificationID {
			s.notifications[i].Message = message
			return
		}
	}

	s.notifications = append(s.notifications, Notification{
		ID:        LoadingNotificationID,
		Type:      NotificationLoading,
		Message:   message,
		CreatedAt: time.Now(),
		Duration:  0,
	})
}

// ClearLoadingNotification removes the loading notification.
func (s *State) ClearLoadingNotification() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, n := range s.notifications {
		if n.ID == LoadingNotificationID {
			s.notifications = append(s.notifications[:i], s.notifications[i+1:]...)
			return
		}
	}
}
