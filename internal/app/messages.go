package app

import (
	"time"

	"github.com/j-veylop/claude-quota-tui/internal/cache"
	"github.com/j-veylop/claude-quota-tui/internal/models"
	"github.com/j-veylop/claude-quota-tui/internal/services"
)

// TickMsg is sent periodically to drive notification expiry.
type TickMsg struct {
	Time time.Time
}

// ReportMsg carries the latest usage report to the active tab.
type ReportMsg struct {
	Report *models.Report
}

// StatsMsg carries updated cache statistics to the active tab.
type StatsMsg struct {
	Cache cache.Stats
}

// TierSwitchMsg signals that auto-detection escalated the quota tier.
type TierSwitchMsg struct {
	From models.QuotaTier
	To   models.QuotaTier
}

// SourceErrorMsg signals that a refresh cycle failed and a cached or
// degraded report was served instead.
type SourceErrorMsg struct {
	Err error
}

// InitialStateMsg carries state recovered from the manager at startup.
type InitialStateMsg struct {
	Report *models.Report
	Stats  cache.Stats
}

// RefreshRequestMsg asks the root model to force an immediate refresh.
type RefreshRequestMsg struct{}

// TabSwitchMsg requests switching to a specific tab.
type TabSwitchMsg struct {
	Tab TabID
}

// ToggleHelpMsg toggles the help display.
type ToggleHelpMsg struct{}

// AddNotificationMsg requests adding a new notification.
type AddNotificationMsg struct {
	Type     NotificationType
	Message  string
	Duration time.Duration
}

// RemoveNotificationMsg requests removal of a notification.
type RemoveNotificationMsg struct {
	ID string
}

// ClearExpiredNotificationsMsg triggers clearing of expired notifications.
type ClearExpiredNotificationsMsg struct{}

// ServiceEventMsg wraps a service event from the service manager.
type ServiceEventMsg struct {
	Event services.ServiceEvent
}

// SubscriptionEventMsg is the callback wrapper for service subscription.
type SubscriptionEventMsg struct {
	Channel chan services.ServiceEvent
}
