package app

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/claude-quota-tui/internal/services"
)

func TestTickCmd(t *testing.T) {
	cmd := tickCmd(time.Millisecond)
	if cmd == nil {
		t.Error("tickCmd returned nil")
	}
}

func TestDefaultTickCmd(t *testing.T) {
	cmd := defaultTickCmd()
	if cmd == nil {
		t.Error("defaultTickCmd returned nil")
	}
}

func TestNotifyCmds(t *testing.T) {
	tests := []struct {
		name string
		fn   func(string) tea.Cmd
		want NotificationType
	}{
		{"Success", notifySuccessCmd, NotificationSuccess},
		{"Error", notifyErrorCmd, NotificationError},
		{"Warning", notifyWarningCmd, NotificationWarning},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := tt.fn("msg")
			msg := cmd()

			addMsg, ok := msg.(AddNotificationMsg)
			if !ok {
				t.Fatalf("Expected AddNotificationMsg, got %T", msg)
			}
			if addMsg.Type != tt.want {
				t.Errorf("Type = %v, want %v", addMsg.Type, tt.want)
			}
			if addMsg.Message != "msg" {
				t.Errorf("Message = %q, want msg", addMsg.Message)
			}
		})
	}
}

func TestClearNotificationCmd(t *testing.T) {
	cmd := clearNotificationCmd("id", time.Millisecond)
	if cmd == nil {
		t.Error("clearNotificationCmd returned nil")
	}
}

func TestWaitForServiceEventCmd(t *testing.T) {
	ch := make(chan services.ServiceEvent, 1)
	ch <- services.SourceErrorEvent{Err: assertError(t, "boom")}

	cmd := waitForServiceEventCmd(ch)
	msg := cmd()

	evtMsg, ok := msg.(ServiceEventMsg)
	if !ok {
		t.Fatalf("Expected ServiceEventMsg, got %T", msg)
	}
	if _, ok := evtMsg.Event.(services.SourceErrorEvent); !ok {
		t.Errorf("Expected SourceErrorEvent, got %T", evtMsg.Event)
	}

	// Closed channel yields a nil message instead of a zero event
	close(ch)
	if got := waitForServiceEventCmd(ch)(); got != nil {
		t.Errorf("Expected nil msg from closed channel, got %T", got)
	}
}
