// Package notify shows desktop notifications without blocking the caller.
package notify

import (
	"fmt"

	"github.com/godbus/dbus/v5"

	"github.com/atomicstack/quicklaunch/internal/logging"
)

const (
	notificationsName   = "org.freedesktop.Notifications"
	notificationsPath   = "/org/freedesktop/Notifications"
	notificationsMethod = "org.freedesktop.Notifications.Notify"

	appName       = "QuickLaunch"
	appIcon       = "dialog-error"
	expireTimeout = int32(5000)
)

// Notifier shows a title/body pair to the user.
type Notifier interface {
	Notify(title, body string)
}

// Nop discards notifications.
type Nop struct{}

func (Nop) Notify(string, string) {}

// Func adapts a function to Notifier.
type Func func(title, body string)

func (f Func) Notify(title, body string) { f(title, body) }

// caller is the subset of dbus.BusObject used to send notifications.
type caller interface {
	Go(method string, flags dbus.Flags, ch chan *dbus.Call, args ...interface{}) *dbus.Call
}

// Desktop sends notifications over the session bus.
type Desktop struct {
	conn   *dbus.Conn
	object caller
}

// NewDesktop connects to the session bus.
func NewDesktop() (*Desktop, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("notify: connect session bus: %w", err)
	}
	return &Desktop{
		conn:   conn,
		object: conn.Object(notificationsName, dbus.ObjectPath(notificationsPath)),
	}, nil
}

// New returns a desktop notifier, or Nop when no session bus is reachable.
func New() Notifier {
	d, err := NewDesktop()
	if err != nil {
		logging.Warn("notify", "desktop notifications unavailable", map[string]interface{}{"error": err.Error()})
		return Nop{}
	}
	return d
}

// Notify fires the notification and returns immediately; no reply is
// awaited.
func (d *Desktop) Notify(title, body string) {
	if d == nil || d.object == nil {
		return
	}
	call := d.object.Go(notificationsMethod, dbus.FlagNoReplyExpected, nil,
		appName, uint32(0), appIcon, title, body,
		[]string{}, map[string]dbus.Variant{}, expireTimeout)
	if call != nil && call.Err != nil {
		logging.Error(fmt.Errorf("notify: %w", call.Err))
	}
}

// Close releases the bus connection.
func (d *Desktop) Close() error {
	if d == nil || d.conn == nil {
		return nil
	}
	return d.conn.Close()
}
