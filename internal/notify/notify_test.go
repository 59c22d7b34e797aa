package notify

import (
	"testing"

	"github.com/godbus/dbus/v5"
)

type fakeObject struct {
	method string
	flags  dbus.Flags
	args   []interface{}
}

func (f *fakeObject) Go(method string, flags dbus.Flags, ch chan *dbus.Call, args ...interface{}) *dbus.Call {
	f.method = method
	f.flags = flags
	f.args = args
	return &dbus.Call{Done: ch}
}

func TestDesktopNotifySendsWithoutReply(t *testing.T) {
	obj := &fakeObject{}
	d := &Desktop{object: obj}
	d.Notify("Error", "Could not list folder")

	if obj.method != notificationsMethod {
		t.Fatalf("expected %s, got %s", notificationsMethod, obj.method)
	}
	if obj.flags&dbus.FlagNoReplyExpected == 0 {
		t.Fatalf("expected no-reply flag")
	}
	if len(obj.args) != 8 {
		t.Fatalf("expected 8 notify arguments, got %d", len(obj.args))
	}
	if obj.args[3] != "Error" || obj.args[4] != "Could not list folder" {
		t.Fatalf("unexpected summary/body %v %v", obj.args[3], obj.args[4])
	}
}

func TestNilDesktopIsSafe(t *testing.T) {
	var d *Desktop
	d.Notify("x", "y")
	if err := d.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestFunc(t *testing.T) {
	var got string
	var n Notifier = Func(func(title, body string) { got = title + ":" + body })
	n.Notify("a", "b")
	if got != "a:b" {
		t.Fatalf("expected a:b, got %q", got)
	}
	Nop{}.Notify("ignored", "ignored")
}
