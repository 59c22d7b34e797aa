package events

import (
	"time"

	"github.com/atomicstack/quicklaunch/internal/logging"
)

type FolderTracer struct{}

type discardReason string

const (
	DiscardMenuClosed   discardReason = "menu-closed"
	DiscardOwnerRemoved discardReason = "owner-disposed"
	DiscardNoTarget     discardReason = "no-target"
)

var Folder = FolderTracer{}

func (FolderTracer) Open(path string, reload bool, reason string) {
	logging.Trace("folder.open", map[string]interface{}{"path": path, "reload": reload, "reason": reason})
}

func (FolderTracer) Dispatch(path string, root bool) {
	logging.Trace("folder.scan.dispatch", map[string]interface{}{"path": path, "root": root})
}

func (FolderTracer) Apply(path string, entries int, elapsed time.Duration) {
	logging.Trace("folder.scan.apply", map[string]interface{}{
		"path":    path,
		"entries": entries,
		"elapsed": elapsed.String(),
	})
}

func (FolderTracer) Failed(path string, err error) {
	payload := map[string]interface{}{"path": path}
	if err != nil {
		payload["error"] = err.Error()
	}
	logging.Trace("folder.scan.error", payload)
}

func (FolderTracer) Discard(path string, reason discardReason) {
	logging.Trace("folder.scan.discard", map[string]interface{}{"path": path, "reason": string(reason)})
}

func (FolderTracer) CacheHit(path string, age time.Duration) {
	logging.Trace("folder.cache.hit", map[string]interface{}{"path": path, "age": age.String()})
}

func (FolderTracer) CacheRefresh(path string, entries int) {
	logging.Trace("folder.cache.refresh", map[string]interface{}{"path": path, "entries": entries})
}
