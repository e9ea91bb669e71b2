package events

import (
	"time"

	"github.com/atomicstack/itree/internal/logging"
)

type AppTracer struct{}

type WalkTracer struct{}

var (
	App  = AppTracer{}
	Walk = WalkTracer{}
)

func (AppTracer) Start(payload map[string]interface{}) {
	logging.Trace("app.start", payload)
}

func (AppTracer) Mode(mode string) {
	logging.Trace("app.mode", map[string]interface{}{"mode": mode})
}

func (WalkTracer) Done(root string, entries int, elapsed time.Duration) {
	logging.Trace("walk.done", map[string]interface{}{
		"root":    root,
		"entries": entries,
		"elapsed": elapsed.String(),
	})
}

func (WalkTracer) Error(root string, err error) {
	if err == nil {
		return
	}
	logging.Trace("walk.error", map[string]interface{}{"root": root, "error": err.Error()})
}
