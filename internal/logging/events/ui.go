package events

import "github.com/atomicstack/itree/internal/logging"

type NavTracer struct{}

type ActionTracer struct{}

type WatchTracer struct{}

var (
	Nav    = NavTracer{}
	Action = ActionTracer{}
	Watch  = WatchTracer{}
)

func (NavTracer) Event(event string, cursor int, path string) {
	logging.Trace("nav.event", map[string]interface{}{"event": event, "cursor": cursor, "path": path})
}

func (NavTracer) Cursor(cursor int, path string) {
	logging.Trace("nav.cursor", map[string]interface{}{"cursor": cursor, "path": path})
}

func (NavTracer) Fold(path string, collapsed bool, visible int) {
	logging.Trace("nav.fold", map[string]interface{}{
		"path":      path,
		"collapsed": collapsed,
		"visible":   visible,
	})
}

func (NavTracer) NotFoldable(path string) {
	logging.Trace("nav.not-foldable", map[string]interface{}{"path": path})
}

func (ActionTracer) Error(err error) {
	if err == nil {
		return
	}
	logging.Trace("action.error", map[string]interface{}{"error": err.Error()})
}

func (ActionTracer) Success(info string) {
	logging.Trace("action.success", map[string]interface{}{"info": info})
}

func (WatchTracer) Change(path, op string) {
	logging.Trace("watch.change", map[string]interface{}{"path": path, "op": op})
}

func (WatchTracer) Error(err error) {
	if err == nil {
		return
	}
	logging.Trace("watch.error", map[string]interface{}{"error": err.Error()})
}
