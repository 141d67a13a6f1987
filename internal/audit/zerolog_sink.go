package audit

import (
	"context"

	"github.com/rs/zerolog/log"
)

// ZerologSink writes audit events to the structured application log. It is
// the fallback sink when no queue is configured and the default companion
// sink in front of the queue.
type ZerologSink struct{}

func NewZerologSink() ZerologSink { return ZerologSink{} }

func (ZerologSink) Log(_ context.Context, action, details string, severity Severity) {
	ev := log.Info()
	switch severity {
	case SeverityWarning:
		ev = log.Warn()
	case SeverityCritical:
		ev = log.Error()
	}
	ev.Str("action", action).Str("severity", string(severity)).Msg(details)
}
