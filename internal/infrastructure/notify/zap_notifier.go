package notify

import (
	"go.uber.org/zap"
)

// ZapNotifier writes notifications to the structured log. In the portal
// process this is the delivery channel; browsers render the same payloads as
// toasts.
type ZapNotifier struct {
	logger *zap.Logger
}

// NewZapNotifier creates a log-backed notifier.
func NewZapNotifier(logger *zap.Logger) *ZapNotifier {
	return &ZapNotifier{logger: logger.With(zap.String("component", "notifier"))}
}

// Notify implements Notifier.
func (n *ZapNotifier) Notify(class Class, title, message string) {
	fields := []zap.Field{
		zap.String("class", string(class)),
		zap.String("title", title),
	}
	switch class {
	case ClassSuccess, ClassInfo:
		n.logger.Info(message, fields...)
	default:
		n.logger.Warn(message, fields...)
	}
}
