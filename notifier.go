package credential

import "context"

// LogNotifier prints activation codes through the configured logger
// instead of delivering email. Meant for development and tests.
type LogNotifier struct {
	logger Logger
}

type LogNotifierOption func(*LogNotifier)

func WithNotifierLogger(logger Logger) LogNotifierOption {
	return func(n *LogNotifier) {
		if logger != nil {
			n.logger = logger
		}
	}
}

func NewLogNotifier(opts ...LogNotifierOption) *LogNotifier {
	n := &LogNotifier{
		logger: defLogger{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(n)
		}
	}
	return n
}

var _ Notifier = (*LogNotifier)(nil)

func (n *LogNotifier) SendActivationCode(ctx context.Context, email, name, code string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	n.logger.Info("activation code for %s <%s>: %s", name, email, code)
	return nil
}
