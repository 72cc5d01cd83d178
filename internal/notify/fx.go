package notify

import (
	"github.com/suryashakti/partner-crm/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("notify",
	fx.Provide(NewFromConfig),
)

// NewFromConfig wires whichever sinks are configured. With none configured
// the dispatcher is a silent no-op, which is the local-development default.
func NewFromConfig(cfg config.Config, log *zap.Logger) *Dispatcher {
	var sinks []Sink
	if cfg.Notify.SlackWebhookURL != "" {
		sinks = append(sinks, NewSlackSink(cfg.Notify.SlackWebhookURL, cfg.Notify.SlackChannel))
	}
	if cfg.Notify.SMTPHost != "" && cfg.Notify.OpsEmail != "" {
		sinks = append(sinks, NewEmailSink(SMTPConfig{
			Host:     cfg.Notify.SMTPHost,
			Port:     cfg.Notify.SMTPPort,
			Username: cfg.Notify.SMTPUsername,
			Password: cfg.Notify.SMTPPassword,
			From:     cfg.Notify.SMTPFrom,
			To:       cfg.Notify.OpsEmail,
		}))
	}
	return NewDispatcher(log, sinks)
}
