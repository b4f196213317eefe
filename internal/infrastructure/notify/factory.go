package notify

import (
	"yieldvault.backend/internal/config"
)

var dialAMQP = DialAMQP

// New builds the notifier selected by cfg.Driver. The returned closer is nil
// when nothing needs releasing.
func New(cfg config.NotifyConfig) (Notifier, Closer, error) {
	switch cfg.Driver {
	case "", "none":
		return NopNotifier{}, nil, nil
	case "log":
		return NewLogNotifier(), nil, nil
	case "kafka":
		n := NewKafkaNotifier(NewKafkaWriter(cfg.KafkaBrokers, cfg.KafkaTopic))
		return Multi{NewLogNotifier(), n}, n, nil
	case "amqp":
		n, err := dialAMQP(cfg.AMQPURL, cfg.AMQPQueue)
		if err != nil {
			return nil, nil, err
		}
		return Multi{NewLogNotifier(), n}, n, nil
	default:
		return nil, nil, unknownDriver(cfg.Driver)
	}
}
