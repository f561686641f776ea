package queue

import (
	"github.com/femtoworks/femto-gateway/internal/config"
	"github.com/femtoworks/femto-gateway/internal/platform/logger"
	kafka "github.com/segmentio/kafka-go"
)

// StartProducer creates a kafka writer.  A producer built with an empty
// topic expects the topic to be set on each message, which is how the
// gateway publishes to per-tenant destinations.
func StartProducer(cfg *ProducerConfig) *kafka.Writer {
	logger.Log.Info("Starting a new Kafka producer..")
	logger.Log.Info("Kafka producer configuration: ", cfg)

	var kafkaDialer *kafka.Dialer
	var err error

	globalConfig := config.GetConfig()

	if globalConfig.KafkaUsername != "" {

		kafkaDialer, err = saslDialer(&SaslConfig{
			SaslMechanism: globalConfig.KafkaSASLMechanism,
			SaslUsername:  globalConfig.KafkaUsername,
			SaslPassword:  globalConfig.KafkaPassword,
			KafkaCA:       globalConfig.KafkaCA,
		})
		if err != nil {
			logger.Log.Error("Failed to create a new Kafka dialer: ", err)
			panic(err)
		}
	}

	writerConfig := kafka.WriterConfig{
		Brokers:    cfg.Brokers,
		Topic:      cfg.Topic,
		BatchSize:  cfg.BatchSize,
		BatchBytes: cfg.BatchBytes,
	}

	if kafkaDialer != nil {
		writerConfig.Dialer = kafkaDialer
	}

	if cfg.Balancer == "hash" {
		writerConfig.Balancer = &kafka.Hash{}
	}

	w := kafka.NewWriter(writerConfig)

	if cfg.Topic != "" {
		logger.Log.Info("Producing messages to topic: ", cfg.Topic)
	} else {
		logger.Log.Info("Producing messages to per-message topics")
	}

	return w
}
