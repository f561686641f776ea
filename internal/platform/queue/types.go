package queue

type ProducerConfig struct {
	Brokers    []string
	Topic      string
	BatchSize  int
	BatchBytes int
	Balancer   string
}

type SaslConfig struct {
	SaslMechanism string
	SaslUsername  string
	SaslPassword  string
	KafkaCA       string
}
