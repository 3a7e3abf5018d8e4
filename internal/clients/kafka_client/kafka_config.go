package kafka_client

import "github.com/spacesedan/reviewseed/config"

type KafkaConfig struct {
	Broker  string
	GroupID string
	Topic   string
}

func GetKafkaConfig(s config.Settings) KafkaConfig {
	return KafkaConfig{
		Broker:  s.KafkaBroker,
		GroupID: s.KafkaGroupID,
		Topic:   KAFKA_TOPIC_GENERATION_REQUEST,
	}
}
