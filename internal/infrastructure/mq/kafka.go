package mq

import (
	"github.com/IBM/sarama"
	"github.com/sirupsen/logrus"

	"automarket/internal/config"
)

var kafkaProducer sarama.SyncProducer

// InitKafka creates the synchronous producer used by the outbox sender.
func InitKafka(cfg *config.KafkaConfig) sarama.SyncProducer {
	kafkaConfig := sarama.NewConfig()
	kafkaConfig.Producer.RequiredAcks = sarama.WaitForAll
	kafkaConfig.Producer.Retry.Max = 3
	kafkaConfig.Producer.Return.Successes = true

	producer, err := sarama.NewSyncProducer(cfg.Brokers, kafkaConfig)
	if err != nil {
		logrus.Fatalf("failed to create Kafka producer: %v", err)
	}

	kafkaProducer = producer
	logrus.Info("Kafka producer created")
	return producer
}

// SendMessage publishes one message to the given topic.
func SendMessage(topic, key, value string) error {
	msg := &sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.StringEncoder(key),
		Value: sarama.StringEncoder(value),
	}

	_, _, err := kafkaProducer.SendMessage(msg)
	return err
}

// CloseKafka shuts the producer down.
func CloseKafka() {
	if kafkaProducer != nil {
		kafkaProducer.Close()
	}
}
