package job

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"automarket/internal/config"
	"automarket/internal/infrastructure/mq"
	"automarket/internal/model"
	"automarket/internal/repository"
)

// OutboxSender drains pending outbox rows to Kafka. Events are written in the
// same transaction as the state change they announce, so delivery here is
// at-least-once and consumers must dedupe on the message key.
type OutboxSender struct {
	outboxRepo *repository.OutboxRepository
	cfg        *config.Config
	interval   time.Duration
	batchSize  int
}

func NewOutboxSender(db *gorm.DB, cfg *config.Config) *OutboxSender {
	return &OutboxSender{
		outboxRepo: repository.NewOutboxRepository(db),
		cfg:        cfg,
		interval:   100 * time.Millisecond,
		batchSize:  100,
	}
}

func (s *OutboxSender) Start(ctx context.Context) {
	logrus.Info("[OutboxSender] started")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logrus.Info("[OutboxSender] stopped")
			return
		case <-ticker.C:
			s.processPendingMessages(ctx)
		}
	}
}

func (s *OutboxSender) processPendingMessages(ctx context.Context) {
	messages, err := s.outboxRepo.GetPendingMessages(ctx, s.batchSize)
	if err != nil {
		logrus.Errorf("[OutboxSender] failed to fetch pending messages: %v", err)
		return
	}

	for _, msg := range messages {
		s.sendMessage(ctx, msg)
	}
}

func (s *OutboxSender) sendMessage(ctx context.Context, msg *model.OutboxMessage) {
	err := mq.SendMessage(msg.Topic, msg.MessageKey, msg.Payload)

	if err == nil {
		if updateErr := s.outboxRepo.UpdateStatus(ctx, msg.ID, model.OutboxStatusSent); updateErr != nil {
			logrus.Errorf("[OutboxSender] failed to mark message sent: id=%d, err=%v", msg.ID, updateErr)
		}
		return
	}

	logrus.Warnf("[OutboxSender] send failed: id=%d, topic=%s, err=%v", msg.ID, msg.Topic, err)

	if msg.RetryCount+1 >= s.cfg.Business.MaxRetryCount {
		if err := s.outboxRepo.MarkAsFailed(ctx, msg.ID); err != nil {
			logrus.Errorf("[OutboxSender] failed to mark message failed: id=%d, err=%v", msg.ID, err)
		} else {
			logrus.Errorf("[OutboxSender] message exceeded max retries, marked failed: id=%d", msg.ID)
		}
		return
	}

	if err := s.outboxRepo.IncrementRetryCount(ctx, msg.ID); err != nil {
		logrus.Errorf("[OutboxSender] failed to bump retry count: id=%d, err=%v", msg.ID, err)
	}
}
