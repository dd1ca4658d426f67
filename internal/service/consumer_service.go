package service

import (
	"context"
	"encoding/json"

	"ai-studypal-be/internal/constant"
	"ai-studypal-be/internal/dto"
	"ai-studypal-be/internal/pkg/logger"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService mirrors every completed operation into the system log. It
// is observability only; the session's own interaction log is written
// synchronously by the study service.
type consumerService struct {
	pubSub *gochannel.GoChannel
	logger logger.ILogger
}

func NewConsumerService(pubSub *gochannel.GoChannel, sysLogger logger.ILogger) IConsumerService {
	return &consumerService{
		pubSub: pubSub,
		logger: sysLogger,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, constant.InteractionTopicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(msg *message.Message) {
	var payload dto.InteractionEventMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error("consumer", "failed to unmarshal interaction event", map[string]interface{}{
			"error": err.Error(),
		})
		msg.Ack() // invalid payloads are never retriable
		return
	}

	details := map[string]interface{}{
		"session_id": payload.SessionId,
		"user_id":    payload.UserId,
		"kind":       payload.Kind,
		"failed":     payload.Failed,
		"at":         payload.At,
	}
	if payload.Failed {
		cs.logger.Warn("interaction", "operation completed with error notice", details)
	} else {
		cs.logger.Info("interaction", "operation completed", details)
	}
	msg.Ack()
}
