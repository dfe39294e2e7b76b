// FILE: internal/service/consumer_service.go
package service

import (
	"context"
	"encoding/json"
	"log"

	"govllminer-be/internal/dto"
	"govllminer-be/internal/pkg/mailer"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	pubSub       *gochannel.GoChannel
	topicName    string
	emailService mailer.IEmailService
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	emailService mailer.IEmailService,
) IConsumerService {
	return &consumerService{
		pubSub:       pubSub,
		topicName:    topicName,
		emailService: emailService,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
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
	var payload dto.PublishMailMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		log.Printf("[ERROR] Failed to unmarshal mail message: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	var err error
	switch payload.Kind {
	case dto.MailKindVerification:
		err = cs.emailService.SendVerificationLink(payload.ToEmail, payload.Token)
	case dto.MailKindPasswordReset:
		err = cs.emailService.SendResetLink(payload.ToEmail, payload.Token)
	default:
		log.Printf("[ERROR] Unknown mail kind %q, dropping message", payload.Kind)
		msg.Ack()
		return
	}

	if err != nil {
		log.Printf("[ERROR] Failed to send %s mail to %s: %v", payload.Kind, payload.ToEmail, err)
		msg.Nack() // Nack for retriable errors
		return
	}

	log.Printf("[INFO] Sent %s mail to %s", payload.Kind, payload.ToEmail)
	msg.Ack()
}
