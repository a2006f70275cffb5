package inbound

import (
	"context"
	"log/slog"

	"github.com/samber/lo"
	"github.com/tasklet-app/tasklet/internal/notifier/usecase"
	"github.com/tasklet-app/tasklet/internal/pkg/config"
	"github.com/tasklet-app/tasklet/internal/pkg/goroutine"
	"github.com/tasklet-app/tasklet/internal/pkg/instrument"
	"github.com/tasklet-app/tasklet/internal/pkg/messaging"
	"github.com/tasklet-app/tasklet/internal/pkg/uid"
	"github.com/tasklet-app/tasklet/internal/shared/event"
)

type uc interface {
	ConsumeOtpSms(ctx context.Context, in usecase.ConsumeOtpSmsInput) error
}

func RegisterMQConsumer(
	ctx context.Context,
	cfg config.Config,
	routine *goroutine.Manager,
	messenger messaging.Messaging,
	uuid uid.StringID,
	uc uc,
	ins instrument.Instrumentation,
) {
	mqHandler := &MQHandler{uc: uc, uuid: uuid, ins: ins}

	enableConsumerNames := cfg.GetArray("modules.notifier.consumer_names")

	var consumers = []struct {
		name              string
		topic             string // destination where publisher sent message
		nsqConsumerName   string // for nsq
		natsConsumerName  string // for nats
		kafkaConsumerName string // for kafka
		handler           messaging.Handler
	}{
		{
			name:              event.OtpSmsConsumerNotifier,
			topic:             event.OtpSmsDestination,
			nsqConsumerName:   event.OtpSmsConsumerNotifier,
			natsConsumerName:  event.OtpSmsConsumerNotifier,
			kafkaConsumerName: event.OtpSmsConsumerNotifier,
			handler:           mqHandler.OtpSmsNotification,
		},
	}

	for _, consumer := range consumers {
		if len(enableConsumerNames) > 0 && lo.Contains(enableConsumerNames, consumer.name) {
			routine.Go(ctx, func(pCtx context.Context) error {
				slog.InfoContext(ctx, "Running job for handling consumer", "consumer", consumer.name)
				return messenger.Consume(pCtx,
					consumer.topic,
					consumer.handler,
					messaging.WithChannel(consumer.nsqConsumerName),
					messaging.WithQueueGroup(consumer.natsConsumerName),
					messaging.WithGroup(consumer.kafkaConsumerName),
					messaging.WithAutoAck(true),
					messaging.WithConcurrency(10),
					messaging.WithMaxInFlight(10),
				)
			})
		}
	}
}
