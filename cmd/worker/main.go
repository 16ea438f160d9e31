package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/sensus-health/sensus-api/config"
	pginfra "github.com/sensus-health/sensus-api/internal/infrastructure/postgres"
	"github.com/sensus-health/sensus-api/internal/jobs"
	"github.com/sensus-health/sensus-api/pkg/helpers"
	"github.com/sensus-health/sensus-api/pkg/mailer"
)

// The worker drains two queues: domain events feed the stats/achievements
// processor, email jobs go out through Mailgun. Event handling is
// at-least-once; counter updates are not deduplicated on redelivery.
func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-worker", cfg.Env)

	if cfg.RabbitMQURL == "" || cfg.RabbitMQEventQueue == "" {
		log.Fatal("RabbitMQ not configured")
	}

	ctx := context.Background()
	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	conn, err := amqp.Dial(cfg.RabbitMQURL)
	if err != nil {
		log.Fatalf("amqp dial: %v", err)
	}
	defer func() { _ = conn.Close() }()

	var emailPub *helpers.RabbitPublisher
	if cfg.RabbitMQEmailQueue != "" {
		emailPub, err = helpers.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQEmailQueue)
		if err != nil {
			logger.WithError(err).Warn("email queue unavailable, notifications disabled")
			emailPub = nil
		}
	}
	if emailPub != nil {
		defer emailPub.Close()
	}

	processor := &jobs.Processor{
		Stats:    pginfra.NewStatsRepository(pool),
		Users:    pginfra.NewUserRepository(pool),
		Logger:   logger,
		EmailPub: emailPub,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	eventsDone := consumeEvents(ctx, conn, cfg.RabbitMQEventQueue, processor, logger)

	var emailsDone chan struct{}
	if cfg.MailSendEnabled && cfg.MailgunDomain != "" && cfg.MailgunAPIKey != "" {
		mg := mailer.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunSender)
		emailsDone = consumeEmails(ctx, conn, cfg.RabbitMQEmailQueue, mg, logger)
	} else {
		logger.Info("email sending disabled")
	}

	logger.Infof("worker listening on queue=%s", cfg.RabbitMQEventQueue)
	<-stop
	logger.Info("shutting down...")
	for _, done := range []chan struct{}{eventsDone, emailsDone} {
		if done == nil {
			continue
		}
		select {
		case <-done:
		case <-time.After(2 * time.Second):
		}
	}
}

func consumeEvents(ctx context.Context, conn *amqp.Connection, queue string, p *jobs.Processor, logger *logrus.Logger) chan struct{} {
	msgs := mustConsume(conn, queue)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for msg := range msgs {
			var ev jobs.Event
			if err := json.Unmarshal(msg.Body, &ev); err != nil {
				logger.WithError(err).Warn("bad event message")
				_ = msg.Nack(false, false)
				continue
			}
			c, cancel := context.WithTimeout(ctx, 15*time.Second)
			if err := p.Handle(c, ev); err != nil {
				cancel()
				logger.WithError(err).WithField("type", ev.Type).Error("event handling failed")
				// Unknown event types can never succeed: drop instead of
				// requeueing a poison message.
				_ = msg.Nack(false, !errors.Is(err, jobs.ErrUnknownEvent))
				continue
			}
			cancel()
			_ = msg.Ack(false)
		}
	}()
	return done
}

func consumeEmails(ctx context.Context, conn *amqp.Connection, queue string, mg *mailer.Mailgun, logger *logrus.Logger) chan struct{} {
	msgs := mustConsume(conn, queue)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for msg := range msgs {
			var job mailer.EmailJob
			if err := json.Unmarshal(msg.Body, &job); err != nil {
				logger.WithError(err).Warn("bad email message")
				_ = msg.Nack(false, false)
				continue
			}
			c, cancel := context.WithTimeout(ctx, 15*time.Second)
			if err := mg.Send(c, job.To, job.Subject, job.Text, job.HTML); err != nil {
				cancel()
				logger.WithError(err).Error("email send failed")
				_ = msg.Nack(false, true)
				continue
			}
			cancel()
			_ = msg.Ack(false)
		}
	}()
	return done
}

func mustConsume(conn *amqp.Connection, queue string) <-chan amqp.Delivery {
	ch, err := conn.Channel()
	if err != nil {
		log.Fatalf("amqp channel: %v", err)
	}
	// Prefetch for fair dispatch across worker replicas.
	if err := ch.Qos(16, 0, false); err != nil {
		log.Fatalf("qos: %v", err)
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		log.Fatalf("queue declare %s: %v", queue, err)
	}
	msgs, err := ch.Consume(queue, "", false, false, false, false, nil)
	if err != nil {
		log.Fatalf("consume %s: %v", queue, err)
	}
	return msgs
}
