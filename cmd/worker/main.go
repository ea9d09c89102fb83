package main

import (
	"context"
	"encoding/json"
	"log"

	"github.com/joho/godotenv"
	"github.com/streadway/amqp"

	"github.com/duskraven/mailraven-backend/internal/config"
	"github.com/duskraven/mailraven-backend/internal/db"
	"github.com/duskraven/mailraven-backend/internal/queue"
	"github.com/duskraven/mailraven-backend/internal/repository"
	"github.com/duskraven/mailraven-backend/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ No .env file found, relying on OS environment variables")
	}

	cfg, err := config.LoadAll()
	if err != nil {
		log.Fatal(err)
	}

	conn, err := db.Open(cfg.Database)
	if err != nil {
		log.Fatal("failed to connect to DB:", err)
	}
	defer conn.Close()

	contactRepo := &repository.ContactRepository{DB: conn}
	campaignRepo := &repository.CampaignRepository{DB: conn}
	deliveryRepo := &repository.DeliveryRepository{DB: conn}

	sender := &service.Sender{
		ContactRepo:  contactRepo,
		CampaignRepo: campaignRepo,
		Ledger:       &service.LedgerService{DeliveryRepo: deliveryRepo},
		SendFunc:     service.MockSender,
	}

	// Connect to RabbitMQ
	amqpConn, err := amqp.Dial(cfg.Queue.URL)
	if err != nil {
		log.Fatal("Failed to connect to RabbitMQ:", err)
	}
	defer amqpConn.Close()

	ch, err := amqpConn.Channel()
	if err != nil {
		log.Fatal("Failed to open a channel:", err)
	}
	defer ch.Close()

	q, err := ch.QueueDeclare(
		cfg.Queue.Name,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		log.Fatal("Failed to declare queue:", err)
	}

	msgs, err := ch.Consume(
		q.Name,
		"",
		false, // autoAck = false for reliability
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		log.Fatal("Failed to register consumer:", err)
	}

	forever := make(chan bool)

	go func() {
		for d := range msgs {
			var job queue.SendJob
			if err := json.Unmarshal(d.Body, &job); err != nil {
				log.Println("Invalid job:", err)
				d.Ack(false)
				continue
			}

			err := sender.Process(context.Background(), job)
			if err != nil {
				log.Println("Failed to send message:", err)
				// A plain nack redelivers with the original headers, so the
				// count would never advance. Re-publish with it bumped, and
				// record the failure once the limit is spent.
				retries := queue.RetryCount(d.Headers)
				if retries < cfg.Queue.MaxRetries {
					pub := queue.NewRetryPublishing(d.Body, retries+1)
					if pubErr := ch.Publish("", q.Name, false, false, pub); pubErr != nil {
						log.Println("Failed to requeue job:", pubErr)
						d.Nack(false, true)
						continue
					}
				} else {
					sender.Fail(context.Background(), job, err.Error())
				}
			}

			d.Ack(false)
		}
	}()

	log.Println("Worker running, waiting for messages...")
	<-forever
}
