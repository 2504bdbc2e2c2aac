// The worker drains the chat event queue and notifies the site owner
// about new conversations. It is optional: without a broker the chat
// backend works, the owner just does not get emails.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/goaccelovate/ai-chat-backend/internal/config"
	"github.com/goaccelovate/ai-chat-backend/internal/email"
	"github.com/goaccelovate/ai-chat-backend/internal/store/rabbitmq"
)

func workerConcurrency() int {
	v := os.Getenv("WORKER_CONCURRENCY")
	if v == "" {
		return 2
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 2
	}
	if n > 50 {
		return 50
	}
	return n
}

func main() {
	cfg := config.Load()

	if cfg.RabbitURL == "" {
		log.Fatalf("RABBIT_URL is required for the worker")
	}

	conn, err := amqp.Dial(cfg.RabbitURL)
	if err != nil {
		log.Fatalf("rabbit dial: %v", err)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		log.Fatalf("rabbit channel: %v", err)
	}
	defer ch.Close()

	if err := rabbitmq.DeclareTopology(ch, cfg.RabbitQueue); err != nil {
		log.Fatalf("queue declare: %v", err)
	}

	concurrency := workerConcurrency()
	if err := ch.Qos(concurrency, 0, false); err != nil {
		log.Fatalf("qos: %v", err)
	}

	msgs, err := ch.Consume(cfg.RabbitQueue, "", false, false, false, false, nil)
	if err != nil {
		log.Fatalf("consume: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Printf("worker started, queue=%s concurrency=%d", cfg.RabbitQueue, concurrency)

	smtp := email.SMTPConfig{
		Host: cfg.SMTPHost,
		Port: cfg.SMTPPort,
		User: cfg.SMTPUser,
		Pass: cfg.SMTPPass,
		From: cfg.SMTPFrom,
	}

	// worker pool
	jobs := make(chan amqp.Delivery, concurrency*2)

	var wg sync.WaitGroup
	wg.Add(concurrency)
	for i := 0; i < concurrency; i++ {
		go func(workerID int) {
			defer wg.Done()
			for d := range jobs {
				var ev rabbitmq.Event
				if err := json.Unmarshal(d.Body, &ev); err != nil || ev.Type == "" {
					log.Printf("worker=%d bad message: %v", workerID, err)
					_ = d.Nack(false, false)
					continue
				}

				if err := handleEvent(smtp, cfg.NotifyEmail, ev); err != nil {
					log.Printf("worker=%d event %s session=%s failed: %v", workerID, ev.Type, ev.SessionID, err)
					_ = d.Nack(false, false)
					continue
				}

				if err := d.Ack(false); err != nil {
					log.Printf("worker=%d ack failed session=%s err=%v", workerID, ev.SessionID, err)
				}
			}
		}(i)
	}

	// dispatcher
	for {
		select {
		case <-ctx.Done():
			log.Printf("worker shutting down")
			close(jobs)
			wg.Wait()
			return

		case d, ok := <-msgs:
			if !ok {
				log.Printf("delivery channel closed")
				time.Sleep(1 * time.Second)
				continue
			}
			jobs <- d
		}
	}
}

func handleEvent(smtp email.SMTPConfig, notifyTo string, ev rabbitmq.Event) error {
	switch ev.Type {
	case rabbitmq.EventConversationCreated:
		if notifyTo == "" {
			return nil
		}
		subject := fmt.Sprintf("New chat conversation from %s", ev.Name)
		body := "A visitor started a new chat.\n\n" +
			"Name: " + ev.Name + "\n" +
			"Email: " + ev.Email + "\n" +
			"Topic: " + ev.Purpose + "\n" +
			"Session: " + ev.SessionID + "\n"
		return email.SendText(smtp, notifyTo, subject, body)

	case rabbitmq.EventMessageAppended:
		// Nothing to do yet; kept so the queue drains cleanly.
		return nil

	default:
		log.Printf("unknown event type %q, dropping", ev.Type)
		return nil
	}
}
