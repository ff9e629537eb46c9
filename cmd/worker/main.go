package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"catalog-service/internal/config"
	"catalog-service/internal/repository"
	"catalog-service/internal/worker"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg := config.Load()

	logrus.SetFormatter(&logrus.JSONFormatter{})

	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Fatalf("Failed to parse Redis URL: %v", err)
	}
	redisClient := redis.NewClient(redisOpts)
	defer redisClient.Close()

	productsRepo := repository.NewProductsRepository(db, redisClient)
	outboxRepo := repository.NewOutboxRepository(db)

	// Asynq server draining the sync outbox
	srv := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     redisOpts.Addr,
			Password: redisOpts.Password,
			DB:       redisOpts.DB,
		},
		asynq.Config{
			Concurrency: 2,
			Queues: map[string]int{
				"default": 1,
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				logrus.WithError(err).WithField("task", task.Type()).Error("Task processing failed")
			}),
		},
	)

	mux := asynq.NewServeMux()
	worker.RegisterHandlers(mux, productsRepo, outboxRepo, cfg)

	// Periodic schedule: sweep pending entries every minute, purge applied
	// entries daily.
	scheduler := asynq.NewScheduler(
		asynq.RedisClientOpt{
			Addr:     redisOpts.Addr,
			Password: redisOpts.Password,
			DB:       redisOpts.DB,
		},
		nil,
	)
	if _, err := scheduler.Register("* * * * *", asynq.NewTask(worker.TaskOutboxSweep, nil)); err != nil {
		log.Fatalf("Failed to register sweep schedule: %v", err)
	}
	if _, err := scheduler.Register("0 3 * * *", asynq.NewTask(worker.TaskOutboxPurge, nil)); err != nil {
		log.Fatalf("Failed to register purge schedule: %v", err)
	}

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		log.Println("Gracefully shutting down worker...")
		scheduler.Shutdown()
		srv.Shutdown()
	}()

	go func() {
		if err := scheduler.Run(); err != nil {
			log.Fatalf("Failed to start scheduler: %v", err)
		}
	}()

	log.Println("Outbox replay worker starting")
	if err := srv.Run(mux); err != nil {
		log.Fatalf("Failed to start worker: %v", err)
	}

	log.Println("Worker exited")
}
