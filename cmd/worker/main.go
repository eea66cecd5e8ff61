package main

import (
	"github.com/sirupsen/logrus"

	"github.com/loadboard-app/loadboard/internal/alerts"
	"github.com/loadboard-app/loadboard/internal/config"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	cfg := config.Load()

	mailer := alerts.NewMailer(cfg.PlunkAPIKey, cfg.PlunkFrom, cfg.PlunkAPIURL)
	worker := alerts.NewWorker(cfg.RedisAddr, mailer, log)

	log.WithField("redis", cfg.RedisAddr).Info("notification worker starting")
	if err := worker.Run(); err != nil {
		log.WithError(err).Fatal("worker error")
	}
}
