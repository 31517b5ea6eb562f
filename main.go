// main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"bloodlink/config"
	"bloodlink/controllers"
	"bloodlink/models"
	"bloodlink/routes"
	"bloodlink/store"
	"bloodlink/utils"
)

func main() {
	// Load environment variables from .env file
	envErr := godotenv.Load()

	cfg := config.Load()
	logger := utils.NewLogger(cfg.Env)
	if envErr != nil {
		logger.Info("No .env file found. Proceeding with environment variables.")
	}
	for _, w := range cfg.Warnings {
		logger.Warn(w)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to MongoDB
	connectCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	client, err := utils.ConnectDB(connectCtx, cfg.DatabaseURI())
	cancel()
	if err != nil {
		logger.WithError(err).Fatal("failed to connect to MongoDB")
	}
	logger.WithField("db", cfg.DBName).Info("Pinged your deployment. Connected to MongoDB")
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			logger.WithError(err).Error("failed to disconnect from MongoDB")
		}
	}()

	db := client.Database(cfg.DBName)
	users := store.NewMongoCollection(db.Collection("users"))
	requests := store.NewMongoCollection(db.Collection("donationRequests"))
	blogs := store.NewMongoCollection(db.Collection("blogs"))

	indexCtx, cancelIndex := context.WithTimeout(ctx, 30*time.Second)
	err = users.EnsureUniqueIndex(indexCtx, models.UserFieldEmail)
	cancelIndex()
	if err != nil {
		logger.WithError(err).Fatal("failed to ensure unique email index")
	}

	mailer := utils.NewMailer(cfg.SendGridAPIKey, cfg.EmailSender)

	// Initialize controllers
	handler := routes.NewHandler(routes.Controllers{
		Users:     controllers.NewUserController(users, mailer, []byte(cfg.JWTSecret), logger, cfg.RequestTimeout),
		Donations: controllers.NewDonationRequestController(requests, mailer, logger, cfg.RequestTimeout),
		Blogs:     controllers.NewBlogController(blogs, logger, cfg.RequestTimeout),
		Stats:     controllers.NewStatsController(users, requests, logger, cfg.RequestTimeout),
	}, []byte(cfg.JWTSecret), cfg.AllowedOrigins(), logger)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.WithFields(logrus.Fields{"port": cfg.Port, "env": cfg.Env}).Info("BloodLink server is running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Error("server stopped")
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("graceful shutdown failed")
	}
}
