package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	_ "github.com/diem/reference-wallet-sub000/docs"
	"github.com/diem/reference-wallet-sub000/internal/components"
	"github.com/diem/reference-wallet-sub000/internal/config"
)

// @title Reference Wallet Api
// @version 1.0
// @description API Server for the custodial reference wallet
// @host localhost:8080
// @BasePath /
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Println(err.Error())
		return
	}

	logger := components.SetupLogger(*cfg)

	eg, ctx := errgroup.WithContext(context.Background())

	sigQuit := make(chan os.Signal, 1)
	signal.Notify(sigQuit, os.Interrupt, syscall.SIGTERM)

	components, err := components.InitComponents(ctx, cfg, logger)
	if err != nil {
		logger.Error("Bad configuration", slog.String("error", err.Error()))
		return
	}

	eg.Go(func() error {
		if err := components.HttpServer.Run(ctx); err != nil {
			logger.Error("failed to run HttpServer", slog.String("error", err.Error()))
			return err
		}

		return nil
	})

	eg.Go(func() error {
		go func() {
			if err := components.SettlementConsumer.Consume(ctx); err != nil {
				logger.Error("settlement consumer failed", "error", err.Error())
				return
			}
		}()
		return nil
	})

	<-sigQuit
	logger.Info("The programm is exiting")

	err = eg.Wait()
	if err != nil {
		return
	}

	if err := components.Shutdown(); err != nil {
		logger.Error("Error while shutting down the components", slog.String("error", err.Error()))
	}

	logger.Info("The programm is exited")
}
