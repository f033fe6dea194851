package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/aviatorhq/aviator-chat/internal/config"
	"github.com/aviatorhq/aviator-chat/internal/stub"
)

func newStubCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stub",
		Short: "Run the local stub backend for offline development",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStub()
		},
	}
}

func runStub() error {
	store, err := stub.NewStore(config.AppConfig.DatabaseURL)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.SeedDemoUsers(); err != nil {
		return err
	}

	router := stub.NewRouter(stub.NewHandler(store))
	srv := &http.Server{
		Addr:         ":" + config.AppConfig.StubPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Infof("Stub backend listening on %s. Press Ctrl+C to quit.", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on %s: %v", srv.Addr, err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down stub backend...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return err
	}
	log.Info("Stub backend exited gracefully")
	return nil
}
