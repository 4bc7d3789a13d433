package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/musifyyy/tunefetch/api"
	"github.com/musifyyy/tunefetch/internal/app"
	"github.com/musifyyy/tunefetch/internal/domain"
	"github.com/musifyyy/tunefetch/internal/infrastructure"
	"github.com/musifyyy/tunefetch/pkg/logger"
)

var configPath = flag.String("config", "", "Path to config file")

func main() {
	flag.Parse()

	config, err := app.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:      config.Logging.Level,
		Format:     config.Logging.Format,
		OutputPath: config.Logging.OutputPath,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	multiLog, err := logger.NewMultiLogger(logger.MultiLoggerConfig{
		Level:   config.Logging.Level,
		LogsDir: config.Logging.EventsDir,
	})
	if err != nil {
		log.Fatal("Failed to create event logger", zap.Error(err))
	}
	defer multiLog.Sync()

	journal, err := infrastructure.NewSQLiteJournal(config.Journal.DatabasePath)
	if err != nil {
		log.Fatal("Failed to open journal", zap.Error(err))
	}
	defer journal.Close()

	events := domain.MultiSink{
		infrastructure.NewEventLogSink(multiLog),
		infrastructure.NewEventJournalSink(journal, log),
	}

	runner := infrastructure.NewYTDLPRunner(&config.Extract, log)
	adapters := []domain.Adapter{
		infrastructure.NewSoundCloudAdapter(runner),
		infrastructure.NewBandcampAdapter(config.Resolve.BandcampURL, nil),
		infrastructure.NewMixcloudAdapter(config.Resolve.MixcloudAPI, nil),
		infrastructure.NewYouTubeAdapter(runner, config.Resolve.YouTubeCookies),
	}

	resolver, err := app.NewResolver(config.Resolve.Order(), adapters, &config.Resolve, events, log)
	if err != nil {
		log.Fatal("Failed to create resolver", zap.Error(err))
	}

	extractor := infrastructure.NewYTDLPExtractor(runner, config.Resolve.YouTubeCookies)
	transcoder := infrastructure.NewFFmpegTranscoder(&config.Pipeline, log)
	pipeline := app.NewPipeline(extractor, transcoder, &config.Pipeline, events, log)

	router := api.SetupRouter(resolver, pipeline, journal, log)

	addr := fmt.Sprintf("%s:%d", config.Server.Host, config.Server.Port)
	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed", zap.Error(err))
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("Forced shutdown", zap.Error(err))
	}

	log.Info("Server stopped")
}
