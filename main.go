package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/example/kidquest/internal/database"
	"github.com/example/kidquest/internal/engine"
	"github.com/example/kidquest/internal/enrich"
	"github.com/example/kidquest/internal/excel"
	"github.com/example/kidquest/internal/notify"
	"github.com/example/kidquest/internal/scheduler"
	"github.com/example/kidquest/internal/syncer"
	"github.com/example/kidquest/internal/timewindow"
)

func main() {
	importFile := flag.String("import", "", "import library items from an Excel or CSV file and exit")
	flag.Parse()

	// .env is optional; environment variables win either way.
	_ = godotenv.Load()

	if os.Getenv("LOG_FORMAT") == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}
	if level, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil {
		logrus.SetLevel(level)
	}

	db, err := database.Connect()
	if err != nil {
		logrus.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	provider := enrich.NewProvider()
	e, err := engine.New(database.NewStore(db), timewindow.SystemClock{}, engine.Options{
		Syncer:   nilSafeSyncer(syncer.NewRemote()),
		Fallback: enrich.NewGenerator(provider, nil),
	})
	if err != nil {
		logrus.Fatalf("Failed to initialize engine: %v", err)
	}

	if *importFile != "" {
		result, err := excel.ImportLibrary(e, provider, excel.DefaultImportConfig(*importFile))
		if err != nil {
			logrus.Fatalf("Import failed: %v", err)
		}
		logrus.Infof("Imported %d of %d rows (%d skipped)", result.Created, result.TotalProcessed, result.Skipped)
		for _, msg := range result.Errors {
			logrus.Warn(msg)
		}
		return
	}

	bot, err := notify.New(e)
	if err != nil {
		logrus.Fatalf("Failed to create Telegram surface: %v", err)
	}
	if bot != nil {
		e.SetNotifier(bot)
		bot.Start()
	}

	runner := scheduler.New(e, nilSafeDigester(bot))
	runner.Start()
	logrus.Info("Scheduler started. Press Ctrl+C to stop.")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logrus.Info("Shutting down...")
	runner.Stop()
	if bot != nil {
		bot.Stop()
	}
	if err := e.Flush(); err != nil {
		logrus.Errorf("Final flush failed: %v", err)
	}
	logrus.Info("Stopped.")
}

func nilSafeSyncer(r *syncer.Remote) engine.Syncer {
	if r == nil {
		return nil
	}
	return r
}

func nilSafeDigester(t *notify.Telegram) scheduler.Digester {
	if t == nil {
		return nil
	}
	return t
}
