package main

import (
	"flag"
	"os"
	"os/signal"

	"github.com/getsentry/sentry-go"
	"github.com/sirupsen/logrus"

	"github.com/promptvault/prompt-media-repo/api/webserver"
	"github.com/promptvault/prompt-media-repo/archival"
	"github.com/promptvault/prompt-media-repo/common/config"
	"github.com/promptvault/prompt-media-repo/common/logging"
	"github.com/promptvault/prompt-media-repo/common/version"
	"github.com/promptvault/prompt-media-repo/database"
	"github.com/promptvault/prompt-media-repo/datastores"
	"github.com/promptvault/prompt-media-repo/mediastore"
	"github.com/promptvault/prompt-media-repo/metrics"
	"github.com/promptvault/prompt-media-repo/notifier"
	"github.com/promptvault/prompt-media-repo/pool"
	"github.com/promptvault/prompt-media-repo/sharing"
)

func main() {
	configPath := flag.String("config", "prompt-repo.yaml", "The path to the configuration")
	migrationsPath := flag.String("migrations", "./migrations", "The path to the migrations folder")
	versionFlag := flag.Bool("version", false, "Prints the version and exits")
	flag.Parse()

	if *versionFlag {
		version.Print(false)
		return // exit 0
	}

	// Override config path with config for Docker users
	configEnv := os.Getenv("REPO_CONFIG")
	if configEnv != "" {
		configPath = &configEnv
	}

	config.Path = *configPath
	config.Runtime.MigrationsPath = *migrationsPath

	err := logging.Setup(
		config.Get().General.LogDirectory,
		config.Get().General.LogColors,
		config.Get().General.JsonLogs,
		config.Get().General.LogLevel,
	)
	if err != nil {
		panic(err)
	}

	logrus.Info("Starting up...")
	version.Print(true)

	if config.Get().Sentry.Enabled {
		logrus.Info("Setting up Sentry for debugging...")
		err = sentry.Init(sentry.ClientOptions{
			Dsn:         config.Get().Sentry.Dsn,
			Environment: config.Get().Sentry.Environment,
			Debug:       config.Get().Sentry.Debug,
			Release:     version.Version,
		})
		if err != nil {
			logrus.Fatal(err)
		}
	}
	defer sentry.Recover()

	logrus.Info("Starting config watcher...")
	watcher := config.Watch()
	defer watcher.Close()

	logrus.Info("Preparing database...")
	db := database.GetInstance()

	logrus.Info("Preparing blob store...")
	blobs, err := datastores.Create(config.Get().BlobStore)
	if err != nil {
		logrus.Fatal(err)
	}

	logrus.Info("Preparing worker queues...")
	pool.Init()

	media := mediastore.NewStore(db.Media, mediastore.Config{
		MaxUrlLength: config.Get().Media.MaxUrlLength,
		BlobHosts:    config.Get().Media.BlobHosts,
	})
	broker := sharing.NewBroker(db.ShareOffers, db.PromptSets, db.Accounts, media, blobs, notifier.NewLogSink(), pool.ShareQueue)
	archives := archival.NewService(media, blobs, db.PromptSets, pool.ArchiveQueue, config.Get().Archives.PreviewSizeBytes)

	logrus.Info("Starting prompt media repository...")
	metrics.Init()
	webserver.Init(&webserver.Dependencies{
		Media:    media,
		Broker:   broker,
		Archives: archives,
		Accounts: db.Accounts,
	})

	// Wait for a stop signal, then unwind in reverse order
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	<-stop

	logrus.Warn("Stop signal received")

	logrus.Info("Stopping web server...")
	webserver.Stop()

	logrus.Info("Stopping metrics...")
	metrics.Stop()

	logrus.Info("Draining worker queues...")
	pool.Drain()

	logrus.Info("Goodbye!")
}
