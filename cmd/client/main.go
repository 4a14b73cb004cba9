package main

import (
	"fmt"
	"os"

	"github.com/hostlog/hostlog/internal/adapter"
	"github.com/hostlog/hostlog/internal/client"
	"github.com/hostlog/hostlog/internal/config"
	"github.com/hostlog/hostlog/internal/logger"
	"github.com/hostlog/hostlog/internal/service"
	"github.com/hostlog/hostlog/internal/store"
	"github.com/hostlog/hostlog/models"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	printBuildInfo()

	log := logger.NewClientLogger("hostlog-client")

	cfg, err := config.GetClientConfig()
	if err != nil {
		fail("config error", err)
	}

	storages, err := store.NewClientStorages(cfg.Storage, log)
	if err != nil {
		fail("storage error", err)
	}

	serverAdapter, err := adapter.NewHTTPServerAdapter(cfg.Adapter, cfg.App, log)
	if err != nil {
		fail("adapter error", err)
	}

	services, err := service.NewClientServices(storages, serverAdapter, cfg.Sync, log)
	if err != nil {
		fail("services error", err)
	}

	buildInfo := models.NewAppBuildInfo(buildVersion, buildDate, buildCommit)

	app, err := client.NewApp(services, serverAdapter, cfg, buildInfo, log)
	if err != nil {
		fail("init client app error", err)
	}

	if err = app.Run(); err != nil {
		fail("client run error", err)
	}
}

func fail(msg string, err error) {
	fmt.Fprintf(os.Stderr, "%s: %v\n", msg, err)
	os.Exit(1)
}

func printBuildInfo() {
	if buildVersion == "" {
		buildVersion = "N/A"
	}
	if buildDate == "" {
		buildDate = "N/A"
	}
	if buildCommit == "" {
		buildCommit = "N/A"
	}

	fmt.Printf("Build version: %s\n", buildVersion)
	fmt.Printf("Build date: %s\n", buildDate)
	fmt.Printf("Build commit: %s\n", buildCommit)
}
