package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"DepreciationRecon/internal/appmanager"
	"DepreciationRecon/internal/config"
)

func main() {
	// Load .env for local dev; a missing file is fine
	_ = godotenv.Load("../.env")

	manager := appmanager.NewAppManager()

	servicesCfg, err := appmanager.LoadServiceSequence(config.Env("RECON_SERVICES_FILE", "../services.yaml"))
	if err != nil {
		log.Fatal("failed to load service sequence:", err)
	}

	manager.AutoRegisterServices(servicesCfg)

	if err := manager.StartAll(); err != nil {
		log.Fatal("failed to start:", err)
	}

	// Graceful shutdown handling
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs

	if err := manager.StopAll(); err != nil {
		log.Fatal("failed to stop:", err)
	}
}
