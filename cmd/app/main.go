package main

import (
	"context"
	"flag"
	"log"

	"xdrive-driver/internal/config"
	driverclient "xdrive-driver/internal/driver-client"
	"xdrive-driver/internal/mylogger"
)

func main() {
	email := flag.String("email", "", "driver account email")
	password := flag.String("password", "", "driver account password")
	rideLimit := flag.Int("ride-limit", 0, "stop after N completed rides (0 = run until interrupted)")
	once := flag.Bool("once", false, "poll pending rides a single time")
	flag.Parse()

	cfg, err := config.New()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := mylogger.New(cfg.Log.Level)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	app, err := driverclient.New(cfg, appLogger)
	if err != nil {
		appLogger.Error("failed to build app", err)
		log.Fatal(err)
	}

	appLogger.Action("driver_app_started").Info("xdrive driver client starting up")

	err = app.Run(context.Background(), driverclient.RunOptions{
		Email:     *email,
		Password:  *password,
		RideLimit: *rideLimit,
		Once:      *once,
	})
	if err != nil {
		appLogger.Error("driver app exited with error", err)
		log.Fatal(err)
	}
}
