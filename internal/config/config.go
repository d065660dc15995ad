package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server   *Serverconfig
	Location *Locationconfig
	Session  *Sessionconfig
	Rides    *Ridesconfig
	Storage  *Storageconfig
	Log      *Loggerconfig
}

type Serverconfig struct {
	BaseURL       string
	Timeout       time.Duration
	RetryAttempts int
}

type Locationconfig struct {
	MinDistanceMeters float64
	MinInterval       time.Duration
	ReplayMaxAge      time.Duration
}

type Sessionconfig struct {
	TTL time.Duration
}

type Ridesconfig struct {
	PollInterval time.Duration
}

type Storageconfig struct {
	StateFile  string
	VoucherDir string
}

type Loggerconfig struct {
	Level string
}

func New() (*Config, error) {
	getEnv := func(key, def string) string {
		val := os.Getenv(key)
		if val == "" {
			fmt.Printf("using default key %v\n", def)
			return def
		}
		return val
	}

	getEnvInt := func(key string, def int) int {
		valStr := os.Getenv(key)
		if valStr == "" {
			fmt.Printf("using default key %v\n", def)
			return def
		}
		val, err := strconv.Atoi(valStr)
		if err != nil {
			fmt.Printf("using default key %v\n", def)
			return def
		}
		return val
	}

	getEnvFloat := func(key string, def float64) float64 {
		valStr := os.Getenv(key)
		if valStr == "" {
			fmt.Printf("using default key %v\n", def)
			return def
		}
		val, err := strconv.ParseFloat(valStr, 64)
		if err != nil {
			fmt.Printf("using default key %v\n", def)
			return def
		}
		return val
	}

	cnf := &Config{
		Server: &Serverconfig{
			BaseURL:       getEnv("SERVER_BASE_URL", "https://api.xdrive.app"),
			Timeout:       time.Duration(getEnvInt("SERVER_TIMEOUT_SECONDS", 10)) * time.Second,
			RetryAttempts: getEnvInt("SERVER_RETRY_ATTEMPTS", 3),
		},
		Location: &Locationconfig{
			MinDistanceMeters: getEnvFloat("LOCATION_MIN_DISTANCE_METERS", 50),
			MinInterval:       time.Duration(getEnvInt("LOCATION_MIN_INTERVAL_SECONDS", 30)) * time.Second,
			ReplayMaxAge:      time.Duration(getEnvInt("LOCATION_REPLAY_MAX_AGE_SECONDS", 300)) * time.Second,
		},
		Session: &Sessionconfig{
			TTL: time.Duration(getEnvInt("SESSION_TTL_HOURS", 24)) * time.Hour,
		},
		Rides: &Ridesconfig{
			PollInterval: time.Duration(getEnvInt("RIDES_POLL_INTERVAL_SECONDS", 30)) * time.Second,
		},
		Storage: &Storageconfig{
			StateFile:  getEnv("STATE_FILE", "driver_state.json"),
			VoucherDir: getEnv("VOUCHER_DIR", "vouchers"),
		},
		Log: &Loggerconfig{
			Level: getEnv("LOG_LEVEL", "INFO"),
		},
	}

	return cnf, nil
}
