package config_test

import (
	"fmt"

	"github.com/wonny/frontier/pkg/config"
)

// Example demonstrates how to use the config package
func Example() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		return
	}

	fmt.Printf("Server running on port: %s\n", cfg.Port)
	fmt.Printf("Environment: %s\n", cfg.Env)
	fmt.Printf("Price store enabled: %v\n", cfg.Database.Enabled)
	fmt.Printf("Yahoo rate: %.1f req/s\n", cfg.Yahoo.RatePerSec)
}
