// ABOUTME: Entry point for the AudioServer bridge
// ABOUTME: Wires the zone/group/config/dispatch/heartbeat/transport stack and runs it to completion
package main

import (
	"flag"
	"os"

	"github.com/loxone-bridge/audioserver-bridge/internal/bridgeapp"
)

func main() {
	adminDir := flag.String("admin-dir", "", "admin config directory (overrides CONFIG_ADMIN_DIR)")
	flag.Parse()

	cfg := bridgeapp.ConfigFromEnv(false)
	if *adminDir != "" {
		cfg.AdminDir = *adminDir
		cfg.FavouritesPath = *adminDir + "/favourites.json"
	}

	os.Exit(bridgeapp.Run(cfg))
}
