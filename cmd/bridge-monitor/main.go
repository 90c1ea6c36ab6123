// ABOUTME: Entry point for the bridge with the operator terminal monitor enabled
// ABOUTME: Runs the same wiring as audioserver-bridge, with a live bubbletea dashboard in the foreground
package main

import (
	"flag"
	"os"

	"github.com/loxone-bridge/audioserver-bridge/internal/bridgeapp"
)

func main() {
	adminDir := flag.String("admin-dir", "", "admin config directory (overrides CONFIG_ADMIN_DIR)")
	flag.Parse()

	cfg := bridgeapp.ConfigFromEnv(true)
	if *adminDir != "" {
		cfg.AdminDir = *adminDir
		cfg.FavouritesPath = *adminDir + "/favourites.json"
	}

	os.Exit(bridgeapp.Run(cfg))
}
