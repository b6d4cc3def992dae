package common

import (
	"fmt"
	"os"
	"strings"

	"github.com/ternarybob/banner"
)

// PrintBanner displays the application startup banner to stderr.
func PrintBanner(config *Config, logger *Logger) {
	info := GetVersionInfo()
	serviceURL := fmt.Sprintf("http://%s:%d", config.Server.Host, config.Server.Port)

	lineColor := banner.ColorCyan
	textColor := banner.ColorBold + banner.ColorWhite
	hr := lineColor + strings.Repeat("═", 60) + banner.ColorReset

	art := []string{
		`  ___ _____ ___   ___ _  _____  ___ _____`,
		` / __|_   _/ _ \ / __| |/ / _ )/ _ \_   _|`,
		` \__ \ | || (_) | (__| ' <| _ \ (_) || |`,
		` |___/ |_| \___/ \___|_|\_\___/\___/ |_|`,
	}

	fmt.Fprintf(os.Stderr, "\n%s\n\n", hr)
	for _, line := range art {
		fmt.Fprintf(os.Stderr, "%s%s%s\n", textColor, line, banner.ColorReset)
	}
	fmt.Fprintf(os.Stderr, "\n%s  Stock Metrics & Narrative Analysis%s\n\n%s\n\n", textColor, banner.ColorReset, hr)

	kvLines := [][2]string{
		{"Version", info.Version},
		{"Build", info.Build},
		{"Commit", info.Commit},
		{"Environment", config.Environment},
		{"Service URL", serviceURL},
		{"Narrative", config.Narrative.Provider},
	}
	for _, kv := range kvLines {
		fmt.Fprintf(os.Stderr, "%s  %-14s %s%s\n", textColor, kv[0], kv[1], banner.ColorReset)
	}
	fmt.Fprintf(os.Stderr, "\n%s\n\n", hr)

	logger.Info().
		Str("version", info.Version).
		Str("build", info.Build).
		Str("commit", info.Commit).
		Str("environment", config.Environment).
		Str("service_url", serviceURL).
		Str("narrative_provider", config.Narrative.Provider).
		Msg("Application started")
}

// PrintShutdownBanner displays the application shutdown banner to stderr.
func PrintShutdownBanner(logger *Logger) {
	hr := banner.ColorCyan + strings.Repeat("═", 42) + banner.ColorReset

	fmt.Fprintf(os.Stderr, "\n%s\n", hr)
	fmt.Fprintf(os.Stderr, "%s  STOCKBOT SHUTTING DOWN%s\n", banner.ColorBold+banner.ColorWhite, banner.ColorReset)
	fmt.Fprintf(os.Stderr, "%s\n\n", hr)

	logger.Info().Msg("Application shutting down")
}
