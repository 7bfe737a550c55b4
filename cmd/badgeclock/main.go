// Command badgeclock runs the badge attendance server and its helpers.
package main

import (
	"fmt"
	"log"
	"os"

	"badgeclock/internal/config"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	// A .env next to the binary is optional
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: .env not loaded: %v", err)
	}
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	rootCmd := &cobra.Command{
		Use:          "badgeclock",
		Short:        "RFID badge attendance: check-in and check-out from reader scans",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().String("config", "", "config file (default: search "+config.ConfigFileName+" and the XDG paths)")

	rootCmd.AddCommand(
		serveCmd(),
		scanCmd(),
		importCmd(),
		exportCmd(),
		configCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig honours --config, falling back to the search order
func loadConfig(cmd *cobra.Command) (*config.Config, string, error) {
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		return config.LoadFromPath(path)
	}
	return config.Load()
}
