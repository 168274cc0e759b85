// roundhold is the authoritative server for the Roundhold 1v1 LAN
// tower-defense game.
//
// Usage:
//
//	roundhold serve            - Start the match server
//	roundhold matches          - Show recent match results
//
// Global flags:
//
//	--config <path>  - Path to a YAML config file
//	--db <path>      - Path to the match results database (empty = disabled)
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	flagConfig string
	flagDBPath string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "roundhold",
	Short: "Roundhold - authoritative 1v1 tower-defense server",
	Long: `Roundhold is a 1v1 LAN tower-defense game on a deterministic-lockstep
model: this server owns all game state, pairs two clients into a match and
drives the round loop; both clients replay the identical combat simulation
locally for display.

Available commands:
  serve    - Start the match server
  matches  - Show recent match results

Examples:
  roundhold serve
  roundhold serve --addr 0.0.0.0:42069 --db ./matches.db
  roundhold matches --db ./matches.db`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to YAML config file")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "Path to match results database")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(matchesCmd)
}
