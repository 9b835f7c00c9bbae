// =============================================================================
// Purchase Order Generator - Serve Command
// =============================================================================
//
// This file defines the 'serve' command, which exposes the generation core
// over HTTP for interactive clients (upload, preview, manual mapping, manual
// line entry, download).
//
// COMMAND USAGE:
//   pogen serve [--addr :8080]
//
// ENVIRONMENT:
//   A .env file is loaded when present. PO_LISTEN_ADDR overrides the listen
//   address from the configuration; the --addr flag wins over both.
//
// =============================================================================

package cmd

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/ginjaninja78/po-generator/internal/generator"
	"github.com/ginjaninja78/po-generator/internal/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the generation API over HTTP",
	Long: `The serve command starts an HTTP server exposing the generation pipeline:

  POST /api/preview         resolve an uploaded input, return mapping and lines
  POST /api/generate        input (+optional template) -> PurchaseOrders.xlsx
  POST /api/lines           accumulate manually entered lines
  POST /api/lines/generate  generate from the accumulated lines`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides config and PO_LISTEN_ADDR)")
}

func runServe() error {
	// Optional .env; absence is not an error.
	_ = godotenv.Load()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if addr := os.Getenv("PO_LISTEN_ADDR"); addr != "" {
		cfg.Server.ListenAddr = addr
	}
	if serveAddr != "" {
		cfg.Server.ListenAddr = serveAddr
	}

	logger := generator.NewLogger(verbose)
	return server.New(cfg, logger).Run()
}
