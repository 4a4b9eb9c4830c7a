package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"PapersDigest/internal/app"
	"PapersDigest/internal/config"
	"PapersDigest/internal/logging"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("env: cannot load .env: %v", err)
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var application *app.Application

var rootCmd = &cobra.Command{
	Use:           "papersdigest",
	Short:         "Daily Hugging Face papers digest for Google Chat",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		configFile, _ := cmd.Flags().GetString("config")
		cfg := config.Load(configFile)

		var err error
		application, err = app.New(cfg, logging.New(cfg.Logging.Level))
		if err != nil {
			return fmt.Errorf("failed to build application: %w", err)
		}
		return nil
	},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Process one day and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		date, _ := cmd.Flags().GetString("date")
		return application.Run(cmd.Context(), date)
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP trigger routes and the daily timer",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return application.Serve(ctx)
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: $"+config.PathEnv+")")
	runCmd.Flags().String("date", "", "date to process, YYYY-MM-DD (default: yesterday in UTC+9)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(serveCmd)
}
