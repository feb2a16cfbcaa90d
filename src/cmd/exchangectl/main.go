package main

import (
	"fmt"
	"log/slog"
	"os"

	"mutualexchange/src/helper/env"
	"mutualexchange/src/infra/postgres"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "exchangectl",
	Short: "Operational tooling for the mutual exchange engine",
	Long:  `exchangectl applies the database schema, seeds local data, runs the matchmaker by hand and tails live notifications.`,
	// Sem RunE: sem subcomando mostra o help
}

var verbose bool

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logs")

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(matchCmd)
	rootCmd.AddCommand(listenCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})).With("service", "exchangectl")
}

// newReadWriteClient usa só o primário: as ferramentas escrevem e leem logo em seguida.
func newReadWriteClient() (*postgres.ReadWriteClient, error) {
	return postgres.NewReadWriteClient(postgres.Config{
		WriteHost:      env.MustGetString("DB_WRITE_HOST"),
		WritePort:      env.GetString("DB_WRITE_PORT", "5432"),
		DBName:         env.MustGetString("DB_NAME"),
		Username:       env.MustGetString("DB_USER"),
		Password:       env.MustGetString("DB_PASSWORD"),
		MaxConnections: env.GetInt("DB_MAX_POOL_CONNECTIONS", 10),
	})
}
