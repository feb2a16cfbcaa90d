package main

import (
	"fmt"

	"mutualexchange/src/infra/postgres"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the database schema",
	RunE:  runMigrate,
}

var printSchema bool

func init() {
	migrateCmd.Flags().BoolVar(&printSchema, "print", false, "Print the schema instead of applying it")
}

func runMigrate(cmd *cobra.Command, args []string) error {
	if printSchema {
		fmt.Fprintln(cmd.OutOrStdout(), postgres.Schema())
		return nil
	}

	client, err := newReadWriteClient()
	if err != nil {
		return err
	}
	defer client.Close()

	return postgres.Migrate(cmd.Context(), client.GetWritePool())
}
