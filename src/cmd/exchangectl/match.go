package main

import (
	"encoding/json"

	"mutualexchange/src/infra/metrics"
	"mutualexchange/src/repositories"
	"mutualexchange/src/services/matchmaker"

	"github.com/spf13/cobra"
)

var matchCmd = &cobra.Command{
	Use:   "match <exchange-id>",
	Short: "Print the open counterparts of an exchange",
	Args:  cobra.ExactArgs(1),
	RunE:  runMatch,
}

func runMatch(cmd *cobra.Command, args []string) error {
	client, err := newReadWriteClient()
	if err != nil {
		return err
	}
	defer client.Close()

	mm := matchmaker.NewMatchmaker(newLogger(), repositories.NewExchangeRepository(client), metrics.NewMetrics())

	enc := json.NewEncoder(cmd.OutOrStdout())
	for summary, err := range mm.Match(cmd.Context(), args[0]) {
		if err != nil {
			return err
		}
		if err := enc.Encode(summary); err != nil {
			return err
		}
	}
	return nil
}
