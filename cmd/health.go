package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check that the matching service is reachable",
	Run: func(_ *cobra.Command, _ []string) {
		config, logger := bootstrap()
		client := newClient(config, logger)

		if err := client.Health(context.Background()); err != nil {
			logger.Fatal("matching service is not healthy", zap.Error(err))
		}

		fmt.Printf("%s: ok\n", client.APIURL)
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)
}
