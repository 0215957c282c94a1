// Package commands implements the tokenbay CLI, a thin front end over
// the market client.
package commands

import (
	"github.com/spf13/cobra"

	tokenbay "github.com/tokenbay/tokenbay"
	"github.com/tokenbay/tokenbay/config"
)

var (
	configPath string
	market     *tokenbay.Market
	cfg        *config.Config
)

func Execute() error {
	root := &cobra.Command{
		Use:           "tokenbay",
		Short:         "Browse, buy and mint tokenized assets on the marketplace",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if configPath != "" {
				cfg, err = config.Load(configPath)
				if err != nil {
					return err
				}
			} else {
				cfg = config.Default()
			}

			market, err = tokenbay.New(cmd.Context(), cfg)
			return err
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if market != nil {
				market.Close()
			}
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "path to YAML config")

	root.AddCommand(
		connectCmd(),
		disconnectCmd(),
		browseCmd(),
		mineCmd(),
		buyCmd(),
		mintCmd(),
		chainCmd(),
	)
	return root.Execute()
}
