package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tokenbay/tokenbay/notify"
)

func chainCmd() *cobra.Command {
	var doSwitch bool

	cmd := &cobra.Command{
		Use:   "chain",
		Short: "Show or switch to the supported chain",
		RunE: func(cmd *cobra.Command, args []string) error {
			def := cfg.ChainDefinition()
			fmt.Printf("supported chain: %s (%s)\n", def.Name, def.HexID())

			if market.OnSupportedChain() {
				fmt.Println("session is on the supported chain")
				return nil
			}
			fmt.Println("session is NOT on the supported chain")

			if !doSwitch {
				return nil
			}
			if err := market.EnsureChain(cmd.Context()); err != nil {
				fmt.Println(notify.ForError(err).Message)
				return err
			}
			fmt.Println("switched")
			return nil
		},
	}

	cmd.Flags().BoolVar(&doSwitch, "switch", false, "ask the wallet to switch to the supported chain")
	return cmd
}
