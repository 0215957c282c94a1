package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tokenbay/tokenbay/notify"
	"github.com/tokenbay/tokenbay/types"
	"github.com/tokenbay/tokenbay/utils"
)

func connectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "connect",
		Short: "Connect the wallet and show the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := market.Connect(cmd.Context()); err != nil {
				fmt.Println(notify.ForError(err).Message)
				return err
			}
			printSession(market.CurrentSession())
			return nil
		},
	}
}

func disconnectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "disconnect",
		Short: "Disconnect and forget the session",
		Run: func(cmd *cobra.Command, args []string) {
			market.Disconnect()
			fmt.Println("disconnected")
		},
	}
}

func printSession(s types.Session) {
	fmt.Println("status: ", s.Status)
	if s.Account != nil {
		fmt.Println("account:", utils.ShortAddress(*s.Account))
	}
	if s.BalanceWei != nil {
		fmt.Printf("balance: %s %s\n",
			utils.FormatWei(s.BalanceWei, cfg.Chain.CurrencyDecimals),
			cfg.Chain.CurrencySymbol,
		)
	}
	if s.ChainID != nil {
		fmt.Println("chain:  ", s.ChainID)
	}
}
