package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tokenbay/tokenbay/notify"
	"github.com/tokenbay/tokenbay/types"
	"github.com/tokenbay/tokenbay/utils"
)

func browseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "List every asset for sale on the marketplace",
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := market.Browse(cmd.Context())
			if err != nil {
				fmt.Println(notify.ForError(err).Message)
				return err
			}
			printItems(items)
			return nil
		},
	}
}

func mineCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mine",
		Short: "List assets owned by the connected account",
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := market.Owned(cmd.Context())
			if err != nil {
				fmt.Println(notify.ForError(err).Message)
				return err
			}
			printItems(items)
			return nil
		},
	}
}

func printItems(items []types.CatalogItem) {
	if len(items) == 0 {
		fmt.Println("no assets found")
		return
	}
	for _, item := range items {
		fmt.Printf("#%s  %s  %s %s  (seller %s)\n",
			item.TokenID,
			item.Name,
			utils.FormatWei(item.PriceWei, cfg.Chain.CurrencyDecimals),
			cfg.Chain.CurrencySymbol,
			utils.ShortAddress(item.Seller),
		)
		fmt.Printf("    %s\n    image: %s\n", item.Description, item.ImageURI)
	}
}
