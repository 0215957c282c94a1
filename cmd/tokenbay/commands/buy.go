package commands

import (
	"fmt"
	"math/big"

	"github.com/spf13/cobra"

	"github.com/tokenbay/tokenbay/notify"
	"github.com/tokenbay/tokenbay/txexec"
	"github.com/tokenbay/tokenbay/types"
)

func buyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "buy <tokenId>",
		Short: "Purchase a listed asset at its asking price",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tokenID, ok := new(big.Int).SetString(args[0], 10)
			if !ok {
				return fmt.Errorf("invalid token id %q", args[0])
			}

			items, err := market.Browse(cmd.Context())
			if err != nil {
				fmt.Println(notify.ForError(err).Message)
				return err
			}

			var target *types.CatalogItem
			for i := range items {
				if items[i].TokenID.Cmp(tokenID) == 0 {
					target = &items[i]
					break
				}
			}
			if target == nil {
				return fmt.Errorf("token %s is not listed for sale", tokenID)
			}

			_, err = market.Buy(cmd.Context(), target.TokenID, target.PriceWei, progressCallbacks())
			if err != nil {
				fmt.Println(notify.ForError(err).Message)
				return err
			}
			fmt.Println("purchase complete")
			return nil
		},
	}
}

func progressCallbacks() txexec.Callbacks {
	return txexec.Callbacks{
		OnSubmitted: func(rec types.TransactionRecord) {
			fmt.Printf("transaction submitted: %s\nwaiting for confirmation...\n", rec.Hash.Hex())
		},
		OnConfirmed: func(rec types.TransactionRecord) {
			fmt.Printf("confirmed in block %s\n", rec.Receipt.BlockNumber)
		},
	}
}
