package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tokenbay/tokenbay/notify"
	"github.com/tokenbay/tokenbay/utils"
)

func mintCmd() *cobra.Command {
	var (
		name        string
		description string
		price       string
		imagePath   string
	)

	cmd := &cobra.Command{
		Use:   "mint",
		Short: "Create and list a new asset",
		RunE: func(cmd *cobra.Command, args []string) error {
			priceWei, err := utils.ParseAmount(price, cfg.Chain.CurrencyDecimals)
			if err != nil {
				return err
			}

			image, err := os.Open(imagePath)
			if err != nil {
				return fmt.Errorf("open image: %w", err)
			}
			defer image.Close()

			_, err = market.Mint(
				cmd.Context(),
				name, description, priceWei,
				filepath.Base(imagePath), image,
				progressCallbacks(),
			)
			if err != nil {
				fmt.Println(notify.ForError(err).Message)
				return err
			}
			fmt.Println("asset created and listed")
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "asset name")
	cmd.Flags().StringVar(&description, "desc", "", "asset description")
	cmd.Flags().StringVar(&price, "price", "", "asking price in the native unit")
	cmd.Flags().StringVar(&imagePath, "image", "", "path to the asset image")
	for _, flag := range []string{"name", "desc", "price", "image"} {
		_ = cmd.MarkFlagRequired(flag)
	}
	return cmd
}
