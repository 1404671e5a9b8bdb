package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/yanqian/familylog/internal/infra/dealsearch/googlecse"
)

var (
	shoppingDeals    bool
	shoppingLocation string
)

var shoppingCmd = &cobra.Command{
	Use:   "shopping <text>",
	Short: "Format a dictated shopping list and optionally look up deals",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text := joinArgs(args)
		if !shoppingDeals {
			e := newEngine(nil)
			fmt.Fprintln(cmd.OutOrStdout(), e.formatter.ProcessVoiceInput(text))
			return nil
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		client := googlecse.NewClient(googlecse.Config{
			APIKey:   cfg.DealSearch.APIKey,
			EngineID: cfg.DealSearch.EngineID,
			BaseURL:  cfg.DealSearch.BaseURL,
			Timeout:  cfg.DealSearch.Timeout,
		}, cliLogger)
		if !client.Configured() {
			return fmt.Errorf("deal search needs GOOGLE_CSE_API_KEY and GOOGLE_CSE_ENGINE_ID")
		}
		location := shoppingLocation
		if location == "" {
			location = cfg.DealSearch.DefaultLocation
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
		defer cancel()
		tpl, err := newEngine(client).advice.FindShoppingDealsAdvice(ctx, text, location)
		if err != nil {
			return err
		}
		if tpl == nil {
			fmt.Fprintln(cmd.ErrOrStderr(), "no deals found")
			return nil
		}
		return printJSON(cmd, tpl)
	},
}

func init() {
	shoppingCmd.Flags().BoolVar(&shoppingDeals, "deals", false, "Search store promotions for the listed items")
	shoppingCmd.Flags().StringVar(&shoppingLocation, "location", "", "Location hint for the deal search")
	rootCmd.AddCommand(shoppingCmd)
}
