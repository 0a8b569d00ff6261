package main

import (
	"encoding/json"
	"fmt"

	"github.com/blnkfinance/tracsync/config"
	"github.com/spf13/cobra"
)

func configCommands() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "config outputs your instance's computed configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Fetch()
			if err != nil {
				return fmt.Errorf("error getting config: %w", err)
			}
			data, err := json.MarshalIndent(cfg, "", "    ")
			if err != nil {
				return fmt.Errorf("error printing config: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}

	return cmd
}
