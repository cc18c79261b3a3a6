// Copyright © 2019 Circonus, Inc. <support@circonus.com>
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//

package cmd

import (
	"context"
	"fmt"

	"github.com/circonus-labs/activemq-plugin/internal/config"
	"github.com/circonus-labs/activemq-plugin/internal/output"
	"github.com/circonus-labs/activemq-plugin/internal/query"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var fetchCmd = &cobra.Command{
	Use:     "fetch <size|subscribers|traffic> destination...",
	Aliases: []string{"values"},
	Short:   "Print the current values of the destinations",
	Args:    cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		mode, err := query.ParseMode(args[0])
		if err != nil {
			return err
		}
		opts, err := outputOptions()
		if err != nil {
			return err
		}

		s, client, err := newSession()
		if err != nil {
			return err
		}
		defer client.Close()

		samples, err := s.Fetch(context.Background(), mode, args[1:])
		if err != nil {
			return err
		}

		if err := output.Values(cmd.OutOrStdout(), viper.GetString(config.KeyOutputFormat), mode, samples, opts); err != nil {
			return err
		}

		if viper.GetString(config.KeyAgentURL) != "" {
			return submit(samples, opts)
		}
		return nil
	},
}

var configCmd = &cobra.Command{
	Use:   "config <size|subscribers|traffic> destination...",
	Short: "Print the munin graph configuration for the destinations",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		mode, err := query.ParseMode(args[0])
		if err != nil {
			return err
		}

		s, client, err := newSession()
		if err != nil {
			return err
		}
		defer client.Close()

		g, err := s.Config(context.Background(), mode, args[1:])
		if err != nil {
			return err
		}

		return output.MuninConfig(cmd.OutOrStdout(), g)
	},
}

var autoconfCmd = &cobra.Command{
	Use:   "autoconf [destination...]",
	Short: "Report whether the broker and destinations can be monitored",
	Long: `Report whether the broker and destinations can be monitored.
The answer is always printed on stdout and the exit status is always 0.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, client, err := newSession()
		if err != nil {
			log.Error().Err(err).Msg("autoconf")
			fmt.Fprintf(cmd.OutOrStdout(), "no (%s)\n", err)
			return nil
		}
		defer client.Close()

		if _, err := s.AutoConf(context.Background(), args).WriteTo(cmd.OutOrStdout()); err != nil {
			log.Error().Err(err).Msg("autoconf")
		}
		return nil
	},
}

var suggestCmd = &cobra.Command{
	Use:   "suggest",
	Short: "Print the available query modes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return output.Lines(cmd.OutOrStdout(), query.Suggest())
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print every destination known to the broker",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, client, err := newSession()
		if err != nil {
			return err
		}
		defer client.Close()

		list, err := s.List(context.Background())
		if err != nil {
			return err
		}

		return output.Lines(cmd.OutOrStdout(), list)
	},
}
