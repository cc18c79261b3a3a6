// Copyright © 2017 Circonus, Inc. <support@circonus.com>
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//

// Package cmd defines the CLI for the plugin
package cmd

import (
	"expvar"
	"fmt"
	stdlog "log"
	"os"
	"runtime"
	"time"

	"github.com/circonus-labs/activemq-plugin/internal/config"
	"github.com/circonus-labs/activemq-plugin/internal/config/defaults"
	"github.com/circonus-labs/activemq-plugin/internal/release"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string

	// bindErr is the first error raised while binding flags and env vars
	bindErr error

	// configErr is the error raised loading the config file, if any
	configErr error
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   release.NAME,
	Short: "ActiveMQ monitoring plugin",
	Long: `The ActiveMQ plugin queries a broker's management interface,
through the jolokia agent of the web console, for queue depth,
subscriber counts and message traffic of its destinations. Results
are printed in munin plugin, circonus plugin or prometheus format.

Destinations are given as [type:]name where type is queue (default)
or topic. A leading + makes name a regular expression matched against
every destination of that type e.g. +topic:bill\..*`,
	PersistentPreRunE: preRun,
	SilenceUsage:      true,
	SilenceErrors:     true,
	RunE: func(cmd *cobra.Command, args []string) error {
		//
		// show version and exit
		//
		if viper.GetBool(config.KeyShowVersion) {
			fmt.Fprintln(cmd.OutOrStdout(), release.Get())
			return nil
		}

		//
		// show configuration and exit
		//
		if viper.GetString(config.KeyShowConfig) != "" {
			return config.ShowConfig(cmd.OutOrStdout())
		}

		return cmd.Help()
	},
}

func bindFlagError(flag string, err error) {
	log.Error().Err(err).Str("flag", flag).Msg("binding flag")
	if bindErr == nil {
		bindErr = errors.Wrapf(err, "binding flag (%s)", flag)
	}
}
func bindEnvError(envVar string, err error) {
	log.Error().Err(err).Str("var", envVar).Msg("binding env var")
	if bindErr == nil {
		bindErr = errors.Wrapf(err, "binding env var (%s)", envVar)
	}
}

func init() {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	zerolog.SetGlobalLevel(zerolog.WarnLevel)
	// stdout carries the plugin protocol
	zlog := zerolog.New(zerolog.SyncWriter(os.Stderr)).With().Timestamp().Logger()
	log.Logger = zlog

	stdlog.SetFlags(0)
	stdlog.SetOutput(zlog)

	cobra.OnInitialize(initConfig)

	desc := func(desc, env string) string {
		return fmt.Sprintf("[ENV: %s] %s", env, desc)
	}

	flags := RootCmd.PersistentFlags()

	//
	// Basic
	//
	{
		var (
			longOpt     = "config"
			shortOpt    = "c"
			description = "config file (default is " + defaults.EtcPath + "/" + release.NAME + ".(json|toml|yaml), then " + defaults.MuninConfPath + ", then .)"
		)
		flags.StringVarP(&cfgFile, longOpt, shortOpt, "", description)
	}

	{
		const (
			key          = config.KeyBrokerName
			longOpt      = "broker"
			shortOpt     = "b"
			envVar       = "BROKER_NAME"
			description  = "ActiveMQ broker name"
			defaultValue = defaults.BrokerName
		)

		flags.StringP(longOpt, shortOpt, defaultValue, desc(description, envVar))
		if err := viper.BindPFlag(key, flags.Lookup(longOpt)); err != nil {
			bindFlagError(longOpt, err)
		}
		if err := viper.BindEnv(key, envVar); err != nil {
			bindEnvError(envVar, err)
		}
		viper.SetDefault(key, defaultValue)
	}

	//
	// Jolokia
	//
	{
		const (
			key          = config.KeyJolokiaHost
			longOpt      = "host"
			envVar       = "JMX_HOST"
			description  = "Host running the broker web console"
			defaultValue = defaults.JolokiaHost
		)

		flags.String(longOpt, defaultValue, desc(description, envVar))
		if err := viper.BindPFlag(key, flags.Lookup(longOpt)); err != nil {
			bindFlagError(longOpt, err)
		}
		if err := viper.BindEnv(key, envVar); err != nil {
			bindEnvError(envVar, err)
		}
		viper.SetDefault(key, defaultValue)
	}

	{
		const (
			key          = config.KeyJolokiaPort
			longOpt      = "port"
			envVar       = "JOLOKIA_PORT"
			description  = "Port of the broker web console (jolokia over http, not the JMX RMI port)"
			defaultValue = defaults.JolokiaPort
		)

		flags.Int(longOpt, defaultValue, desc(description, envVar))
		if err := viper.BindPFlag(key, flags.Lookup(longOpt)); err != nil {
			bindFlagError(longOpt, err)
		}
		if err := viper.BindEnv(key, envVar); err != nil {
			bindEnvError(envVar, err)
		}
		viper.SetDefault(key, defaultValue)
	}

	{
		const (
			key          = config.KeyJolokiaPath
			longOpt      = "path"
			envVar       = "JOLOKIA_PATH"
			description  = "Path of the jolokia agent"
			defaultValue = defaults.JolokiaPath
		)

		flags.String(longOpt, defaultValue, desc(description, envVar))
		if err := viper.BindPFlag(key, flags.Lookup(longOpt)); err != nil {
			bindFlagError(longOpt, err)
		}
		if err := viper.BindEnv(key, envVar); err != nil {
			bindEnvError(envVar, err)
		}
		viper.SetDefault(key, defaultValue)
	}

	{
		const (
			key         = config.KeyJolokiaURL
			longOpt     = "url"
			envVar      = "JOLOKIA_URL"
			description = "Jolokia agent URL, overrides host, port and path"
		)

		flags.String(longOpt, "", desc(description, envVar))
		if err := viper.BindPFlag(key, flags.Lookup(longOpt)); err != nil {
			bindFlagError(longOpt, err)
		}
		if err := viper.BindEnv(key, envVar); err != nil {
			bindEnvError(envVar, err)
		}
	}

	{
		const (
			key         = config.KeyJolokiaUser
			longOpt     = "user"
			envVar      = "JMX_USER"
			description = "User for the web console"
		)

		flags.String(longOpt, "", desc(description, envVar))
		if err := viper.BindPFlag(key, flags.Lookup(longOpt)); err != nil {
			bindFlagError(longOpt, err)
		}
		if err := viper.BindEnv(key, envVar); err != nil {
			bindEnvError(envVar, err)
		}
	}

	{
		const (
			key         = config.KeyJolokiaPass
			longOpt     = "pass"
			envVar      = "JMX_PASS"
			description = "Password for the web console"
		)

		flags.String(longOpt, "", desc(description, envVar))
		if err := viper.BindPFlag(key, flags.Lookup(longOpt)); err != nil {
			bindFlagError(longOpt, err)
		}
		if err := viper.BindEnv(key, envVar); err != nil {
			bindEnvError(envVar, err)
		}
	}

	{
		const (
			key          = config.KeyJolokiaTimeout
			longOpt      = "timeout"
			envVar       = "JOLOKIA_TIMEOUT"
			description  = "Timeout for each request to the jolokia agent"
			defaultValue = defaults.JolokiaTimeout
		)

		flags.String(longOpt, defaultValue, desc(description, envVar))
		if err := viper.BindPFlag(key, flags.Lookup(longOpt)); err != nil {
			bindFlagError(longOpt, err)
		}
		if err := viper.BindEnv(key, envVar); err != nil {
			bindEnvError(envVar, err)
		}
		viper.SetDefault(key, defaultValue)
	}

	{
		const (
			key          = config.KeyJolokiaRetries
			longOpt      = "retries"
			envVar       = "JOLOKIA_RETRIES"
			description  = "Number of retries for a failed request"
			defaultValue = defaults.JolokiaRetries
		)

		flags.Int(longOpt, defaultValue, desc(description, envVar))
		if err := viper.BindPFlag(key, flags.Lookup(longOpt)); err != nil {
			bindFlagError(longOpt, err)
		}
		if err := viper.BindEnv(key, envVar); err != nil {
			bindEnvError(envVar, err)
		}
		viper.SetDefault(key, defaultValue)
	}

	{
		const (
			key          = config.KeyJolokiaMaxResponseSize
			longOpt      = "max-response-size"
			envVar       = "JOLOKIA_MAX_RESPONSE_SIZE"
			description  = "Maximum size of a jolokia response (e.g. 512KiB, 10MiB)"
			defaultValue = defaults.JolokiaMaxResponseSize
		)

		flags.String(longOpt, defaultValue, desc(description, envVar))
		if err := viper.BindPFlag(key, flags.Lookup(longOpt)); err != nil {
			bindFlagError(longOpt, err)
		}
		if err := viper.BindEnv(key, envVar); err != nil {
			bindEnvError(envVar, err)
		}
		viper.SetDefault(key, defaultValue)
	}

	{
		const (
			key          = config.KeyJolokiaInsecure
			longOpt      = "insecure"
			envVar       = "JOLOKIA_INSECURE"
			description  = "Skip TLS certificate verification"
			defaultValue = defaults.JolokiaInsecure
		)

		flags.Bool(longOpt, defaultValue, desc(description, envVar))
		if err := viper.BindPFlag(key, flags.Lookup(longOpt)); err != nil {
			bindFlagError(longOpt, err)
		}
		if err := viper.BindEnv(key, envVar); err != nil {
			bindEnvError(envVar, err)
		}
		viper.SetDefault(key, defaultValue)
	}

	//
	// Output
	//
	{
		const (
			key          = config.KeyOutputFormat
			longOpt      = "format"
			shortOpt     = "f"
			envVar       = release.ENVPREFIX + "_FORMAT"
			description  = "Format of fetched values (munin|circonus|prometheus)"
			defaultValue = defaults.OutputFormat
		)

		flags.StringP(longOpt, shortOpt, defaultValue, desc(description, envVar))
		if err := viper.BindPFlag(key, flags.Lookup(longOpt)); err != nil {
			bindFlagError(longOpt, err)
		}
		if err := viper.BindEnv(key, envVar); err != nil {
			bindEnvError(envVar, err)
		}
		viper.SetDefault(key, defaultValue)
	}

	{
		const (
			key         = config.KeyOutputTags
			longOpt     = "tags"
			envVar      = release.ENVPREFIX + "_TAGS"
			description = "Stream tags added to circonus metrics (e.g. env:prod,dc:east)"
		)

		flags.String(longOpt, "", desc(description, envVar))
		if err := viper.BindPFlag(key, flags.Lookup(longOpt)); err != nil {
			bindFlagError(longOpt, err)
		}
		if err := viper.BindEnv(key, envVar); err != nil {
			bindEnvError(envVar, err)
		}
	}

	{
		const (
			key         = config.KeyAgentURL
			longOpt     = "agent-url"
			envVar      = release.ENVPREFIX + "_AGENT_URL"
			description = "Also submit fetched values to the circonus-agent at this URL (e.g. http://127.0.0.1:2609)"
		)

		flags.String(longOpt, "", desc(description, envVar))
		if err := viper.BindPFlag(key, flags.Lookup(longOpt)); err != nil {
			bindFlagError(longOpt, err)
		}
		if err := viper.BindEnv(key, envVar); err != nil {
			bindEnvError(envVar, err)
		}
	}

	{
		const (
			key          = config.KeyAgentGroup
			longOpt      = "agent-group"
			envVar       = release.ENVPREFIX + "_AGENT_GROUP"
			description  = "Plugin name the submitted values appear under in the circonus-agent"
			defaultValue = defaults.AgentGroup
		)

		flags.String(longOpt, defaultValue, desc(description, envVar))
		if err := viper.BindPFlag(key, flags.Lookup(longOpt)); err != nil {
			bindFlagError(longOpt, err)
		}
		if err := viper.BindEnv(key, envVar); err != nil {
			bindEnvError(envVar, err)
		}
		viper.SetDefault(key, defaultValue)
	}

	{
		const (
			key         = config.KeyThresholdWarning
			longOpt     = "warning"
			envVar      = release.ENVPREFIX + "_WARNING"
			description = "Munin warning range for every field (e.g. 100, :100, 10:100)"
		)

		flags.String(longOpt, "", desc(description, envVar))
		if err := viper.BindPFlag(key, flags.Lookup(longOpt)); err != nil {
			bindFlagError(longOpt, err)
		}
		if err := viper.BindEnv(key, envVar); err != nil {
			bindEnvError(envVar, err)
		}
	}

	{
		const (
			key         = config.KeyThresholdCritical
			longOpt     = "critical"
			envVar      = release.ENVPREFIX + "_CRITICAL"
			description = "Munin critical range for every field"
		)

		flags.String(longOpt, "", desc(description, envVar))
		if err := viper.BindPFlag(key, flags.Lookup(longOpt)); err != nil {
			bindFlagError(longOpt, err)
		}
		if err := viper.BindEnv(key, envVar); err != nil {
			bindEnvError(envVar, err)
		}
	}

	//
	// Miscellenous
	//
	{
		const (
			key          = config.KeyDebug
			longOpt      = "debug"
			shortOpt     = "d"
			envVar       = release.ENVPREFIX + "_DEBUG"
			description  = "Enable debug messages"
			defaultValue = defaults.Debug
		)

		flags.BoolP(longOpt, shortOpt, defaultValue, desc(description, envVar))
		if err := viper.BindPFlag(key, flags.Lookup(longOpt)); err != nil {
			bindFlagError(longOpt, err)
		}
		if err := viper.BindEnv(key, envVar); err != nil {
			bindEnvError(envVar, err)
		}
		viper.SetDefault(key, defaultValue)
	}

	{
		const (
			key         = config.KeyLogLevel
			longOpt     = "log-level"
			envVar      = release.ENVPREFIX + "_LOG_LEVEL"
			description = "Log level [(panic|fatal|error|warn|info|debug|disabled)]"
		)

		flags.String(longOpt, defaults.LogLevel, desc(description, envVar))
		if err := viper.BindPFlag(key, flags.Lookup(longOpt)); err != nil {
			bindFlagError(longOpt, err)
		}
		if err := viper.BindEnv(key, envVar); err != nil {
			bindEnvError(envVar, err)
		}
		viper.SetDefault(key, defaults.LogLevel)
	}

	{
		const (
			key         = config.KeyLogPretty
			longOpt     = "log-pretty"
			envVar      = release.ENVPREFIX + "_LOG_PRETTY"
			description = "Output formatted/colored log lines [ignored on windows]"
		)

		flags.Bool(longOpt, defaults.LogPretty, desc(description, envVar))
		if err := viper.BindPFlag(key, flags.Lookup(longOpt)); err != nil {
			bindFlagError(longOpt, err)
		}
		if err := viper.BindEnv(key, envVar); err != nil {
			bindEnvError(envVar, err)
		}
		viper.SetDefault(key, defaults.LogPretty)
	}

	{
		const (
			key          = config.KeyShowVersion
			longOpt      = "version"
			shortOpt     = "V"
			defaultValue = false
			description  = "Show version and exit"
		)
		RootCmd.Flags().BoolP(longOpt, shortOpt, defaultValue, description)
		if err := viper.BindPFlag(key, RootCmd.Flags().Lookup(longOpt)); err != nil {
			bindFlagError(longOpt, err)
		}
	}

	{
		const (
			key         = config.KeyShowConfig
			longOpt     = "show-config"
			description = "Show config (json|toml|yaml) and exit"
		)

		RootCmd.Flags().String(longOpt, "", description)
		if err := viper.BindPFlag(key, RootCmd.Flags().Lookup(longOpt)); err != nil {
			bindFlagError(longOpt, err)
		}
	}

	RootCmd.AddCommand(fetchCmd, configCmd, autoconfCmd, suggestCmd, listCmd)
}

// initLogging initializes zerolog
// preRun configures logging and reports any error raised while setting up
// flags or reading the config file.
func preRun(cmd *cobra.Command, args []string) error {
	if err := initLogging(cmd, args); err != nil {
		return err
	}
	if bindErr != nil {
		return bindErr
	}
	if configErr != nil {
		return configErr
	}
	return defaults.PathError
}

func initLogging(cmd *cobra.Command, args []string) error {
	//
	// Enable formatted output
	//
	if viper.GetBool(config.KeyLogPretty) {
		if runtime.GOOS != "windows" {
			log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
		} else {
			log.Warn().Msg("log-pretty not applicable on this platform")
		}
	}

	//
	// Enable debug logging, if requested
	// otherwise, default to warn level and set custom level, if specified
	//
	if viper.GetBool(config.KeyDebug) {
		viper.Set(config.KeyLogLevel, "debug")
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		log.Debug().Msg("--debug flag, forcing debug log level")
	} else if viper.IsSet(config.KeyLogLevel) {
		level := viper.GetString(config.KeyLogLevel)

		switch level {
		case "panic":
			zerolog.SetGlobalLevel(zerolog.PanicLevel)
		case "fatal":
			zerolog.SetGlobalLevel(zerolog.FatalLevel)
		case "error":
			zerolog.SetGlobalLevel(zerolog.ErrorLevel)
		case "warn":
			zerolog.SetGlobalLevel(zerolog.WarnLevel)
		case "info":
			zerolog.SetGlobalLevel(zerolog.InfoLevel)
		case "debug":
			zerolog.SetGlobalLevel(zerolog.DebugLevel)
		case "disabled":
			zerolog.SetGlobalLevel(zerolog.Disabled)
		default:
			return errors.Errorf("Unknown log level (%s)", level)
		}

		log.Debug().Str("log-level", level).Msg("Logging level")
	}

	return nil
}

// initConfig reads in config file and/or ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(defaults.EtcPath)
		viper.AddConfigPath(defaults.MuninConfPath)
		viper.AddConfigPath(".")
		viper.SetConfigName(release.NAME)
	}

	viper.AutomaticEnv()

	configErr = nil
	if err := viper.ReadInConfig(); err != nil {
		f := viper.ConfigFileUsed()
		if f != "" {
			log.Error().Err(err).Str("config_file", f).Msg("Unable to load config file")
			configErr = errors.Wrapf(err, "loading config file (%s)", f)
		}
	}
}

// dumpStats logs the internal request counters when debugging.
func dumpStats() {
	if zerolog.GlobalLevel() > zerolog.DebugLevel {
		return
	}
	stats := zerolog.Dict()
	expvar.Do(func(kv expvar.KeyValue) {
		if kv.Key == "cmdline" || kv.Key == "memstats" {
			return
		}
		stats.RawJSON(kv.Key, []byte(kv.Value.String()))
	})
	log.Debug().Dict("stats", stats).Msg("exiting")
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := execute(); err != nil {
		log.Fatal().Err(err).Msg("failed")
	}
}

// execute runs the command line. Any failure of autoconf, including bad
// flags or configuration, is answered with "no (...)" on stdout.
func execute() error {
	cmd, err := RootCmd.ExecuteC()
	dumpStats()
	if err != nil && cmd == autoconfCmd {
		log.Error().Err(err).Msg("autoconf")
		fmt.Fprintf(cmd.OutOrStdout(), "no (%s)\n", err)
		return nil
	}
	return err
}
