// Copyright © 2019 Circonus, Inc. <support@circonus.com>
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//

package cmd

import (
	"context"
	"time"

	"github.com/alecthomas/units"
	"github.com/circonus-labs/activemq-plugin/api"
	"github.com/circonus-labs/activemq-plugin/internal/config"
	"github.com/circonus-labs/activemq-plugin/internal/jolokia"
	"github.com/circonus-labs/activemq-plugin/internal/output"
	"github.com/circonus-labs/activemq-plugin/internal/query"
	"github.com/circonus-labs/activemq-plugin/internal/tags"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// newSession validates the configuration and returns a query session on a
// jolokia client. The caller closes the client.
func newSession() (*query.Session, *jolokia.Client, error) {
	if err := config.Validate(); err != nil {
		return nil, nil, errors.Wrap(err, "invalid configuration")
	}

	timeout, err := time.ParseDuration(viper.GetString(config.KeyJolokiaTimeout))
	if err != nil {
		return nil, nil, errors.Wrap(err, "parsing timeout")
	}
	maxSize, err := units.ParseStrictBytes(viper.GetString(config.KeyJolokiaMaxResponseSize))
	if err != nil {
		return nil, nil, errors.Wrap(err, "parsing max response size")
	}

	client, err := jolokia.New(log.Logger, jolokia.Options{
		URL:             config.JolokiaURL(),
		User:            viper.GetString(config.KeyJolokiaUser),
		Pass:            viper.GetString(config.KeyJolokiaPass),
		Timeout:         timeout,
		Retries:         viper.GetInt(config.KeyJolokiaRetries),
		MaxResponseSize: maxSize,
		Insecure:        viper.GetBool(config.KeyJolokiaInsecure),
	})
	if err != nil {
		return nil, nil, errors.Wrap(err, "creating jolokia client")
	}

	s, err := query.NewSession(client, query.Options{
		Broker:   viper.GetString(config.KeyBrokerName),
		Warning:  viper.GetString(config.KeyThresholdWarning),
		Critical: viper.GetString(config.KeyThresholdCritical),
	})
	if err != nil {
		client.Close()
		return nil, nil, err
	}

	return s, client, nil
}

// submit sends samples to the configured circonus-agent.
func submit(samples []query.Sample, opts output.Options) error {
	timeout, err := time.ParseDuration(viper.GetString(config.KeyJolokiaTimeout))
	if err != nil {
		return errors.Wrap(err, "parsing timeout")
	}
	client, err := api.New(log.Logger, viper.GetString(config.KeyAgentURL), timeout)
	if err != nil {
		return errors.Wrap(err, "creating agent client")
	}
	metrics := output.CirconusMetrics(samples, opts)
	if len(metrics) == 0 {
		log.Debug().Msg("no metrics to submit")
		return nil
	}
	return errors.Wrap(client.Write(context.Background(), viper.GetString(config.KeyAgentGroup), metrics), "submitting to agent")
}

// outputOptions returns the rendering settings from the configuration.
func outputOptions() (output.Options, error) {
	baseTags, err := tags.FromString(viper.GetString(config.KeyOutputTags))
	if err != nil {
		return output.Options{}, err
	}
	return output.Options{
		Broker:   viper.GetString(config.KeyBrokerName),
		BaseTags: baseTags,
	}, nil
}
