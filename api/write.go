// Copyright © 2018 Circonus, Inc. <support@circonus.com>
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//

package api

import (
	"context"
	"encoding/json"
	"io/ioutil"
	"net/http"
	"strings"

	"github.com/circonus-labs/activemq-plugin/internal/release"
	cgm "github.com/circonus-labs/circonus-gometrics/v3"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/pkg/errors"
)

// Write submits metrics to the agent under groupID, the agent exposes them
// as if they came from a plugin of that name.
func (c *Client) Write(ctx context.Context, groupID string, metrics cgm.Metrics) error {
	if !c.groupVal.MatchString(groupID) {
		return errors.Wrapf(errInvalidGroupID, "'%s'", groupID)
	}
	if metrics == nil {
		return errInvalidMetrics
	}
	if len(metrics) == 0 {
		return errInvalidMetricList
	}

	au, err := c.agentURL.Parse("/write/" + groupID)
	if err != nil {
		return errors.Wrap(err, "creating request url")
	}

	m, err := json.Marshal(metrics)
	if err != nil {
		return errors.Wrap(err, "converting metrics to JSON")
	}

	req, err := retryablehttp.NewRequest("POST", au.String(), m)
	if err != nil {
		return errors.Wrap(err, "preparing request")
	}
	req = req.WithContext(ctx)
	req.Header.Set("User-Agent", release.UserAgent())
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.retryClient.Do(req)
	if resp != nil {
		defer resp.Body.Close()
	}
	if err != nil {
		return errors.Wrap(err, "request")
	}

	switch resp.StatusCode {
	case http.StatusOK, http.StatusNoContent:
		c.logger.Debug().Int("metrics", len(metrics)).Str("group", groupID).Msg("submitted")
		return nil
	default:
		// extract any error message and return
		data, err := ioutil.ReadAll(resp.Body)
		if err != nil {
			return errors.Wrap(err, "reading response")
		}

		return errors.Errorf("%s - %s - %s", resp.Status, au.String(), strings.TrimSpace(string(data)))
	}
}
