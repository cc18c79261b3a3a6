// Copyright © 2019 Circonus, Inc. <support@circonus.com>
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//

// Package tags encodes destination metadata as circonus stream tags.
package tags

import (
	"encoding/base64"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode"

	cgm "github.com/circonus-labs/circonus-gometrics/v3"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Tag aliases cgm's Tag to centralize definition
type Tag = cgm.Tag

// Tags aliases cgm's Tags to centralize definition
type Tags = cgm.Tags

const (
	// Delimiter defines character separating category from value in a tag e.g. broker:amq1
	Delimiter = ":"
	// Separator defines character separating tags in a list e.g. env:prod,broker:amq1
	Separator = ","

	// Tag categories attached to every destination metric
	CategoryBroker          = "broker"
	CategoryDestinationType = "destination_type"
	CategoryDestination     = "destination"

	MaxTags = 256

	encodedSig = `b"` // cat or val has already been base64 encoded and formatted
	encodeFmt  = `b"%s"`
)

var valid = regexp.MustCompile(`^[^:,]+:[^:,]+(,[^:,]+:[^:,]+)*$`)

// FromString parses a "cat:val,cat:val,..." list. An empty list is valid.
func FromString(spec string) (Tags, error) {
	if spec == "" {
		return Tags{}, nil
	}

	// systemd style --tags="c1:v1,c2:v1" keeps the quotes
	spec = strings.TrimSuffix(strings.TrimPrefix(spec, `"`), `"`)

	if !valid.MatchString(spec) {
		return nil, errors.Errorf("invalid tag format (%s)", spec)
	}

	return FromList(strings.Split(spec, Separator)), nil
}

// FromList converts a list of "cat:val" strings, ignoring malformed entries.
func FromList(tagList []string) Tags {
	tags := make(Tags, 0, len(tagList))
	for _, tag := range tagList {
		t := strings.SplitN(tag, Delimiter, 2)
		if len(t) != 2 {
			log.Warn().Str("pkg", "tags").Str("tag", tag).Msg("invalid tag format, ignoring")
			continue
		}
		tags = append(tags, Tag{Category: t[0], Value: t[1]})
	}
	return tags
}

// ForDestination returns the tags identifying a destination of broker.
// kind is the specifier form of the destination type (queue, topic).
func ForDestination(broker, kind, name string, base Tags) Tags {
	tags := make(Tags, 0, len(base)+3)
	tags = append(tags, base...)
	tags = append(tags,
		Tag{Category: CategoryBroker, Value: broker},
		Tag{Category: CategoryDestinationType, Value: kind},
		Tag{Category: CategoryDestination, Value: name},
	)
	return tags
}

// MetricNameWithStreamTags encodes tags as stream tags into the metric name.
// A name which already carries stream tags is returned unchanged.
func MetricNameWithStreamTags(metric string, tags Tags) string {
	if len(tags) == 0 || strings.Contains(metric, "|ST[") {
		return metric
	}

	if taglist := EncodeMetricStreamTags(tags); taglist != "" {
		return metric + "|ST[" + taglist + "]"
	}

	return metric
}

// EncodeMetricStreamTags encodes tags for use in a `metric_name|ST[<tags>]`
// stream tagged metric name. Categories and values are base64 encoded so
// destination names may contain any character.
func EncodeMetricStreamTags(tags Tags) string {
	tagList := make([]string, 0, len(tags))
	for _, tag := range normalize(tags) {
		tc := tag.Category
		tv := tag.Value
		if !strings.HasPrefix(tc, encodedSig) {
			tc = fmt.Sprintf(encodeFmt, base64.StdEncoding.EncodeToString([]byte(tc)))
		}
		if !strings.HasPrefix(tv, encodedSig) {
			tv = fmt.Sprintf(encodeFmt, base64.StdEncoding.EncodeToString([]byte(tv)))
		}
		tagList = append(tagList, tc+Delimiter+tv)
	}

	return strings.Join(tagList, Separator)
}

// normalize lower cases categories, strips their whitespace, drops empty and
// duplicate tags, and sorts the result so metric names are stable.
func normalize(tags Tags) Tags {
	if len(tags) > MaxTags {
		log.Warn().Str("pkg", "tags").Int("num", len(tags)).Int("max", MaxTags).Msg("too many tags, ignoring remainder")
		tags = tags[:MaxTags]
	}

	seen := make(map[string]bool, len(tags))
	list := make(Tags, 0, len(tags))
	for _, t := range tags {
		tc := t.Category
		if !strings.HasPrefix(tc, encodedSig) {
			tc = strings.Map(removeSpaces, strings.ToLower(tc))
		}
		if tc == "" || t.Value == "" {
			log.Warn().Str("pkg", "tags").Interface("tag", t).Msg("invalid tag format, ignoring")
			continue
		}
		k := tc + Delimiter + t.Value
		if seen[k] {
			continue
		}
		seen[k] = true
		list = append(list, Tag{Category: tc, Value: t.Value})
	}

	sort.Slice(list, func(i, j int) bool {
		if list[i].Category != list[j].Category {
			return list[i].Category < list[j].Category
		}
		return list[i].Value < list[j].Value
	})

	return list
}

func removeSpaces(r rune) rune {
	if unicode.IsSpace(r) {
		return -1
	}
	return r
}
