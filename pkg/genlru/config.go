// Copyright 2022 Intel Corporation. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package genlru

import (
	"encoding/json"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
)

// Config selects the scheme and the per-class enablement of one
// container. Keeping enablement here instead of in a process-wide flag
// lets generational and classic containers coexist, which is what the
// tests do.
type Config struct {
	Name        string
	Scheme      string
	EnabledAnon bool
	EnabledFile bool
}

const lruvecDefaults string = `{"Name":"lruvec0","Scheme":"generational","EnabledAnon":true,"EnabledFile":true}`

func (c *Config) parse(configJson string) error {
	if err := json.Unmarshal([]byte(c.withDefaults(configJson)), c); err != nil {
		return errors.Wrap(err, "parsing lruvec configuration")
	}
	return nil
}

func (c *Config) withDefaults(configJson string) string {
	if configJson == "" {
		return lruvecDefaults
	}
	return configJson
}

// SetConfigJson replaces the configuration. The new configuration is
// validated before any field changes.
func (c *Config) SetConfigJson(configJson string) error {
	config := Config{}
	if err := config.parse(configJson); err != nil {
		return err
	}
	if err := config.Validate(); err != nil {
		return err
	}
	*c = config
	return nil
}

// GetConfigJson returns the current configuration.
func (c *Config) GetConfigJson() string {
	if configStr, err := json.Marshal(c); err == nil {
		return string(configStr)
	}
	return ""
}

// Validate reports every problem in the configuration, not just the
// first one.
func (c *Config) Validate() error {
	var result *multierror.Error
	if c.Name == "" {
		result = multierror.Append(result, errors.New("missing lruvec name"))
	}
	known := false
	for _, name := range Schemes() {
		if name == c.Scheme {
			known = true
			break
		}
	}
	if !known {
		result = multierror.Append(result,
			errors.Errorf("invalid scheme %q, expected one of %v", c.Scheme, Schemes()))
	}
	if c.Scheme == "classic" && (c.EnabledAnon || c.EnabledFile) {
		result = multierror.Append(result,
			errors.New("classic scheme cannot enable generational page classes"))
	}
	return result.ErrorOrNil()
}
