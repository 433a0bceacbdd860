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
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConfigDefaults(t *testing.T) {
	c := &Config{}
	require.NoError(t, c.SetConfigJson(""))
	require.Equal(t, "generational", c.Scheme)
	require.True(t, c.EnabledAnon)
	require.True(t, c.EnabledFile)
	require.NotEmpty(t, c.Name)
}

func TestConfigRoundTrip(t *testing.T) {
	c := &Config{}
	configJson := `{"Name":"node1","Scheme":"classic","EnabledAnon":false,"EnabledFile":false}`
	require.NoError(t, c.SetConfigJson(configJson))
	c2 := &Config{}
	require.NoError(t, c2.SetConfigJson(c.GetConfigJson()))
	require.Equal(t, c, c2)
}

func TestConfigValidation(t *testing.T) {
	tcases := []struct {
		name           string
		configJson     string
		expectedErrors []string
	}{
		{
			name:           "unknown scheme",
			configJson:     `{"Name":"n","Scheme":"twolist"}`,
			expectedErrors: []string{"invalid scheme"},
		}, {
			name:           "classic with enabled classes",
			configJson:     `{"Name":"n","Scheme":"classic","EnabledAnon":true}`,
			expectedErrors: []string{"classic scheme cannot enable"},
		}, {
			name:       "all problems reported at once",
			configJson: `{"Scheme":"twolist","EnabledFile":true}`,
			expectedErrors: []string{
				"missing lruvec name",
				"invalid scheme",
			},
		},
	}
	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			c := &Config{}
			err := c.SetConfigJson(tc.configJson)
			require.Error(t, err)
			for _, expected := range tc.expectedErrors {
				require.Contains(t, err.Error(), expected)
			}
		})
	}
}

func TestConfigRejectedKeepsOld(t *testing.T) {
	c := &Config{}
	require.NoError(t, c.SetConfigJson(""))
	old := *c
	require.Error(t, c.SetConfigJson(`{"Name":"n","Scheme":"bogus"}`))
	require.Equal(t, old, *c)
}

func TestNewLruvecRejectsBadConfig(t *testing.T) {
	_, err := NewLruvec(&Config{Name: "n", Scheme: "bogus"}, NewNodeStats(), nil)
	require.Error(t, err)

	_, err = NewLruvec(nil, nil, nil)
	require.Error(t, err)
}

func TestSchemeRegistry(t *testing.T) {
	names := Schemes()
	require.Contains(t, names, "generational")
	require.Contains(t, names, "classic")

	_, err := NewScheme("bogus")
	require.Error(t, err)
}
