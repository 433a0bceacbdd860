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

package main

import (
	"bufio"
	"flag"
	"fmt"
	stdlog "log"
	"net/http"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"sigs.k8s.io/yaml"

	"github.com/intel/gen-lru-manager/pkg/genlru"
)

type daemonConfig struct {
	MetricsAddress string
	Debug          bool
	Assertions     bool
	Lruvecs        []genlru.Config
}

func exit(format string, a ...interface{}) {
	fmt.Fprintf(os.Stderr, fmt.Sprintf("genlrud: "+format+"\n", a...))
	os.Exit(1)
}

func main() {
	optConfig := flag.String("config", "", "-config=FILE read daemon configuration from FILE")
	optMetrics := flag.String("metrics", "", "-metrics=ADDR serve prometheus metrics on ADDR")
	optDebug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	config := daemonConfig{}
	if *optConfig != "" {
		data, err := os.ReadFile(*optConfig)
		if err != nil {
			exit("reading configuration: %v", err)
		}
		if err := yaml.Unmarshal(data, &config); err != nil {
			exit("parsing configuration: %v", err)
		}
	}
	if *optMetrics != "" {
		config.MetricsAddress = *optMetrics
	}
	if *optDebug {
		config.Debug = true
	}
	if len(config.Lruvecs) == 0 {
		config.Lruvecs = []genlru.Config{{
			Name:        "node0",
			Scheme:      "generational",
			EnabledAnon: true,
			EnabledFile: true,
		}}
	}

	genlru.SetLogger(stdlog.New(os.Stderr, "", stdlog.LstdFlags))
	genlru.SetLogDebug(config.Debug)
	genlru.SetAssertions(config.Assertions)

	node := genlru.NewNodeStats()
	lruvecs := make([]*genlru.Lruvec, 0, len(config.Lruvecs))
	for i := range config.Lruvecs {
		lv, err := genlru.NewLruvec(&config.Lruvecs[i], node, nil)
		if err != nil {
			exit("creating lruvec: %v", err)
		}
		lruvecs = append(lruvecs, lv)
	}

	if config.MetricsAddress != "" {
		reg := prometheus.NewPedanticRegistry()
		if err := genlru.RegisterCollector(reg, genlru.NewCollector(lruvecs...)); err != nil {
			exit("%v", err)
		}
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
			if err := http.ListenAndServe(config.MetricsAddress, mux); err != nil {
				exit("metrics endpoint: %v", err)
			}
		}()
		fmt.Printf("serving metrics on %s\n", config.MetricsAddress)
	}

	prompt(lruvecs)
}

func prompt(lruvecs []*genlru.Lruvec) {
	r := bufio.NewReader(os.Stdin)
	for {
		fmt.Printf("genlrud> ")
		line, err := r.ReadString('\n')
		if err != nil {
			fmt.Println()
			return
		}
		switch cmd := strings.TrimSpace(line); cmd {
		case "q", "quit":
			return
		case "stats":
			fmt.Println(genlru.Stats().Dump())
		case "dump":
			for _, lv := range lruvecs {
				fmt.Print(lv.Dump())
			}
		case "help", "?":
			fmt.Println("commands: dump, stats, quit")
		case "":
		default:
			fmt.Printf("unknown command %q, try \"help\"\n", cmd)
		}
	}
}
