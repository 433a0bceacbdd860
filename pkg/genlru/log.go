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
	stdlog "log"
	"time"

	goxrate "golang.org/x/time/rate"
)

type Logger interface {
	Debugf(format string, v ...interface{})
	Infof(format string, v ...interface{})
	Warnf(format string, v ...interface{})
	Errorf(format string, v ...interface{})
	Panicf(format string, v ...interface{})
	Fatalf(format string, v ...interface{})
}

type logger struct {
	*stdlog.Logger
}

const logPrefix = "genlru "

var log Logger = &logger{Logger: nil}
var logDebugMessages bool = false

func SetLogger(l *stdlog.Logger) {
	log = NewLoggerWrapper(l)
}

func SetLogDebug(debug bool) {
	logDebugMessages = debug
}

func NewLoggerWrapper(l *stdlog.Logger) Logger {
	return &logger{Logger: l}
}

func (l *logger) Debugf(format string, v ...interface{}) {
	if l.Logger != nil && logDebugMessages {
		l.Logger.Printf("DEBUG: "+logPrefix+format, v...)
	}
}

func (l *logger) Infof(format string, v ...interface{}) {
	if l.Logger != nil {
		l.Logger.Printf("INFO: "+logPrefix+format, v...)
	}
}

func (l *logger) Warnf(format string, v ...interface{}) {
	if l.Logger != nil {
		l.Logger.Printf("WARN: "+logPrefix+format, v...)
	}
}

func (l *logger) Errorf(format string, v ...interface{}) {
	if l.Logger != nil {
		l.Logger.Printf("ERROR: "+logPrefix+format, v...)
	}
}

func (l *logger) Panicf(format string, v ...interface{}) {
	if l.Logger != nil {
		l.Logger.Panicf(format, v...)
	}
}

func (l *logger) Fatalf(format string, v ...interface{}) {
	if l.Logger != nil {
		l.Logger.Fatalf(format, v...)
	}
}

// forwarder routes to the current package logger so that a rate-limited
// wrapper keeps working across SetLogger calls.
type forwarder struct{}

func (forwarder) Debugf(format string, v ...interface{}) { log.Debugf(format, v...) }
func (forwarder) Infof(format string, v ...interface{})  { log.Infof(format, v...) }
func (forwarder) Warnf(format string, v ...interface{})  { log.Warnf(format, v...) }
func (forwarder) Errorf(format string, v ...interface{}) { log.Errorf(format, v...) }
func (forwarder) Panicf(format string, v ...interface{}) { log.Panicf(format, v...) }
func (forwarder) Fatalf(format string, v ...interface{}) { log.Fatalf(format, v...) }

// rateLimited drops Debugf/Infof/Warnf/Errorf messages exceeding the
// limit. Panicf and Fatalf always pass through.
type rateLimited struct {
	Logger
	limiter *goxrate.Limiter
}

// RateLimit returns a logger that forwards at most burst messages per
// interval. Page-level operations log through a rate-limited logger
// because they run on fault and reclaim hot paths.
func RateLimit(l Logger, interval time.Duration, burst int) Logger {
	if burst < 1 {
		burst = 1
	}
	return &rateLimited{
		Logger:  l,
		limiter: goxrate.NewLimiter(goxrate.Every(interval), burst),
	}
}

func (rl *rateLimited) Debugf(format string, v ...interface{}) {
	if rl.limiter.Allow() {
		rl.Logger.Debugf(format, v...)
	}
}

func (rl *rateLimited) Infof(format string, v ...interface{}) {
	if rl.limiter.Allow() {
		rl.Logger.Infof(format, v...)
	}
}

func (rl *rateLimited) Warnf(format string, v ...interface{}) {
	if rl.limiter.Allow() {
		rl.Logger.Warnf(format, v...)
	}
}

func (rl *rateLimited) Errorf(format string, v ...interface{}) {
	if rl.limiter.Allow() {
		rl.Logger.Errorf(format, v...)
	}
}

var hotLog Logger = RateLimit(forwarder{}, time.Second, 10)
