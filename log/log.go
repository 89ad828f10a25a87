// Copyright 2025 declmod Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package log is a minimal leveled logger shared by all declmod packages.
// Output goes to stderr so generated code on stdout stays clean.
package log

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

type Level int

const (
	DebugLevel Level = iota
	InfoLevel
	ErrorLevel
)

var (
	mu    sync.Mutex
	level = InfoLevel
	out   io.Writer = os.Stderr
)

// SetLogLevel sets the minimum level that gets written.
func SetLogLevel(l Level) {
	mu.Lock()
	defer mu.Unlock()
	level = l
}

// SetOutput redirects log output, mainly for capturing logs in tests.
// It returns the previous writer.
func SetOutput(w io.Writer) io.Writer {
	mu.Lock()
	defer mu.Unlock()
	prev := out
	out = w
	return prev
}

func Debug(format string, args ...interface{}) {
	write(DebugLevel, "DEBUG", format, args...)
}

func Info(format string, args ...interface{}) {
	write(InfoLevel, "INFO", format, args...)
}

func Error(format string, args ...interface{}) {
	write(ErrorLevel, "ERROR", format, args...)
}

func write(l Level, tag string, format string, args ...interface{}) {
	mu.Lock()
	defer mu.Unlock()
	if l < level {
		return
	}
	msg := fmt.Sprintf(format, args...)
	if !strings.HasSuffix(msg, "\n") {
		msg += "\n"
	}
	fmt.Fprintf(out, "%s [%s] %s", time.Now().Format("2006-01-02 15:04:05"), tag, msg)
}
