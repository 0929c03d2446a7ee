// Copyright 2022 Upbound Inc
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package frontend

import (
	"strings"

	"github.com/crossplane/crossplane-runtime/pkg/errors"
)

// Sentinel error categories for compile faults. The
// orchestrator translates any error returned from
// CompilationUnit.Compile into a warning by matching these via
// errors.Is/errors.As, so the server never dies on a user's broken
// source file.
var (
	// ErrCompilationFailed signals expected-and-common incomplete or
	// invalid source. Always recoverable.
	ErrCompilationFailed = errors.New("compilation failed")
	// ErrCompilerBug signals a frontend-internal defect surfaced while
	// compiling. Recoverable; logged at debug.
	ErrCompilerBug = errors.New("frontend internal error")
	// ErrLinkage signals a classpath linkage failure (missing class on
	// classpath at load time). Recoverable; logged at warning.
	ErrLinkage = errors.New("classpath linkage error")
)

// BenignFault describes one known-benign compiler-bug pattern to
// suppress after its first occurrence per scope. Ports are
// expected to configure a list of these rather than hard-code a single
// pattern.
type BenignFault struct {
	// PathSubstring matches against a frame in the bug's stack trace.
	PathSubstring string
	// Method matches the frame's method name, if non-empty.
	Method string
	// MessageContains matches a substring of the exception message.
	MessageContains string
}

// Matches reports whether fault f describes the given stack-frame path,
// method, and message.
func (f BenignFault) Matches(path, method, message string) bool {
	if f.PathSubstring != "" && !strings.Contains(path, f.PathSubstring) {
		return false
	}
	if f.Method != "" && f.Method != method {
		return false
	}
	if f.MessageContains != "" && !strings.Contains(message, f.MessageContains) {
		return false
	}
	return true
}
