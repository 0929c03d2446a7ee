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

// Package config models the workspace/configuration settings this
// module recognizes: extra classpath entries and additional
// rejected-package prefixes for classpath scans. Settings
// arrive over JSON-RPC as a generic interface{} payload; Decode accepts
// that shape via a YAML-capable superset decoder so JSON and YAML
// configuration blobs both work without a type switch.
package config

import (
	"github.com/goccy/go-yaml"

	"github.com/crossplane/crossplane-runtime/pkg/errors"
)

const errDecodeSettings = "failed to decode workspace/configuration settings"

// Settings is the subset of workspace/configuration this module acts
// on. Changing either field invalidates existing classpath scan cache
// entries via the key hash, since both are mixed into
// frontend.ClassLoaderDescriptor.
type Settings struct {
	// Classpath lists extra classpath entries (directories or archives)
	// injected into every compilation unit in this workspace.
	Classpath []string `json:"classpath" yaml:"classpath"`
	// Memory groups the memory-management-related settings.
	Memory MemorySettings `json:"memory" yaml:"memory"`
}

// MemorySettings groups the `memory.*` configuration keys.
type MemorySettings struct {
	// RejectedPackages are additional package prefixes excluded from
	// classpath scans, merged with the hardcoded base set of internal
	// JDK/runtime prefixes.
	RejectedPackages []string `json:"rejectedPackages" yaml:"rejectedPackages"`
}

// Default returns the zero-value Settings: no extra classpath entries,
// no extra rejected packages.
func Default() Settings {
	return Settings{}
}

// Decode parses raw, the generic interface{} a workspace/configuration
// response carries, into a Settings value. raw is re-marshaled through
// go-yaml, which accepts both JSON and YAML documents of unknown
// concrete shape.
func Decode(raw interface{}) (Settings, error) {
	if raw == nil {
		return Default(), nil
	}
	b, err := yaml.Marshal(raw)
	if err != nil {
		return Settings{}, errors.Wrap(err, errDecodeSettings)
	}
	var s Settings
	if err := yaml.Unmarshal(b, &s); err != nil {
		return Settings{}, errors.Wrap(err, errDecodeSettings)
	}
	return s, nil
}

// Merge overlays non-nil fields of next onto s, returning the result; an
// explicitly empty (non-nil) list replaces the current one.
// Used when a didChangeConfiguration notification arrives with a
// partial settings document.
func (s Settings) Merge(next Settings) Settings {
	out := s
	if next.Classpath != nil {
		out.Classpath = next.Classpath
	}
	if next.Memory.RejectedPackages != nil {
		out.Memory.RejectedPackages = next.Memory.RejectedPackages
	}
	return out
}
