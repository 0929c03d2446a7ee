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

// Package version carries the server's build version and the release
// informer that checks the published release manifest for a newer
// build. The manifest also pins the compiler-helper protocol each
// release speaks, so the informer can tell a plain upgrade apart from
// one that requires replacing the helper jar too.
package version

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/Masterminds/semver/v3"

	"github.com/crossplane/crossplane-runtime/pkg/errors"
	"github.com/crossplane/crossplane-runtime/pkg/logging"
)

const (
	manifestURL    = "https://groovy-lsp.github.io/groovy-language-server/releases/current.json"
	requestTimeout = 5 * time.Second

	// HelperProtocol is the compiler-helper JSON-RPC protocol revision
	// this build speaks. The jvmc bridge sends it in every configure
	// call; releases publish theirs in the manifest.
	HelperProtocol = "2"

	errFetchManifest  = "failed to fetch release manifest"
	errDecodeManifest = "failed to decode release manifest"
	errManifestStatus = "release manifest request returned status %d"
)

// version is stamped at build time via -ldflags.
var version string

// GetVersion returns the current build version.
func GetVersion() string {
	return version
}

// Release is the published release manifest.
type Release struct {
	// Version is the release's semver tag.
	Version string `json:"version"`
	// HelperProtocol is the compiler-helper protocol revision the
	// release speaks.
	HelperProtocol string `json:"helperProtocol,omitempty"`
}

// Upgrade describes how the current build relates to the published
// release.
type Upgrade struct {
	Local  string
	Remote string
	// Available reports that the published release is newer than the
	// local build.
	Available bool
	// HelperChanged reports that upgrading also requires a newer
	// compiler-helper jar, because the release speaks a different
	// helper protocol than this build.
	HelperChanged bool
}

// Informer checks the published release manifest so the server can
// surface an upgrade notice after initialize.
type Informer struct {
	url    string
	client *http.Client
	log    logging.Logger
}

// Option modifies the Informer.
type Option func(*Informer)

// WithLogger overrides the default logger for the Informer.
func WithLogger(l logging.Logger) Option {
	return func(i *Informer) {
		i.log = l
	}
}

// WithClient overrides the HTTP client used to fetch the manifest.
func WithClient(c *http.Client) Option {
	return func(i *Informer) {
		i.client = c
	}
}

// WithManifestURL overrides the published-manifest location.
func WithManifestURL(url string) Option {
	return func(i *Informer) {
		i.url = url
	}
}

// NewInformer constructs a new Informer.
func NewInformer(opts ...Option) *Informer {
	i := &Informer{
		url:    manifestURL,
		client: &http.Client{Timeout: requestTimeout},
		log:    logging.NewNopLogger(),
	}
	for _, o := range opts {
		o(i)
	}
	return i
}

// Latest fetches and decodes the published release manifest.
func (i *Informer) Latest(ctx context.Context) (Release, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, i.url, nil)
	if err != nil {
		return Release{}, errors.Wrap(err, errFetchManifest)
	}
	resp, err := i.client.Do(req)
	if err != nil {
		return Release{}, errors.Wrap(err, errFetchManifest)
	}
	defer resp.Body.Close() // nolint:gosec,errcheck

	if resp.StatusCode != http.StatusOK {
		return Release{}, errors.Errorf(errManifestStatus, resp.StatusCode)
	}

	var rel Release
	if err := json.NewDecoder(resp.Body).Decode(&rel); err != nil {
		return Release{}, errors.Wrap(err, errDecodeManifest)
	}
	return rel, nil
}

// Check compares the local build against the published release. The
// zero Upgrade is returned when the manifest is unreachable or either
// version is not semver; an unparseable version is a build or publish
// defect, never a reason to nag the user.
func (i *Informer) Check(ctx context.Context) Upgrade {
	rel, err := i.Latest(ctx)
	if err != nil {
		i.log.Debug(errFetchManifest, "url", i.url, "error", err)
		return Upgrade{}
	}

	local := GetVersion()
	lv, err := semver.NewVersion(local)
	if err != nil {
		i.log.Debug("local build version is not semver", "version", local, "error", err)
		return Upgrade{}
	}
	rv, err := semver.NewVersion(rel.Version)
	if err != nil {
		i.log.Debug("published release version is not semver", "version", rel.Version, "error", err)
		return Upgrade{}
	}

	return Upgrade{
		Local:         local,
		Remote:        rel.Version,
		Available:     rv.GreaterThan(lv),
		HelperChanged: rel.HelperProtocol != "" && rel.HelperProtocol != HelperProtocol,
	}
}
