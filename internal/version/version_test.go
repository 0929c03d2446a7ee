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

package version

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// withBuildVersion stamps the build version for the duration of a test.
func withBuildVersion(t *testing.T, v string) {
	t.Helper()
	prior := version
	version = v
	t.Cleanup(func() { version = prior })
}

func manifestServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestLatestDecodesManifest(t *testing.T) {
	srv := manifestServer(t, http.StatusOK, `{"version":"v1.2.3","helperProtocol":"2"}`)
	i := NewInformer(WithManifestURL(srv.URL), WithClient(srv.Client()))

	rel, err := i.Latest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Release{Version: "v1.2.3", HelperProtocol: "2"}, rel)
}

func TestLatestRejectsNonOKStatus(t *testing.T) {
	srv := manifestServer(t, http.StatusNotFound, "not here")
	i := NewInformer(WithManifestURL(srv.URL), WithClient(srv.Client()))

	_, err := i.Latest(context.Background())
	assert.Error(t, err)
}

func TestLatestRejectsMalformedManifest(t *testing.T) {
	srv := manifestServer(t, http.StatusOK, "v1.2.3\n")
	i := NewInformer(WithManifestURL(srv.URL), WithClient(srv.Client()))

	_, err := i.Latest(context.Background())
	assert.Error(t, err)
}

func TestCheck(t *testing.T) {
	cases := map[string]struct {
		local    string
		manifest string
		want     Upgrade
	}{
		"NewVersionAvailable": {
			local:    "v0.1.0",
			manifest: `{"version":"v0.2.0","helperProtocol":"2"}`,
			want:     Upgrade{Local: "v0.1.0", Remote: "v0.2.0", Available: true},
		},
		"AlreadyCurrent": {
			local:    "v0.2.0",
			manifest: `{"version":"v0.2.0","helperProtocol":"2"}`,
			want:     Upgrade{Local: "v0.2.0", Remote: "v0.2.0"},
		},
		"RemoteOlderThanDevBuild": {
			local:    "v0.3.0-rc.0",
			manifest: `{"version":"v0.2.0"}`,
			want:     Upgrade{Local: "v0.3.0-rc.0", Remote: "v0.2.0"},
		},
		"HelperProtocolChanged": {
			local:    "v0.1.0",
			manifest: `{"version":"v0.2.0","helperProtocol":"3"}`,
			want:     Upgrade{Local: "v0.1.0", Remote: "v0.2.0", Available: true, HelperChanged: true},
		},
		"ManifestWithoutHelperProtocol": {
			local:    "v0.1.0",
			manifest: `{"version":"v0.2.0"}`,
			want:     Upgrade{Local: "v0.1.0", Remote: "v0.2.0", Available: true},
		},
		"LocalVersionNotSemver": {
			local:    "dev",
			manifest: `{"version":"v0.2.0"}`,
			want:     Upgrade{},
		},
		"RemoteVersionNotSemver": {
			local:    "v0.1.0",
			manifest: `{"version":"latest"}`,
			want:     Upgrade{},
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			withBuildVersion(t, tc.local)
			srv := manifestServer(t, http.StatusOK, tc.manifest)
			i := NewInformer(WithManifestURL(srv.URL), WithClient(srv.Client()))

			assert.Equal(t, tc.want, i.Check(context.Background()))
		})
	}
}

func TestCheckUnreachableManifestReportsNothing(t *testing.T) {
	withBuildVersion(t, "v0.1.0")
	srv := manifestServer(t, http.StatusOK, "{}")
	url := srv.URL
	srv.Close()

	i := NewInformer(WithManifestURL(url))
	assert.Equal(t, Upgrade{}, i.Check(context.Background()))
}
