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

// The groovy-language-server binary serves LSP over stdio for Groovy
// workspaces.
package main

import (
	"context"

	"github.com/alecthomas/kong"
	"github.com/sourcegraph/jsonrpc2"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"

	"github.com/crossplane/crossplane-runtime/pkg/logging"

	"github.com/groovy-lsp/groovy-language-server/internal/frontend/jvmc"
	"github.com/groovy-lsp/groovy-language-server/internal/gls"
	"github.com/groovy-lsp/groovy-language-server/internal/gls/handler"
	"github.com/groovy-lsp/groovy-language-server/internal/spock"
	"github.com/groovy-lsp/groovy-language-server/internal/version"
)

type cli struct {
	Serve   serveCmd         `cmd:"" default:"1" help:"Serve LSP over stdio."`
	Version kong.VersionFlag `help:"Print version and exit." short:"v"`
}

type serveCmd struct {
	HelperJar        string   `help:"Path to the compiler helper jar." env:"GROOVY_LS_HELPER_JAR" required:""`
	JavaPath         string   `help:"Java executable used to run the helper." default:"java" env:"GROOVY_LS_JAVA"`
	JavaArgs         []string `help:"Extra JVM arguments for the helper."`
	Classpath        []string `help:"Extra classpath entries injected into every compilation unit."`
	RejectedPackages []string `help:"Additional package prefixes excluded from classpath scans."`
	Verbose          bool     `help:"Enable debug logging (to stderr)."`
}

// Run starts the language server and blocks until the client
// disconnects.
func (c *serveCmd) Run() error {
	log := logging.NewLogrLogger(zap.New(zap.UseDevMode(c.Verbose)))

	factory := jvmc.New(c.HelperJar, version.GetVersion(),
		jvmc.WithJavaPath(c.JavaPath),
		jvmc.WithJavaArgs(c.JavaArgs...),
		jvmc.WithClasspath(c.Classpath),
		jvmc.WithRejectedPackages(c.RejectedPackages),
		jvmc.WithLogger(log),
	)
	defer factory.Close() //nolint:errcheck // the process is exiting

	h, err := handler.New(&handler.Frontend{
		Factory:    factory,
		AST:        factory.Utilities(),
		Scanner:    factory.Scanner(),
		Analyzer:   factory.Utilities(),
		Decompiler: factory,
		TestFW:     spock.NewDetector(),
	}, handler.WithLogger(log))
	if err != nil {
		return err
	}

	conn := jsonrpc2.NewConn(
		context.Background(),
		jsonrpc2.NewBufferedStream(gls.NewStdioTransport(), jsonrpc2.VSCodeObjectCodec{}),
		h,
	)
	<-conn.DisconnectNotify()
	return nil
}

func main() {
	c := &cli{}
	ctx := kong.Parse(c,
		kong.Name("groovy-language-server"),
		kong.Description("Language server for Groovy workspaces."),
		kong.Vars{"version": version.GetVersion()},
	)
	ctx.FatalIfErrorf(ctx.Run())
}
