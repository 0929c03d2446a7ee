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

// Package gls carries the language server's transport plumbing: the
// stream the JSON-RPC connection runs over, and the registry of
// decompiled-source documents served under the virtual URI scheme.
package gls

import (
	"io"
	"os"
)

// Transport is the ReadWriteCloser a JSON-RPC connection is framed
// over. Which concrete streams back it is the caller's choice, so
// tests can run a connection over in-memory pipes.
type Transport struct {
	in  io.ReadCloser
	out io.WriteCloser
}

// NewTransport returns a Transport reading requests from in and
// writing responses to out.
func NewTransport(in io.ReadCloser, out io.WriteCloser) *Transport {
	return &Transport{in: in, out: out}
}

// NewStdioTransport returns the Transport a production server runs on:
// requests arrive on stdin, responses leave on stdout. Logging must go
// to stderr; anything else written to stdout corrupts the framing.
func NewStdioTransport() *Transport {
	return NewTransport(os.Stdin, os.Stdout)
}

// Read reads from the inbound stream.
func (t *Transport) Read(p []byte) (int, error) {
	return t.in.Read(p)
}

// Write writes to the outbound stream.
func (t *Transport) Write(p []byte) (int, error) {
	return t.out.Write(p)
}

// Close closes the inbound stream first, so no request arrives for a
// connection that can no longer answer, then the outbound stream.
func (t *Transport) Close() error {
	if err := t.in.Close(); err != nil {
		return err
	}
	return t.out.Close()
}
