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

package providers

import (
	"context"

	"github.com/golang/tools/lsp/protocol"
	"github.com/golang/tools/span"

	"github.com/groovy-lsp/groovy-language-server/internal/frontend"
)

// ParameterInfo is one parameter slot of a SignatureInfo.
type ParameterInfo struct {
	Label string
}

// SignatureInfo is a single callable signature offered by SignatureHelp.
type SignatureInfo struct {
	Label      string
	Parameters []ParameterInfo
}

// SignatureHelp runs the full signature-help sequence:
// inject the closing-paren placeholder, recompile just this URI, resolve
// the call target at the offset node, and emit its signature. The
// restore always runs, mirroring Completion's inject/restore pairing.
func (p *Provider) SignatureHelp(ctx context.Context, uri span.URI, pos protocol.Position) ([]SignatureInfo, bool) {
	priorText, err := p.orch.InjectSignatureHelpPlaceholder(p.tracker, uri, pos)
	if err != nil {
		p.log.Debug("failed to inject signature help placeholder", "error", err)
		return nil, false
	}
	defer p.orch.RestoreDocumentSource(p.tracker, uri, priorText)

	if err := p.scp.RecompileIncremental(ctx, map[span.URI]struct{}{uri: {}}); err != nil {
		p.log.Debug("incremental recompile for signature help failed", "error", err)
		return nil, false
	}

	n, ok := p.offsetNode(uri, pos)
	if !ok {
		return nil, false
	}

	call, ok := p.ast.GetEnclosingNodeOfType(n, frontend.KindExpression)
	if !ok {
		call = n
	}
	m, ok := p.ast.GetMethodFromCall(call)
	if !ok {
		return nil, false
	}

	return []SignatureInfo{methodSignatureInfo(m)}, true
}

func methodSignatureInfo(m frontend.MethodNode) SignatureInfo {
	types := m.ParameterTypes()
	params := make([]ParameterInfo, 0, len(types))
	for _, t := range types {
		params = append(params, ParameterInfo{Label: t})
	}
	return SignatureInfo{Label: methodSignature(m), Parameters: params}
}
