package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// uriScheme is the custom URI scheme for Lexis resources.
const uriScheme = "lexis://"

// registerResources registers corpus resources with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "corpora",
		Name:        "corpora",
		Description: "Preloaded legal documents and cached uploads",
		MIMEType:    "application/json",
	}, s.handleCorporaResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "corpora/{key}",
		Name:        "corpus",
		Description: "Metadata of one corpus, by name or file_id",
		MIMEType:    "application/json",
	}, s.handleCorpusResource)
}

func (s *Server) handleCorporaResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	_, out, err := s.handleListCorpora(ctx, nil, ListCorporaInput{})
	if err != nil {
		return nil, fmt.Errorf("listing corpora: %w", err)
	}
	return jsonResource(req.Params.URI, out.Corpora)
}

func (s *Server) handleCorpusResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	key := extractCorpusKey(req.Params.URI)
	if key == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	corpora, err := s.ports.Corpora.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing corpora: %w", err)
	}
	for _, c := range corpora {
		if c.Key == key || c.Name == key {
			return jsonResource(req.Params.URI, toCorpusOutput(c))
		}
	}
	return nil, mcp.ResourceNotFoundError(req.Params.URI)
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling %s: %w", uri, err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractCorpusKey extracts the unescaped key from lexis://corpora/{key}.
func extractCorpusKey(uri string) string {
	const prefix = uriScheme + "corpora/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}
	key, err := url.PathUnescape(strings.TrimPrefix(uri, prefix))
	if err != nil || strings.Contains(key, "/") {
		return ""
	}
	return key
}
