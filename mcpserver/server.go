// Package mcpserver exposes the recipe service over the Model Context
// Protocol so AI coding assistants can call it directly.
package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sirupsen/logrus"

	"github.com/open-rails/recipemcp/license"
	"github.com/open-rails/recipemcp/service"
)

const (
	// serverName identifies this MCP server to clients.
	serverName = "SwiftUI Recipes MCP"
	// serverVersion identifies the MCP server version.
	serverVersion = "1.0.0"
)

// TransportKind identifies the MCP transport implementation.
type TransportKind string

const (
	// TransportStdio uses standard input/output for MCP.
	TransportStdio TransportKind = "stdio"
	// TransportHTTP serves MCP over streamable HTTP.
	TransportHTTP TransportKind = "http"
)

// Server hosts the MCP server over the recipe service.
type Server struct {
	mcpServer *mcp.Server
	svc       *service.Service
	log       *logrus.Logger
}

// New creates a configured MCP server. All tier policy lives in svc; this
// layer only shapes requests and responses into the protocol envelope.
func New(svc *service.Service, log *logrus.Logger) *Server {
	if log == nil {
		log = logrus.New()
	}
	mcpServer := mcp.NewServer(&mcp.Implementation{Name: serverName, Version: serverVersion}, nil)
	s := &Server{mcpServer: mcpServer, svc: svc, log: log}
	registerRecipeTools(mcpServer, svc)
	registerRecipeResources(mcpServer, svc)
	return s
}

// Serve starts the MCP server on the given transport and blocks until it
// stops or the context ends.
func (s *Server) Serve(ctx context.Context, transport mcp.Transport) error {
	if s == nil || s.mcpServer == nil {
		return fmt.Errorf("MCP server is not configured")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	err := s.mcpServer.Run(ctx, transport)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("serve MCP: %w", err)
	}
	return nil
}

// ServeStdio serves MCP over stdin/stdout.
func (s *Server) ServeStdio(ctx context.Context) error {
	return s.Serve(ctx, &mcp.StdioTransport{})
}

// HTTPHandler returns the streamable HTTP handler for this server. The
// Authorization bearer credential, when present, is attached to the request
// context so tool handlers can fall back to it when the tool argument is
// absent. A missing header is the normal free-tier state.
func (s *Server) HTTPHandler() http.Handler {
	streamable := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s.mcpServer
	}, nil)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if cred := bearerCredential(r.Header.Get("Authorization")); cred != "" {
			ctx = license.WithCredential(ctx, cred)
		}
		ctx = service.WithClientInfo(ctx, r.UserAgent())
		streamable.ServeHTTP(w, r.WithContext(ctx))
	})
}

// bearerCredential extracts the token from an "Authorization: Bearer ..."
// header value, returning "" when absent or malformed.
func bearerCredential(header string) string {
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
