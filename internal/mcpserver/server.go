// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the media folder to LLM clients via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/mediastore/internal/media"
)

const usageURI = "media://usage"

// Server wraps the MCP server with media tools.
type Server struct {
	mcp   *server.MCPServer
	model *media.Model
}

// New creates a new MCP server with all media tools registered.
func New(model *media.Model) *Server {
	s := &Server{model: model}

	s.mcp = server.NewMCPServer(
		"mediastore",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_media",
		mcp.WithDescription("List one page of a folder inside the media library. "+
			"Directories come first, then files with their public URL and size."),
		mcp.WithString("path", mcp.Description("Folder relative to the media root, e.g. /blog/2024 (empty for the root)")),
		mcp.WithNumber("cursor", mcp.Description("Offset returned by the previous page")),
		mcp.WithNumber("limit", mcp.Description("Page size (default 20)")),
	), s.listMedia)

	s.mcp.AddTool(mcp.NewTool("delete_media",
		mcp.WithDescription("Delete a file or a whole folder from the media library."),
		mcp.WithString("path", mcp.Required(), mcp.Description("File or folder relative to the media root")),
	), s.deleteMedia)

	s.mcp.AddTool(mcp.NewTool("upload_media",
		mcp.WithDescription("Store an image or PDF in the media library. The source is an "+
			"http(s) URL or a base64 data URI. Read "+usageURI+" first."),
		mcp.WithString("url", mcp.Required(), mcp.Description("http(s) URL or data:<mime>;base64,<data> URI")),
		mcp.WithString("folder", mcp.Description("Target folder relative to the media root (created if missing)")),
		mcp.WithString("filename", mcp.Description("Optional file name; derived from the URL when omitted")),
	), s.uploadMedia)

	s.mcp.AddResource(
		mcp.NewResource(usageURI, "Media Library Usage",
			mcp.WithResourceDescription("How media paths map to public URLs and which files are accepted."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readUsageResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) listMedia(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	page := s.model.List(ctx, media.ListArgs{
		SearchPath: req.GetString("path", ""),
		Cursor:     strconv.Itoa(req.GetInt("cursor", 0)),
		Limit:      strconv.Itoa(req.GetInt("limit", 0)),
	})
	if page.Error != "" {
		return mcp.NewToolResultError(page.Error), nil
	}
	out, _ := json.MarshalIndent(page, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) deleteMedia(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res := s.model.Delete(ctx, p)
	if !res.OK {
		return mcp.NewToolResultError(res.Message), nil
	}
	return mcp.NewToolResultText("deleted: " + p), nil
}

func (s *Server) readUsageResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      usageURI,
			MIMEType: "text/markdown",
			Text:     UsageContract,
		},
	}, nil
}
