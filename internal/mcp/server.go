package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/a3tai/mcp-certidao-reader/internal/certidao"
	"github.com/a3tai/mcp-certidao-reader/internal/config"
	"github.com/a3tai/mcp-certidao-reader/internal/descriptions"
	"github.com/a3tai/mcp-certidao-reader/internal/document"
	"github.com/a3tai/mcp-certidao-reader/internal/form"
)

// Output formats accepted by the extraction tools
const (
	formatText = "text"
	formatJSON = "json"
)

// Server represents the MCP server instance
type Server struct {
	config    *config.Config
	service   *document.Service
	mcpServer *server.MCPServer
	logger    *zap.SugaredLogger
}

// NewServer creates a new MCP server instance
func NewServer(cfg *config.Config, service *document.Service, logger *zap.SugaredLogger) (*Server, error) {
	if service == nil {
		return nil, errors.New("document service cannot be nil")
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	mcpServer := server.NewMCPServer(
		cfg.ServerName,
		cfg.Version,
		server.WithToolCapabilities(false),
	)

	s := &Server{
		config:    cfg,
		service:   service,
		mcpServer: mcpServer,
		logger:    logger,
	}
	s.registerTools()

	return s, nil
}

func kindOption() mcp.ToolOption {
	values := []string{"auto"}
	for _, k := range certidao.Kinds() {
		values = append(values, k.String())
	}
	return mcp.WithString("kind",
		mcp.Description("Certificate kind: receita_federal, fgts or sefaz. Omit or use 'auto' to detect it from the text"),
		mcp.Enum(values...),
	)
}

func formatOption() mcp.ToolOption {
	return mcp.WithString("format",
		mcp.Description("Response format: 'text' (default) or 'json'"),
		mcp.Enum(formatText, formatJSON),
	)
}

// registerTools registers all available MCP tools
func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool(
		descriptions.ToolExtractText,
		mcp.WithDescription(descriptions.GetToolDescription(descriptions.ToolExtractText)),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("Text layer of the certificate"),
		),
		kindOption(),
		formatOption(),
	), s.handleExtractText)

	s.mcpServer.AddTool(mcp.NewTool(
		descriptions.ToolExtractFile,
		mcp.WithDescription(descriptions.GetToolDescription(descriptions.ToolExtractFile)),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Path of the certificate PDF, relative to the certificate directory"),
		),
		kindOption(),
		formatOption(),
	), s.handleExtractFile)

	s.mcpServer.AddTool(mcp.NewTool(
		descriptions.ToolFillForm,
		mcp.WithDescription(descriptions.GetToolDescription(descriptions.ToolFillForm)),
		mcp.WithString("receita_path", mcp.Description("Receita Federal situação fiscal PDF")),
		mcp.WithString("fgts_path", mcp.Description("FGTS CRF PDF")),
		mcp.WithString("sefaz_path", mcp.Description("SEFAZ certificate or debit extract PDF")),
		formatOption(),
	), s.handleFillForm)

	s.mcpServer.AddTool(mcp.NewTool(
		descriptions.ToolKinds,
		mcp.WithDescription(descriptions.GetToolDescription(descriptions.ToolKinds)),
	), s.handleKinds)

	s.mcpServer.AddTool(mcp.NewTool(
		descriptions.ToolListFiles,
		mcp.WithDescription(descriptions.GetToolDescription(descriptions.ToolListFiles)),
		mcp.WithString("query", mcp.Description("Optional case-insensitive file name filter")),
	), s.handleListFiles)
}

// Handler functions
func (s *Server) handleExtractText(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := request.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	kind, err := kindArgument(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	format, err := formatArgument(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, guess, err := s.service.ExtractText(ctx, text, kind)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if format == formatJSON {
		return jsonResult(map[string]any{"classification": guess, "result": result})
	}

	responseText := ""
	if guess != nil {
		responseText += fmt.Sprintf("Detected kind: %s (confidence %.0f%%)\n", guess.Kind, guess.Confidence*100)
	}
	responseText += formatResult(result)
	return mcp.NewToolResultText(responseText), nil
}

func (s *Server) handleExtractFile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	kind, err := kindArgument(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	format, err := formatArgument(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	ex, err := s.service.ExtractFile(ctx, path, kind)
	if err != nil {
		s.logger.Warnw("extract file failed", "path", path, "error", err)
		return mcp.NewToolResultError(err.Error()), nil
	}

	if format == formatJSON {
		return jsonResult(ex)
	}
	return mcp.NewToolResultText(formatExtraction(ex)), nil
}

func (s *Server) handleFillForm(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	format, err := formatArgument(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var files []document.FileRequest
	for _, arg := range []struct {
		name string
		kind certidao.Kind
	}{
		{"receita_path", certidao.KindReceitaFederal},
		{"fgts_path", certidao.KindFGTS},
		{"sefaz_path", certidao.KindSEFAZ},
	} {
		if path := strings.TrimSpace(request.GetString(arg.name, "")); path != "" {
			files = append(files, document.FileRequest{Path: path, Kind: arg.kind})
		}
	}
	if len(files) == 0 {
		return mcp.NewToolResultError("at least one of receita_path, fgts_path or sefaz_path is required"), nil
	}

	report, err := s.service.ExtractAll(ctx, files)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if format == formatJSON {
		return jsonResult(report)
	}
	return mcp.NewToolResultText(formatReport(report)), nil
}

func (s *Server) handleKinds(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text := "Supported certificate kinds\n"
	for _, kind := range certidao.Kinds() {
		text += fmt.Sprintf("\n• %s\n", kind)
		for _, field := range kind.Schema() {
			control, _ := form.Control(kind, field)
			shape := "value"
			if certidao.IsListField(field) {
				shape = "list"
			}
			text += fmt.Sprintf("  - %s (%s) -> form control %s\n", field, shape, control)
		}
	}
	return mcp.NewToolResultText(text), nil
}

func (s *Server) handleListFiles(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	files, err := s.service.ListFiles(ctx, request.GetString("query", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	text := fmt.Sprintf("Certificate directory: %s\n", s.service.Directory())
	if len(files) == 0 {
		return mcp.NewToolResultText(text + "No PDF files found\n"), nil
	}
	text += fmt.Sprintf("Found %d PDF files:\n", len(files))
	for i, f := range files {
		text += fmt.Sprintf("%d. %s (%d bytes, modified %s)\n", i+1, f.Path, f.Size, f.ModifiedTime)
	}
	return mcp.NewToolResultText(text), nil
}

func kindArgument(request mcp.CallToolRequest) (certidao.Kind, error) {
	raw := strings.TrimSpace(request.GetString("kind", ""))
	if raw == "" || strings.EqualFold(raw, "auto") {
		return "", nil
	}
	return certidao.ParseKind(raw)
}

func formatArgument(request mcp.CallToolRequest) (string, error) {
	format := strings.ToLower(strings.TrimSpace(request.GetString("format", formatText)))
	switch format {
	case "", formatText:
		return formatText, nil
	case formatJSON:
		return formatJSON, nil
	}
	return "", errors.Newf("unknown format %q (use text or json)", format)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(errors.Wrap(err, "encode result").Error()), nil
	}
	return mcp.NewToolResultText(string(b)), nil
}

// Run starts the MCP server in the configured mode
func (s *Server) Run(ctx context.Context) error {
	if s.config.IsServerMode() {
		return s.runServerMode(ctx)
	}
	return s.runStdioMode(ctx)
}

// runStdioMode runs the server in stdio mode
func (s *Server) runStdioMode(_ context.Context) error {
	s.logger.Debugw("starting MCP server", "mode", config.ModeStdio, "directory", s.service.Directory())

	if err := server.ServeStdio(s.mcpServer); err != nil {
		return errors.Wrap(err, "serve stdio")
	}
	return nil
}

// runServerMode serves MCP over SSE until ctx is done
func (s *Server) runServerMode(ctx context.Context) error {
	addr := s.config.Address()
	sse := server.NewSSEServer(s.mcpServer, server.WithBaseURL("http://"+addr))
	s.logger.Infow("starting MCP server", "mode", config.ModeServer, "address", addr, "directory", s.service.Directory())

	errCh := make(chan error, 1)
	go func() {
		errCh <- sse.Start(addr)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrapf(err, "serve %s", addr)
		}
		return nil
	case <-ctx.Done():
		if err := sse.Shutdown(context.Background()); err != nil {
			return errors.Wrap(err, "shutdown")
		}
		return nil
	}
}
