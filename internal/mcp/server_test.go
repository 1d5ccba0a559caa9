package mcp

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a3tai/mcp-certidao-reader/internal/config"
	"github.com/a3tai/mcp-certidao-reader/internal/document"
	"github.com/a3tai/mcp-certidao-reader/internal/logging"
)

const fgtsText = `CAIXA ECONÔMICA FEDERAL
Certificado de Regularidade do FGTS - CRF
A EMPRESA encontra-se em situação regular perante o FGTS.
Validade: 01/03/2024 a 30/03/2024
Informação obtida em 15/03/2024 10:22:31`

func newTestServer(t *testing.T) (*Server, string) {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.Config{
		Mode:                 config.ModeStdio,
		CertificateDirectory: dir,
		Version:              "1.0.0",
		ServerName:           "test-server",
		LogLevel:             "info",
		LogFormat:            config.LogFormatConsole,
		MaxFileSize:          1024 * 1024,
	}
	service, err := document.NewService(cfg.MaxFileSize, cfg.CertificateDirectory, logging.Nop())
	require.NoError(t, err)

	s, err := NewServer(cfg, service, logging.Nop())
	require.NoError(t, err)
	return s, dir
}

func callRequest(args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: args,
		},
	}
}

func TestNewServer(t *testing.T) {
	s, _ := newTestServer(t)
	assert.NotNil(t, s.mcpServer)
	assert.NotNil(t, s.service)

	_, err := NewServer(config.DefaultConfig(), nil, nil)
	assert.Error(t, err)
}

func TestServer_HandleExtractText(t *testing.T) {
	s, _ := newTestServer(t)

	result, err := s.handleExtractText(context.Background(), callRequest(map[string]interface{}{
		"text": fgtsText,
		"kind": "fgts",
	}))
	require.NoError(t, err)
	require.False(t, result.IsError, extractTextFromResult(result))

	text := extractTextFromResult(result)
	assert.Contains(t, text, "Document kind: fgts")
	assert.Contains(t, text, "validade: 30/03/2024 (rule validade_periodo)")
	assert.Contains(t, text, "data_consulta: 15/03/2024")
	assert.Contains(t, text, "situacao: REGULAR")
	assert.NotContains(t, text, "Detected kind")
}

func TestServer_HandleExtractTextDetectsKind(t *testing.T) {
	s, _ := newTestServer(t)

	result, err := s.handleExtractText(context.Background(), callRequest(map[string]interface{}{
		"text": fgtsText,
		"kind": "auto",
	}))
	require.NoError(t, err)
	assert.Contains(t, extractTextFromResult(result), "Detected kind: fgts")
}

func TestServer_HandleExtractTextJSON(t *testing.T) {
	s, _ := newTestServer(t)

	result, err := s.handleExtractText(context.Background(), callRequest(map[string]interface{}{
		"text":   "Razão Social: ACME LTDA",
		"kind":   "receita_federal",
		"format": "json",
	}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	var payload struct {
		Result struct {
			Kind   string `json:"document_kind"`
			Fields map[string]struct {
				Value string `json:"value"`
				Found bool   `json:"found"`
			} `json:"fields"`
			Warnings []string `json:"warnings"`
		} `json:"result"`
	}
	require.NoError(t, json.Unmarshal([]byte(extractTextFromResult(result)), &payload))

	assert.Equal(t, "receita_federal", payload.Result.Kind)
	assert.Len(t, payload.Result.Fields, 4)
	assert.Equal(t, "ACME LTDA", payload.Result.Fields["razao_social"].Value)
	assert.False(t, payload.Result.Fields["cnpj"].Found)
	assert.Contains(t, payload.Result.Warnings, "cnpj: not found")
}

func TestServer_HandleExtractTextErrors(t *testing.T) {
	s, _ := newTestServer(t)

	tests := []struct {
		name string
		args map[string]interface{}
		want string
	}{
		{name: "missing text", args: map[string]interface{}{"kind": "fgts"}, want: "text"},
		{name: "unknown kind", args: map[string]interface{}{"text": "x", "kind": "iptu"}, want: "unknown document kind"},
		{name: "unknown format", args: map[string]interface{}{"text": "x", "kind": "fgts", "format": "xml"}, want: "unknown format"},
		{name: "undetectable kind", args: map[string]interface{}{"text": "nada"}, want: "could not be determined"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := s.handleExtractText(context.Background(), callRequest(tt.args))
			require.NoError(t, err)
			assert.True(t, result.IsError)
			assert.Contains(t, extractTextFromResult(result), tt.want)
		})
	}
}

func TestServer_HandleExtractFileErrors(t *testing.T) {
	s, dir := newTestServer(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "fake.pdf"), []byte("not a pdf"), 0o600))

	for _, path := range []string{"fake.pdf", "missing.pdf", "../outside.pdf"} {
		result, err := s.handleExtractFile(context.Background(), callRequest(map[string]interface{}{
			"path": path,
			"kind": "fgts",
		}))
		require.NoError(t, err)
		assert.True(t, result.IsError, path)
	}

	result, err := s.handleExtractFile(context.Background(), callRequest(map[string]interface{}{}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestServer_HandleFillForm(t *testing.T) {
	s, dir := newTestServer(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "rf.pdf"), []byte("not a pdf"), 0o600))

	result, err := s.handleFillForm(context.Background(), callRequest(map[string]interface{}{
		"receita_path": "rf.pdf",
		"fgts_path":    "missing.pdf",
	}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	text := extractTextFromResult(result)
	assert.Contains(t, text, "Certificates extracted: 0, failed: 2")
	assert.Contains(t, text, "every control keeps its default")

	result, err = s.handleFillForm(context.Background(), callRequest(map[string]interface{}{}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestServer_HandleKinds(t *testing.T) {
	s, _ := newTestServer(t)

	result, err := s.handleKinds(context.Background(), callRequest(nil))
	require.NoError(t, err)

	text := extractTextFromResult(result)
	for _, want := range []string{"receita_federal", "fgts", "sefaz", "debitos (list) -> form control sefaz_debitos"} {
		assert.Contains(t, text, want)
	}
}

func TestServer_HandleListFiles(t *testing.T) {
	s, dir := newTestServer(t)
	for _, name := range []string{"crf.pdf", "rf.pdf", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o600))
	}

	result, err := s.handleListFiles(context.Background(), callRequest(nil))
	require.NoError(t, err)
	text := extractTextFromResult(result)
	assert.Contains(t, text, "Found 2 PDF files")
	assert.NotContains(t, text, "notes.txt")

	result, err = s.handleListFiles(context.Background(), callRequest(map[string]interface{}{"query": "zzz"}))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(extractTextFromResult(result), "No PDF files found\n"))
}

// Helper function to extract text from MCP result
func extractTextFromResult(result *mcp.CallToolResult) string {
	if result == nil || len(result.Content) == 0 {
		return ""
	}

	for _, content := range result.Content {
		if textContent, ok := content.(mcp.TextContent); ok {
			return textContent.Text
		}
		if textContentPtr, ok := content.(*mcp.TextContent); ok {
			return textContentPtr.Text
		}
	}
	return ""
}
