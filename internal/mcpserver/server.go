// Package mcpserver exposes prompt generation and chat as MCP tools, so
// editors and agents can call PromptForge over stdio.
package mcpserver

import (
	"context"
	"errors"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/matiasleandrokruk/promptforge/internal/domain/promptgen"
	"github.com/matiasleandrokruk/promptforge/internal/infra/tokens"
	"github.com/matiasleandrokruk/promptforge/internal/version"
)

// Tool names.
const (
	ToolGeneratePrompt      = "generate_prompt"
	ToolGenerateShortPrompt = "generate_short_prompt"
	ToolChat                = "chat"
)

var (
	errMissingTask     = errors.New("please provide a 'task'")
	errMissingProvider = errors.New("please select a 'provider'")
	errUnexpected      = errors.New("unexpected error")
)

// PromptGenerator is promptgen.Generator as seen by the tools.
type PromptGenerator interface {
	Generate(ctx context.Context, req promptgen.Request) (string, error)
}

// MessageRouter is chat.Router as seen by the tools.
type MessageRouter interface {
	Route(ctx context.Context, message string) string
}

// Deps are the services behind the tools. Estimator and Logger may be nil.
type Deps struct {
	Generator PromptGenerator
	Chat      MessageRouter
	Estimator tokens.Estimator
	Logger    *slog.Logger
}

// GenerateInput is the argument of both generate tools.
type GenerateInput struct {
	Task     string `json:"task" jsonschema:"the task the prompt should accomplish"`
	Provider string `json:"provider" jsonschema:"model provider: openai, llama or gemma"`
}

// GenerateOutput is the structured result of generate_prompt.
type GenerateOutput struct {
	Prompt string `json:"prompt"`
}

// ShortOutput is the structured result of generate_short_prompt.
type ShortOutput struct {
	Prompt string `json:"prompt"`
	Tokens int    `json:"tokens"`
}

// ChatInput is the argument of the chat tool.
type ChatInput struct {
	Message string `json:"message" jsonschema:"chat message; prefixes 'improve my prompt:', 'search the internet for' and 'ask gpt:' pick a route"`
}

// ChatOutput is the structured result of the chat tool.
type ChatOutput struct {
	Reply string `json:"reply"`
}

type tools struct {
	deps Deps
}

// New builds an MCP server with the three PromptForge tools registered.
func New(deps Deps) *mcp.Server {
	if deps.Estimator == nil {
		deps.Estimator = tokens.WordEstimator{}
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	t := &tools{deps: deps}

	server := mcp.NewServer(&mcp.Implementation{Name: version.Name, Version: version.Version}, nil)
	mcp.AddTool(server, &mcp.Tool{
		Name:        ToolGeneratePrompt,
		Description: "Write a detailed, structured prompt (Persona, Task, Constraints) for a task.",
	}, t.generate)
	mcp.AddTool(server, &mcp.Tool{
		Name:        ToolGenerateShortPrompt,
		Description: "Write a compact prompt of at most 100 tokens for a task.",
	}, t.generateShort)
	mcp.AddTool(server, &mcp.Tool{
		Name:        ToolChat,
		Description: "Send a message to the Vani prompt assistant.",
	}, t.chat)
	return server
}

// Serve runs server over stdin/stdout until ctx is done or the client disconnects.
func Serve(ctx context.Context, server *mcp.Server) error {
	return server.Run(ctx, &mcp.StdioTransport{})
}

func (t *tools) generate(ctx context.Context, _ *mcp.CallToolRequest, in GenerateInput) (*mcp.CallToolResult, GenerateOutput, error) {
	prompt, err := t.run(ctx, in, promptgen.ModeFull)
	if err != nil {
		return nil, GenerateOutput{}, err
	}
	return textResult(prompt), GenerateOutput{Prompt: prompt}, nil
}

func (t *tools) generateShort(ctx context.Context, _ *mcp.CallToolRequest, in GenerateInput) (*mcp.CallToolResult, ShortOutput, error) {
	prompt, err := t.run(ctx, in, promptgen.ModeShort)
	if err != nil {
		return nil, ShortOutput{}, err
	}
	return textResult(prompt), ShortOutput{Prompt: prompt, Tokens: t.deps.Estimator.Estimate(prompt)}, nil
}

func (t *tools) chat(ctx context.Context, _ *mcp.CallToolRequest, in ChatInput) (*mcp.CallToolResult, ChatOutput, error) {
	reply := t.deps.Chat.Route(ctx, in.Message)
	return textResult(reply), ChatOutput{Reply: reply}, nil
}

func (t *tools) run(ctx context.Context, in GenerateInput, mode promptgen.Mode) (string, error) {
	prompt, err := t.deps.Generator.Generate(ctx, promptgen.Request{Task: in.Task, Provider: in.Provider, Mode: mode})
	switch {
	case errors.Is(err, promptgen.ErrMissingTask):
		return "", errMissingTask
	case errors.Is(err, promptgen.ErrMissingProvider):
		return "", errMissingProvider
	case err != nil:
		t.deps.Logger.Error("mcp: prompt generation failed", "mode", string(mode), "provider", in.Provider, "error", err)
		return "", errUnexpected
	}
	return prompt, nil
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{Content: []mcp.Content{&mcp.TextContent{Text: text}}}
}
