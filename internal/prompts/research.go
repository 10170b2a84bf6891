// Package prompts implements MCP prompt handlers for the research server.
//
// MCP prompts are user-triggered workflows (like slash commands) that
// instruct the AI to execute a specific sequence. Unlike tools (which
// the AI calls), prompts are initiated by the user.
package prompts

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// ResearchPrompt handles the research MCP prompt.
// It tells the AI to answer from local knowledge first and escalate only
// when the cascade says so.
type ResearchPrompt struct{}

// NewResearchPrompt creates a ResearchPrompt.
func NewResearchPrompt() *ResearchPrompt {
	return &ResearchPrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *ResearchPrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("research",
		mcp.WithPromptDescription(
			"Research a question about this project from local knowledge, "+
				"escalating to a web search only when local sources are not confident enough.",
		),
		mcp.WithArgument("question",
			mcp.ArgumentDescription("What you want to know"),
			mcp.RequiredArgument(),
		),
		mcp.WithArgument("confidence_threshold",
			mcp.ArgumentDescription("Optional threshold between 0 and 1 for this question"),
		),
	)
}

// Handle processes the research prompt request.
func (p *ResearchPrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	question := ""
	threshold := ""
	if args := req.Params.Arguments; args != nil {
		question = args["question"]
		threshold = args["confidence_threshold"]
	}
	if question == "" {
		return nil, fmt.Errorf("argument 'question' is required")
	}

	call := fmt.Sprintf("`research_answer` with question=%q", question)
	if threshold != "" {
		call += fmt.Sprintf(" and confidence_threshold=%s", threshold)
	}

	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Research: %s", question),
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.NewTextContent(fmt.Sprintf(
					"I want to know: %s\n\n"+
						"Please:\n"+
						"1. Call %s\n"+
						"2. If the result is confident, answer me from it and name the sources it used\n"+
						"3. If it says a web search is needed, run the suggested queries and combine them with any partial local evidence\n"+
						"4. If you learn something worth keeping, save it with `kg_save` so the next answer is local\n",
					question, call,
				)),
			},
		},
	}, nil
}
