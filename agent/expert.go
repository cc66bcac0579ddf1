package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/etnz/fxgains/logger"
	"google.golang.org/genai"
)

// maxRounds bounds the function calls an expert can chain before answering.
const maxRounds = 16

// Expert is a Gemini chat specialized on one subject, with the tools of its Library.
type Expert struct {
	Name        string                       `json:"name"`
	Description string                       `json:"description"`
	ModelName   string                       `json:"model_name"`
	Config      *genai.GenerateContentConfig `json:"config"`
	Library     Library
	chat        *genai.Chat
}

// Start creates the chat of the expert.
func (e *Expert) Start(ctx context.Context, client *genai.Client) error {
	chat, err := client.Chats.Create(ctx, e.ModelName, e.Config, nil)
	if err != nil {
		return fmt.Errorf("cannot start %s chat: %w", e.Name, err)
	}
	e.chat = chat
	return nil
}

// Ask sends parts to the expert and returns its text answer.
//
// The function calls the expert makes on the way are answered from its Library.
func (e *Expert) Ask(ctx context.Context, parts ...*genai.Part) (string, error) {
	if e.chat == nil {
		return "", fmt.Errorf("expert %s is not started", e.Name)
	}
	for range maxRounds {
		resp, err := e.chat.Send(ctx, parts...)
		if err != nil {
			return "", err
		}
		if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
			return "", fmt.Errorf("no response from expert %s", e.Name)
		}

		var text []string
		var calls []*genai.Part
		for _, p := range resp.Candidates[0].Content.Parts {
			switch {
			case p.FunctionCall != nil:
				if e.Library == nil {
					return "", fmt.Errorf("expert %s doesn't know how to make function calls", e.Name)
				}
				logger.FromContext(ctx).Debug("function call", "expert", e.Name, "function", p.FunctionCall.Name, "args", p.FunctionCall.Args)
				calls = append(calls, &genai.Part{FunctionResponse: e.Library(ctx, p.FunctionCall)})
			case p.Text != "":
				text = append(text, p.Text)
			}
		}
		if len(calls) == 0 {
			if len(text) == 0 {
				return "", fmt.Errorf("empty response from expert %s", e.Name)
			}
			return strings.Join(text, ""), nil
		}
		parts = calls
	}
	return "", errors.New("too many function calls from expert " + e.Name)
}

// Declaration returns the function declaration to ask this expert a question.
func (e *Expert) Declaration() *genai.FunctionDeclaration {
	return &genai.FunctionDeclaration{
		Name:        e.Name,
		Description: e.Description,
		Parameters: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"question": {Type: genai.TypeString, Description: "The question to ask the expert."},
			},
			Required: []string{"question"},
		},
		Response: &genai.Schema{Type: genai.TypeString, Description: "The expert's answer."},
	}
}

// Call implements Function by asking the question argument to the expert.
func (e *Expert) Call(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
	question, err := stringArg(args, "question")
	if err != nil {
		return errorResponse(id, e.Name, err)
	}
	if question == "" {
		return errorResponse(id, e.Name, errors.New("missing question"))
	}
	answer, err := e.Ask(ctx, &genai.Part{Text: question})
	if err != nil {
		return errorResponse(id, e.Name, fmt.Errorf("expert %s failed: %w", e.Name, err))
	}
	logger.FromContext(ctx).Debug("expert answered", "expert", e.Name, "question", question, "answer", answer)
	return outputResponse(id, e.Name, answer)
}
