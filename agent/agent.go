// Package agent implements an interactive assistant answering questions about
// a reconciliation report with Gemini.
//
// A facilitator chat talks with the user and consults experts, each expert
// being a chat with function tools over the report.
package agent

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"google.golang.org/genai"
)

// Agent is the AI assistant that handles the chat session.
type Agent struct {
	w           io.Writer
	in          *bufio.Scanner
	Facilitator *Expert
	Experts     []*Expert
	// Render formats the markdown answers before printing. Nil prints them raw.
	Render func(markdown string) string
}

// New creates a new Agent reading the user's questions from r and writing
// the answers to w. The facilitator can consult every expert.
func New(w io.Writer, r io.Reader, experts ...*Expert) *Agent {
	return &Agent{
		w:           w,
		in:          bufio.NewScanner(r),
		Experts:     experts,
		Facilitator: newFacilitator(experts...),
	}
}

// Start creates the chats of every expert and of the facilitator.
func (a *Agent) Start(ctx context.Context, client *genai.Client) error {
	for _, e := range a.Experts {
		if err := e.Start(ctx, client); err != nil {
			return err
		}
	}
	return a.Facilitator.Start(ctx, client)
}

const prompt = "assist> "

// Run starts the interactive session. prompts are asked first, as if the user
// typed them. It returns at the end of the input or when the user says bye.
func (a *Agent) Run(ctx context.Context, client *genai.Client, prompts ...string) error {
	if a.Facilitator.chat == nil {
		if err := a.Start(ctx, client); err != nil {
			return err
		}
	}

	fmt.Fprintln(a.w, "Welcome to fxg assist, ask anything about your realized gains. Type 'bye' to exit.")
	for {
		fmt.Fprint(a.w, prompt)
		question, ok := a.next(&prompts)
		if !ok {
			return a.in.Err()
		}
		switch question {
		case "":
			continue
		case "bye", "exit", "quit":
			return nil
		}

		answer, err := a.Facilitator.Ask(ctx, &genai.Part{Text: question})
		if err != nil {
			return err
		}
		if a.Render != nil {
			answer = a.Render(answer)
		}
		fmt.Fprintln(a.w, answer)
	}
}

// next returns the next question, from prompts first then from the input.
func (a *Agent) next(prompts *[]string) (string, bool) {
	if len(*prompts) > 0 {
		q := strings.TrimSpace((*prompts)[0])
		*prompts = (*prompts)[1:]
		fmt.Fprintln(a.w, q)
		return q, true
	}
	if !a.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(a.in.Text()), true
}
