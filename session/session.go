// Package session runs the chat loop: it draws the frame once, then
// alternates between capturing a question and rendering the reply.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/linanwx/minichat/editor"
	"github.com/linanwx/minichat/logger"
	"github.com/linanwx/minichat/provider"
	"github.com/linanwx/minichat/render"
	"github.com/linanwx/minichat/screen"
)

// State is the phase the loop is in.
type State int

const (
	Drawing State = iota
	AwaitingInput
	AwaitingResponse
	Exiting
)

func (s State) String() string {
	switch s {
	case Drawing:
		return "drawing"
	case AwaitingInput:
		return "awaiting-input"
	case AwaitingResponse:
		return "awaiting-response"
	case Exiting:
		return "exiting"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

var exitCommands = map[string]struct{}{
	"sortir": {},
	"exit":   {},
	"q":      {},
}

// IsExitCommand reports whether input asks to leave the chat.
func IsExitCommand(input string) bool {
	_, ok := exitCommands[strings.ToLower(strings.TrimSpace(input))]
	return ok
}

// Session is one interactive chat on a terminal.
type Session struct {
	provider     provider.Provider
	input        editor.Input
	surface      screen.Surface
	systemPrompt string
	state        State
	turns        int
}

// New creates a session. systemPrompt is sent before every question; an
// empty one sends the question alone.
func New(p provider.Provider, in editor.Input, surface screen.Surface, systemPrompt string) *Session {
	return &Session{
		provider:     p,
		input:        in,
		surface:      surface,
		systemPrompt: systemPrompt,
		state:        Drawing,
	}
}

// State returns the current phase.
func (s *Session) State() State {
	return s.state
}

// Turns is the number of questions sent to the backend.
func (s *Session) Turns() int {
	return s.turns
}

// Run draws the frame and loops until an exit command or until ctx is
// cancelled, both of which return nil. Backend failures are shown in the
// response box and never end the loop. A non-nil error means the keyboard
// failed.
func (s *Session) Run(ctx context.Context) error {
	DrawLayout(s.surface)

	for {
		s.state = AwaitingInput
		s.surface.ClearRect(QuestionRegion.Col, QuestionRegion.Row, QuestionRegion.Width, QuestionRegion.Height)

		text, err := editor.Capture(ctx, s.input, s.surface, QuestionRegion)
		switch {
		case errors.Is(err, editor.ErrCancelled):
			continue
		case err != nil && ctx.Err() != nil:
			s.state = Exiting
			logger.Info("session interrupted", "turns", s.turns)
			return nil
		case err != nil:
			s.state = Exiting
			return fmt.Errorf("session: %w", err)
		}

		if IsExitCommand(text) {
			s.state = Exiting
			logger.Info("session ended", "turns", s.turns)
			return nil
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}

		s.state = AwaitingResponse
		if err := s.respond(ctx, text); err != nil {
			s.state = Exiting
			logger.Info("session interrupted", "turns", s.turns)
			return nil
		}
	}
}

// respond streams the reply to text into the response box. It only returns
// an error when ctx was cancelled.
func (s *Session) respond(ctx context.Context, text string) error {
	s.clearResponse()
	s.turns++

	stream, err := s.provider.Stream(ctx, provider.NewChatRequest(s.systemPrompt, text))
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		s.showError(err)
		return nil
	}

	res, err := render.Render(s.surface, ResponseRegion, stream)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		s.showError(err)
		return nil
	}
	logger.Debug("response rendered", "written", res.Written, "halted", res.Halted)
	return nil
}

func (s *Session) clearResponse() {
	s.surface.ClearRect(ResponseRegion.Col, ResponseRegion.Row, ResponseRegion.Width, ResponseRegion.Height)
}

// showError replaces the response box content with the error message.
func (s *Session) showError(err error) {
	logger.Warn("backend request failed", "err", err)
	s.clearResponse()
	render.Text(s.surface, ResponseRegion, "Error: "+err.Error())
}
