package shell

import (
	"context"
	"fmt"
	"strings"

	"github.com/AndreySuncov/bot-exam/internal/corpus"
	"github.com/AndreySuncov/bot-exam/internal/logger"
	"github.com/AndreySuncov/bot-exam/internal/retriever"
	"github.com/AndreySuncov/bot-exam/internal/sessions"
)

func New(sessionManager *sessions.Manager, r Retriever, rec Recommender, config Config) *Shell {
	if config.MaxMessageLength <= 0 {
		config.MaxMessageLength = DefaultMaxMessageLength
	}

	return &Shell{
		sessions:         sessionManager,
		retriever:        r,
		recommender:      rec,
		maxMessageLength: config.MaxMessageLength,
	}
}

// routes one inbound message of a conversation and returns the reply.
// messages of the same conversation are handled one at a time.
func (s *Shell) Handle(ctx context.Context, conversationID, text string) (Reply, error) {
	session, err := s.sessions.GetOrCreate(conversationID)
	if err != nil {
		return Reply{}, err
	}

	session.Lock()
	defer session.Unlock()

	input := strings.ToLower(strings.TrimSpace(text))
	log := logger.FromContext(ctx).With("conversation_id", conversationID)

	if strings.HasPrefix(input, "/") {
		return s.handleCommand(session, input), nil
	}

	if session.State() == sessions.StateAwaitingProgram {
		return s.handleSelection(session, input), nil
	}

	program := session.Program()

	if s.recommender.Triggered(input) {
		log.Debug("answering with recommendation", "program", program)
		return s.reply(session, s.recommender.Recommend(input, program)), nil
	}

	texts, err := s.retriever.Retrieve(ctx, input, program)
	if err != nil {
		log.Error("retrieval failed", "program", program, "error", err)
		return s.reply(session, unavailableMessage), nil
	}

	if retriever.IsEffectivelyEmpty(texts) {
		return s.reply(session, fallbackMessage), nil
	}

	return s.reply(session, strings.TrimSpace(strings.Join(texts, "\n\n"))), nil
}

// clears the conversation as /start does and returns the greeting
func (s *Shell) Reset(conversationID string) (Reply, error) {
	session, err := s.sessions.GetOrCreate(conversationID)
	if err != nil {
		return Reply{}, err
	}

	session.Lock()
	defer session.Unlock()

	return s.handleCommand(session, CommandStart), nil
}

func (s *Shell) handleCommand(session *sessions.Session, command string) Reply {
	switch command {
	case CommandStart:
		session.Clear()

		r := s.reply(session, greetingMessage)
		r.Options = corpus.ProgramNames()

		return r
	default:
		// unknown commands get the help text too
		r := s.reply(session, helpMessage)
		if session.State() == sessions.StateAwaitingProgram {
			r.Options = corpus.ProgramNames()
		}

		return r
	}
}

func (s *Shell) handleSelection(session *sessions.Session, input string) Reply {
	program, ok := corpus.ParseProgram(input)
	if !ok {
		r := s.reply(session, choosePromptMessage)
		r.Options = corpus.ProgramNames()

		return r
	}

	session.Select(program)

	return s.reply(session, fmt.Sprintf(selectedMessageFormat, program))
}

func (s *Shell) reply(session *sessions.Session, text string) Reply {
	return Reply{
		Messages: SplitMessage(text, s.maxMessageLength),
		State:    session.State(),
		Program:  session.Program(),
	}
}
