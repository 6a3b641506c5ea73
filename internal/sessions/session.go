package sessions

import "github.com/AndreySuncov/bot-exam/internal/corpus"

func (s *Session) Lock()   { s.mu.Lock() }
func (s *Session) Unlock() { s.mu.Unlock() }

// the accessors below require the session lock

func (s *Session) State() State {
	return s.state
}

// selected program, empty while awaiting a selection
func (s *Session) Program() corpus.Program {
	return s.program
}

func (s *Session) Select(program corpus.Program) {
	s.state = StateActive
	s.program = program
}

// back to awaiting a program selection
func (s *Session) Clear() {
	s.state = StateAwaitingProgram
	s.program = ""
}
