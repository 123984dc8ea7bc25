package terminal

import "fmt"

// Session is one terminal tab: an environment, its history, and a handler.
type Session struct {
	ID      string
	Env     Env
	History History
	Handler Handler
}

// NewSession returns a session in env.
func NewSession(id string, env Env) *Session {
	return &Session{ID: id, Env: env}
}

// Submit records line in the history and returns its output.
func (s *Session) Submit(line string) string {
	s.History.Add(line)
	return s.Handler.Execute(line, s.Env)
}

// SwitchEnv changes the interpreter and returns the notice to print.
func (s *Session) SwitchEnv(env Env) string {
	s.Env = env
	name := "Bash"
	if env == EnvNode {
		name = "Node.js"
	}
	return fmt.Sprintf("Switched to %s environment", name)
}

// Prompt returns the session's current prompt.
func (s *Session) Prompt() string { return Prompt(s.Env) }
