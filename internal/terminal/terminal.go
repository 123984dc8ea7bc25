// Package terminal simulates a shell inside the workspace. Nothing is
// executed: every command is answered from a fixed response table.
package terminal

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Env selects which interpreter the terminal pretends to be.
type Env string

const (
	EnvBash Env = "bash"
	EnvNode Env = "node"
)

// ParseEnv validates an environment name.
func ParseEnv(s string) (Env, error) {
	switch Env(s) {
	case EnvBash, EnvNode:
		return Env(s), nil
	}
	return "", fmt.Errorf("unknown terminal environment %q (want bash or node)", s)
}

// Prompt returns the input prompt for env.
func Prompt(env Env) string {
	if env == EnvNode {
		return "> "
	}
	return "$ "
}

// ClearScreen is the output of clear: erase display, cursor home.
const ClearScreen = "\x1b[2J\x1b[H"

// WorkDir is the directory the simulated shell reports.
const WorkDir = "/Users/workspace/skill-builder"

var bashFixed = map[string]string{
	"pwd":      WorkDir,
	"whoami":   "developer",
	"hostname": "skill-builder-workspace",
	"uname":    "Darwin skill-builder-workspace 23.0.0",
	"uname -a": "Darwin skill-builder-workspace 23.0.0 Darwin Kernel Version 23.0.0",
}

const bashHelp = `Available commands:
  ls          - List files
  pwd         - Print working directory
  echo        - Print message
  cat         - Display file contents
  mkdir       - Create directory
  touch       - Create file
  rm          - Remove file
  cd          - Change directory
  whoami      - Display current user
  date        - Display current date
  clear       - Clear terminal
  help        - Show this help`

const nodeHelp = `.break    Sometimes you get stuck, this gets you out
.clear    Clear the REPL
.exit     Exit the REPL
.help     Print this help message
.save     Save all evaluated commands to a file
.load     Load JS from a file into the REPL session`

// Handler answers commands. The zero value is ready to use.
type Handler struct {
	// Listing is what ls prints; nil uses the default skill folder listing.
	Listing []string
	// Now supplies the time for date; nil uses time.Now.
	Now func() time.Time
}

var defaultListing = []string{"Skill.md", "README.md", "scripts/", "types/", "config.json"}

// Execute returns the output of line in env. Empty input yields empty output.
func (h *Handler) Execute(line string, env Env) string {
	if env == EnvNode {
		return h.node(strings.TrimSpace(line))
	}
	return h.bash(strings.TrimSpace(line))
}

func (h *Handler) bash(cmd string) string {
	if cmd == "" {
		return ""
	}
	if cmd == "clear" {
		return ClearScreen
	}
	if out, ok := bashFixed[cmd]; ok {
		return out
	}
	name, rest, _ := strings.Cut(cmd, " ")
	switch {
	case cmd == "date":
		now := time.Now
		if h.Now != nil {
			now = h.Now
		}
		return now().Format(time.UnixDate)
	case name == "ls":
		listing := h.Listing
		if listing == nil {
			listing = defaultListing
		}
		return strings.Join(listing, "\n")
	case name == "echo" && rest != "":
		return unquote(rest)
	case name == "cat" && rest != "":
		return fmt.Sprintf("Content of %s (mock data)", rest)
	case (name == "mkdir" || name == "touch") && rest != "":
		return "Created: " + rest
	case name == "rm" && rest != "":
		return "Removed: " + rest
	case name == "cd" && rest != "":
		return ""
	case cmd == "help":
		return bashHelp
	}
	return fmt.Sprintf("bash: %s: command not found", name)
}

var (
	arithmetic  = regexp.MustCompile(`^(\d+)\s*([-+*/])\s*(\d+)$`)
	consoleLog  = regexp.MustCompile(`^console\.log\((.*)\)`)
	quoted      = regexp.MustCompile("^['\"`].*['\"`]$")
	integerOnly = regexp.MustCompile(`^\d+$`)
)

func (h *Handler) node(expr string) string {
	switch {
	case expr == "":
		return ""
	case expr == "clear" || expr == ".clear":
		return ClearScreen
	case expr == ".exit":
		return "Exiting Node.js REPL..."
	case expr == ".help":
		return nodeHelp
	case arithmetic.MatchString(expr):
		out, _ := evaluate(expr)
		return out
	}
	if m := consoleLog.FindStringSubmatch(expr); m != nil {
		if out, ok := evaluate(strings.TrimSpace(m[1])); ok {
			return out
		}
		return "undefined"
	}
	for _, kw := range []string{"let ", "const ", "var "} {
		if strings.HasPrefix(expr, kw) {
			return "undefined"
		}
	}
	if quoted.MatchString(expr) || integerOnly.MatchString(expr) {
		if out, ok := evaluate(expr); ok {
			return out
		}
		return "Error: Invalid or unexpected token"
	}
	return fmt.Sprintf("'%s' (expression evaluation simulated)", expr)
}

// evaluate handles the expressions the REPL understands: integer literals,
// quoted strings, and one binary operation on two integers.
func evaluate(expr string) (string, bool) {
	if m := arithmetic.FindStringSubmatch(expr); m != nil {
		a, err1 := strconv.ParseFloat(m[1], 64)
		b, err2 := strconv.ParseFloat(m[3], 64)
		if err1 != nil || err2 != nil {
			return "", false
		}
		var v float64
		switch m[2] {
		case "+":
			v = a + b
		case "-":
			v = a - b
		case "*":
			v = a * b
		case "/":
			v = a / b
		}
		return formatNumber(v), true
	}
	if integerOnly.MatchString(expr) {
		v, err := strconv.ParseFloat(expr, 64)
		if err != nil {
			return "", false
		}
		return formatNumber(v), true
	}
	if len(expr) >= 2 && quoted.MatchString(expr) && expr[0] == expr[len(expr)-1] {
		return expr[1 : len(expr)-1], true
	}
	return "", false
}

// unquote strips one leading and one trailing quote character.
func unquote(s string) string {
	if strings.HasPrefix(s, `"`) || strings.HasPrefix(s, "'") {
		s = s[1:]
	}
	if strings.HasSuffix(s, `"`) || strings.HasSuffix(s, "'") {
		s = s[:len(s)-1]
	}
	return s
}

func formatNumber(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "Infinity"
	case math.IsInf(v, -1):
		return "-Infinity"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
