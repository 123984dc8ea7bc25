package transcript

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
)

// Parser deserializes a transcript file back into structured data.
type Parser interface {
	Parse(data []byte) (*Transcript, error)
}

// ParserFor picks a parser by sniffing data: JSON objects go to JSONParser,
// everything else to MarkdownParser.
func ParserFor(data []byte) Parser {
	if bytes.HasPrefix(bytes.TrimSpace(data), []byte("{")) {
		return &JSONParser{}
	}
	return &MarkdownParser{}
}

// JSONParser parses a JSON-encoded Transcript.
type JSONParser struct{}

func (p *JSONParser) Parse(data []byte) (*Transcript, error) {
	var t Transcript
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to parse JSON transcript: %w", err)
	}
	return &t, nil
}

// MarkdownParser recovers a Transcript from the payload embedded by
// MarkdownRenderer. The visible Markdown is ignored.
type MarkdownParser struct{}

func (p *MarkdownParser) Parse(data []byte) (*Transcript, error) {
	content := string(data)
	if !strings.Contains(content, versionSentinel) {
		return nil, fmt.Errorf("not a skillbench transcript: missing version sentinel")
	}
	start := strings.Index(content, dataPrefix)
	if start == -1 {
		return nil, fmt.Errorf("not a skillbench transcript: missing data payload")
	}
	start += len(dataPrefix)
	end := strings.Index(content[start:], dataSuffix)
	if end == -1 {
		return nil, fmt.Errorf("not a skillbench transcript: malformed data payload")
	}
	raw, err := base64.StdEncoding.DecodeString(content[start : start+end])
	if err != nil {
		return nil, fmt.Errorf("not a skillbench transcript: corrupted base64 payload: %w", err)
	}
	var t Transcript
	if err := json.Unmarshal(raw, &t); err != nil {
		return nil, fmt.Errorf("not a skillbench transcript: failed to parse embedded JSON: %w", err)
	}
	return &t, nil
}
