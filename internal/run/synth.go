package run

import (
	"fmt"
	"time"
)

// SynthesizedSteps is the length of the trajectory Synthesize produces.
const SynthesizedSteps = 6

// Synthesize derives a fixed trajectory from the prompt and model. The same
// inputs and start time always produce the same steps.
func Synthesize(prompt, model string, start time.Time) []Step {
	base := start.UnixMilli()
	step := func(n int, typ StepType, offset time.Duration, content string) Step {
		return Step{
			ID:        fmt.Sprintf("step-%d-%d", base, n),
			Type:      typ,
			Content:   content,
			Timestamp: start.Add(offset),
		}
	}
	return []Step{
		step(1, StepMessage, 100*time.Millisecond,
			fmt.Sprintf("Starting analysis with %s...", model)),
		step(2, StepToolCall, 500*time.Millisecond,
			fmt.Sprintf("tool: search\nargs: { \"query\": %q }", truncate(prompt, 50)+"...")),
		step(3, StepResult, 1500*time.Millisecond,
			"Found 5 relevant documents. Analyzing content..."),
		step(4, StepToolCall, 2500*time.Millisecond,
			"tool: analyze\nargs: { \"documents\": 5 }"),
		step(5, StepResult, 4000*time.Millisecond,
			"Analysis complete. Generated response with 3 key points."),
		step(6, StepMessage, 5000*time.Millisecond,
			fmt.Sprintf("Based on the analysis, here are the key findings:\n\n"+
				"1. The primary theme is %s capabilities\n"+
				"2. Performance metrics show 95%% accuracy\n"+
				"3. Recommendations include further testing", model)),
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
