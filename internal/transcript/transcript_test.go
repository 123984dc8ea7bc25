package transcript_test

import (
	"encoding/base64"
	"reflect"
	"strings"
	"testing"
	"time"

	"pgregory.net/rapid"

	"github.com/fakeyudi/skillbench/internal/run"
	"github.com/fakeyudi/skillbench/internal/transcript"
)

func generateTime(t *rapid.T, label string) time.Time {
	sec := rapid.Int64Range(1_700_000_000, 1_800_000_000).Draw(t, label+"_unix_sec")
	return time.Unix(sec, 0).UTC()
}

func generateTranscript(t *rapid.T) *transcript.Transcript {
	created := generateTime(t, "created")
	sess := run.Session{
		ID:        rapid.StringMatching(`session-[0-9]{1,3}`).Draw(t, "session_id"),
		ThreadID:  "thread-1",
		Prompt:    rapid.StringN(1, 80, -1).Draw(t, "prompt"),
		Model:     rapid.SampledFrom([]string{"Claude 3.5 Sonnet", "GPT-4", "Gemini Pro"}).Draw(t, "model"),
		Status:    rapid.SampledFrom([]run.Status{run.StatusCompleted, run.StatusFailed}).Draw(t, "status"),
		CreatedAt: created,
	}
	done := created.Add(time.Duration(rapid.IntRange(0, 600).Draw(t, "secs")) * time.Second)
	sess.CompletedAt = &done
	sess.Cancelled = sess.Status == run.StatusFailed && rapid.Bool().Draw(t, "cancelled")
	n := rapid.IntRange(1, 6).Draw(t, "steps")
	for i := 0; i < n; i++ {
		sess.Trajectory = append(sess.Trajectory, run.Step{
			ID:        rapid.StringMatching(`step-[0-9]{1,6}`).Draw(t, "step_id"),
			Type:      rapid.SampledFrom([]run.StepType{run.StepMessage, run.StepToolCall, run.StepResult, run.StepError}).Draw(t, "step_type"),
			Content:   rapid.StringN(1, 300, -1).Draw(t, "content"),
			Timestamp: generateTime(t, "step_ts"),
		})
	}
	return &transcript.Transcript{
		Thread:     transcript.ThreadMeta{ID: "thread-1", Name: rapid.StringN(1, 30, -1).Draw(t, "thread_name")},
		Session:    sess,
		Version:    "Version 8",
		ExportedAt: generateTime(t, "exported"),
	}
}

// Feature: skillbench, Property 10: transcripts survive a render/parse round trip
func TestTranscriptRoundTrip(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		tr := generateTranscript(rt)
		for _, format := range []string{"markdown", "json"} {
			r, err := transcript.RendererFor(format)
			if err != nil {
				rt.Fatal(err)
			}
			data, err := r.Render(tr)
			if err != nil {
				rt.Fatalf("%s render: %v", format, err)
			}
			got, err := transcript.ParserFor(data).Parse(data)
			if err != nil {
				rt.Fatalf("%s parse: %v", format, err)
			}
			if !reflect.DeepEqual(got, tr) {
				rt.Fatalf("%s round trip mismatch:\n got %+v\nwant %+v", format, got, tr)
			}
		}
	})
}

func TestMarkdownSections(t *testing.T) {
	created := time.Date(2026, 1, 14, 15, 30, 0, 0, time.UTC)
	done := created.Add(5100 * time.Millisecond)
	steps := run.Synthesize("Summarize the Figma blog", "GPT-4", created)
	tr := transcript.New(
		run.Thread{ID: "thread-5", Name: "Run 5"},
		run.Session{
			ID: "session-1", ThreadID: "thread-5", Prompt: "Summarize the Figma blog", Model: "GPT-4",
			Status: run.StatusFailed, Cancelled: true, Trajectory: steps[:2],
			CreatedAt: created, CompletedAt: &done,
		},
		"Version 6", created.Add(time.Minute),
	)
	out, err := (&transcript.MarkdownRenderer{}).Render(tr)
	if err != nil {
		t.Fatal(err)
	}
	md := string(out)
	for _, want := range []string{
		"# Run 5: session-1",
		"- Status: failed (cancelled)",
		"- Version: Version 6",
		"- Duration: 5.1s",
		"- Steps: 2",
		"> Summarize the Figma blog",
		"### 1. message (15:30:00)",
		"### 2. tool_call (15:30:00)",
		"```text\ntool: search",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q:\n%s", want, md)
		}
	}
	if tr.Duration() != 5100*time.Millisecond {
		t.Errorf("Duration = %s", tr.Duration())
	}
}

func TestMarkdownParserRejects(t *testing.T) {
	badJSON := base64.StdEncoding.EncodeToString([]byte("this is not json {{{"))
	cases := map[string]string{
		"plain markdown":    "# Notes\n\n- item\n",
		"no payload":        "<!-- skillbench-transcript-version: 1 -->\n\n# Run\n",
		"corrupt base64":    "<!-- skillbench-transcript-version: 1 -->\n<!-- skillbench-data: !!!nope!!! -->\n",
		"unterminated":      "<!-- skillbench-transcript-version: 1 -->\n<!-- skillbench-data: abc",
		"embedded not json": "<!-- skillbench-transcript-version: 1 -->\n<!-- skillbench-data: " + badJSON + " -->\n",
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := (&transcript.MarkdownParser{}).Parse([]byte(input))
			if err == nil || !strings.Contains(err.Error(), "not a skillbench transcript") {
				t.Errorf("got %v", err)
			}
		})
	}
}

func TestJSONParserRejects(t *testing.T) {
	for _, input := range []string{"", `{"session": {`, "[1, 2]"} {
		if _, err := (&transcript.JSONParser{}).Parse([]byte(input)); err == nil {
			t.Errorf("Parse(%q) should fail", input)
		}
	}
	if _, err := transcript.RendererFor("html"); err == nil {
		t.Error("RendererFor(html) should fail")
	}
}
