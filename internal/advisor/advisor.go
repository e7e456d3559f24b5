// Package advisor asks a language model for dietician notes on a finished
// plan and renders them as HTML.
package advisor

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"strings"
	"text/template"
	"time"

	"ai-dietician/internal/food"
	"ai-dietician/internal/intake"
	"ai-dietician/internal/llm"
	"ai-dietician/internal/mealplan"
	"ai-dietician/internal/shared"
)

const agentName = "Advisor"

//go:embed advisor_prompt.md
var advisorPrompt string

var promptTemplate = template.Must(template.New("advisor").
	Funcs(template.FuncMap{"join": strings.Join}).
	Parse(advisorPrompt))

// Request is what the advisor needs to know about a plan.
type Request struct {
	Assessment *intake.Assessment
	Preference food.Preference
	Allergies  []string
	Plan       *mealplan.DailyPlan
}

type advisorPromptData struct {
	Assessment    *intake.Assessment
	DailyCalories float64
	Preference    food.Preference
	Allergies     []string
	Meals         []mealplan.MealPlan
	Totals        mealplan.Nutrients
}

// Advice is the generated dietician notes.
type Advice struct {
	Markdown string           `json:"markdown"`
	HTML     string           `json:"html"`
	Meta     shared.AgentMeta `json:"meta"`
}

// Advisor generates dietician notes with a TextGenerator.
type Advisor struct {
	generator llm.TextGenerator
}

// New creates an Advisor.
func New(generator llm.TextGenerator) *Advisor {
	return &Advisor{generator: generator}
}

// Advise produces notes for req.Plan. Meta is filled even when rendering
// fails so token usage can still be recorded.
func (a *Advisor) Advise(ctx context.Context, req Request) (Advice, error) {
	if req.Plan == nil {
		return Advice{}, fmt.Errorf("advisor: no plan to review")
	}
	start := time.Now()

	prompt, err := buildAdvisorPrompt(req)
	if err != nil {
		return Advice{}, fmt.Errorf("failed to build advisor prompt: %w", err)
	}

	resp, err := a.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return Advice{}, fmt.Errorf("failed to generate advice: %w", err)
	}

	advice := Advice{
		Markdown: stripFence(resp.Content),
		Meta: shared.AgentMeta{
			AgentName: agentName,
			Usage:     resp.Usage,
			Latency:   time.Since(start),
		},
	}

	advice.HTML, err = RenderHTML(advice.Markdown)
	if err != nil {
		return advice, fmt.Errorf("failed to render advice: %w", err)
	}
	return advice, nil
}

func buildAdvisorPrompt(req Request) (string, error) {
	pref := req.Preference
	if pref == "" {
		pref = food.PreferenceAny
	}

	data := advisorPromptData{
		Assessment: req.Assessment,
		Preference: pref,
		Allergies:  req.Allergies,
		Meals:      req.Plan.Meals,
		Totals:     req.Plan.Totals,
	}
	for _, m := range req.Plan.Meals {
		data.DailyCalories += m.Target
	}

	var buf bytes.Buffer
	if err := promptTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// stripFence removes a ``` wrapper some models put around the whole answer.
func stripFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") || !strings.HasSuffix(s, "```") || len(s) < 6 {
		return s
	}
	s = strings.TrimSuffix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	} else {
		s = strings.TrimPrefix(s, "```")
	}
	return strings.TrimSpace(s)
}
