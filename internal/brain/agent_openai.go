package brain

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"basegraph.app/triage/common/llm"
	"basegraph.app/triage/internal/model"
)

type TriageAnswer struct {
	Finding       string   `json:"finding" jsonschema_description:"Most likely root cause in one or two sentences"`
	Confidence    string   `json:"confidence" jsonschema:"enum=HIGH,enum=MED,enum=LOW" jsonschema_description:"Confidence in the finding"`
	Justification string   `json:"justification" jsonschema_description:"Why this confidence level"`
	Evidence      []string `json:"evidence" jsonschema_description:"Repo paths or runbooks backing the finding"`
	NextSteps     []string `json:"next_steps" jsonschema_description:"Concrete actions for the on-call engineer"`
	OpenQuestions []string `json:"open_questions" jsonschema_description:"Data still needed before a definitive claim; empty when none"`
}

var triageAnswerSchema = llm.GenerateSchema[TriageAnswer]()

const openAISystemPrompt = systemFraming + " Answer with JSON matching the provided schema."

const defaultLLMTries = 3

// OpenAIAgent answers through a chat-completions API with structured output
// and renders the result into the same Markdown sections the CLI tier asks for.
type OpenAIAgent struct {
	client    llm.Client
	maxTokens int
	maxTries  uint
}

func NewOpenAIAgent(client llm.Client, maxTokens int) *OpenAIAgent {
	return &OpenAIAgent{client: client, maxTokens: maxTokens, maxTries: defaultLLMTries}
}

func (a *OpenAIAgent) Enabled() bool {
	return a.client != nil
}

func (a *OpenAIAgent) Run(ctx context.Context, req model.TriageRequest, evidence []model.ToolResult) AgentOutcome {
	if !a.Enabled() {
		return AgentOutcome{Status: AgentUnavailable}
	}
	ctx = withComponent(ctx, "triage.brain.openai")

	var answer TriageAnswer
	resp, err := llm.ChatWithRetry(ctx, a.client, llm.Request{
		SystemPrompt: openAISystemPrompt,
		UserPrompt:   BuildPrompt(req, evidence),
		SchemaName:   "triage_answer",
		Schema:       triageAnswerSchema,
		MaxTokens:    a.maxTokens,
		Temperature:  llm.Temp(0.2),
	}, &answer, a.maxTries)
	if err != nil {
		return failed(fmt.Errorf("openai triage: %w", err))
	}
	if resp != nil {
		slog.InfoContext(ctx, "openai triage answered",
			"model", a.client.Model(),
			"prompt_tokens", resp.PromptTokens,
			"completion_tokens", resp.CompletionTokens)
	}

	if strings.TrimSpace(answer.Finding) == "" {
		return failed(ErrEmptyAnswer)
	}
	return answered(RenderAnswer(answer))
}

// RenderAnswer formats a structured answer as Markdown. Empty list sections
// are omitted.
func RenderAnswer(a TriageAnswer) string {
	var b strings.Builder

	b.WriteString("**Finding**")
	if a.Confidence != "" {
		fmt.Fprintf(&b, " (%s confidence)", strings.ToUpper(a.Confidence))
	}
	b.WriteString("\n")
	b.WriteString(strings.TrimSpace(a.Finding))
	if j := strings.TrimSpace(a.Justification); j != "" {
		b.WriteString("\n")
		b.WriteString(j)
	}

	writeSection(&b, "Evidence", a.Evidence)
	writeSection(&b, "Next steps", a.NextSteps)
	writeSection(&b, "Open questions", a.OpenQuestions)
	return b.String()
}

func writeSection(b *strings.Builder, title string, items []string) {
	var kept []string
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			kept = append(kept, item)
		}
	}
	if len(kept) == 0 {
		return
	}
	fmt.Fprintf(b, "\n\n**%s**", title)
	for _, item := range kept {
		b.WriteString("\n- ")
		b.WriteString(item)
	}
}
