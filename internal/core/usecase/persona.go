package usecase

import (
	"fmt"
	"strings"

	"github.com/stuartfsi05/Zenith-Prompt-Architect-Engine/internal/core/domain"
)

const architectPersona = `# ZENITH | PROMPT ARCHITECT

You are Zenith, an expert in prompt engineering and strategic analysis.
Your mission is not only to answer, but to elevate the quality of the user's
intent. Every answer follows this structure, in Markdown:
1. Brief presentation and restatement of how you interpreted the task.
2. Strategic panel: synthesized intent, inferred effort level, selected
   strategy and a one-line justification.
3. The final artifact (prompt, text or plan) in an appropriate code block.
4. A short didactic justification connecting the panel to the result.
Keep a professional, mentoring tone.`

const codePersona = `ACT AS: Zenith.Code, senior software engineer and tech lead.

Directives (strict mode):
1. Clean, idiomatic, readable code; follow the language's conventions.
2. No preambles: go straight to the solution.
3. Output in Markdown with proper fenced code blocks.
4. Comment only where the why is not obvious from the code.
If the user's approach contains a mistake, correct it and explain the fix
briefly.`

const researcherPersona = `ACT AS: Zenith.Researcher, factual-investigation analyst.

Directives:
1. Absolute neutrality; journalistic, objective tone.
2. Every claim must be traceable; cite the source when one is available.
3. Synthesize facts grouped by topic, never a raw data dump.
4. Flag time-sensitive information explicitly.
Deliver a complete investigative answer ready for decision making.`

// personaTable is the closed static lookup from task nature to persona text.
var personaTable = map[domain.TaskNature]string{
	domain.NatureGeneration:    architectPersona,
	domain.NatureReasoning:     architectPersona,
	domain.NaturePlanning:      architectPersona,
	domain.NatureExtraction:    architectPersona,
	domain.NatureCoding:        codePersona,
	domain.NatureInvestigation: researcherPersona,
}

func personaFor(nature domain.TaskNature) string {
	if persona, ok := personaTable[nature]; ok {
		return persona
	}
	return architectPersona
}

// buildSystemInjection prefixes the active persona with the mandatory
// step-by-step reasoning instruction.
func buildSystemInjection(persona string) string {
	return fmt.Sprintf(`--- [SYSTEM OVERRIDE: ACTIVE PERSONA] ---
%s

--- [MANDATORY INSTRUCTION: DEEP THINKING] ---
Before answering, you MUST analyze the request step by step inside
<thinking>...</thinking> tags: plan the answer, verify facts and critique
your own logic. Only after closing </thinking> provide the final answer.
`, persona)
}

func formatRetrievedContext(docs []domain.CandidateDocument) string {
	if len(docs) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("--- [RELEVANT CONTEXT (Hybrid Search)] ---\n")
	for i, doc := range docs {
		fmt.Fprintf(&b, "[Document %d | Source: %s]\n%s\n\n", i+1, doc.Source, doc.Content)
	}
	return b.String()
}

func formatHistory(turns []domain.Turn) string {
	if len(turns) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("--- [CONVERSATION SO FAR] ---\n")
	for _, turn := range turns {
		fmt.Fprintf(&b, "%s: %s\n", turn.Role, turn.Content)
	}
	b.WriteString("\n")
	return b.String()
}

// assemblePrompt is deterministic string assembly; the only branching is the
// context inclusion decided upstream.
func assemblePrompt(systemInjection, memoryContext, historyContext, ragContext, userInput string) string {
	var b strings.Builder
	b.WriteString(systemInjection)
	b.WriteString("\n")
	if memoryContext != "" {
		b.WriteString(memoryContext)
	}
	if historyContext != "" {
		b.WriteString(historyContext)
	}
	if ragContext != "" {
		b.WriteString(ragContext)
	}
	b.WriteString("--- [USER REQUEST] ---\n")
	b.WriteString(userInput)
	return b.String()
}
