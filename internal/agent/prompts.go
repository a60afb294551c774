package agent

import (
	"fmt"
	"strings"
	"text/template"
)

// Prompt assembly. Templates are parsed once at init; render helpers return
// the filled text.

func systemPrompt(power string) string {
	return fmt.Sprintf("You are playing %s in a game of Diplomacy. Be strategic, honor the output format exactly, and reply with a single JSON object.", power)
}

var ordersTmpl = template.Must(template.New("orders").Parse(`You are {{.Power}}. Phase {{.Phase}}.
{{if .Goals}}
Your goals:
{{range .Goals}}- {{.}}
{{end}}{{end}}{{if .Relationships}}
Your stance toward the other powers:
{{range .Relationships}}- {{.}}
{{end}}{{end}}{{if .Diary}}
Your diary:
{{.Diary}}{{end}}{{if .Directive}}
Your strategy directive:
{{.Directive}}
{{end}}
Current board context:
{{.Context}}

Choose exactly one order per unit, copied verbatim from the possible moves above.
Reply with JSON: {"orders": ["...", "..."]}`))

var messageTmpl = template.Must(template.New("message").Funcs(template.FuncMap{
	"join": strings.Join,
}).Parse(`You are {{.Power}}. Phase {{.Phase}}, negotiation round.
{{if .Goals}}
Your goals:
{{range .Goals}}- {{.}}
{{end}}{{end}}{{if .Relationships}}
Your stance toward the other powers:
{{range .Relationships}}- {{.}}
{{end}}{{end}}{{if .Diary}}
Your diary:
{{.Diary}}{{end}}
Current board context:
{{.Context}}
{{if .Conversation}}
Messages so far this phase:
{{range .Conversation}}{{.}}
{{end}}{{end}}{{if .Forbidden}}
You are awaiting replies and may NOT send a private message to: {{join .Forbidden ", "}}.
{{end}}
Compose one message. Reply with JSON:
{"message_type": "private", "recipient": "POWER", "content": "..."}
or {"message_type": "global", "content": "..."}`))

var planningTmpl = template.Must(template.New("planning").Parse(`You are {{.Power}}. Phase {{.Phase}}, planning.
{{if .Goals}}
Your goals:
{{range .Goals}}- {{.}}
{{end}}{{end}}{{if .Relationships}}
Your stance toward the other powers:
{{range .Relationships}}- {{.}}
{{end}}{{end}}{{if .Journal}}
Notes to self:
{{range .Journal}}- {{.}}
{{end}}{{end}}
Current board context:
{{.Context}}

Write a short strategy directive for this phase: where to expand, whom to court,
whom to guard against. Plain text, a few sentences.`))

var stateTmpl = template.Must(template.New("state").Parse(`You are {{.Power}}. Phase {{.Phase}} has resolved.
{{if .Goals}}
Your goals going in:
{{range .Goals}}- {{.}}
{{end}}{{end}}{{if .Relationships}}
Your stance toward the other powers:
{{range .Relationships}}- {{.}}
{{end}}{{end}}{{if .Diary}}
Your diary:
{{.Diary}}{{end}}
Current board context:
{{.Context}}

Revise your strategic state given how the phase went. Stance levels are
Enemy, Unfriendly, Neutral, Friendly, Ally. Reply with JSON:
{"goals": ["..."], "relationships": {"GERMANY": "Enemy"}, "journal": "one short note to self"}`))

var consolidateTmpl = template.Must(template.New("consolidate").Parse(`You are {{.Power}}. Your private diary has grown long.

Diary entries:
{{range .Entries}}[{{.Phase}}/{{.Kind}}] {{.Content}}
{{end}}
Condense the diary into one summary that preserves commitments made, betrayals
suffered or committed, and standing assessments of each power. Plain text.`))

type ordersPromptData struct {
	Power         string
	Phase         string
	Context       string
	Goals         []string
	Relationships []string
	Diary         string
	Directive     string
}

type messagePromptData struct {
	Power         string
	Phase         string
	Context       string
	Goals         []string
	Relationships []string
	Diary         string
	Conversation  []string
	Forbidden     []string
}

type planningPromptData struct {
	Power         string
	Phase         string
	Context       string
	Goals         []string
	Relationships []string
	Journal       []string
}

type statePromptData struct {
	Power         string
	Phase         string
	Context       string
	Goals         []string
	Relationships []string
	Diary         string
}

type consolidatePromptData struct {
	Power   string
	Entries []DiaryNote
}

func renderOrdersPrompt(data ordersPromptData) (string, error) {
	return render(ordersTmpl, data)
}

func renderMessagePrompt(data messagePromptData) (string, error) {
	return render(messageTmpl, data)
}

func renderPlanningPrompt(data planningPromptData) (string, error) {
	return render(planningTmpl, data)
}

func renderStatePrompt(data statePromptData) (string, error) {
	return render(stateTmpl, data)
}

func renderConsolidatePrompt(data consolidatePromptData) (string, error) {
	return render(consolidateTmpl, data)
}

func render(tmpl *template.Template, data any) (string, error) {
	var b strings.Builder
	if err := tmpl.Execute(&b, data); err != nil {
		return "", err
	}
	return b.String(), nil
}
