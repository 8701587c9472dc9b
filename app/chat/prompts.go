package chat

import (
	"strings"

	"GoRAGWorkshop/app/rag"
)

type Mode string

const (
	ModeStrict   Mode = "strict"
	ModeFlexible Mode = "flexible"
)

const promptPreamble = `Assistant helps the ING company customers with support questions regarding terms of service, privacy policy, and questions about investments.
Be brief in your answers.
`

const promptStrictRules = `Answer ONLY with the facts listed in the list of sources below.
If there isn't enough information below, say you don't know.
Do not generate answers that don't use the sources below.
`

const promptFormatting = `If asking a clarifying question to the user would help, ask the question.
For tabular information return it as an html table.
Do not return markdown format.
If the question is not in English, answer in the language used in the question.
Each source has a name followed by colon and the actual information, always include the source name for each fact you use in the response.
Use square brackets to reference the source, for example: [info1.txt].
Don't combine sources, list each source separately, for example: [info1.txt][info2.pdf].
Here is the question: {{userMessage}}

`

var templates = map[Mode]string{
	ModeFlexible: promptPreamble + promptFormatting +
		"Answer with the help of this information:\n{{contents}}\n",
	ModeStrict: promptPreamble + promptStrictRules + promptFormatting +
		"Answer using the following information:\n{{contents}}\n",
}

func ParseMode(s string) (Mode, bool) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeStrict, ModeFlexible:
		return m, true
	}
	return "", false
}

// Render fills the template for mode with the question and the retrieved
// segments, each as "filename: text".
func Render(mode Mode, question string, hits []rag.ScoredSegment) string {
	tpl, ok := templates[mode]
	if !ok {
		tpl = templates[ModeStrict]
	}
	return strings.NewReplacer(
		"{{userMessage}}", question,
		"{{contents}}", formatContents(hits),
	).Replace(tpl)
}

func formatContents(hits []rag.ScoredSegment) string {
	parts := make([]string, 0, len(hits))
	for _, h := range hits {
		parts = append(parts, h.Source+": "+h.Text)
	}
	return strings.Join(parts, "\n\n")
}
