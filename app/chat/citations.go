package chat

import (
	"regexp"
	"strings"
)

var (
	bracketGroup = regexp.MustCompile(`(\s?)\[([^\[\]]*)\]`)
	fileLike     = regexp.MustCompile(`^[^\[\]/\\]+\.[A-Za-z0-9]{1,5}$`)
	citationSep  = regexp.MustCompile(`\s*[,;]\s*|\s+(?:and|&)\s+`)
)

// guardCitations rewrites merged citations like [a.pdf, b.pdf] into [a.pdf][b.pdf].
// When strict is set only sources in allowed survive; every other bracket
// group is dropped and stray brackets are neutralised.
func guardCitations(answer string, allowed map[string]bool, strict bool) string {
	out := bracketGroup.ReplaceAllStringFunc(answer, func(group string) string {
		m := bracketGroup.FindStringSubmatch(group)
		lead, inner := m[1], m[2]

		parts := citationSep.Split(strings.TrimSpace(inner), -1)
		allFiles := true
		for _, p := range parts {
			if !fileLike.MatchString(p) {
				allFiles = false
				break
			}
		}

		if !strict {
			if !allFiles || len(parts) < 2 {
				return group
			}
			return lead + joinCitations(parts)
		}

		kept := parts[:0]
		for _, p := range parts {
			if allowed[p] {
				kept = append(kept, p)
			}
		}
		if len(kept) == 0 {
			return ""
		}
		return lead + joinCitations(kept)
	})

	if strict {
		out = neutraliseStrays(out)
	}
	return out
}

func joinCitations(sources []string) string {
	var b strings.Builder
	for _, s := range sources {
		b.WriteString("[" + s + "]")
	}
	return b.String()
}

// neutraliseStrays turns brackets that do not close a kept citation into parens.
func neutraliseStrays(s string) string {
	idx := bracketGroup.FindAllStringIndex(s, -1)
	var b strings.Builder
	last := 0
	for _, r := range idx {
		b.WriteString(strayReplacer.Replace(s[last:r[0]]))
		b.WriteString(s[r[0]:r[1]])
		last = r[1]
	}
	b.WriteString(strayReplacer.Replace(s[last:]))
	return b.String()
}

var strayReplacer = strings.NewReplacer("[", "(", "]", ")")
