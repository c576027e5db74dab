package patterns

type matchResult struct {
	text   string
	group1 string
	index  int
}

// matchAll runs ent against content, enforcing the per-pattern match cap
// (default 5,000) and an iteration cap (cap*2) as a stall guard, per spec
// §4.2 step 6. RE2-backed entries (the common case) cannot loop
// indefinitely by construction; the iteration guard matters for the
// regexp2 look-around fallback, which is driven by a manual
// FindNextMatch loop.
func (e *Extractor) matchAll(ent *entry, content string, category string, result *Result) []matchResult {
	matchCap := e.matchCap
	iterCap := matchCap * 2

	if ent.re != nil {
		idx := ent.re.FindAllStringSubmatchIndex(content, iterCap)
		out := make([]matchResult, 0, len(idx))
		capped := false
		for i, m := range idx {
			if i >= matchCap {
				capped = true
				break
			}
			mr := matchResult{text: content[m[0]:m[1]], index: m[0]}
			if len(m) >= 4 && m[2] >= 0 {
				mr.group1 = content[m[2]:m[3]]
			}
			out = append(out, mr)
		}
		if capped {
			result.Capped = append(result.Capped, category)
		}
		return out
	}

	if ent.re2 != nil {
		out := make([]matchResult, 0)
		m, err := ent.re2.FindStringMatch(content)
		iterations := 0
		for err == nil && m != nil && iterations < iterCap {
			iterations++
			mr := matchResult{text: m.String(), index: m.Index}
			if groups := m.Groups(); len(groups) > 1 {
				mr.group1 = groups[1].String()
			}
			out = append(out, mr)
			if len(out) >= matchCap {
				result.Capped = append(result.Capped, category)
				break
			}
			m, err = ent.re2.FindNextMatch(m)
		}
		return out
	}

	return nil
}
