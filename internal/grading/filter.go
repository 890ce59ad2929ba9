package grading

// FilterApplicable returns the requirements that apply under method, in
// their original order. With no method every requirement applies.
func FilterApplicable(reqs []Requirement, method ProjectMethod) []Requirement {
	if method == MethodNone {
		return reqs
	}
	out := make([]Requirement, 0, len(reqs))
	for _, r := range reqs {
		if s, ok := r.(ScopedRequirement); ok && s.Method != MethodNone && s.Method != method {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Texts maps requirements to their matching text.
func Texts(reqs []Requirement) []string {
	out := make([]string, len(reqs))
	for i, r := range reqs {
		out[i] = r.Text()
	}
	return out
}

// validTicked keeps the ticked texts that name an applicable requirement,
// in ticked order and without duplicates.
func validTicked(ticked, applicable []string) []string {
	set := toSet(applicable)
	seen := make(map[string]struct{}, len(ticked))
	out := make([]string, 0, len(ticked))
	for _, t := range ticked {
		if _, ok := set[t]; !ok {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

func toSet(arr []string) map[string]struct{} {
	m := make(map[string]struct{}, len(arr))
	for _, s := range arr {
		m[s] = struct{}{}
	}
	return m
}

func indexOf(arr []string, s string) int {
	for i, v := range arr {
		if v == s {
			return i
		}
	}
	return -1
}
