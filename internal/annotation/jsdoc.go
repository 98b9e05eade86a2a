package annotation

import "strings"

// ParseDoc extracts tags from a documentation comment. Each `@name value`
// line becomes one tag; continuation lines extend the previous value. Text
// before the first tag becomes the description unless @description is
// given. A tag with no value is recorded as "true".
func ParseDoc(doc string) Tags {
	lines := docLines(doc)
	var (
		tags    Tags
		body    []string
		current string
		value   []string
	)
	flush := func() {
		if current == "" {
			return
		}
		if tags == nil {
			tags = make(Tags)
		}
		v := strings.TrimSpace(strings.Join(value, " "))
		if v == "" {
			v = "true"
		}
		tags[canonicalName(current)] = v
		current, value = "", nil
	}
	for _, line := range lines {
		if strings.HasPrefix(line, "@") {
			flush()
			name, rest, _ := strings.Cut(line[1:], " ")
			current = strings.TrimSpace(name)
			if rest = strings.TrimSpace(rest); rest != "" {
				value = append(value, rest)
			}
			continue
		}
		if current != "" {
			if line != "" {
				value = append(value, line)
			}
			continue
		}
		if line != "" {
			body = append(body, line)
		}
	}
	flush()

	if len(body) > 0 && !tags.Has(TagDescription) {
		if tags == nil {
			tags = make(Tags)
		}
		tags[TagDescription] = strings.Join(body, " ")
	}
	return tags
}

// docLines strips comment delimiters and leading asterisks.
func docLines(doc string) []string {
	doc = strings.TrimSpace(doc)
	doc = strings.TrimPrefix(doc, "/**")
	doc = strings.TrimPrefix(doc, "/*")
	doc = strings.TrimSuffix(doc, "*/")
	var out []string
	for _, line := range strings.Split(doc, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimPrefix(line, "*")
		out = append(out, strings.TrimSpace(line))
	}
	return out
}

// stripQuotes removes surrounding double or single quotes from a string.
func stripQuotes(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
