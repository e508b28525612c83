package replicate

import "strings"

// ExtractURLs normalizes a prediction output into downloadable URLs. Models
// return a mix of shapes: a bare string, a list of strings, a list of objects
// with a url field, a single such object, or a wrapper keyed by "output".
func ExtractURLs(output any) []string {
	var urls []string
	collectURLs(output, &urls)
	return urls
}

func collectURLs(output any, urls *[]string) {
	switch v := output.(type) {
	case string:
		if valid := cleanURL(v); valid != "" {
			*urls = append(*urls, valid)
		}
	case []any:
		for _, item := range v {
			collectURLs(item, urls)
		}
	case []string:
		for _, item := range v {
			collectURLs(item, urls)
		}
	case map[string]any:
		if u, ok := v["url"]; ok {
			collectURLs(u, urls)
			return
		}
		if inner, ok := v["output"]; ok {
			collectURLs(inner, urls)
		}
	}
}

func cleanURL(raw string) string {
	s := strings.TrimSpace(raw)
	switch s {
	case "", "[object Object]", "undefined", "null":
		return ""
	}
	if !strings.HasPrefix(s, "http://") && !strings.HasPrefix(s, "https://") {
		return ""
	}
	return s
}
