package util

import "strings"

// MakeUrl joins parts into a URL without doubling or dropping slashes.
func MakeUrl(parts ...string) string {
	res := ""
	for i, p := range parts {
		if p == "" {
			continue
		}
		p = strings.TrimSuffix(p, "/")
		if i > 0 && !strings.HasPrefix(p, "/") {
			res += "/"
		}
		res += p
	}
	return res
}
