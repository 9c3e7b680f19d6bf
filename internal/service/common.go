package service

import "strings"

func normalizeName(name string) string {
	return strings.TrimSpace(strings.ToLower(name))
}
