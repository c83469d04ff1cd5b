package util

import "strings"

// UniqueStrings trims the items and drops blanks and repeats, keeping the first
// occurrence of each in order
func UniqueStrings(items []string) []string {
	seen := make(map[string]bool, len(items))
	var list []string

	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" || seen[item] {
			continue
		}

		seen[item] = true
		list = append(list, item)
	}

	return list
}
