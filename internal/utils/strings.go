// Package utils holds small helpers shared by config and HTTP handlers.
package utils

import "strings"

// ParseCSV splits a comma-separated list into trimmed non-empty values.
// Returns nil when nothing remains.
func ParseCSV(s string) []string {
	var result []string
	for _, v := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// ParseCSVValues flattens repeated comma-separated values, as produced by
// query strings like ?symbols=A,B&symbols=C.
func ParseCSVValues(values []string) []string {
	var result []string
	for _, v := range values {
		result = append(result, ParseCSV(v)...)
	}
	return result
}
