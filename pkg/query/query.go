// Copyright (c) 2026 NutriSync. All rights reserved.

// Package query provides fault-tolerant parsing helpers for delimited
// string values (query parameters, comma-separated env settings).
package query

import "strings"

// StringSlice parses a single comma-separated string into a trimmed slice.
// Empty segments are dropped; an empty input yields nil.
func StringSlice(val string) []string {
	if val == "" {
		return nil
	}
	var res []string
	for _, v := range strings.Split(val, ",") {
		clean := strings.TrimSpace(v)
		if clean != "" {
			res = append(res, clean)
		}
	}
	return res
}
