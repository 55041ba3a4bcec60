package migration

import (
	"regexp"
	"strings"
)

// trailingIDPattern matches the 32-hex-character page id the legacy export
// appends to folder and file names.
var trailingIDPattern = regexp.MustCompile(`(?i)\s+[0-9a-f]{32}$`)

// placeholderTitle labels items whose title could not be derived from input.
const placeholderTitle = "이관 항목"

func fileName(path string) string {
	idx := strings.LastIndex(path, "/")
	if idx < 0 {
		return path
	}
	return path[idx+1:]
}

func directoryPath(path string) string {
	idx := strings.LastIndex(path, "/")
	if idx < 0 {
		return ""
	}
	return path[:idx]
}

func stripExtension(name string) string {
	idx := strings.LastIndex(name, ".")
	if idx < 0 {
		return name
	}
	return name[:idx]
}

func extensionOf(path string) string {
	name := strings.ToLower(fileName(path))
	idx := strings.LastIndex(name, ".")
	if idx < 0 {
		return ""
	}
	return name[idx+1:]
}

// normalizeTitle strips the trailing legacy export id and falls back to the
// placeholder label for blank input.
func normalizeTitle(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return placeholderTitle
	}
	normalized := strings.TrimSpace(trailingIDPattern.ReplaceAllString(trimmed, ""))
	if normalized == "" {
		return placeholderTitle
	}
	return normalized
}

// levelFromDate is the folder-depth distance between a document and the
// nearest ancestor path segment recognized as a date. Archive segments
// (*.zip) do not count as levels. No date segment means level 0.
func levelFromDate(path string) int {
	if path == "" {
		return 0
	}
	normalized := strings.ReplaceAll(path, "\\", "/")

	var segments []string
	for _, segment := range strings.Split(normalized, "/") {
		if strings.TrimSpace(segment) == "" {
			continue
		}
		if strings.HasSuffix(strings.ToLower(segment), ".zip") {
			continue
		}
		segments = append(segments, segment)
	}
	if len(segments) == 0 {
		return 0
	}

	dateIndex := -1
	for i, segment := range segments {
		if _, ok := ParseFlexibleDate(stripExtension(segment)); ok {
			dateIndex = i
			break
		}
	}
	if dateIndex < 0 {
		return 0
	}
	level := len(segments) - 1 - dateIndex
	if level < 0 {
		return 0
	}
	return level
}
