package migration

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"strings"
)

// ArchiveEntry is one file extracted from the (possibly nested) upload.
// Path concatenates every enclosing archive name and the inner entry name,
// forward-slash separated, and uniquely identifies the entry within one run.
type ArchiveEntry struct {
	Path string
	Data []byte
}

// WalkLimits bounds recursive archive expansion. Nested archives past
// MaxDepth and entries past the cumulative MaxBytes decompressed budget are
// reported as failures instead of being expanded, so a crafted archive cannot
// exhaust memory.
type WalkLimits struct {
	MaxDepth int
	MaxBytes int64
}

// DefaultWalkLimits are used when the caller does not configure limits.
var DefaultWalkLimits = WalkLimits{MaxDepth: 5, MaxBytes: 256 << 20}

// extractEntries flattens a ZIP archive, recursing into nested ZIPs with the
// enclosing virtual path as the new display name. A corrupt archive at any
// level contributes one failure scoped to that archive's name and no entries
// from that branch; sibling branches are unaffected.
func extractEntries(sourceName string, data []byte, limits WalkLimits) ([]ArchiveEntry, []string) {
	if limits.MaxDepth <= 0 {
		limits.MaxDepth = DefaultWalkLimits.MaxDepth
	}
	if limits.MaxBytes <= 0 {
		limits.MaxBytes = DefaultWalkLimits.MaxBytes
	}
	budget := limits.MaxBytes
	return walkArchive(sourceName, data, limits, 1, &budget)
}

func walkArchive(sourceName string, data []byte, limits WalkLimits, depth int, budget *int64) ([]ArchiveEntry, []string) {
	var out []ArchiveEntry
	var failures []string

	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		failures = append(failures, archiveFailure(sourceName, err))
		return nil, failures
	}

	for _, file := range reader.File {
		if file.FileInfo().IsDir() {
			continue
		}

		entryBytes, err := readZipFile(file, budget)
		if err != nil {
			failures = append(failures, archiveFailure(sourceName, err))
			continue
		}

		fullPath := sourceName + "/" + strings.ReplaceAll(file.Name, "\\", "/")
		if strings.HasSuffix(strings.ToLower(fullPath), ".zip") {
			if depth >= limits.MaxDepth {
				failures = append(failures, archiveFailure(fullPath,
					fmt.Errorf("%w: nesting depth exceeds %d", ErrArchiveRead, limits.MaxDepth)))
				continue
			}
			nested, nestedFailures := walkArchive(fullPath, entryBytes, limits, depth+1, budget)
			out = append(out, nested...)
			failures = append(failures, nestedFailures...)
			continue
		}

		out = append(out, ArchiveEntry{Path: fullPath, Data: entryBytes})
	}

	return out, failures
}

// readZipFile decompresses one entry while charging the shared byte budget.
// The declared size is not trusted; the actual decompressed length counts.
func readZipFile(file *zip.File, budget *int64) ([]byte, error) {
	rc, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrArchiveRead, err)
	}
	defer rc.Close()

	if *budget <= 0 {
		return nil, fmt.Errorf("%w: decompressed byte budget exhausted", ErrArchiveRead)
	}

	limited := io.LimitReader(rc, *budget+1)
	data, err := io.ReadAll(limited)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrArchiveRead, err)
	}
	if int64(len(data)) > *budget {
		*budget = 0
		return nil, fmt.Errorf("%w: decompressed byte budget exhausted", ErrArchiveRead)
	}
	*budget -= int64(len(data))
	return data, nil
}

func archiveFailure(sourceName string, err error) string {
	return fmt.Sprintf("ZIP 펼치기 실패(%s): %v", sourceName, err)
}

// pathDepth counts path separators; documents are processed shallowest first
// so container folders register before their descendants.
func pathDepth(path string) int {
	return strings.Count(path, "/")
}
