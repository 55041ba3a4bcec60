package migration

import "strings"

// PathIndex maps normalized folder paths to created item ids. Document
// ingestion registers every new item under both its raw folder-stem path and
// a title-normalized variant; parent and attachment resolution read it.
// The index is scoped to one import run.
type PathIndex struct {
	paths map[string]string
}

// NewPathIndex creates an empty PathIndex.
func NewPathIndex() *PathIndex {
	return &PathIndex{paths: make(map[string]string)}
}

// Register records the item created from a document path. The document's
// folder stem (path without extension) becomes a key, as does the variant
// with the legacy export id stripped, so both raw paths and cleaned titles
// resolve descendants.
func (x *PathIndex) Register(filePath, itemID string) {
	normalized := strings.ReplaceAll(filePath, "\\", "/")
	dir := directoryPath(normalized)
	stem := stripExtension(fileName(normalized))

	x.paths[collapseSlashes(dir+"/"+stem)] = itemID
	x.paths[collapseSlashes(dir+"/"+normalizeTitle(stem))] = itemID
}

// ResolveParent walks up a document's directory chain and returns the first
// registered ancestor's item id, or "" when none is registered.
func (x *PathIndex) ResolveParent(filePath string) string {
	dir := directoryPath(strings.ReplaceAll(filePath, "\\", "/"))
	for dir != "" {
		if itemID, ok := x.paths[dir]; ok {
			return itemID
		}
		dir = directoryPath(dir)
	}
	return ""
}

// BestPrefixMatch returns the item id of the longest registered key that is a
// strict path-prefix of filePath, or "" when nothing covers it.
func (x *PathIndex) BestPrefixMatch(filePath string) string {
	normalized := strings.ReplaceAll(filePath, "\\", "/")
	best := ""
	for key := range x.paths {
		if strings.HasPrefix(normalized, key+"/") && len(key) > len(best) {
			best = key
		}
	}
	if best == "" {
		return ""
	}
	return x.paths[best]
}

// Len reports how many keys are registered. Used by tests and diagnostics.
func (x *PathIndex) Len() int {
	return len(x.paths)
}

func collapseSlashes(path string) string {
	for strings.Contains(path, "//") {
		path = strings.ReplaceAll(path, "//", "/")
	}
	return path
}

// RewriteMap accumulates, per item, every textual reference a document might
// use for an asset (basename, ./basename, full virtual path) mapped to the
// asset's final served URL. Consumed once after all entries are processed.
type RewriteMap map[string]map[string]string

// Register adds all reference forms of one stored asset under an item.
func (m RewriteMap) Register(itemID, fullPath, originalName, fileURL string) {
	rewrites, ok := m[itemID]
	if !ok {
		rewrites = make(map[string]string)
		m[itemID] = rewrites
	}
	normalized := strings.ReplaceAll(fullPath, "\\", "/")
	rewrites[originalName] = fileURL
	rewrites["./"+originalName] = fileURL
	rewrites[normalized] = fileURL
	rewrites[fileName(normalized)] = fileURL
}

// Resolve maps one reference to its served URL: exact normalized path first,
// then basename, then ./basename. Returns "" when nothing matches.
func resolveRewrite(rewrites map[string]string, value string) string {
	if strings.TrimSpace(value) == "" {
		return ""
	}
	normalized := strings.ReplaceAll(value, "\\", "/")
	if url, ok := rewrites[normalized]; ok {
		return url
	}
	name := fileName(normalized)
	if url, ok := rewrites[name]; ok {
		return url
	}
	if url, ok := rewrites["./"+name]; ok {
		return url
	}
	return ""
}
