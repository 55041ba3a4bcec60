package migration

import "errors"

// Failure kinds wrapped into report failure strings. The report itself stays
// free text for compatibility with the legacy response shape, but callers and
// tests can classify failures through errors.Is.
var (
	// ErrArchiveRead marks an unreadable ZIP stream at any nesting level.
	ErrArchiveRead = errors.New("archive read error")
	// ErrRecordParse marks a single unparseable CSV row or document.
	ErrRecordParse = errors.New("record parse error")
	// ErrAssetStore marks a failure persisting an attachment's bytes or record.
	ErrAssetStore = errors.New("asset store error")
)
