package migration

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"schedulemanager/internal/contextutil"
	"schedulemanager/internal/storage"
)

// assetExtensions are the attachment types carried over from the legacy
// export. Anything else in the archive is ignored.
var assetExtensions = map[string]bool{
	"png": true, "jpg": true, "jpeg": true, "webp": true, "gif": true,
	"pdf": true, "txt": true, "csv": true,
	"doc": true, "docx": true, "xls": true, "xlsx": true, "ppt": true, "pptx": true,
}

func mimeForExtension(ext string) string {
	switch ext {
	case "jpg", "jpeg":
		return "image/jpeg"
	case "gif":
		return "image/gif"
	case "webp":
		return "image/webp"
	case "pdf":
		return "application/pdf"
	case "txt":
		return "text/plain"
	case "csv":
		return "text/csv"
	case "doc":
		return "application/msword"
	case "docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case "xls":
		return "application/vnd.ms-excel"
	case "xlsx":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case "ppt":
		return "application/vnd.ms-powerpoint"
	case "pptx":
		return "application/vnd.openxmlformats-officedocument.presentationml.presentation"
	default:
		return "image/png"
	}
}

// storeAssets persists every attachment entry that lives under a registered
// item path. Attachments with no owning item are skipped silently; a storage
// failure records one report entry and moves on.
func (s *Service) storeAssets(ctx context.Context, run *importRun, entries []ArchiveEntry) {
	for _, entry := range entries {
		ext := extensionOf(entry.Path)
		if !assetExtensions[ext] {
			continue
		}
		itemID := run.index.BestPrefixMatch(entry.Path)
		if itemID == "" {
			continue
		}

		mime := mimeForExtension(ext)
		originalName := fileName(entry.Path)
		storedName, err := s.files.Store(originalName, mime, entry.Data)
		if err != nil {
			run.report.addFailure(fmt.Sprintf("파일 저장 실패(%s): %v",
				entry.Path, fmt.Errorf("%w: %v", ErrAssetStore, err)))
			continue
		}

		asset := &storage.FileAsset{
			UserID:       run.userID,
			ItemID:       itemID,
			OriginalName: originalName,
			StoredName:   storedName,
			MimeType:     mime,
			SizeBytes:    int64(len(entry.Data)),
		}
		if err := s.assets.Create(ctx, asset); err != nil {
			run.report.addFailure(fmt.Sprintf("파일 저장 실패(%s): %v",
				entry.Path, fmt.Errorf("%w: %v", ErrAssetStore, err)))
			continue
		}

		run.rewrites.Register(itemID, entry.Path, originalName, "/files/"+storedName)
		run.report.PersistedFiles++
	}
}

// rewriteAssetReferences replaces document-relative image sources and link
// targets with the stored asset URLs, per item. Blocks that reference nothing
// stored are left untouched; rewrite errors on a single block are logged and
// skipped, matching the record-level failure policy of the other passes.
func (s *Service) rewriteAssetReferences(ctx context.Context, run *importRun) {
	log := contextutil.LoggerFromContext(ctx)

	for itemID, rewrites := range run.rewrites {
		if len(rewrites) == 0 {
			continue
		}
		blocks, err := s.blocks.ListByItem(ctx, itemID)
		if err != nil {
			log.WarnContext(ctx, "failed to list blocks for asset rewrite", "item_id", itemID, "error", err)
			continue
		}
		for _, block := range blocks {
			rawHTML := payloadHTML(block.Content)
			if strings.TrimSpace(rawHTML) == "" {
				continue
			}
			updated, changed := replaceAssetURLs(rawHTML, rewrites)
			if !changed {
				continue
			}
			content, err := payloadWithHTML(block.Content, updated)
			if err != nil {
				log.WarnContext(ctx, "failed to re-encode block payload", "block_id", block.ID, "error", err)
				continue
			}
			if err := s.blocks.UpdateContent(ctx, block.ID, content); err != nil {
				log.WarnContext(ctx, "failed to update rewritten block", "block_id", block.ID, "error", err)
			}
		}
	}
}

// replaceAssetURLs rewrites img[src] and a[href] values that resolve in the
// rewrite map. Returns the updated HTML and whether anything changed.
func replaceAssetURLs(rawHTML string, rewrites map[string]string) (string, bool) {
	nodes, err := parseBodyFragment(rawHTML)
	if err != nil {
		return rawHTML, false
	}

	changed := false
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.ElementNode && (node.Data == "img" || node.Data == "a") {
			attrName := "src"
			if node.Data == "a" {
				attrName = "href"
			}
			for i, attr := range node.Attr {
				if attr.Key != attrName {
					continue
				}
				if url := resolveRewrite(rewrites, attr.Val); url != "" {
					node.Attr[i].Val = url
					changed = true
				}
			}
		}
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	for _, node := range nodes {
		walk(node)
	}

	if !changed {
		return rawHTML, false
	}
	return renderNodes(nodes), true
}
