// Package loaders implements format-specific document loaders and the
// registry that dispatches files to them by extension.
//
// Each loader turns one file into a domain.Document: resolved path,
// extracted text, format, and content hash. Loaders fail with
// domain.ErrLoad rather than return partial or garbled text. The
// content hash always covers the raw file bytes, so dedup is
// independent of how a format's text extraction evolves.
package loaders
