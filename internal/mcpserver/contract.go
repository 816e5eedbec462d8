package mcpserver

// DocumentFormat describes how quire reads documents from the content root,
// for LLM consumers that browse or author content.
const DocumentFormat = `# quire Document Format

Every document is a Markdown file below the content root.

## Paths

- The logical path is the file path relative to the content root, without
  the extension: ` + "`" + `tech/rust-lang.md` + "`" + ` is served as ` + "`" + `tech/rust-lang` + "`" + `.
- Segments may only contain ASCII letters, digits, ` + "`" + `-` + "`" + ` and ` + "`" + `_` + "`" + `.
  Files whose names fall outside that set are not served.
- Directories starting with ` + "`" + `.` + "`" + ` or ` + "`" + `_` + "`" + ` are ignored, as are empty files,
  symlinks and excluded paths; ignored documents cannot be read by path either.
- Every directory is a category; files at the top level belong to the root
  category.

## Metadata header

` + "```" + `markdown
---
title: Human-readable title   # OPTIONAL; defaults to the last path segment
author: Jane Doe              # OPTIONAL
date: 20-01-2025              # OPTIONAL; day-month-year, DD-MM-YYYY
---

Body text in standard Markdown (GFM tables, task lists, footnotes).
` + "```" + `

1. The opening ` + "`" + `---` + "`" + ` must be the first line of the file.
2. The header ends at the next line consisting only of ` + "`" + `---` + "`" + `. Without it, the
   whole file is body.
3. The header is a YAML mapping. Keys other than title, author and date are
   kept but not interpreted.
4. A header that is not valid YAML does not hide the document: it is served
   with default metadata.
5. Dates in any other layout are kept as text but the document counts as
   undated and sorts last by date.

## Rendering

Bodies are rendered to HTML and sanitized: scripts, iframes, styles, event
handler attributes and unsafe URLs are removed. The render_markdown tool
previews any source through the same pipeline without saving it.

## Search

Search is a case-insensitive substring match of a 1-100 character query
against title, body text, path, date and author.
`
