package mcpserver

// Guide describes how dropnote notes behave, for LLM consumers that read or
// edit them.
const Guide = `# dropnote notes

Notes are plain UTF-8 text kept in a flat, ordered list. Exactly one note is
current; the panel always shows it. There are no titles, folders or tags.

## Tools

- ` + "`read_current_note`" + ` returns the current note with its position ("2 of 5").
- ` + "`list_notes`" + ` returns every note in order with a one-line preview.
- ` + "`update_current_note`" + ` replaces the current note's text.
- ` + "`append_to_current_note`" + ` adds text on a new line at the end.
- ` + "`create_note`" + ` appends a new note after the last one and makes it current.
- ` + "`navigate`" + ` moves to the previous or next note; it stops at either end.

## Formatting

The editor highlights a small Markdown subset; anything else is shown as typed.

- Headings: a line starting with 1 to 6 ` + "`#`" + ` followed by a space.
- Bold: ` + "`*text*`" + ` (single asterisks).
- Italic: ` + "`_text_`" + `.
- Links: ` + "`[text](https://example.com)`" + ` and bare http(s) URLs.

Edits are saved shortly after the last change. Keep notes short: they are
scratch space, not documents.
`
