package mcpserver

// BlockFormatContract describes the block content format that LLM consumers
// must follow when creating or updating notes.
const BlockFormatContract = `# Laguz Note Block Format

A note's content is a JSON array of blocks. Each block has a "type" tag and a
"data" payload. Unknown types are stored untouched but carry no searchable
text and no links.

## Block types

- "paragraph", "heading", "quote", "code" — data: {"text": "..."}
- "reference" — data: {"targetId": "<note id>", "label": "display text"}
- "image" — data: {"url": "/attachments/<filename>", "alt": "description"}

## Rules

1. "reference" blocks link notes together. The target must be an existing
   note id; references to missing notes are dropped silently.
2. A note never links to itself; self-references are ignored.
3. Image URLs must point at uploaded attachments ("/attachments/<filename>",
   no relative paths). Upload first via the attachments endpoint.
4. Text payloads are plain text. Alt text and reference labels are indexed
   for search; URLs are not.

## Example

[
  {"type": "heading", "data": {"text": "Weekly standup"}},
  {"type": "paragraph", "data": {"text": "Attendees: Alice, Bob."}},
  {"type": "reference", "data": {"targetId": "8f14e45f", "label": "roadmap"}},
  {"type": "image", "data": {"url": "/attachments/board.jpg", "alt": "Whiteboard"}}
]
`
