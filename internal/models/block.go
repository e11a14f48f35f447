package models

import "encoding/json"

// Block is a single unit of note content: a type tag plus an opaque payload.
// Consumers decode only the payloads relevant to them and ignore the rest,
// so unknown block types pass through storage untouched.
type Block struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Known block types.
const (
	BlockParagraph = "paragraph"
	BlockHeading   = "heading"
	BlockQuote     = "quote"
	BlockCode      = "code"
	BlockReference = "reference"
	BlockImage     = "image"
)

// TextData is the payload of paragraph, heading, quote, and code blocks.
type TextData struct {
	Text string `json:"text"`
}

// ReferenceData is the payload of an inline note reference block.
type ReferenceData struct {
	TargetID string `json:"targetId"`
	Label    string `json:"label,omitempty"`
}

// ImageData is the payload of an image block. URL points at an uploaded
// attachment; Alt is the only textual part.
type ImageData struct {
	URL string `json:"url"`
	Alt string `json:"alt,omitempty"`
}

// IsTextBearing reports whether the block type carries a TextData payload.
func (b Block) IsTextBearing() bool {
	switch b.Type {
	case BlockParagraph, BlockHeading, BlockQuote, BlockCode:
		return true
	}
	return false
}

// DecodeText decodes a TextData payload. Returns false for non-text blocks
// or malformed payloads.
func (b Block) DecodeText() (TextData, bool) {
	if !b.IsTextBearing() {
		return TextData{}, false
	}
	var d TextData
	if err := json.Unmarshal(b.Data, &d); err != nil {
		return TextData{}, false
	}
	return d, true
}

// DecodeReference decodes a ReferenceData payload. Returns false for
// non-reference blocks, malformed payloads, or an empty target id.
func (b Block) DecodeReference() (ReferenceData, bool) {
	if b.Type != BlockReference {
		return ReferenceData{}, false
	}
	var d ReferenceData
	if err := json.Unmarshal(b.Data, &d); err != nil {
		return ReferenceData{}, false
	}
	if d.TargetID == "" {
		return ReferenceData{}, false
	}
	return d, true
}

// DecodeImage decodes an ImageData payload. Returns false for non-image
// blocks or malformed payloads.
func (b Block) DecodeImage() (ImageData, bool) {
	if b.Type != BlockImage {
		return ImageData{}, false
	}
	var d ImageData
	if err := json.Unmarshal(b.Data, &d); err != nil {
		return ImageData{}, false
	}
	return d, true
}

// TextBlock builds a text-bearing block of the given type.
func TextBlock(blockType, text string) Block {
	data, _ := json.Marshal(TextData{Text: text})
	return Block{Type: blockType, Data: data}
}

// ReferenceBlock builds an inline reference block.
func ReferenceBlock(targetID, label string) Block {
	data, _ := json.Marshal(ReferenceData{TargetID: targetID, Label: label})
	return Block{Type: BlockReference, Data: data}
}

// ImageBlock builds an image block.
func ImageBlock(url, alt string) Block {
	data, _ := json.Marshal(ImageData{URL: url, Alt: alt})
	return Block{Type: BlockImage, Data: data}
}
