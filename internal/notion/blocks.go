package notion

import "strings"

// Notion block JSON structures. Blocks only exist as children of a
// page-creation payload; they are never persisted on their own.

type Block struct {
	Object           string        `json:"object"`
	Type             string        `json:"type"`
	Paragraph        *RichTextBody `json:"paragraph,omitempty"`
	Heading1         *RichTextBody `json:"heading_1,omitempty"`
	Heading2         *RichTextBody `json:"heading_2,omitempty"`
	Heading3         *RichTextBody `json:"heading_3,omitempty"`
	BulletedListItem *RichTextBody `json:"bulleted_list_item,omitempty"`
	NumberedListItem *RichTextBody `json:"numbered_list_item,omitempty"`
	Quote            *RichTextBody `json:"quote,omitempty"`
	Divider          *struct{}     `json:"divider,omitempty"`
}

type RichTextBody struct {
	RichText []RichText `json:"rich_text"`
}

type RichText struct {
	Type        string       `json:"type"`
	Text        TextSpan     `json:"text"`
	Annotations *Annotations `json:"annotations,omitempty"`
}

type TextSpan struct {
	Content string `json:"content"`
	Link    *Link  `json:"link,omitempty"`
}

type Link struct {
	URL string `json:"url"`
}

type Annotations struct {
	Bold bool `json:"bold,omitempty"`
}

func plainText(content string) []RichText {
	return []RichText{{Type: "text", Text: TextSpan{Content: content}}}
}

func textBlock(blockType, content string) Block {
	b := Block{Object: "block", Type: blockType}
	body := &RichTextBody{RichText: plainText(content)}
	switch blockType {
	case "heading_1":
		b.Heading1 = body
	case "heading_2":
		b.Heading2 = body
	case "heading_3":
		b.Heading3 = body
	case "bulleted_list_item":
		b.BulletedListItem = body
	case "numbered_list_item":
		b.NumberedListItem = body
	case "quote":
		b.Quote = body
	default:
		b.Type = "paragraph"
		b.Paragraph = body
	}
	return b
}

func dividerBlock() Block {
	return Block{Object: "block", Type: "divider", Divider: &struct{}{}}
}

// MarkdownToBlocks converts line-oriented markdown into Notion blocks.
// This is a simplified converter that handles basic markdown: every
// non-blank line maps to exactly one block, in order, and blank lines
// are skipped.
func MarkdownToBlocks(markdown string) []Block {
	var blocks []Block

	for _, line := range strings.Split(markdown, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}

		switch {
		case strings.HasPrefix(line, "# "):
			blocks = append(blocks, textBlock("heading_1", strings.TrimSpace(line[2:])))
		case strings.HasPrefix(line, "## "):
			blocks = append(blocks, textBlock("heading_2", strings.TrimSpace(line[3:])))
		case strings.HasPrefix(line, "### "):
			blocks = append(blocks, textBlock("heading_3", strings.TrimSpace(line[4:])))
		case strings.HasPrefix(line, "- ") || strings.HasPrefix(line, "* "):
			blocks = append(blocks, textBlock("bulleted_list_item", strings.TrimSpace(line[2:])))
		case len(line) > 2 && line[0] >= '0' && line[0] <= '9' && line[1] == '.':
			blocks = append(blocks, textBlock("numbered_list_item", strings.TrimSpace(line[2:])))
		case isDividerLine(line):
			blocks = append(blocks, dividerBlock())
		case strings.HasPrefix(line, "> "):
			blocks = append(blocks, textBlock("quote", strings.TrimSpace(line[2:])))
		default:
			blocks = append(blocks, textBlock("paragraph", strings.TrimSpace(line)))
		}
	}

	return blocks
}

func isDividerLine(line string) bool {
	switch strings.TrimSpace(line) {
	case "---", "***", "___":
		return true
	}
	return false
}
