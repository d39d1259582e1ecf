package notion

import "startpage/internal/block"

// renderBlock converts a content block into its wire shape. Children are
// deliberately not rendered; the persister appends them in separate calls.
func renderBlock(b block.Block) map[string]any {
	switch b.Kind {
	case block.Divider:
		return map[string]any{"type": "divider", "divider": map[string]any{}}
	case block.Heading1:
		h := map[string]any{"rich_text": richText(b.Text, b.URL)}
		if b.Toggleable {
			h["is_toggleable"] = true
		}
		return map[string]any{"type": "heading_1", "heading_1": h}
	case block.Heading2:
		return map[string]any{
			"type":      "heading_2",
			"heading_2": map[string]any{"rich_text": richText(b.Text, b.URL)},
		}
	case block.BulletedItem:
		return map[string]any{
			"type":               "bulleted_list_item",
			"bulleted_list_item": map[string]any{"rich_text": richText(b.Text, b.URL)},
		}
	case block.Callout:
		return map[string]any{
			"type":    "callout",
			"callout": map[string]any{"rich_text": richText(b.Text, b.URL)},
		}
	default:
		return map[string]any{
			"type":      "paragraph",
			"paragraph": map[string]any{"rich_text": richText(b.Text, b.URL)},
		}
	}
}

func richText(text, url string) []map[string]any {
	t := map[string]any{"content": text}
	if url != "" {
		t["link"] = map[string]any{"url": url}
	}
	return []map[string]any{{"type": "text", "text": t}}
}
