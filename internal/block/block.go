// Package block defines the content tree that every source produces and the
// persister consumes. A Block is a tagged, ordered, recursively nestable unit
// of renderable content; children are displayed nested under their parent,
// in order.
package block

// Kind tags a block with its rendering type.
type Kind string

// The closed set of block kinds. Adding a kind requires a wire rendering in
// the store client but no change to the persister.
const (
	Heading1     Kind = "heading_1"
	Heading2     Kind = "heading_2"
	Paragraph    Kind = "paragraph"
	BulletedItem Kind = "bulleted_list_item"
	Divider      Kind = "divider"
	Callout      Kind = "callout"
)

// Block is one node of renderable content. Blocks are plain values with no
// identity beyond the run that built them.
type Block struct {
	Kind       Kind
	Text       string
	URL        string // optional hyperlink on the text
	Toggleable bool   // headings only
	Children   []Block
}

// NewHeading1 returns a toggleable top-level heading wrapping the given
// children.
func NewHeading1(text string, children []Block) Block {
	return Block{Kind: Heading1, Text: text, Toggleable: true, Children: children}
}

// NewHeading2 returns a section heading.
func NewHeading2(text string) Block {
	return Block{Kind: Heading2, Text: text}
}

// NewParagraph returns a plain text paragraph.
func NewParagraph(text string) Block {
	return Block{Kind: Paragraph, Text: text}
}

// NewBulletedItem returns a bulleted list item.
func NewBulletedItem(text string) Block {
	return Block{Kind: BulletedItem, Text: text}
}

// NewLinkItem returns a bulleted list item whose text links to url.
func NewLinkItem(text, url string) Block {
	return Block{Kind: BulletedItem, Text: text, URL: url}
}

// NewDivider returns a visual separator.
func NewDivider() Block {
	return Block{Kind: Divider}
}
