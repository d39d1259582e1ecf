package notion

import (
	"context"
	"fmt"

	"startpage/internal/block"
)

// Appender is the flat, one-level mutation primitive of the block store.
type Appender interface {
	AppendChildren(ctx context.Context, containerID string, blocks []block.Block, after string) ([]string, error)
}

// Persist writes a block tree to the store and returns the ID assigned to
// the top node. The store only accepts flat insertions, so the block is
// appended childless first, then each child is persisted under the returned
// ID: pre-order, depth-first, left-to-right, strictly sequential. Children
// always go to the end of their parent, which was just created and is empty;
// the after anchor applies to the top-level call only.
//
// A tree with N nodes costs exactly N store calls. Any failure aborts
// immediately and may leave a partially written tree behind; there is no
// rollback.
func Persist(ctx context.Context, store Appender, containerID string, b block.Block, after string) (string, error) {
	top := b
	top.Children = nil

	ids, err := store.AppendChildren(ctx, containerID, []block.Block{top}, after)
	if err != nil {
		return "", fmt.Errorf("append %s: %w", b.Kind, err)
	}
	if len(ids) != 1 {
		return "", fmt.Errorf("append %s: got %d ids, want 1", b.Kind, len(ids))
	}

	parentID := ids[0]
	for _, child := range b.Children {
		if _, err := Persist(ctx, store, parentID, child, ""); err != nil {
			return "", err
		}
	}
	return parentID, nil
}
