package notion

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	"startpage/internal/block"
)

type appendCall struct {
	ContainerID string
	Texts       []string
	After       string
}

// mockStore echoes incrementing IDs and records every call.
type mockStore struct {
	calls   []appendCall
	nextID  int
	failAt  int // 1-based call number to fail on, 0 = never
	nodes   map[string][]string
	parents map[string]string
}

func newMockStore() *mockStore {
	return &mockStore{
		nodes:   make(map[string][]string),
		parents: make(map[string]string),
	}
}

func (m *mockStore) AppendChildren(_ context.Context, containerID string, blocks []block.Block, after string) ([]string, error) {
	texts := make([]string, len(blocks))
	for i, b := range blocks {
		texts[i] = b.Text
	}
	m.calls = append(m.calls, appendCall{ContainerID: containerID, Texts: texts, After: after})

	if m.failAt > 0 && len(m.calls) == m.failAt {
		return nil, errors.New("store unavailable")
	}

	ids := make([]string, len(blocks))
	for i := range blocks {
		m.nextID++
		ids[i] = fmt.Sprintf("id-%d", m.nextID)
		m.nodes[containerID] = append(m.nodes[containerID], ids[i])
		m.parents[ids[i]] = containerID
	}
	return ids, nil
}

func TestPersistThreeLevelTree(t *testing.T) {
	tree := block.NewHeading1("Monday 02 of June", []block.Block{
		block.NewHeading2("Tech News"),
		block.NewBulletedItem("first"),
		block.NewBulletedItem("second"),
	})

	store := newMockStore()
	topID, err := Persist(context.Background(), store, "page-1", tree, "anchor-1")
	if err != nil {
		t.Fatalf("persist: %v", err)
	}
	if topID != "id-1" {
		t.Errorf("top ID = %q, want id-1", topID)
	}

	want := []appendCall{
		{ContainerID: "page-1", Texts: []string{"Monday 02 of June"}, After: "anchor-1"},
		{ContainerID: "id-1", Texts: []string{"Tech News"}},
		{ContainerID: "id-1", Texts: []string{"first"}},
		{ContainerID: "id-1", Texts: []string{"second"}},
	}
	if diff := cmp.Diff(want, store.calls); diff != "" {
		t.Errorf("call sequence mismatch (-want +got):\n%s", diff)
	}
}

func TestPersistCallCountEqualsNodeCount(t *testing.T) {
	tests := []struct {
		name string
		tree block.Block
		want int
	}{
		{
			name: "single node",
			tree: block.NewParagraph("alone"),
			want: 1,
		},
		{
			name: "flat section",
			tree: block.NewHeading1("day", []block.Block{
				block.NewBulletedItem("a"),
				block.NewBulletedItem("b"),
			}),
			want: 3,
		},
		{
			name: "nested three deep",
			tree: block.NewHeading1("day", []block.Block{
				{Kind: block.Heading2, Text: "section", Children: []block.Block{
					block.NewBulletedItem("leaf"),
					block.NewBulletedItem("leaf2"),
				}},
				block.NewDivider(),
			}),
			want: 5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMockStore()
			if _, err := Persist(context.Background(), store, "root", tt.tree, ""); err != nil {
				t.Fatalf("persist: %v", err)
			}
			if len(store.calls) != tt.want {
				t.Errorf("issued %d store calls, want %d", len(store.calls), tt.want)
			}
		})
	}
}

func TestPersistRoundTrip(t *testing.T) {
	tree := block.NewHeading1("day", []block.Block{
		{Kind: block.Heading2, Text: "weather", Children: []block.Block{
			block.NewParagraph("sunny"),
		}},
		{Kind: block.Heading2, Text: "news", Children: []block.Block{
			block.NewBulletedItem("one"),
			block.NewBulletedItem("two"),
			block.NewBulletedItem("three"),
		}},
	})

	store := newMockStore()
	topID, err := Persist(context.Background(), store, "page", tree, "")
	if err != nil {
		t.Fatalf("persist: %v", err)
	}

	// Rebuild the subtree under topID from the store's recorded structure
	// and compare shape and per-level order with the input. One block per
	// call, so IDs map to call order.
	idText := make(map[string]string)
	next := 0
	for _, call := range store.calls {
		next++
		idText[fmt.Sprintf("id-%d", next)] = call.Texts[0]
	}

	var rebuild func(id string) block.Block
	rebuild = func(id string) block.Block {
		b := block.Block{Text: idText[id]}
		for _, childID := range store.nodes[id] {
			b.Children = append(b.Children, rebuild(childID))
		}
		return b
	}

	var shape func(b block.Block) block.Block
	shape = func(b block.Block) block.Block {
		out := block.Block{Text: b.Text}
		for _, c := range b.Children {
			out.Children = append(out.Children, shape(c))
		}
		return out
	}

	if diff := cmp.Diff(shape(tree), rebuild(topID)); diff != "" {
		t.Errorf("round-trip mismatch (-want +got):\n%s", diff)
	}
}

func TestPersistAbortsOnFailure(t *testing.T) {
	tree := block.NewHeading1("day", []block.Block{
		block.NewBulletedItem("a"),
		block.NewBulletedItem("b"),
		block.NewBulletedItem("c"),
	})

	store := newMockStore()
	store.failAt = 3

	_, err := Persist(context.Background(), store, "page", tree, "")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	// Fail-fast: the calls after the failing one must never happen.
	if len(store.calls) != 3 {
		t.Errorf("issued %d calls, want 3 (abort on failure)", len(store.calls))
	}
}

func TestPersistAnchorOnlyOnTopCall(t *testing.T) {
	tree := block.NewHeading1("day", []block.Block{
		block.NewBulletedItem("a"),
	})

	store := newMockStore()
	if _, err := Persist(context.Background(), store, "page", tree, "anchor"); err != nil {
		t.Fatalf("persist: %v", err)
	}

	if store.calls[0].After != "anchor" {
		t.Errorf("top call after = %q, want anchor", store.calls[0].After)
	}
	for i, call := range store.calls[1:] {
		if call.After != "" {
			t.Errorf("child call %d carries anchor %q", i+1, call.After)
		}
	}
}
