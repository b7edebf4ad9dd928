package storage

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"PairChat/service/chat"
)

func TestMemoryStoreAppendAndHistory(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := s.Append(ctx, &chat.StoredMessage{
			ID: fmt.Sprintf("m%d", i), Sender: "alice", Receiver: "bob",
			Content: "hi", CreatedAt: int64(i),
		})
		if err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	// reverse direction counts toward the same conversation
	if _, err := s.Append(ctx, &chat.StoredMessage{ID: "m3", Sender: "bob", Receiver: "alice", Content: "yo", CreatedAt: 3}); err != nil {
		t.Fatalf("append: %v", err)
	}
	// unrelated conversation stays out
	if _, err := s.Append(ctx, &chat.StoredMessage{ID: "x", Sender: "carol", Receiver: "bob", Content: "?", CreatedAt: 4}); err != nil {
		t.Fatalf("append: %v", err)
	}

	msgs, err := s.History(ctx, "alice", "bob", 0)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(msgs) != 4 {
		t.Fatalf("history size: got %d want 4", len(msgs))
	}

	msgs, err = s.History(ctx, "alice", "bob", 2)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("limited history: got %d want 2", len(msgs))
	}
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	stored, err := s.Append(ctx, &chat.StoredMessage{ID: "m0", Sender: "a", Receiver: "b", Content: "orig"})
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	stored.Content = "mutated"

	msgs, _ := s.History(ctx, "a", "b", 0)
	if msgs[0].Content != "orig" {
		t.Fatal("caller mutation leaked into the store")
	}
	msgs[0].Content = "mutated again"
	msgs2, _ := s.History(ctx, "a", "b", 0)
	if msgs2[0].Content != "orig" {
		t.Fatal("history result aliases store memory")
	}
}

func TestMemoryStoreConcurrentAppend(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_, _ = s.Append(ctx, &chat.StoredMessage{
					ID: fmt.Sprintf("m_%d_%d", i, j), Sender: "a", Receiver: "b",
				})
			}
		}(i)
	}
	wg.Wait()
	if s.Len() != 800 {
		t.Fatalf("appended: got %d want 800", s.Len())
	}
}
