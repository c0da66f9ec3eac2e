package cache

import (
	"fmt"
	"sync"
	"testing"
)

func TestStoreSetGet(t *testing.T) {
	s := NewStore()

	if _, ok := s.Get("missing"); ok {
		t.Fatal("expected miss for unknown key")
	}

	s.Set("k", 42)
	v, ok := s.Get("k")
	if !ok {
		t.Fatal("expected hit after Set")
	}
	if v.(int) != 42 {
		t.Errorf("got %v, want 42", v)
	}

	s.Set("k", 43)
	v, _ = s.Get("k")
	if v.(int) != 43 {
		t.Errorf("Set should replace: got %v, want 43", v)
	}

	s.Delete("k")
	if _, ok := s.Get("k"); ok {
		t.Error("expected miss after Delete")
	}
}

func TestStoreConcurrentAccess(t *testing.T) {
	s := NewStore()

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				key := fmt.Sprintf("w%d:%d", w, i)
				s.Set(key, i)
				if v, ok := s.Get(key); !ok || v.(int) != i {
					t.Errorf("lost write for %s", key)
					return
				}
			}
		}(w)
	}
	wg.Wait()

	if s.Len() != 800 {
		t.Errorf("Len = %d, want 800", s.Len())
	}
}
