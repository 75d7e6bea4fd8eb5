package oracle

import (
	"fmt"
	"sync"
	"testing"
)

func TestKeyedMutex_SerializesSameKey(t *testing.T) {
	var km keyedMutex
	var counter int

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := km.Lock("m1")
			defer unlock()
			counter++
		}()
	}
	wg.Wait()

	if counter != 50 {
		t.Fatalf("counter=%d want 50", counter)
	}
}

func TestKeyedMutex_IndependentKeys(t *testing.T) {
	var km keyedMutex

	unlockA := km.Lock("a")
	// Holding "a" must not block "b".
	done := make(chan struct{})
	go func() {
		unlockB := km.Lock("b")
		unlockB()
		close(done)
	}()
	<-done
	unlockA()

	// Same key is reusable after unlock.
	unlock := km.Lock("a")
	unlock()
}

func TestKeyedMutex_ReleasesEntries(t *testing.T) {
	var km keyedMutex

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		key := fmt.Sprintf("m%d", i%4)
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := km.Lock(key)
			defer unlock()
		}()
	}
	wg.Wait()

	km.mu.Lock()
	defer km.mu.Unlock()
	if len(km.locks) != 0 {
		t.Fatalf("entries=%d want 0 once all holders released", len(km.locks))
	}
}
