package events

import (
	"sync"
	"testing"
)

func TestBusDeliversToMatchingTable(t *testing.T) {
	bus := NewBus()

	var got []Event
	bus.Subscribe("meetings", func(e Event) {
		got = append(got, e)
	})
	bus.Subscribe("delivery_log", func(e Event) {
		t.Error("delivery_log handler should not fire for meetings event")
	})

	bus.Publish(Event{Table: "meetings", Kind: KindUpdate})

	if len(got) != 1 {
		t.Fatalf("expected 1 event, got %d", len(got))
	}
	if got[0].Table != "meetings" || got[0].Kind != KindUpdate {
		t.Errorf("unexpected event %+v", got[0])
	}
}

func TestBusMultipleSubscribers(t *testing.T) {
	bus := NewBus()

	count := 0
	bus.Subscribe("access_grants", func(Event) { count++ })
	bus.Subscribe("access_grants", func(Event) { count++ })

	bus.Publish(Event{Table: "access_grants", Kind: KindInsert})

	if count != 2 {
		t.Errorf("expected both subscribers to fire, got %d", count)
	}
}

func TestBusNilSafe(t *testing.T) {
	var bus *Bus
	// Must not panic; repositories publish unconditionally.
	bus.Publish(Event{Table: "meetings", Kind: KindInsert})
}

func TestBusConcurrentPublish(t *testing.T) {
	bus := NewBus()

	var mu sync.Mutex
	count := 0
	bus.Subscribe("delivery_log", func(Event) {
		mu.Lock()
		count++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			bus.Publish(Event{Table: "delivery_log", Kind: KindInsert})
		}()
	}
	wg.Wait()

	if count != 50 {
		t.Errorf("expected 50 deliveries, got %d", count)
	}
}
