package service

import "testing"

func TestSubscriptions_SubscribeIdempotent(t *testing.T) {
	s := NewSubscriptions()

	if already := s.Subscribe(1); already {
		t.Error("first Subscribe must report already=false")
	}
	if already := s.Subscribe(1); !already {
		t.Error("second Subscribe must report already=true")
	}
	if got := len(s.ListAll()); got != 1 {
		t.Errorf("registry size = %d, want 1", got)
	}
}

func TestSubscriptions_UnsubscribeAbsent(t *testing.T) {
	s := NewSubscriptions()
	s.Subscribe(1)

	if was := s.Unsubscribe(99); was {
		t.Error("Unsubscribe on a never-subscribed id must report wasSubscribed=false")
	}
	if got := len(s.ListAll()); got != 1 {
		t.Errorf("registry must be unaffected, size = %d", got)
	}

	if was := s.Unsubscribe(1); !was {
		t.Error("Unsubscribe on a member must report wasSubscribed=true")
	}
	if s.IsSubscribed(1) {
		t.Error("id must be gone after Unsubscribe")
	}
}

func TestSubscriptions_ListAllInsertionOrder(t *testing.T) {
	s := NewSubscriptions()
	for _, id := range []int64{5, 3, 8} {
		s.Subscribe(id)
	}
	s.Unsubscribe(3)
	s.Subscribe(3)

	got := s.ListAll()
	want := []int64{5, 8, 3}
	if len(got) != len(want) {
		t.Fatalf("ListAll = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ListAll = %v, want %v", got, want)
		}
	}
}

func TestSubscriptions_ListAllIsCopy(t *testing.T) {
	s := NewSubscriptions()
	s.Subscribe(1)
	s.Subscribe(2)

	list := s.ListAll()
	list[0] = 999
	if got := s.ListAll()[0]; got != 1 {
		t.Error("ListAll must return a copy, not the backing slice")
	}
}
