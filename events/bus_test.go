package events

import (
	"reflect"
	"testing"
)

func TestBus_PublishReachesTopicSubscribersInOrder(t *testing.T) {
	bus := NewBus()
	var got []string

	bus.Subscribe(TopicSidebarWidthChanged, func(e Event) {
		got = append(got, "first")
	})
	bus.Subscribe(TopicSidebarWidthChanged, func(e Event) {
		got = append(got, "second")
	})
	bus.Subscribe(TopicThemeChanged, func(e Event) {
		got = append(got, "theme")
	})

	bus.Publish(Event{Topic: TopicSidebarWidthChanged, Payload: 300})

	want := []string{"first", "second"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("delivery = %v, want %v", got, want)
	}
}

func TestBus_PayloadDelivered(t *testing.T) {
	bus := NewBus()
	var payload interface{}
	bus.Subscribe(TopicLanguageChanged, func(e Event) { payload = e.Payload })

	bus.Publish(Event{Topic: TopicLanguageChanged, Payload: "zh"})

	if payload != "zh" {
		t.Errorf("payload = %v, want zh", payload)
	}
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := NewBus()
	calls := 0
	unsubscribe := bus.Subscribe(TopicThemeChanged, func(Event) { calls++ })

	bus.Publish(Event{Topic: TopicThemeChanged, Payload: true})
	unsubscribe()
	unsubscribe()
	bus.Publish(Event{Topic: TopicThemeChanged, Payload: false})

	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
	if n := bus.SubscriberCount(TopicThemeChanged); n != 0 {
		t.Errorf("SubscriberCount = %d, want 0", n)
	}
}

func TestBus_HandlerMayUnsubscribeDuringPublish(t *testing.T) {
	bus := NewBus()
	calls := 0
	var unsubscribe func()
	unsubscribe = bus.Subscribe(TopicThemeChanged, func(Event) {
		calls++
		unsubscribe()
	})
	bus.Subscribe(TopicThemeChanged, func(Event) { calls++ })

	bus.Publish(Event{Topic: TopicThemeChanged})
	bus.Publish(Event{Topic: TopicThemeChanged})

	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestBus_PublishWithoutSubscribers(t *testing.T) {
	bus := NewBus()
	bus.Publish(Event{Topic: "unused"})
}
