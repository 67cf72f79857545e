package events_test

import (
	"testing"
	"time"

	"pantryscout-discovery/internal/events"
	"pantryscout-discovery/internal/model"
)

func TestSubscribe_ReceivesSynthesizedJobStarted(t *testing.T) {
	b := events.NewBus(time.Second)
	b.SetUrlsFound(7)

	ch := b.Subscribe()
	ev := <-ch

	if ev.Type != model.EventJobStarted {
		t.Fatalf("expected job_started, got %v", ev.Type)
	}
	data, ok := ev.Data.(model.JobStartedData)
	if !ok || data.UrlsFound != 7 {
		t.Fatalf("expected urls_found=7, got %+v", ev.Data)
	}
}

func TestSubscribe_AfterTerminalReplaysTerminalAndCloses(t *testing.T) {
	b := events.NewBus(time.Second)
	b.Publish(model.Event{Type: model.EventComplete, Data: model.CompleteData{Found: 3}})

	ch := b.Subscribe()
	<-ch // job_started

	ev, ok := <-ch
	if !ok || ev.Type != model.EventComplete {
		t.Fatalf("expected complete event, got %+v ok=%v", ev, ok)
	}

	if _, stillOpen := <-ch; stillOpen {
		t.Fatal("expected channel closed after terminal replay")
	}
}

func TestPublish_FansOutToAllSubscribers(t *testing.T) {
	b := events.NewBus(time.Second)
	ch1 := b.Subscribe()
	ch2 := b.Subscribe()
	<-ch1
	<-ch2

	b.Publish(model.Event{Type: model.EventProgress, Data: model.ProgressData{Total: 1}})

	for _, ch := range []chan model.Event{ch1, ch2} {
		ev := <-ch
		if ev.Type != model.EventProgress {
			t.Fatalf("expected progress, got %v", ev.Type)
		}
	}
}

func TestPublish_DropsSlowSubscriberWithErrorEvent(t *testing.T) {
	b := events.NewBus(10 * time.Millisecond)
	ch := b.Subscribe()
	<-ch // job_started

	// Fill the subscriber's buffer so the next publish must go slow-path.
	for i := 0; i < 32; i++ {
		b.Publish(model.Event{Type: model.EventProgress})
	}
	b.Publish(model.Event{Type: model.EventProgress})

	// Stay away from ch for longer than the slow threshold so the bus
	// gives up on this subscriber.
	time.Sleep(100 * time.Millisecond)

	var lastType model.EventType
	timeout := time.After(time.Second)
	for {
		select {
		case ev, ok := <-ch:
			if !ok {
				if lastType != model.EventError {
					t.Fatalf("expected channel to close after an error_event, last type was %v", lastType)
				}
				return
			}
			lastType = ev.Type
		case <-timeout:
			t.Fatal("timed out waiting for slow subscriber to be dropped")
		}
	}
}

func TestUnsubscribe_ClosesChannel(t *testing.T) {
	b := events.NewBus(time.Second)
	ch := b.Subscribe()
	<-ch
	b.Unsubscribe(ch)

	if _, ok := <-ch; ok {
		t.Fatal("expected channel closed after Unsubscribe")
	}
}

func TestHub_BusForIsStableAndReapable(t *testing.T) {
	h := events.NewHub(time.Second, 5*time.Millisecond)
	b1 := h.BusFor("job-1")
	b2 := h.BusFor("job-1")
	if b1 != b2 {
		t.Fatal("expected BusFor to return the same bus for the same job id")
	}

	ch := b1.Subscribe()
	<-ch
	b1.Publish(model.Event{Type: model.EventComplete, Data: model.CompleteData{}})
	h.Reap("job-1")

	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("expected terminal event on subscriber channel")
	}

	time.Sleep(20 * time.Millisecond)
	b3 := h.BusFor("job-1")
	if b3 == b1 {
		t.Fatal("expected Reap to replace the bus after grace elapses")
	}
}
