package acquire

import (
	"errors"
	"strings"
	"testing"
)

func collect(t *testing.T, input string) []event {
	t.Helper()
	var out []event
	if err := readEvents(strings.NewReader(input), func(e event) { out = append(out, e) }); err != nil {
		t.Fatalf("readEvents: %v", err)
	}
	return out
}

func TestReadEvents_Basic(t *testing.T) {
	evs := collect(t, "data: one\n\ndata:two\n\n")
	if len(evs) != 2 {
		t.Fatalf("events: got %d, want 2", len(evs))
	}
	if evs[0].Data != "one" || evs[1].Data != "two" {
		t.Errorf("data: got %q %q", evs[0].Data, evs[1].Data)
	}
}

func TestReadEvents_MultiLineDataAndFields(t *testing.T) {
	evs := collect(t, "id: 7\nevent: values\ndata: {\"a\":1,\ndata: \"b\":2}\nretry: 1000\n\n")
	if len(evs) != 1 {
		t.Fatalf("events: got %d, want 1", len(evs))
	}
	e := evs[0]
	if e.ID != "7" || e.Name != "values" {
		t.Errorf("fields: got id=%q name=%q", e.ID, e.Name)
	}
	if e.Data != "{\"a\":1,\n\"b\":2}" {
		t.Errorf("data: got %q", e.Data)
	}
}

func TestReadEvents_CRLFAndComments(t *testing.T) {
	evs := collect(t, ": hello\r\n\r\ndata: x\r\n\r\n")
	if len(evs) != 1 || evs[0].Data != "x" {
		t.Fatalf("events: got %+v", evs)
	}
}

func TestReadEvents_UnterminatedEventDiscarded(t *testing.T) {
	evs := collect(t, "data: done\n\ndata: partial")
	if len(evs) != 1 {
		t.Fatalf("events: got %d, want 1", len(evs))
	}
}

func TestReadEvents_NameResetBetweenEvents(t *testing.T) {
	evs := collect(t, "event: ping\ndata: a\n\ndata: b\n\n")
	if len(evs) != 2 || evs[1].Name != "" {
		t.Fatalf("events: got %+v", evs)
	}
	if evs[0].valueEvent() {
		t.Error("ping should not be a value event")
	}
	if !evs[1].valueEvent() {
		t.Error("unnamed event should be a value event")
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("reset by peer") }

func TestReadEvents_ReadErrorReturned(t *testing.T) {
	if err := readEvents(failingReader{}, func(event) {}); err == nil {
		t.Fatal("expected read error")
	}
}
