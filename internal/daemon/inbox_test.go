package daemon

import (
	"fmt"
	"testing"
	"time"
)

func TestInboxKeepsNewestMessages(t *testing.T) {
	in := NewInbox(3)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	in.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}

	for i := 0; i < 5; i++ {
		in.HandleCommandLineArguments([]string{fmt.Sprintf("file%d.bib", i)})
	}
	msgs := in.List()
	if len(msgs) != 3 || in.Len() != 3 {
		t.Fatalf("expected 3 messages, got %d", len(msgs))
	}
	for i, m := range msgs {
		want := fmt.Sprintf("file%d.bib", i+2)
		if m.Args[0] != want {
			t.Fatalf("message %d = %v, want %s", i, m.Args, want)
		}
		if m.ID == "" {
			t.Fatalf("message %d has no id", i)
		}
	}
	if !msgs[0].ReceivedAt.Before(msgs[2].ReceivedAt) {
		t.Fatalf("messages out of order")
	}
}

func TestInboxListIsACopy(t *testing.T) {
	in := NewInbox(0)
	args := []string{"a.bib"}
	in.HandleCommandLineArguments(args)
	args[0] = "mutated"

	msgs := in.List()
	msgs[0].Args[0] = "changed"
	if got := in.List()[0].Args[0]; got != "a.bib" {
		t.Fatalf("inbox shares memory with callers: %q", got)
	}
}

func TestCodecRoundTrip(t *testing.T) {
	reply := StoreReply{
		PortChanged:     true,
		RestartRequired: true,
		Notices:         []NoticeInfo{{Title: "Remote server port", Message: "restart"}},
	}
	reply.Values.RemoteServerPort = "7000"
	s, err := EncodeStoreReply(reply)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got := DecodeStoreReply(s)
	if got.Values != reply.Values || !got.RestartRequired || !got.PortChanged || len(got.Notices) != 1 || got.Notices[0] != reply.Notices[0] {
		t.Fatalf("round trip mismatch %+v", got)
	}
}
