package services

import (
	"context"
	"testing"
)

func TestNotificationInbox(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewNotificationService(f.mem)

	if _, err := f.svc.CreateAppointment(ctx, actorOf(f.student), f.bookingRequest()); err != nil {
		t.Fatalf("CreateAppointment: %v", err)
	}

	counselor := actorOf(f.counselor)
	unread, err := svc.List(ctx, counselor, true)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(unread) != 1 {
		t.Fatalf("unread = %d, want 1", len(unread))
	}

	_, err = svc.List(ctx, actorOf(f.student), false)
	if err != nil {
		t.Fatalf("List: %v", err)
	}

	assertKind(t, svc.MarkRead(ctx, actorOf(f.student), unread[0].ID), ErrNotFound)

	if err := svc.MarkRead(ctx, counselor, unread[0].ID); err != nil {
		t.Fatalf("MarkRead: %v", err)
	}
	if err := svc.MarkRead(ctx, counselor, unread[0].ID); err != nil {
		t.Fatalf("MarkRead twice: %v", err)
	}

	unread, _ = svc.List(ctx, counselor, true)
	all, _ := svc.List(ctx, counselor, false)
	if len(unread) != 0 || len(all) != 1 || !all[0].Read {
		t.Errorf("unread = %d, all = %+v; want the notification marked read", len(unread), all)
	}
}
