package notify

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"counseling-app-server/internal/models"

	"gopkg.in/gomail.v2"
)

type fakeDialer struct {
	sent []*gomail.Message
	err  error
}

func (f *fakeDialer) DialAndSend(m ...*gomail.Message) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, m...)
	return nil
}

func urgentRequest() UrgentRequest {
	appt := &models.Appointment{
		Date:            "2025-03-10",
		Time:            "14:00",
		AppointmentType: "crisis-intervention",
		Reason:          "I need to talk to someone today please.",
	}
	appt.ID = "appt-1"
	return UrgentRequest{
		Counselor:   &models.User{Email: "c@uni.test", FirstName: "Carla", LastName: "Mendes"},
		Appointment: appt,
	}
}

func TestNewEmailNotifier(t *testing.T) {
	tests := []struct {
		name      string
		transport string
		from      string
		wantErr   bool
		wantFrom  string
		wantHost  string
		wantPort  int
	}{
		{name: "full url", transport: "smtp://alerts%40uni.test:pw@mail.uni.test:2525", wantFrom: "alerts@uni.test", wantHost: "mail.uni.test", wantPort: 2525},
		{name: "default port", transport: "smtp://mail.uni.test", from: "noreply@uni.test", wantFrom: "noreply@uni.test", wantHost: "mail.uni.test", wantPort: defaultSMTPPort},
		{name: "bad scheme", transport: "http://mail.uni.test", wantErr: true},
		{name: "missing host", transport: "smtp://", wantErr: true},
		{name: "bad port", transport: "smtp://mail.uni.test:abc", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := NewEmailNotifier(tt.transport, tt.from, "https://counseling.uni.test")
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("NewEmailNotifier: %v", err)
			}
			if n.from != tt.wantFrom {
				t.Errorf("from = %q, want %q", n.from, tt.wantFrom)
			}
			d := n.dialer.(*gomail.Dialer)
			if d.Host != tt.wantHost || d.Port != tt.wantPort {
				t.Errorf("dialer = %s:%d, want %s:%d", d.Host, d.Port, tt.wantHost, tt.wantPort)
			}
		})
	}
}

func TestNotifyUrgentRequest(t *testing.T) {
	fake := &fakeDialer{}
	n := &EmailNotifier{dialer: fake, from: "noreply@uni.test", appURL: "https://counseling.uni.test/"}

	req := urgentRequest()
	if err := n.NotifyUrgentRequest(context.Background(), req); err != nil {
		t.Fatalf("NotifyUrgentRequest: %v", err)
	}
	if len(fake.sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(fake.sent))
	}
	m := fake.sent[0]
	if got := m.GetHeader("To"); len(got) != 1 || got[0] != "c@uni.test" {
		t.Errorf("To = %v", got)
	}
	if got := m.GetHeader("Subject"); len(got) != 1 || !strings.Contains(got[0], "URGENT") {
		t.Errorf("Subject = %v", got)
	}

	var body bytes.Buffer
	if _, err := m.WriteTo(&body); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	text := body.String()
	for _, want := range []string{"appt-1", "https://counseling.uni.test/appointments/appt-1"} {
		if !strings.Contains(text, want) {
			t.Errorf("body does not contain %q:\n%s", want, text)
		}
	}
	for _, private := range []string{req.Appointment.Reason, req.Appointment.AppointmentType} {
		if strings.Contains(text, private) {
			t.Errorf("body leaks %q:\n%s", private, text)
		}
	}
}

func TestNotifyUrgentRequestErrors(t *testing.T) {
	boom := errors.New("relay down")
	n := &EmailNotifier{dialer: &fakeDialer{err: boom}, from: "noreply@uni.test"}
	if err := n.NotifyUrgentRequest(context.Background(), urgentRequest()); !errors.Is(err, boom) {
		t.Errorf("err = %v, want %v", err, boom)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := n.NotifyUrgentRequest(ctx, urgentRequest()); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}

	if err := n.NotifyUrgentRequest(context.Background(), UrgentRequest{}); err == nil {
		t.Error("expected an error for an empty request")
	}
}
