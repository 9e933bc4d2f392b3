package application

import (
	"bytes"
	"context"
	stderrors "errors"
	"github.com/sony/gobreaker"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"gopkg.in/gomail.v2"
	"roommate_service/domain"
	"strings"
	"testing"
)

type fakeSender struct {
	calls    int
	err      error
	messages []*gomail.Message
}

func (s *fakeSender) DialAndSend(m ...*gomail.Message) error {
	s.calls++
	s.messages = append(s.messages, m...)
	return s.err
}

func likedListing() *domain.Listing {
	return &domain.Listing{ID: primitive.NewObjectID(), Title: "Quiet room", Email: "owner@example.com"}
}

func TestNotifyLikeSendsMailToOwner(t *testing.T) {
	sender := &fakeSender{}
	notifier := NewMailLikeNotifierWithSender(sender, "noreply@example.com", quietLogger())

	err := notifier.NotifyLike(context.Background(), likedListing(), &domain.Identity{Email: "fan@example.com", Name: "Fan"})
	if err != nil {
		t.Fatal(err)
	}
	if sender.calls != 1 {
		t.Fatalf("calls = %d", sender.calls)
	}

	m := sender.messages[0]
	if to := m.GetHeader("To"); len(to) != 1 || to[0] != "owner@example.com" {
		t.Errorf("To = %v", to)
	}
	var body bytes.Buffer
	if _, err := m.WriteTo(&body); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(body.String(), "Fan liked your listing") {
		t.Errorf("body does not name the voter:\n%s", body.String())
	}
}

func TestNotifyLikeWithoutOwnerEmail(t *testing.T) {
	sender := &fakeSender{}
	notifier := NewMailLikeNotifierWithSender(sender, "noreply@example.com", quietLogger())

	listing := likedListing()
	listing.Email = " "
	if err := notifier.NotifyLike(context.Background(), listing, &domain.Identity{Email: "fan@example.com"}); err == nil {
		t.Error("expected error")
	}
	if sender.calls != 0 {
		t.Errorf("calls = %d", sender.calls)
	}
}

func TestNotifyLikeBreakerOpensAfterFailures(t *testing.T) {
	sender := &fakeSender{err: stderrors.New("smtp down")}
	notifier := NewMailLikeNotifierWithSender(sender, "noreply@example.com", quietLogger())
	voter := &domain.Identity{Email: "fan@example.com"}

	for i := 0; i < 3; i++ {
		if err := notifier.NotifyLike(context.Background(), likedListing(), voter); err == nil {
			t.Fatalf("attempt %d: expected error", i)
		}
	}

	err := notifier.NotifyLike(context.Background(), likedListing(), voter)
	if !stderrors.Is(err, gobreaker.ErrOpenState) {
		t.Errorf("err = %v, want open breaker", err)
	}
	if sender.calls != 3 {
		t.Errorf("calls = %d, want 3", sender.calls)
	}
}

func TestNotifyLikeCancelledContext(t *testing.T) {
	sender := &fakeSender{}
	notifier := NewMailLikeNotifierWithSender(sender, "noreply@example.com", quietLogger())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := notifier.NotifyLike(ctx, likedListing(), &domain.Identity{Email: "fan@example.com"}); !stderrors.Is(err, context.Canceled) {
		t.Errorf("err = %v", err)
	}
}
