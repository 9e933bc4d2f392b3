package application

import (
	"context"
	"fmt"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"gopkg.in/gomail.v2"
	"roommate_service/domain"
	"strings"
	"time"
)

// MailSender delivers one message; gomail's Dialer satisfies it.
type MailSender interface {
	DialAndSend(m ...*gomail.Message) error
}

// MailLikeNotifier emails the listing owner when someone likes the listing.
type MailLikeNotifier struct {
	sender MailSender
	from   string
	cb     *gobreaker.CircuitBreaker
	logger *logrus.Logger
}

func NewMailLikeNotifier(host string, port int, email, password string, logger *logrus.Logger) *MailLikeNotifier {
	return NewMailLikeNotifierWithSender(gomail.NewDialer(host, port, email, password), email, logger)
}

func NewMailLikeNotifierWithSender(sender MailSender, from string, logger *logrus.Logger) *MailLikeNotifier {
	return &MailLikeNotifier{
		sender: sender,
		from:   from,
		cb:     CircuitBreaker("likeNotifier", logger),
		logger: logger,
	}
}

func (n *MailLikeNotifier) NotifyLike(ctx context.Context, listing *domain.Listing, voter *domain.Identity) error {
	to := strings.TrimSpace(listing.Email)
	if to == "" {
		return fmt.Errorf("listing %s has no owner email", listing.ID.Hex())
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	_, err := n.cb.Execute(func() (interface{}, error) {
		return nil, n.sender.DialAndSend(likeMessage(n.from, to, listing, voter))
	})
	if err != nil {
		return err
	}
	n.logger.WithFields(logrus.Fields{"listing": listing.ID.Hex(), "owner": to}).Info("like notification sent")
	return nil
}

func likeMessage(from, to string, listing *domain.Listing, voter *domain.Identity) *gomail.Message {
	who := voter.Name
	if who == "" {
		who = voter.Email
	}
	m := gomail.NewMessage()
	m.SetHeader("From", from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", "Someone liked your listing")
	m.SetBody("text/plain", fmt.Sprintf("%s liked your listing \"%s\". They can now see your contact number.", who, listing.Title))
	return m
}

// NopLikeNotifier only logs; used when SMTP is not configured.
type NopLikeNotifier struct {
	Logger *logrus.Logger
}

func (n NopLikeNotifier) NotifyLike(_ context.Context, listing *domain.Listing, voter *domain.Identity) error {
	n.Logger.WithFields(logrus.Fields{"listing": listing.ID.Hex(), "voter": voter.Email}).Debug("like notification skipped")
	return nil
}

func CircuitBreaker(name string, logger *logrus.Logger) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(
		gobreaker.Settings{
			Name:        name,
			MaxRequests: 1,
			Timeout:     10 * time.Second,
			Interval:    0,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures > 2
			},
			OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
				logger.Infof("Circuit Breaker '%s' changed from '%s' to '%s'", name, from, to)
			},
		},
	)
}
