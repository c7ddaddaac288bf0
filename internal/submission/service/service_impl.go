package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/smallbiznis/eragon/internal/config"
	"github.com/smallbiznis/eragon/internal/providers/email"
	"github.com/smallbiznis/eragon/internal/submission/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const subject = "New Store Submission"

type Params struct {
	fx.In

	Log    *zap.Logger
	Config config.Config
	Email  email.Provider
}

type Service struct {
	log        *zap.Logger
	email      email.Provider
	recipients []string
}

func New(p Params) domain.Service {
	return &Service{
		log:        p.Log.Named("submission.service"),
		email:      p.Email,
		recipients: p.Config.Email.Recipients,
	}
}

// Submit forwards a store suggestion from the public site to the configured inbox.
func (s *Service) Submit(ctx context.Context, req domain.SubmitRequest) error {
	storeName := strings.TrimSpace(req.StoreName)
	if storeName == "" {
		return domain.ErrInvalidStoreName
	}
	website := strings.TrimSpace(req.Website)
	if website == "" {
		return domain.ErrInvalidWebsite
	}
	if len(s.recipients) == 0 {
		return domain.ErrNoRecipients
	}

	body := fmt.Sprintf("Store: %s\nWebsite: %s\nCode: %s\nDescription: %s",
		storeName,
		website,
		strings.TrimSpace(req.DiscountCode),
		strings.TrimSpace(req.Description),
	)

	if err := s.email.Send(ctx, email.Message{To: s.recipients, Subject: subject, TextBody: body}); err != nil {
		s.log.Error("failed to send store submission", zap.String("store_name", storeName), zap.Error(err))
		return err
	}
	s.log.Info("store submission sent", zap.String("store_name", storeName))
	return nil
}
