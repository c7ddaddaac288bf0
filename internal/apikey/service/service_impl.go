package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/oklog/ulid/v2"
	apikeydomain "github.com/smallbiznis/eragon/internal/apikey/domain"
	"github.com/smallbiznis/eragon/internal/clock"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	apiKeyPrefix      = "ek_live_"
	apiKeySecretBytes = 32
	bootstrapKeyID    = "key_bootstrap"
	// last_used_at is refreshed at most once per interval to keep auth reads cheap.
	touchInterval = time.Minute
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  apikeydomain.Repository
	Clock clock.Clock
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	repo  apikeydomain.Repository
	genID *snowflake.Node
	clock clock.Clock
}

func New(p Params) apikeydomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("apikey.service"),
		repo:  p.Repo,
		genID: p.GenID,
		clock: p.Clock,
	}
}

func (s *Service) List(ctx context.Context) ([]apikeydomain.Response, error) {
	items, err := s.repo.List(ctx, s.db)
	if err != nil {
		return nil, err
	}

	resp := make([]apikeydomain.Response, 0, len(items))
	for i := range items {
		resp = append(resp, toResponse(&items[i]))
	}
	return resp, nil
}

func (s *Service) Create(ctx context.Context, req apikeydomain.CreateRequest) (*apikeydomain.SecretResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apikeydomain.ErrInvalidName
	}

	now := s.clock.Now().UTC()
	keyID := newKeyID()
	plain, hash, err := generateAPIKey(keyID)
	if err != nil {
		return nil, err
	}

	key := &apikeydomain.APIKey{
		ID:        s.genID.Generate().Int64(),
		KeyID:     keyID,
		Name:      name,
		KeyHash:   hash,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Insert(ctx, s.db, key); err != nil {
		return nil, err
	}

	s.log.Info("api key created", zap.String("key_id", keyID), zap.String("name", name))
	return &apikeydomain.SecretResponse{KeyID: key.KeyID, APIKey: plain}, nil
}

func (s *Service) Revoke(ctx context.Context, keyID string) error {
	trimmed := strings.TrimSpace(keyID)
	if trimmed == "" {
		return apikeydomain.ErrInvalidKeyID
	}

	key, err := s.repo.FindByKeyID(ctx, s.db, trimmed)
	if err != nil {
		return err
	}
	if key == nil {
		return apikeydomain.ErrNotFound
	}

	key.IsActive = false
	key.UpdatedAt = s.clock.Now().UTC()
	if err := s.repo.Update(ctx, s.db, key); err != nil {
		return err
	}
	s.log.Info("api key revoked", zap.String("key_id", trimmed))
	return nil
}

// Authenticate resolves a plaintext credential to its active key.
func (s *Service) Authenticate(ctx context.Context, raw string) (*apikeydomain.Response, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, apikeydomain.ErrUnauthorized
	}

	hash := apikeydomain.HashAPIKey(raw)
	key, err := s.repo.FindByHash(ctx, s.db, hash)
	if err != nil {
		return nil, err
	}
	if key == nil || !key.IsActive {
		return nil, apikeydomain.ErrUnauthorized
	}
	if subtle.ConstantTimeCompare([]byte(key.KeyHash), []byte(hash)) != 1 {
		return nil, apikeydomain.ErrUnauthorized
	}

	now := s.clock.Now().UTC()
	if key.LastUsedAt == nil || now.Sub(*key.LastUsedAt) >= touchInterval {
		if err := s.repo.TouchLastUsed(ctx, s.db, key.ID, now); err != nil {
			s.log.Warn("failed to update api key last_used_at", zap.String("key_id", key.KeyID), zap.Error(err))
		} else {
			key.LastUsedAt = &now
		}
	}

	resp := toResponse(key)
	return &resp, nil
}

// EnsureBootstrap makes raw a valid active credential named "bootstrap".
func (s *Service) EnsureBootstrap(ctx context.Context, raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	hash := apikeydomain.HashAPIKey(raw)
	now := s.clock.Now().UTC()

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.repo.FindByKeyID(ctx, tx, bootstrapKeyID)
		if err != nil {
			return err
		}
		if existing == nil {
			s.log.Info("bootstrap api key created")
			return s.repo.Insert(ctx, tx, &apikeydomain.APIKey{
				ID:        s.genID.Generate().Int64(),
				KeyID:     bootstrapKeyID,
				Name:      apikeydomain.BootstrapName,
				KeyHash:   hash,
				IsActive:  true,
				CreatedAt: now,
				UpdatedAt: now,
			})
		}
		if existing.KeyHash == hash && existing.IsActive {
			return nil
		}
		existing.KeyHash = hash
		existing.IsActive = true
		existing.UpdatedAt = now
		s.log.Info("bootstrap api key refreshed")
		return s.repo.Update(ctx, tx, existing)
	})
}

func toResponse(key *apikeydomain.APIKey) apikeydomain.Response {
	return apikeydomain.Response{
		KeyID:      key.KeyID,
		Name:       key.Name,
		IsActive:   key.IsActive,
		CreatedAt:  key.CreatedAt.UTC(),
		LastUsedAt: key.LastUsedAt,
	}
}

func generateAPIKey(keyID string) (string, string, error) {
	secret := make([]byte, apiKeySecretBytes)
	if _, err := rand.Read(secret); err != nil {
		return "", "", err
	}

	trimmed := strings.ToLower(strings.TrimPrefix(keyID, "key_"))
	plain := fmt.Sprintf("%s%s_%s", apiKeyPrefix, trimmed, hex.EncodeToString(secret))
	return plain, apikeydomain.HashAPIKey(plain), nil
}

func newKeyID() string {
	return "key_" + ulid.Make().String()
}
