package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aujren/auth-service/internal/domain"
	pkgkafka "github.com/aujren/auth-service/pkg/kafka"
)

// Kafka topic constants for auth domain events.
const (
	TopicUserRegistered = "auth.user.registered"
	TopicUserUpdated    = "auth.user.updated"
	TopicUserDeleted    = "auth.user.deleted"
	TopicTokenRevoked   = "auth.token.revoked"
)

// Aggregate type constants.
const (
	AggregateTypeUser  = "user"
	AggregateTypeToken = "refresh_token"
)

// Source identifier for events originating from the auth service.
const SourceAuthService = "auth-service"

// UserRegisteredData is the payload for a user.registered event.
type UserRegisteredData struct {
	ID         string `json:"id"`
	Username   string `json:"username"`
	Email      string `json:"email"`
	GivenName  string `json:"given_name"`
	FamilyName string `json:"family_name"`
}

// UserUpdatedData is the payload for a user.updated event.
type UserUpdatedData struct {
	ID         string `json:"id"`
	Username   string `json:"username"`
	Email      string `json:"email"`
	GivenName  string `json:"given_name"`
	FamilyName string `json:"family_name"`
}

// UserDeletedData is the payload for a user.deleted event.
type UserDeletedData struct {
	ID string `json:"id"`
}

// TokenRevokedData is the payload for a token.revoked event. It carries no
// token material, only the affected user.
type TokenRevokedData struct {
	UserID string `json:"user_id"`
	Reason string `json:"reason"`
}

// Producer publishes auth domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer for the auth service.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishUserRegistered publishes a user.registered event.
func (p *Producer) PublishUserRegistered(ctx context.Context, user *domain.User) error {
	data := UserRegisteredData{
		ID:         user.ID,
		Username:   user.Username,
		Email:      user.Email,
		GivenName:  user.GivenName,
		FamilyName: user.FamilyName,
	}

	event, err := pkgkafka.NewEvent(TopicUserRegistered, user.ID, AggregateTypeUser, SourceAuthService, data)
	if err != nil {
		return fmt.Errorf("create user.registered event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicUserRegistered, event); err != nil {
		return fmt.Errorf("publish user.registered event: %w", err)
	}

	p.logger.DebugContext(ctx, "published user.registered event",
		slog.String("user_id", user.ID),
		slog.String("username", user.Username),
	)

	return nil
}

// PublishUserUpdated publishes a user.updated event.
func (p *Producer) PublishUserUpdated(ctx context.Context, user *domain.User) error {
	data := UserUpdatedData{
		ID:         user.ID,
		Username:   user.Username,
		Email:      user.Email,
		GivenName:  user.GivenName,
		FamilyName: user.FamilyName,
	}

	event, err := pkgkafka.NewEvent(TopicUserUpdated, user.ID, AggregateTypeUser, SourceAuthService, data)
	if err != nil {
		return fmt.Errorf("create user.updated event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicUserUpdated, event); err != nil {
		return fmt.Errorf("publish user.updated event: %w", err)
	}

	p.logger.DebugContext(ctx, "published user.updated event",
		slog.String("user_id", user.ID),
	)

	return nil
}

// PublishUserDeleted publishes a user.deleted event.
func (p *Producer) PublishUserDeleted(ctx context.Context, userID string) error {
	data := UserDeletedData{ID: userID}

	event, err := pkgkafka.NewEvent(TopicUserDeleted, userID, AggregateTypeUser, SourceAuthService, data)
	if err != nil {
		return fmt.Errorf("create user.deleted event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicUserDeleted, event); err != nil {
		return fmt.Errorf("publish user.deleted event: %w", err)
	}

	p.logger.DebugContext(ctx, "published user.deleted event",
		slog.String("user_id", userID),
	)

	return nil
}

// PublishTokenRevoked publishes a token.revoked event.
func (p *Producer) PublishTokenRevoked(ctx context.Context, userID, reason string) error {
	data := TokenRevokedData{
		UserID: userID,
		Reason: reason,
	}

	event, err := pkgkafka.NewEvent(TopicTokenRevoked, userID, AggregateTypeToken, SourceAuthService, data)
	if err != nil {
		return fmt.Errorf("create token.revoked event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicTokenRevoked, event); err != nil {
		return fmt.Errorf("publish token.revoked event: %w", err)
	}

	p.logger.DebugContext(ctx, "published token.revoked event",
		slog.String("user_id", userID),
		slog.String("reason", reason),
	)

	return nil
}
