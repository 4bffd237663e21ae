package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/stavrogyn/illumate-api/pkg/models"
)

var ErrNotFound = errors.New("resource not found")
var ErrDuplicateKey = errors.New("duplicate key violation")
var ErrInvalidTransition = errors.New("invalid session status transition")

// Store is the data access interface. All database operations go through here.
type Store interface {
	Ping(ctx context.Context) error

	CreateTenantWithOwner(ctx context.Context, tenant *models.Tenant, owner *models.User) error
	GetTenant(ctx context.Context, id uuid.UUID) (*models.Tenant, error)
	UpdateTenant(ctx context.Context, id uuid.UUID, update TenantUpdate) (*models.Tenant, error)

	GetUser(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByVerificationToken(ctx context.Context, token string) (*models.User, error)
	ListUsers(ctx context.Context, filter ListFilter) ([]*models.User, int, error)
	UpdateUser(ctx context.Context, id uuid.UUID, tenantID uuid.UUID, update UserUpdate) (*models.User, error)
	DeleteUser(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) error
	MarkUserVerified(ctx context.Context, id uuid.UUID) error
	SetVerificationToken(ctx context.Context, id uuid.UUID, token string) error

	CreateClient(ctx context.Context, client *models.Client) error
	GetClient(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) (*models.Client, error)
	ListClients(ctx context.Context, filter ClientFilter) ([]*models.Client, int, error)
	UpdateClient(ctx context.Context, id uuid.UUID, tenantID uuid.UUID, update ClientUpdate) (*models.Client, error)
	DeleteClient(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) error

	CreateSession(ctx context.Context, session *models.Session, tenantID uuid.UUID) error
	GetSession(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) (*models.Session, error)
	ListSessions(ctx context.Context, filter SessionFilter) ([]*models.Session, int, error)
	UpdateSession(ctx context.Context, id uuid.UUID, tenantID uuid.UUID, update SessionUpdate) (*models.Session, error)
	DeleteSession(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) error

	CreateNote(ctx context.Context, note *models.Note, tenantID uuid.UUID) error
	GetNote(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) (*models.Note, error)
	ListNotes(ctx context.Context, filter NoteFilter) ([]*models.Note, int, error)
	UpdateNote(ctx context.Context, id uuid.UUID, tenantID uuid.UUID, update NoteUpdate) (*models.Note, error)
	DeleteNote(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) error

	CreateMedia(ctx context.Context, media *models.Media, tenantID uuid.UUID) error
	GetMedia(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) (*models.Media, error)
	ListMedia(ctx context.Context, filter MediaFilter) ([]*models.Media, int, error)
	UpdateMedia(ctx context.Context, id uuid.UUID, tenantID uuid.UUID, update MediaUpdate) (*models.Media, error)
	DeleteMedia(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) error

	CreateInsight(ctx context.Context, insight *models.Insight, tenantID uuid.UUID) error
	GetInsight(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) (*models.Insight, error)
	ListInsights(ctx context.Context, filter InsightFilter) ([]*models.Insight, int, error)
	UpdateInsight(ctx context.Context, id uuid.UUID, tenantID uuid.UUID, update InsightUpdate) (*models.Insight, error)
	DeleteInsight(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) error
}

// ListFilter is a plain tenant-scoped pagination filter.
type ListFilter struct {
	TenantID uuid.UUID
	Page     int
	Limit    int
}

type ClientFilter struct {
	TenantID uuid.UUID
	Tag      string
	Page     int
	Limit    int
}

type SessionFilter struct {
	TenantID uuid.UUID
	ClientID uuid.UUID
	Status   string
	Page     int
	Limit    int
}

type NoteFilter struct {
	TenantID  uuid.UUID
	SessionID uuid.UUID
	AuthorID  uuid.UUID
	Page      int
	Limit     int
}

type MediaFilter struct {
	TenantID  uuid.UUID
	SessionID uuid.UUID
	Page      int
	Limit     int
}

type InsightFilter struct {
	TenantID  uuid.UUID
	SessionID uuid.UUID
	Kind      string
	Page      int
	Limit     int
}

// Update structs use pointer fields: nil means leave unchanged.

type TenantUpdate struct {
	Name *string
	Plan *string
}

type UserUpdate struct {
	Role   *string
	Locale *string
}

type ClientUpdate struct {
	FullName *string
	Birthday *time.Time
	Tags     *[]string
}

type SessionUpdate struct {
	ScheduledAt *time.Time
	DurationMin *int
	Status      *string
}

type NoteUpdate struct {
	SessionID *uuid.UUID
	BodyMD    *string
}

type MediaUpdate struct {
	Type          *string
	URL           *string
	Transcription *[]byte
}

type InsightUpdate struct {
	Kind      *string
	Content   *[]byte
	Embedding *[]float32
}
