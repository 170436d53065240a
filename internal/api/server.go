package api

import (
	"context"
	"fmt"

	"metastor/internal/auth"
	"metastor/internal/config"
	"metastor/internal/database"
	"metastor/internal/models"
	"metastor/internal/plans"
	"metastor/internal/storage"
	"metastor/internal/subscription"
	"metastor/internal/websocket"

	"github.com/go-playground/validator/v10"
	gorillaws "github.com/gorilla/websocket"
	"github.com/jaevor/go-nanoid"
	"github.com/rs/zerolog"
)

const fileIDLength = 21

// Authenticator issues wallet login challenges and sessions.
type Authenticator interface {
	GenerateNonce() string
	Login(ctx context.Context, pubKey, signatureB64, nonce string) (*auth.Session, error)
}

// Subscriptions is the subscription and quota surface the handlers use.
type Subscriptions interface {
	Quote(ctx context.Context, accountID int64, tier models.Tier, period models.Period) (*subscription.Quote, error)
	Confirm(ctx context.Context, accountID, subscriptionID int64, signature string) (*models.Subscription, error)
	Current(ctx context.Context, accountID int64) (*models.Subscription, plans.Plan, error)
	StorageStatus(ctx context.Context, accountID int64) (*subscription.StorageStatus, error)
	History(ctx context.Context, accountID int64) ([]subscription.Payment, error)
	Plans(ctx context.Context) ([]subscription.PricedPlan, float64, error)
	Admit(ctx context.Context, accountID int64, size uint64) (*subscription.Admission, error)
}

// Store is the metadata the handlers read and write directly.
type Store interface {
	CreateFile(ctx context.Context, arg database.CreateFileParams) (*models.File, error)
	GetFileByCID(ctx context.Context, cid string) (*models.File, error)
	ListFiles(ctx context.Context, accountID int64, limit int) ([]models.File, error)
	CountFiles(ctx context.Context, accountID int64) (int64, error)
	RenameFile(ctx context.Context, id string, accountID int64, newName string) (*models.File, error)
	SoftDeleteFile(ctx context.Context, id string, accountID int64) (bool, error)
	GetEventsSince(ctx context.Context, accountID int64, sinceID int64) ([]database.Event, error)
	Ping(ctx context.Context) error
}

type Server struct {
	config        *config.Config
	store         Store
	auth          Authenticator
	subscriptions Subscriptions
	blobs         storage.BlobStore
	notifier      subscription.Notifier
	wsHub         *websocket.Hub
	upgrader      gorillaws.Upgrader
	validate      *validator.Validate
	newFileID     func() string
	log           zerolog.Logger
}

type Deps struct {
	Store         Store
	Auth          Authenticator
	Subscriptions Subscriptions
	Blobs         storage.BlobStore
	Notifier      subscription.Notifier
	Hub           *websocket.Hub
	Logger        zerolog.Logger
}

func NewServer(cfg *config.Config, deps Deps) (*Server, error) {
	generateID, err := nanoid.Standard(fileIDLength)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize nanoid generator: %w", err)
	}
	return &Server{
		config:        cfg,
		store:         deps.Store,
		auth:          deps.Auth,
		subscriptions: deps.Subscriptions,
		blobs:         deps.Blobs,
		notifier:      deps.Notifier,
		wsHub:         deps.Hub,
		upgrader:      websocket.NewUpgrader(cfg.HTTP.AllowedOrigins),
		validate:      validator.New(validator.WithRequiredStructEnabled()),
		newFileID:     generateID,
		log:           deps.Logger.With().Str("component", "api").Logger(),
	}, nil
}
