package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"yieldvault.backend/internal/config"
	"yieldvault.backend/internal/domain/entities"
	domainerrors "yieldvault.backend/internal/domain/errors"
	domainrepo "yieldvault.backend/internal/domain/repositories"
	"yieldvault.backend/internal/infrastructure/datasources"
	"yieldvault.backend/internal/infrastructure/repositories"
	"yieldvault.backend/pkg/jwt"
	"yieldvault.backend/pkg/utils"
)

type adminTokenRuntime interface {
	GetUserByID(ctx context.Context, userID uuid.UUID) (*entities.User, error)
	GetUserByEmail(ctx context.Context, email string) (*entities.User, error)
	CreateUser(ctx context.Context, user *entities.User) error
}

type adminTokenDeps struct {
	loadEnv func() error
	loadCfg func() *config.Config
	prepare func(cfg *config.Config) (adminTokenRuntime, io.Closer, error)
	now     func() time.Time
	out     io.Writer
}

type adminTokenRuntimeImpl struct {
	userRepo domainrepo.UserRepository
}

func (r adminTokenRuntimeImpl) GetUserByID(ctx context.Context, userID uuid.UUID) (*entities.User, error) {
	return r.userRepo.GetByID(ctx, userID)
}

func (r adminTokenRuntimeImpl) GetUserByEmail(ctx context.Context, email string) (*entities.User, error) {
	return r.userRepo.GetByEmail(ctx, email)
}

func (r adminTokenRuntimeImpl) CreateUser(ctx context.Context, user *entities.User) error {
	return r.userRepo.Create(ctx, user)
}

type dbCloser func()

func (c dbCloser) Close() error {
	c()
	return nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func defaultAdminTokenDeps() adminTokenDeps {
	return adminTokenDeps{
		loadEnv: func() error { return godotenv.Load() },
		loadCfg: config.Load,
		prepare: func(cfg *config.Config) (adminTokenRuntime, io.Closer, error) {
			db, err := datasources.Open(cfg.Database)
			if err != nil {
				return nil, nil, fmt.Errorf("failed to connect db: %w", err)
			}
			return adminTokenRuntimeImpl{userRepo: repositories.NewUserRepository(db)},
				dbCloser(func() { datasources.Close(db) }), nil
		},
		now: time.Now,
		out: os.Stdout,
	}
}

type adminTokenFlags struct {
	userID    string
	email     string
	bootstrap bool
	ttl       time.Duration
}

func parseFlags(args []string) (adminTokenFlags, error) {
	var f adminTokenFlags
	fs := flag.NewFlagSet("admin-token", flag.ContinueOnError)
	fs.StringVar(&f.userID, "user-id", "", "ADMIN user UUID")
	fs.StringVar(&f.email, "email", "", "ADMIN user email (alternative to --user-id)")
	fs.BoolVar(&f.bootstrap, "bootstrap", false, "create the ADMIN user for --email when it does not exist")
	fs.DurationVar(&f.ttl, "ttl", 0, "token lifetime (defaults to JWT_ADMIN_EXPIRY)")
	if err := fs.Parse(args); err != nil {
		return f, err
	}
	f.email = strings.ToLower(strings.TrimSpace(f.email))
	if f.userID == "" && f.email == "" {
		return f, fmt.Errorf("--user-id or --email is required")
	}
	if f.bootstrap && f.email == "" {
		return f, fmt.Errorf("--bootstrap needs --email")
	}
	return f, nil
}

func resolveAdmin(ctx context.Context, rt adminTokenRuntime, f adminTokenFlags, now time.Time) (*entities.User, bool, error) {
	if f.userID != "" {
		id, err := uuid.Parse(f.userID)
		if err != nil {
			return nil, false, fmt.Errorf("invalid --user-id: %w", err)
		}
		user, err := rt.GetUserByID(ctx, id)
		if err != nil {
			return nil, false, fmt.Errorf("failed to load user %s: %w", id, err)
		}
		return user, false, nil
	}

	user, err := rt.GetUserByEmail(ctx, f.email)
	switch {
	case err == nil:
		return user, false, nil
	case errors.Is(err, domainerrors.ErrNotFound) && f.bootstrap:
		user = &entities.User{
			ID:        utils.GenerateUUIDv7(),
			Email:     f.email,
			Name:      strings.Split(f.email, "@")[0],
			Role:      entities.UserRoleAdmin,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := rt.CreateUser(ctx, user); err != nil {
			return nil, false, fmt.Errorf("failed creating admin user: %w", err)
		}
		return user, true, nil
	default:
		return nil, false, fmt.Errorf("failed to load user %s: %w", f.email, err)
	}
}

func runAdminToken(args []string, deps adminTokenDeps) error {
	def := defaultAdminTokenDeps()
	if deps.loadEnv == nil {
		deps.loadEnv = def.loadEnv
	}
	if deps.loadCfg == nil {
		deps.loadCfg = def.loadCfg
	}
	if deps.prepare == nil {
		deps.prepare = def.prepare
	}
	if deps.now == nil {
		deps.now = def.now
	}
	if deps.out == nil {
		deps.out = def.out
	}

	flags, err := parseFlags(args)
	if err != nil {
		return err
	}

	if err := deps.loadEnv(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := deps.loadCfg()
	runtime, closer, err := deps.prepare(cfg)
	if err != nil {
		return err
	}
	if closer == nil {
		closer = nopCloser{}
	}
	defer closer.Close()

	now := deps.now()
	user, created, err := resolveAdmin(context.Background(), runtime, flags, now)
	if err != nil {
		return err
	}
	if !user.IsAdmin() {
		return fmt.Errorf("user %s is not ADMIN (role=%s)", user.ID, user.Role)
	}

	ttl := flags.ttl
	if ttl <= 0 {
		ttl = cfg.JWT.AdminExpiry
	}
	tokens := jwt.NewTokenService(cfg.JWT.Secret, cfg.JWT.Issuer, ttl)
	token, expiresAt, err := tokens.Issue(user.ID, user.Email, string(user.Role))
	if err != nil {
		return fmt.Errorf("failed issuing token: %w", err)
	}

	if created {
		_, _ = fmt.Fprintln(deps.out, "Created ADMIN user")
	}
	_, _ = fmt.Fprintf(deps.out, "user_id=%s\n", user.ID.String())
	_, _ = fmt.Fprintf(deps.out, "email=%s\n", user.Email)
	_, _ = fmt.Fprintf(deps.out, "expires_at=%s\n", expiresAt.UTC().Format(time.RFC3339))
	_, _ = fmt.Fprintf(deps.out, "ADMIN_TOKEN=%s\n", token)
	return nil
}

func main() {
	if err := runAdminToken(os.Args[1:], defaultAdminTokenDeps()); err != nil {
		log.Fatal(err)
	}
}
