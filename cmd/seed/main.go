package main

import (
	"context"
	"fmt"
	"time"

	"github.com/joho/godotenv"

	"github.com/oksasatya/go-ddd-user-registration/config"
	"github.com/oksasatya/go-ddd-user-registration/internal/application"
	"github.com/oksasatya/go-ddd-user-registration/internal/domain/entity"
	"github.com/oksasatya/go-ddd-user-registration/internal/domain/failure"
	"github.com/oksasatya/go-ddd-user-registration/internal/domain/policy"
	pginfra "github.com/oksasatya/go-ddd-user-registration/internal/infrastructure/postgres"
	"github.com/oksasatya/go-ddd-user-registration/pkg/helpers"
)

const (
	demoEmail    = "demo@example.com"
	demoPassword = "Password123!"
	demoName     = "Demo User"
)

// seed ensures the base roles and an admin demo user, then prints a signed
// development token for that user.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env)
	ctx := context.Background()

	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), pginfra.PoolOptions{MaxConns: 2, AppName: cfg.AppName + "-seed"})
	if err != nil {
		logger.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	roles := pginfra.NewRoleRepository(pool)
	admin, err := roles.EnsureRole(ctx, entity.RoleAdmin)
	if err != nil {
		logger.Fatalf("failed to ensure admin role: %v", err)
	}
	user, err := roles.EnsureRole(ctx, entity.RoleUser)
	if err != nil {
		logger.Fatalf("failed to ensure user role: %v", err)
	}
	fmt.Printf("roles ensured: admin=%s user=%s\n", admin.ID, user.ID)

	users := pginfra.NewUserRepository(pool, helpers.OTPGenerator{}, cfg.VerificationTokenTTL)
	register := application.NewRegisterUser(users, entity.UserFactory{
		Emails: policy.NewEmailValidator(),
		Hasher: helpers.NewBcryptHasher(cfg.BcryptCost),
		IDs:    helpers.UUIDGenerator{},
	})
	res, err := register.Execute(ctx, application.RegisterUserInput{
		Email:                 demoEmail,
		Password:              demoPassword,
		Name:                  demoName,
		AcceptedTerms:         true,
		AcceptedPrivacyPolicy: true,
		SystemID:              "seed",
		RoleID:                admin.ID,
	})
	if err != nil {
		logger.Fatalf("failed to seed user: %v", err)
	}

	var id string
	if f, ok := res.Left(); ok {
		if f.Kind != failure.Conflict {
			logger.Fatalf("demo user rejected: %s", f.Error())
		}
		existing, err := users.FindByEmail(ctx, demoEmail)
		if err != nil {
			logger.Fatalf("failed to load demo user: %v", err)
		}
		id = existing.ID()
		fmt.Printf("demo user already present: id=%s email=%s\n", id, demoEmail)
	} else {
		out, _ := res.Right()
		id = out.User.ID
		fmt.Printf("seeded user: id=%s email=%s password=%s verification_token=%s\n",
			id, demoEmail, demoPassword, out.VerificationToken)
	}

	token, exp, err := helpers.NewTokenSigner(cfg.JWTSecret, cfg.JWTTTL).CreateToken(id)
	if err != nil {
		logger.Fatalf("failed to sign dev token: %v", err)
	}
	fmt.Printf("dev token (expires %s): %s\n", exp.Format(time.RFC3339), token)
}
