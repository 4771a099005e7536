package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/linemk/ecom-shop/internal/domain/models"
	security "github.com/linemk/ecom-shop/internal/jwt-new"
	"github.com/linemk/ecom-shop/internal/storage"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrPasswordMismatch   = errors.New("password and confirmation do not match")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

type UserServiceInterface interface {
	Register(ctx context.Context, username, password, confirmPassword string) (*models.User, error)
	Login(ctx context.Context, username, password string) (string, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}

type UserService struct {
	log      *slog.Logger
	db       *sql.DB
	userRepo storage.UserStorage
	cartRepo storage.CartStorage
	tokenTTL time.Duration
}

func NewUserService(log *slog.Logger, db *sql.DB, userRepo storage.UserStorage, cartRepo storage.CartStorage, tokenTTL time.Duration) *UserService {
	return &UserService{
		log:      log,
		db:       db,
		userRepo: userRepo,
		cartRepo: cartRepo,
		tokenTTL: tokenTTL,
	}
}

// Register создаёт пользователя вместе с его пустой корзиной в одной транзакции.
// Пароль хэшируется через bcrypt (соль добавляется автоматически), в БД попадает только хэш.
// Несовпадение пароля и подтверждения — ошибка клиента, пользователь не сохраняется.
func (s *UserService) Register(ctx context.Context, username, password, confirmPassword string) (*models.User, error) {
	const op = "service.UserService.Register"
	logger := s.log.With(
		slog.String("op", op),
		slog.String("username", username),
	)
	logger.Info("registering user")

	if password != confirmPassword {
		logger.Warn("password confirmation mismatch")
		return nil, fmt.Errorf("%s: %w", op, ErrPasswordMismatch)
	}

	passHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		logger.Error("failed to hash password", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to hash password: %w", op, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		logger.Error("failed to begin transaction", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}

	user, err := s.userRepo.CreateUser(ctx, tx, &models.User{
		Username: username,
		PassHash: passHash,
	})
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		if errors.Is(err, storage.ErrUserAlreadyExists) {
			logger.Warn("username already taken")
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		logger.Error("failed to create user", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to create user: %w", op, err)
	}

	// корзина создаётся вместе с пользователем и живёт всё время его жизни
	if _, err := s.cartRepo.CreateCart(ctx, tx, user.ID); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		logger.Error("failed to create cart", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to create cart: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		logger.Error("failed to commit transaction", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to commit transaction: %w", op, err)
	}

	logger.Info("user registered", slog.Int64("userID", user.ID))
	return user, nil
}

// Login сравнивает введённый пароль с сохранённым хэшем и при успехе выдаёт JWT-токен
// (секрет для подписи берётся из переменной окружения).
func (s *UserService) Login(ctx context.Context, username, password string) (string, error) {
	const op = "service.UserService.Login"
	logger := s.log.With(
		slog.String("op", op),
		slog.String("username", username),
	)
	logger.Info("checking user")

	user, err := s.userRepo.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			logger.Warn("user not found")
			return "", fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
		}
		logger.Error("failed to get user", slog.Any("error", err))
		return "", fmt.Errorf("%s: failed to get user: %w", op, err)
	}

	if err := bcrypt.CompareHashAndPassword(user.PassHash, []byte(password)); err != nil {
		logger.Warn("invalid password")
		return "", fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	token, err := security.NewToken(ctx, user, s.tokenTTL)
	if err != nil {
		logger.Error("failed to generate token", slog.Any("error", err))
		return "", fmt.Errorf("%s: failed to generate token: %w", op, err)
	}

	logger.Info("user logged in successfully", slog.Int64("userID", user.ID))
	return token, nil
}

func (s *UserService) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	const op = "service.UserService.GetByUsername"
	user, err := s.userRepo.GetUserByUsername(ctx, username)
	if err != nil {
		s.log.Error("failed to get user", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return user, nil
}
