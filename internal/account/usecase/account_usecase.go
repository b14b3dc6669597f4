package usecase

import (
	"errors"
	"fmt"
	"time"

	"localsync-backend/internal/account/domain"
	"localsync-backend/internal/account/repository"
	txndomain "localsync-backend/internal/transaction/domain"
	txnusecase "localsync-backend/internal/transaction/usecase"
	"localsync-backend/pkg/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrAccountExists = errors.New("account already exists")

// AccountUsecase defines the interface for account business logic
type AccountUsecase interface {
	// Register creates an account and returns it with a signed API token
	Register(emailAddress, provider string) (*domain.Account, string, error)

	// ValidateToken resolves a bearer token to its account
	ValidateToken(token string) (*domain.Account, error)
}

type accountUsecase struct {
	accountRepo repository.AccountRepository
	recorder    *txnusecase.Recorder
	cfg         *config.Config
}

func NewAccountUsecase(accountRepo repository.AccountRepository, recorder *txnusecase.Recorder, cfg *config.Config) AccountUsecase {
	return &accountUsecase{
		accountRepo: accountRepo,
		recorder:    recorder,
		cfg:         cfg,
	}
}

func (u *accountUsecase) Register(emailAddress, provider string) (*domain.Account, string, error) {
	existing, err := u.accountRepo.FindByEmailAddress(emailAddress)
	if err != nil {
		return nil, "", err
	}
	if existing != nil {
		return nil, "", ErrAccountExists
	}

	if provider == "" {
		provider = "imap"
	}
	// The id is assigned up front so the recorder can scope its
	// per-account append lock, and so the create transaction and the
	// account row commit as one unit.
	account := &domain.Account{
		ID:           uuid.New().String(),
		EmailAddress: emailAddress,
		Provider:     provider,
	}

	_, err = u.recorder.Record(account.ID, func(tx *gorm.DB) ([]txnusecase.Change, error) {
		if err := u.accountRepo.CreateTx(tx, account); err != nil {
			return nil, err
		}
		return []txnusecase.Change{{
			Object:   txndomain.ObjectAccount,
			ObjectID: account.ID,
			Event:    txndomain.EventCreate,
		}}, nil
	})
	if err != nil {
		return nil, "", err
	}

	token, err := u.signToken(account)
	if err != nil {
		return nil, "", err
	}
	return account, token, nil
}

func (u *accountUsecase) ValidateToken(tokenString string) (*domain.Account, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(u.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, errors.New("invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid token claims")
	}
	accountID, _ := claims["sub"].(string)
	if accountID == "" {
		return nil, errors.New("invalid token claims")
	}

	account, err := u.accountRepo.FindByID(accountID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, errors.New("account not found")
	}
	return account, nil
}

func (u *accountUsecase) signToken(account *domain.Account) (string, error) {
	claims := jwt.MapClaims{
		"sub":   account.ID,
		"email": account.EmailAddress,
		"iat":   time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(u.cfg.JWTSecret))
}
