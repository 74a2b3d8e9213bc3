package repositories

import (
	"context"
	"time"

	"creditdesk/internal/adapters/persistence/models"
	"creditdesk/internal/core/domain"
)

// UserRepository defines user repository interface
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, offset, limit int) ([]*models.User, int64, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// RefreshTokenRepository defines refresh token repository interface
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *models.RefreshToken) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error)
	GetByUserID(ctx context.Context, userID uint) ([]*models.RefreshToken, error)
	Revoke(ctx context.Context, id uint) error
	RevokeByTokenHash(ctx context.Context, tokenHash string) error
	RevokeAllByUserID(ctx context.Context, userID uint) error
	DeleteExpired(ctx context.Context) error
	CountActiveByUserID(ctx context.Context, userID uint) (int64, error)
}

// ClientRepository defines client repository interface
type ClientRepository interface {
	Create(ctx context.Context, client *models.Client) error
	GetByID(ctx context.Context, id uint) (*models.Client, error)
	GetByEmail(ctx context.Context, email string) (*models.Client, error)
	Update(ctx context.Context, client *models.Client) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, offset, limit int) ([]*models.Client, int64, error)
	Search(ctx context.Context, query string, limit int) ([]*models.Client, error)
	Count(ctx context.Context) (int64, error)
	Exists(ctx context.Context, id uint) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// CreditRepository defines credit repository interface
type CreditRepository interface {
	Create(ctx context.Context, credit *models.Credit) error
	GetByID(ctx context.Context, id uint) (*models.Credit, error)
	Update(ctx context.Context, credit *models.Credit) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, offset, limit int) ([]*models.Credit, int64, error)
	ListByClientID(ctx context.Context, clientID uint) ([]*models.Credit, error)
	ListByStatus(ctx context.Context, status domain.CreditStatus, offset, limit int) ([]*models.Credit, int64, error)
	ListByType(ctx context.Context, creditType domain.CreditType, offset, limit int) ([]*models.Credit, int64, error)
	ListAccepted(ctx context.Context) ([]*models.Credit, error)
	SearchByAmountRange(ctx context.Context, min, max float64) ([]*models.Credit, error)
	SearchByDateRange(ctx context.Context, from, to time.Time) ([]*models.Credit, error)
	CountActiveByClientID(ctx context.Context, clientID uint) (int64, error)
	CountByStatus(ctx context.Context, status domain.CreditStatus) (int64, error)
	CountByType(ctx context.Context, creditType domain.CreditType) (int64, error)
	SumAmountByStatus(ctx context.Context, status domain.CreditStatus) (float64, error)
}

// RepaymentRepository defines repayment repository interface
type RepaymentRepository interface {
	Create(ctx context.Context, repayment *models.Repayment) error
	GetByID(ctx context.Context, id uint) (*models.Repayment, error)
	Update(ctx context.Context, repayment *models.Repayment) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, offset, limit int) ([]*models.Repayment, int64, error)
	ListByCreditID(ctx context.Context, creditID uint) ([]*models.Repayment, error)
	ListByCreditIDAndPeriod(ctx context.Context, creditID uint, from, to time.Time) ([]*models.Repayment, error)
	ListByCreditIDAndType(ctx context.Context, creditID uint, repaymentType domain.RepaymentType) ([]*models.Repayment, error)
	SearchByDateRange(ctx context.Context, from, to time.Time) ([]*models.Repayment, error)
	SearchByAmountRange(ctx context.Context, min, max float64) ([]*models.Repayment, error)
	SumByCreditID(ctx context.Context, creditID uint) (float64, error)
	CountByCreditID(ctx context.Context, creditID uint) (int64, error)
	CountByCreditIDAndType(ctx context.Context, creditID uint, repaymentType domain.RepaymentType) (int64, error)
	LastPaymentDate(ctx context.Context, creditID uint) (*time.Time, error)
}
