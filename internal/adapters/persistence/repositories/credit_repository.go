package repositories

import (
	"context"
	"time"

	"creditdesk/internal/adapters/persistence/models"
	"creditdesk/internal/core/domain"

	"gorm.io/gorm"
)

// creditRepository implements CreditRepository interface
type creditRepository struct {
	db *gorm.DB
}

// NewCreditRepository creates a new credit repository
func NewCreditRepository(db *gorm.DB) CreditRepository {
	return &creditRepository{db: db}
}

// Create creates a new credit
func (r *creditRepository) Create(ctx context.Context, credit *models.Credit) error {
	return r.db.WithContext(ctx).Create(credit).Error
}

// GetByID gets a credit by ID with client and repayments
func (r *creditRepository) GetByID(ctx context.Context, id uint) (*models.Credit, error) {
	var credit models.Credit
	err := r.db.WithContext(ctx).
		Preload("Client").
		Preload("Repayments", func(db *gorm.DB) *gorm.DB {
			return db.Order("date ASC")
		}).
		First(&credit, id).Error
	if err != nil {
		return nil, err
	}
	return &credit, nil
}

// Update updates a credit
func (r *creditRepository) Update(ctx context.Context, credit *models.Credit) error {
	return r.db.WithContext(ctx).Save(credit).Error
}

// Delete soft deletes a credit
func (r *creditRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Credit{}, id).Error
}

// List lists all credits with pagination
func (r *creditRepository) List(ctx context.Context, offset, limit int) ([]*models.Credit, int64, error) {
	var credits []*models.Credit
	var total int64

	if err := r.db.WithContext(ctx).Model(&models.Credit{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.WithContext(ctx).
		Preload("Client").
		Order("request_date DESC").
		Offset(offset).
		Limit(limit).
		Find(&credits).Error
	if err != nil {
		return nil, 0, err
	}

	return credits, total, nil
}

// ListByClientID lists all credits belonging to a client
func (r *creditRepository) ListByClientID(ctx context.Context, clientID uint) ([]*models.Credit, error) {
	var credits []*models.Credit
	err := r.db.WithContext(ctx).
		Where("client_id = ?", clientID).
		Order("request_date DESC").
		Find(&credits).Error
	if err != nil {
		return nil, err
	}
	return credits, nil
}

// ListByStatus lists credits filtered by status with pagination
func (r *creditRepository) ListByStatus(ctx context.Context, status domain.CreditStatus, offset, limit int) ([]*models.Credit, int64, error) {
	var credits []*models.Credit
	var total int64

	if err := r.db.WithContext(ctx).Model(&models.Credit{}).Where("status = ?", status).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.WithContext(ctx).
		Preload("Client").
		Where("status = ?", status).
		Order("request_date DESC").
		Offset(offset).
		Limit(limit).
		Find(&credits).Error
	if err != nil {
		return nil, 0, err
	}

	return credits, total, nil
}

// ListByType lists credits filtered by type with pagination
func (r *creditRepository) ListByType(ctx context.Context, creditType domain.CreditType, offset, limit int) ([]*models.Credit, int64, error) {
	var credits []*models.Credit
	var total int64

	if err := r.db.WithContext(ctx).Model(&models.Credit{}).Where("type = ?", creditType).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.WithContext(ctx).
		Preload("Client").
		Where("type = ?", creditType).
		Order("request_date DESC").
		Offset(offset).
		Limit(limit).
		Find(&credits).Error
	if err != nil {
		return nil, 0, err
	}

	return credits, total, nil
}

// ListAccepted lists all accepted credits with their client and repayments.
// Used by the delinquency scan, which needs the full picture.
func (r *creditRepository) ListAccepted(ctx context.Context) ([]*models.Credit, error) {
	var credits []*models.Credit
	err := r.db.WithContext(ctx).
		Preload("Client").
		Preload("Repayments", func(db *gorm.DB) *gorm.DB {
			return db.Order("date ASC")
		}).
		Where("status = ?", domain.StatusAccepted).
		Find(&credits).Error
	if err != nil {
		return nil, err
	}
	return credits, nil
}

// SearchByAmountRange lists credits with an amount within [min, max]
func (r *creditRepository) SearchByAmountRange(ctx context.Context, min, max float64) ([]*models.Credit, error) {
	var credits []*models.Credit
	err := r.db.WithContext(ctx).
		Preload("Client").
		Where("amount >= ? AND amount <= ?", min, max).
		Order("amount ASC").
		Find(&credits).Error
	if err != nil {
		return nil, err
	}
	return credits, nil
}

// SearchByDateRange lists credits requested within [from, to]
func (r *creditRepository) SearchByDateRange(ctx context.Context, from, to time.Time) ([]*models.Credit, error) {
	var credits []*models.Credit
	err := r.db.WithContext(ctx).
		Preload("Client").
		Where("request_date >= ? AND request_date <= ?", from, to).
		Order("request_date ASC").
		Find(&credits).Error
	if err != nil {
		return nil, err
	}
	return credits, nil
}

// CountActiveByClientID counts a client's credits that are pending or accepted
func (r *creditRepository) CountActiveByClientID(ctx context.Context, clientID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Credit{}).
		Where("client_id = ?", clientID).
		Where("status IN ?", []domain.CreditStatus{domain.StatusInProgress, domain.StatusAccepted}).
		Count(&count).Error
	return count, err
}

// CountByStatus counts credits in a given status
func (r *creditRepository) CountByStatus(ctx context.Context, status domain.CreditStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Credit{}).
		Where("status = ?", status).
		Count(&count).Error
	return count, err
}

// CountByType counts credits of a given type
func (r *creditRepository) CountByType(ctx context.Context, creditType domain.CreditType) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Credit{}).
		Where("type = ?", creditType).
		Count(&count).Error
	return count, err
}

// SumAmountByStatus sums credit amounts in a given status
func (r *creditRepository) SumAmountByStatus(ctx context.Context, status domain.CreditStatus) (float64, error) {
	var total float64
	err := r.db.WithContext(ctx).
		Model(&models.Credit{}).
		Where("status = ?", status).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	return total, err
}
