package repositories

import (
	"context"
	"time"

	"creditdesk/internal/adapters/persistence/models"
	"creditdesk/internal/core/domain"

	"gorm.io/gorm"
)

// repaymentRepository implements RepaymentRepository interface
type repaymentRepository struct {
	db *gorm.DB
}

// NewRepaymentRepository creates a new repayment repository
func NewRepaymentRepository(db *gorm.DB) RepaymentRepository {
	return &repaymentRepository{db: db}
}

// Create creates a new repayment
func (r *repaymentRepository) Create(ctx context.Context, repayment *models.Repayment) error {
	return r.db.WithContext(ctx).Create(repayment).Error
}

// GetByID gets a repayment by ID
func (r *repaymentRepository) GetByID(ctx context.Context, id uint) (*models.Repayment, error) {
	var repayment models.Repayment
	err := r.db.WithContext(ctx).First(&repayment, id).Error
	if err != nil {
		return nil, err
	}
	return &repayment, nil
}

// Update updates a repayment
func (r *repaymentRepository) Update(ctx context.Context, repayment *models.Repayment) error {
	return r.db.WithContext(ctx).Save(repayment).Error
}

// Delete deletes a repayment
func (r *repaymentRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Repayment{}, id).Error
}

// List lists repayments with pagination, newest first
func (r *repaymentRepository) List(ctx context.Context, offset, limit int) ([]*models.Repayment, int64, error) {
	var repayments []*models.Repayment
	var total int64

	if err := r.db.WithContext(ctx).Model(&models.Repayment{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.WithContext(ctx).
		Order("date DESC").
		Offset(offset).
		Limit(limit).
		Find(&repayments).Error
	if err != nil {
		return nil, 0, err
	}

	return repayments, total, nil
}

// ListByCreditID lists repayments for a credit, oldest first
func (r *repaymentRepository) ListByCreditID(ctx context.Context, creditID uint) ([]*models.Repayment, error) {
	var repayments []*models.Repayment
	err := r.db.WithContext(ctx).
		Where("credit_id = ?", creditID).
		Order("date ASC").
		Find(&repayments).Error
	if err != nil {
		return nil, err
	}
	return repayments, nil
}

// ListByCreditIDAndPeriod lists repayments for a credit within [from, to]
func (r *repaymentRepository) ListByCreditIDAndPeriod(ctx context.Context, creditID uint, from, to time.Time) ([]*models.Repayment, error) {
	var repayments []*models.Repayment
	err := r.db.WithContext(ctx).
		Where("credit_id = ?", creditID).
		Where("date >= ? AND date <= ?", from, to).
		Order("date ASC").
		Find(&repayments).Error
	if err != nil {
		return nil, err
	}
	return repayments, nil
}

// ListByCreditIDAndType lists repayments of one type for a credit
func (r *repaymentRepository) ListByCreditIDAndType(ctx context.Context, creditID uint, repaymentType domain.RepaymentType) ([]*models.Repayment, error) {
	var repayments []*models.Repayment
	err := r.db.WithContext(ctx).
		Where("credit_id = ?", creditID).
		Where("type = ?", repaymentType).
		Order("date ASC").
		Find(&repayments).Error
	if err != nil {
		return nil, err
	}
	return repayments, nil
}

// SearchByDateRange lists repayments across all credits within [from, to]
func (r *repaymentRepository) SearchByDateRange(ctx context.Context, from, to time.Time) ([]*models.Repayment, error) {
	var repayments []*models.Repayment
	err := r.db.WithContext(ctx).
		Where("date >= ? AND date <= ?", from, to).
		Order("date ASC").
		Find(&repayments).Error
	if err != nil {
		return nil, err
	}
	return repayments, nil
}

// SearchByAmountRange lists repayments with an amount within [min, max]
func (r *repaymentRepository) SearchByAmountRange(ctx context.Context, min, max float64) ([]*models.Repayment, error) {
	var repayments []*models.Repayment
	err := r.db.WithContext(ctx).
		Where("amount >= ? AND amount <= ?", min, max).
		Order("amount ASC").
		Find(&repayments).Error
	if err != nil {
		return nil, err
	}
	return repayments, nil
}

// SumByCreditID sums all repayment amounts for a credit
func (r *repaymentRepository) SumByCreditID(ctx context.Context, creditID uint) (float64, error) {
	var total float64
	err := r.db.WithContext(ctx).
		Model(&models.Repayment{}).
		Where("credit_id = ?", creditID).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	return total, err
}

// CountByCreditID counts all repayments for a credit
func (r *repaymentRepository) CountByCreditID(ctx context.Context, creditID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Repayment{}).
		Where("credit_id = ?", creditID).
		Count(&count).Error
	return count, err
}

// CountByCreditIDAndType counts repayments of one type for a credit
func (r *repaymentRepository) CountByCreditIDAndType(ctx context.Context, creditID uint, repaymentType domain.RepaymentType) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Repayment{}).
		Where("credit_id = ?", creditID).
		Where("type = ?", repaymentType).
		Count(&count).Error
	return count, err
}

// LastPaymentDate returns the most recent repayment date, nil when none exist
func (r *repaymentRepository) LastPaymentDate(ctx context.Context, creditID uint) (*time.Time, error) {
	var repayment models.Repayment
	err := r.db.WithContext(ctx).
		Where("credit_id = ?", creditID).
		Order("date DESC").
		First(&repayment).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &repayment.Date, nil
}
