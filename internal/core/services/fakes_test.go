package services

import (
	"context"
	"sort"
	"strings"
	"time"

	"creditdesk/internal/adapters/persistence/models"
	"creditdesk/internal/core/domain"

	"gorm.io/gorm"
)

// In-memory repository fakes used by the service tests.

type fakeClientRepo struct {
	clients map[uint]*models.Client
	nextID  uint
}

func newFakeClientRepo() *fakeClientRepo {
	return &fakeClientRepo{clients: make(map[uint]*models.Client), nextID: 1}
}

func (f *fakeClientRepo) Create(_ context.Context, client *models.Client) error {
	client.ID = f.nextID
	f.nextID++
	client.CreatedAt = time.Now()
	f.clients[client.ID] = client
	return nil
}

func (f *fakeClientRepo) GetByID(_ context.Context, id uint) (*models.Client, error) {
	client, ok := f.clients[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return client, nil
}

func (f *fakeClientRepo) GetByEmail(_ context.Context, email string) (*models.Client, error) {
	for _, client := range f.clients {
		if client.Email == email {
			return client, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeClientRepo) Update(_ context.Context, client *models.Client) error {
	f.clients[client.ID] = client
	return nil
}

func (f *fakeClientRepo) Delete(_ context.Context, id uint) error {
	delete(f.clients, id)
	return nil
}

func (f *fakeClientRepo) List(_ context.Context, offset, limit int) ([]*models.Client, int64, error) {
	all := f.sorted()
	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (f *fakeClientRepo) Search(_ context.Context, query string, limit int) ([]*models.Client, error) {
	var out []*models.Client
	for _, client := range f.sorted() {
		if strings.Contains(client.Name, query) || strings.Contains(client.Email, query) {
			out = append(out, client)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (f *fakeClientRepo) Count(_ context.Context) (int64, error) {
	return int64(len(f.clients)), nil
}

func (f *fakeClientRepo) Exists(_ context.Context, id uint) (bool, error) {
	_, ok := f.clients[id]
	return ok, nil
}

func (f *fakeClientRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	for _, client := range f.clients {
		if client.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeClientRepo) sorted() []*models.Client {
	out := make([]*models.Client, 0, len(f.clients))
	for _, client := range f.clients {
		out = append(out, client)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

type fakeCreditRepo struct {
	credits map[uint]*models.Credit
	nextID  uint
}

func newFakeCreditRepo() *fakeCreditRepo {
	return &fakeCreditRepo{credits: make(map[uint]*models.Credit), nextID: 1}
}

func (f *fakeCreditRepo) Create(_ context.Context, credit *models.Credit) error {
	credit.ID = f.nextID
	f.nextID++
	credit.CreatedAt = time.Now()
	f.credits[credit.ID] = credit
	return nil
}

func (f *fakeCreditRepo) GetByID(_ context.Context, id uint) (*models.Credit, error) {
	credit, ok := f.credits[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return credit, nil
}

func (f *fakeCreditRepo) Update(_ context.Context, credit *models.Credit) error {
	f.credits[credit.ID] = credit
	return nil
}

func (f *fakeCreditRepo) Delete(_ context.Context, id uint) error {
	delete(f.credits, id)
	return nil
}

func (f *fakeCreditRepo) List(_ context.Context, offset, limit int) ([]*models.Credit, int64, error) {
	all := f.sorted()
	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (f *fakeCreditRepo) ListByClientID(_ context.Context, clientID uint) ([]*models.Credit, error) {
	var out []*models.Credit
	for _, credit := range f.sorted() {
		if credit.ClientID == clientID {
			out = append(out, credit)
		}
	}
	return out, nil
}

func (f *fakeCreditRepo) ListByStatus(_ context.Context, status domain.CreditStatus, offset, limit int) ([]*models.Credit, int64, error) {
	var all []*models.Credit
	for _, credit := range f.sorted() {
		if credit.Status == status {
			all = append(all, credit)
		}
	}
	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (f *fakeCreditRepo) ListByType(_ context.Context, creditType domain.CreditType, offset, limit int) ([]*models.Credit, int64, error) {
	var all []*models.Credit
	for _, credit := range f.sorted() {
		if credit.Type == creditType {
			all = append(all, credit)
		}
	}
	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (f *fakeCreditRepo) ListAccepted(_ context.Context) ([]*models.Credit, error) {
	var out []*models.Credit
	for _, credit := range f.sorted() {
		if credit.Status == domain.StatusAccepted {
			out = append(out, credit)
		}
	}
	return out, nil
}

func (f *fakeCreditRepo) SearchByAmountRange(_ context.Context, min, max float64) ([]*models.Credit, error) {
	var out []*models.Credit
	for _, credit := range f.sorted() {
		if credit.Amount >= min && credit.Amount <= max {
			out = append(out, credit)
		}
	}
	return out, nil
}

func (f *fakeCreditRepo) SearchByDateRange(_ context.Context, from, to time.Time) ([]*models.Credit, error) {
	var out []*models.Credit
	for _, credit := range f.sorted() {
		if !credit.RequestDate.Before(from) && !credit.RequestDate.After(to) {
			out = append(out, credit)
		}
	}
	return out, nil
}

func (f *fakeCreditRepo) CountActiveByClientID(_ context.Context, clientID uint) (int64, error) {
	var count int64
	for _, credit := range f.credits {
		if credit.ClientID == clientID && credit.Status.IsActive() {
			count++
		}
	}
	return count, nil
}

func (f *fakeCreditRepo) CountByStatus(_ context.Context, status domain.CreditStatus) (int64, error) {
	var count int64
	for _, credit := range f.credits {
		if credit.Status == status {
			count++
		}
	}
	return count, nil
}

func (f *fakeCreditRepo) CountByType(_ context.Context, creditType domain.CreditType) (int64, error) {
	var count int64
	for _, credit := range f.credits {
		if credit.Type == creditType {
			count++
		}
	}
	return count, nil
}

func (f *fakeCreditRepo) SumAmountByStatus(_ context.Context, status domain.CreditStatus) (float64, error) {
	var total float64
	for _, credit := range f.credits {
		if credit.Status == status {
			total += credit.Amount
		}
	}
	return total, nil
}

func (f *fakeCreditRepo) sorted() []*models.Credit {
	out := make([]*models.Credit, 0, len(f.credits))
	for _, credit := range f.credits {
		out = append(out, credit)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

type fakeRepaymentRepo struct {
	repayments map[uint]*models.Repayment
	nextID     uint
}

func newFakeRepaymentRepo() *fakeRepaymentRepo {
	return &fakeRepaymentRepo{repayments: make(map[uint]*models.Repayment), nextID: 1}
}

func (f *fakeRepaymentRepo) Create(_ context.Context, repayment *models.Repayment) error {
	repayment.ID = f.nextID
	f.nextID++
	repayment.CreatedAt = time.Now()
	f.repayments[repayment.ID] = repayment
	return nil
}

func (f *fakeRepaymentRepo) GetByID(_ context.Context, id uint) (*models.Repayment, error) {
	repayment, ok := f.repayments[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return repayment, nil
}

func (f *fakeRepaymentRepo) Update(_ context.Context, repayment *models.Repayment) error {
	f.repayments[repayment.ID] = repayment
	return nil
}

func (f *fakeRepaymentRepo) Delete(_ context.Context, id uint) error {
	delete(f.repayments, id)
	return nil
}

func (f *fakeRepaymentRepo) List(_ context.Context, offset, limit int) ([]*models.Repayment, int64, error) {
	all := f.sorted()
	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (f *fakeRepaymentRepo) ListByCreditID(_ context.Context, creditID uint) ([]*models.Repayment, error) {
	var out []*models.Repayment
	for _, repayment := range f.sorted() {
		if repayment.CreditID == creditID {
			out = append(out, repayment)
		}
	}
	return out, nil
}

func (f *fakeRepaymentRepo) ListByCreditIDAndPeriod(_ context.Context, creditID uint, from, to time.Time) ([]*models.Repayment, error) {
	var out []*models.Repayment
	for _, repayment := range f.sorted() {
		if repayment.CreditID == creditID && !repayment.Date.Before(from) && !repayment.Date.After(to) {
			out = append(out, repayment)
		}
	}
	return out, nil
}

func (f *fakeRepaymentRepo) ListByCreditIDAndType(_ context.Context, creditID uint, repaymentType domain.RepaymentType) ([]*models.Repayment, error) {
	var out []*models.Repayment
	for _, repayment := range f.sorted() {
		if repayment.CreditID == creditID && repayment.Type == repaymentType {
			out = append(out, repayment)
		}
	}
	return out, nil
}

func (f *fakeRepaymentRepo) SearchByDateRange(_ context.Context, from, to time.Time) ([]*models.Repayment, error) {
	var out []*models.Repayment
	for _, repayment := range f.sorted() {
		if !repayment.Date.Before(from) && !repayment.Date.After(to) {
			out = append(out, repayment)
		}
	}
	return out, nil
}

func (f *fakeRepaymentRepo) SearchByAmountRange(_ context.Context, min, max float64) ([]*models.Repayment, error) {
	var out []*models.Repayment
	for _, repayment := range f.sorted() {
		if repayment.Amount >= min && repayment.Amount <= max {
			out = append(out, repayment)
		}
	}
	return out, nil
}

func (f *fakeRepaymentRepo) SumByCreditID(_ context.Context, creditID uint) (float64, error) {
	var total float64
	for _, repayment := range f.repayments {
		if repayment.CreditID == creditID {
			total += repayment.Amount
		}
	}
	return total, nil
}

func (f *fakeRepaymentRepo) CountByCreditID(_ context.Context, creditID uint) (int64, error) {
	var count int64
	for _, repayment := range f.repayments {
		if repayment.CreditID == creditID {
			count++
		}
	}
	return count, nil
}

func (f *fakeRepaymentRepo) CountByCreditIDAndType(_ context.Context, creditID uint, repaymentType domain.RepaymentType) (int64, error) {
	var count int64
	for _, repayment := range f.repayments {
		if repayment.CreditID == creditID && repayment.Type == repaymentType {
			count++
		}
	}
	return count, nil
}

func (f *fakeRepaymentRepo) LastPaymentDate(_ context.Context, creditID uint) (*time.Time, error) {
	var last *time.Time
	for _, repayment := range f.repayments {
		if repayment.CreditID != creditID {
			continue
		}
		if last == nil || repayment.Date.After(*last) {
			d := repayment.Date
			last = &d
		}
	}
	return last, nil
}

func (f *fakeRepaymentRepo) sorted() []*models.Repayment {
	out := make([]*models.Repayment, 0, len(f.repayments))
	for _, repayment := range f.repayments {
		out = append(out, repayment)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
