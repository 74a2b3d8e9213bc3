package models

import (
	"time"

	"creditdesk/internal/core/domain"

	"gorm.io/gorm"
)

// ============================================================
// Auth & Staff Tables
// ============================================================

// User represents a staff account (users table)
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Username  string         `gorm:"uniqueIndex;size:50;not null" json:"username"`
	Email     string         `gorm:"uniqueIndex;size:100;not null" json:"email"`
	Password  string         `gorm:"size:255;not null" json:"-"`
	Role      string         `gorm:"size:20;default:'OFFICER'" json:"role"`
	IsActive  bool           `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// UserResponse DTO
type UserResponse struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

func (u *User) ToResponse() *UserResponse {
	return &UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Role:      u.Role,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
}

// RefreshToken represents refresh_tokens table
type RefreshToken struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"index;not null" json:"user_id"`
	TokenHash string     `gorm:"size:255;not null;index" json:"-"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	RevokedAt *time.Time `gorm:"index" json:"revoked_at"`
	User      User       `gorm:"foreignKey:UserID" json:"-"`
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

func (rt *RefreshToken) IsRevoked() bool {
	return rt.RevokedAt != nil
}

func (rt *RefreshToken) IsExpired() bool {
	return time.Now().After(rt.ExpiresAt)
}

// ============================================================
// Credit Domain Tables
// ============================================================

// Client represents a bank client holding credits (clients table)
type Client struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"size:100;not null" json:"name"`
	Email     string         `gorm:"uniqueIndex;size:100;not null" json:"email"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Credits []Credit `gorm:"foreignKey:ClientID" json:"credits,omitempty"`
}

func (Client) TableName() string {
	return "clients"
}

// ClientResponse DTO
type ClientResponse struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	CreditCount int       `json:"credit_count"`
	CreatedAt   time.Time `json:"created_at"`
}

func (cl *Client) ToResponse() *ClientResponse {
	return &ClientResponse{
		ID:          cl.ID,
		Name:        cl.Name,
		Email:       cl.Email,
		CreditCount: len(cl.Credits),
		CreatedAt:   cl.CreatedAt,
	}
}

// Credit represents a loan application/contract (credits table).
// All three variants live in one table; Type selects which variant fields
// are meaningful (Motif for personal, PropertyType for real estate,
// CompanyName for business).
type Credit struct {
	ID              uint                 `gorm:"primaryKey" json:"id"`
	Type            domain.CreditType    `gorm:"size:20;not null;index" json:"type"`
	Status          domain.CreditStatus  `gorm:"size:20;not null;default:'EN_COURS';index" json:"status"`
	RequestDate     time.Time            `gorm:"type:date;not null" json:"request_date"`
	AcceptanceDate  *time.Time           `gorm:"type:date" json:"acceptance_date"`
	Amount          float64              `gorm:"type:decimal(15,2);not null" json:"amount"`
	TermMonths      int                  `gorm:"not null" json:"term_months"`
	InterestRate    float64              `gorm:"type:decimal(5,2);not null" json:"interest_rate"`
	RejectionReason string               `gorm:"type:text" json:"rejection_reason,omitempty"`
	Motif           string               `gorm:"size:255" json:"motif,omitempty"`
	PropertyType    *domain.PropertyType `gorm:"size:30" json:"property_type,omitempty"`
	CompanyName     string               `gorm:"size:150" json:"company_name,omitempty"`
	ClientID        uint                 `gorm:"not null;index" json:"client_id"`
	CreatedAt       time.Time            `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time            `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt       gorm.DeletedAt       `gorm:"index" json:"-"`

	// Relations
	Client     *Client     `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	Repayments []Repayment `gorm:"foreignKey:CreditID" json:"repayments,omitempty"`
}

func (Credit) TableName() string {
	return "credits"
}

// CreditResponse DTO
type CreditResponse struct {
	ID              uint                 `json:"id"`
	Type            domain.CreditType    `json:"type"`
	Status          domain.CreditStatus  `json:"status"`
	RequestDate     time.Time            `json:"request_date"`
	AcceptanceDate  *time.Time           `json:"acceptance_date"`
	Amount          float64              `json:"amount"`
	TermMonths      int                  `json:"term_months"`
	InterestRate    float64              `json:"interest_rate"`
	RejectionReason string               `json:"rejection_reason,omitempty"`
	Motif           string               `json:"motif,omitempty"`
	PropertyType    *domain.PropertyType `json:"property_type,omitempty"`
	CompanyName     string               `json:"company_name,omitempty"`
	ClientID        uint                 `json:"client_id"`
	ClientName      string               `json:"client_name,omitempty"`
	RepaymentCount  int                  `json:"repayment_count"`
	CreatedAt       time.Time            `json:"created_at"`
	UpdatedAt       time.Time            `json:"updated_at"`
}

func (cr *Credit) ToResponse() *CreditResponse {
	resp := &CreditResponse{
		ID:              cr.ID,
		Type:            cr.Type,
		Status:          cr.Status,
		RequestDate:     cr.RequestDate,
		AcceptanceDate:  cr.AcceptanceDate,
		Amount:          cr.Amount,
		TermMonths:      cr.TermMonths,
		InterestRate:    cr.InterestRate,
		RejectionReason: cr.RejectionReason,
		Motif:           cr.Motif,
		PropertyType:    cr.PropertyType,
		CompanyName:     cr.CompanyName,
		ClientID:        cr.ClientID,
		RepaymentCount:  len(cr.Repayments),
		CreatedAt:       cr.CreatedAt,
		UpdatedAt:       cr.UpdatedAt,
	}

	if cr.Client != nil {
		resp.ClientName = cr.Client.Name
	}

	return resp
}

// Repayment represents a payment recorded against a credit (repayments table)
type Repayment struct {
	ID        uint                 `gorm:"primaryKey" json:"id"`
	CreditID  uint                 `gorm:"not null;index" json:"credit_id"`
	Date      time.Time            `gorm:"type:date;not null;index" json:"date"`
	Amount    float64              `gorm:"type:decimal(15,2);not null" json:"amount"`
	Type      domain.RepaymentType `gorm:"size:30;not null" json:"type"`
	CreatedAt time.Time            `gorm:"autoCreateTime" json:"created_at"`

	// Relations
	Credit *Credit `gorm:"foreignKey:CreditID" json:"credit,omitempty"`
}

func (Repayment) TableName() string {
	return "repayments"
}

// RepaymentResponse DTO
type RepaymentResponse struct {
	ID        uint                 `json:"id"`
	CreditID  uint                 `json:"credit_id"`
	Date      time.Time            `json:"date"`
	Amount    float64              `json:"amount"`
	Type      domain.RepaymentType `json:"type"`
	CreatedAt time.Time            `json:"created_at"`
}

func (r *Repayment) ToResponse() *RepaymentResponse {
	return &RepaymentResponse{
		ID:        r.ID,
		CreditID:  r.CreditID,
		Date:      r.Date,
		Amount:    r.Amount,
		Type:      r.Type,
		CreatedAt: r.CreatedAt,
	}
}

// ============================================================
// Auto Migration
// ============================================================

// AutoMigrate runs auto migration for all tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&RefreshToken{},
		&Client{},
		&Credit{},
		&Repayment{},
	)
}
