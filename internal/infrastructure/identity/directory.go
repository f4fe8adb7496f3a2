package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tenantgrid/backend/internal/domain/shared"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Directory errors
var (
	ErrAccountExists      = shared.NewDomainError("ALREADY_EXISTS", "Account already exists")
	ErrAccountNotFound    = shared.NewDomainError("NOT_FOUND", "Account not found")
	ErrInvalidCredentials = shared.NewDomainError("UNAUTHORIZED", "Invalid email or password")
	ErrAccountUnconfirmed = shared.NewDomainError("UNAUTHORIZED", "Account is not confirmed")
)

// accountModel is the GORM model for directory accounts.
type accountModel struct {
	ID           string    `gorm:"type:varchar(36);primaryKey"`
	TenantID     string    `gorm:"type:varchar(36);not null;index"`
	Email        string    `gorm:"type:varchar(255);not null;uniqueIndex"`
	PasswordHash string    `gorm:"type:varchar(255);not null"`
	Confirmed    bool      `gorm:"not null;default:false"`
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time `gorm:"not null"`
}

// TableName sets the table name for accountModel.
func (accountModel) TableName() string {
	return "directory_accounts"
}

// Directory is the relational-store implementation of Provider.
type Directory struct {
	db *gorm.DB
}

// NewDirectory creates a directory backed by the given database handle.
func NewDirectory(db *gorm.DB) *Directory {
	return &Directory{db: db}
}

// Migrate creates the directory schema.
func (d *Directory) Migrate() error {
	return d.db.AutoMigrate(&accountModel{})
}

// RegisterAccount implements Provider.
func (d *Directory) RegisterAccount(ctx context.Context, input RegisterAccountInput) (*Account, error) {
	if input.TenantID == "" || input.Email == "" || input.Password == "" {
		return nil, shared.ErrInvalidInput
	}

	var existing accountModel
	err := d.db.WithContext(ctx).Where("email = ?", input.Email).First(&existing).Error
	if err == nil {
		return nil, ErrAccountExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("directory lookup failed: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("password hashing failed: %w", err)
	}

	model := accountModel{
		ID:           uuid.New().String(),
		TenantID:     input.TenantID,
		Email:        input.Email,
		PasswordHash: string(hash),
	}
	if err := d.db.WithContext(ctx).Create(&model).Error; err != nil {
		return nil, fmt.Errorf("account creation failed: %w", err)
	}

	return model.toAccount(), nil
}

// ConfirmAccount implements Provider.
func (d *Directory) ConfirmAccount(ctx context.Context, email string) error {
	result := d.db.WithContext(ctx).Model(&accountModel{}).
		Where("email = ?", email).
		Update("confirmed", true)
	if result.Error != nil {
		return fmt.Errorf("account confirmation failed: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrAccountNotFound
	}
	return nil
}

// Authenticate implements Provider.
func (d *Directory) Authenticate(ctx context.Context, email, password string) (*Account, error) {
	var model accountModel
	err := d.db.WithContext(ctx).Where("email = ?", email).First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("directory lookup failed: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(model.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	if !model.Confirmed {
		return nil, ErrAccountUnconfirmed
	}

	return model.toAccount(), nil
}

func (m *accountModel) toAccount() *Account {
	return &Account{
		ID:        m.ID,
		TenantID:  m.TenantID,
		Email:     m.Email,
		Confirmed: m.Confirmed,
		CreatedAt: m.CreatedAt,
	}
}

// Ensure Directory implements Provider
var _ Provider = (*Directory)(nil)
