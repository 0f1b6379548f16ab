package repositories

import (
	"context"
	"encoding/json"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/you/portalauth/domain"
)

// CredentialRecord is the database model for one credential store entry.
type CredentialRecord struct {
	Key   string `gorm:"primaryKey;size:64"`
	Value string
}

// TableName returns the table name for GORM
func (CredentialRecord) TableName() string {
	return "credentials"
}

// GormCredentialRepository implements domain.CredentialRepository on a SQL
// database through GORM. Writes and clears run in one transaction.
type GormCredentialRepository struct {
	db *gorm.DB
}

// NewGormCredentialRepository creates the repository and migrates its table.
func NewGormCredentialRepository(db *gorm.DB) (domain.CredentialRepository, error) {
	if err := db.AutoMigrate(&CredentialRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate credentials table: %w", err)
	}
	return &GormCredentialRepository{db: db}, nil
}

// Save implements domain.CredentialRepository
func (r *GormCredentialRepository) Save(ctx context.Context, creds *domain.Credentials) error {
	data, err := json.Marshal(creds.User)
	if err != nil {
		return fmt.Errorf("failed to marshal user: %w", err)
	}

	records := []CredentialRecord{
		{Key: keyUser, Value: string(data)},
		{Key: keyToken, Value: creds.Token},
		{Key: keyIdentifier, Value: creds.Identifier},
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&records).Error
	})
}

// Load implements domain.CredentialRepository
func (r *GormCredentialRepository) Load(ctx context.Context) (*domain.Credentials, error) {
	var records []CredentialRecord
	err := r.db.WithContext(ctx).
		Where("key IN ?", []string{keyUser, keyToken, keyIdentifier}).
		Find(&records).Error
	if err != nil {
		return nil, err
	}

	byKey := make(map[string]string, len(records))
	for _, rec := range records {
		byKey[rec.Key] = rec.Value
	}

	rawUser := byKey[keyUser]
	token := byKey[keyToken]
	if rawUser == "" || token == "" {
		return nil, domain.ErrCredentialsNotFound
	}

	var user domain.User
	if err := json.Unmarshal([]byte(rawUser), &user); err != nil {
		return nil, fmt.Errorf("failed to unmarshal stored user: %w", err)
	}

	return &domain.Credentials{
		User:       &user,
		Token:      token,
		Identifier: byKey[keyIdentifier],
	}, nil
}

// Clear implements domain.CredentialRepository
func (r *GormCredentialRepository) Clear(ctx context.Context) error {
	return r.db.WithContext(ctx).
		Where("key IN ?", []string{keyUser, keyToken, keyIdentifier}).
		Delete(&CredentialRecord{}).Error
}
