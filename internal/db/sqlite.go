package db

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/pysugar/nexus-authfix/internal/db/models"
	"github.com/pysugar/nexus-authfix/internal/discovery"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// PathEnv names the nexus database to import fixed auth files into.
const PathEnv = "NEXUS_DB_PATH"

// InitDB opens the SQLite database and runs migrations.
func InitDB(dbPath string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(&models.Account{}); err != nil {
		return nil, err
	}
	return db, nil
}

type accountMetadata struct {
	ProjectID        string `json:"project_id,omitempty"`
	Source           string `json:"source"`
	DescriptorDigest string `json:"descriptor_digest,omitempty"`
}

// ImportCredential upserts the account identified by the credential's email
// and provider. It returns the account ID and whether a new row was created.
func ImportCredential(db *gorm.DB, cred discovery.Credential) (string, bool, error) {
	if cred.Email == "" {
		return "", false, errors.New("credential has no email")
	}
	provider := cred.Source
	metadata, err := json.Marshal(accountMetadata{
		ProjectID:        cred.ProjectID,
		Source:           cred.ConfigPath,
		DescriptorDigest: cred.Digest,
	})
	if err != nil {
		return "", false, err
	}
	now := time.Now()

	var existing models.Account
	err = db.Where("email = ? AND provider = ?", cred.Email, provider).First(&existing).Error
	switch {
	case err == nil:
		existing.AccessToken = cred.AccessToken
		existing.RefreshToken = cred.RefreshToken
		existing.ExpiresAt = cred.ExpiresAt
		existing.Metadata = string(metadata)
		existing.UpdatedAt = now
		if err := db.Save(&existing).Error; err != nil {
			return "", false, fmt.Errorf("update account %s: %w", existing.ID, err)
		}
		log.Printf("🔄 Updated account %s (%s)", cred.Email, existing.ID)
		return existing.ID, false, nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return "", false, fmt.Errorf("lookup account %s: %w", cred.Email, err)
	}

	account := models.Account{
		ID:           uuid.New().String(),
		Email:        cred.Email,
		Provider:     provider,
		AccessToken:  cred.AccessToken,
		RefreshToken: cred.RefreshToken,
		ExpiresAt:    cred.ExpiresAt,
		IsActive:     true,
		IsPrimary:    false,
		Metadata:     string(metadata),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := db.Create(&account).Error; err != nil {
		return "", false, fmt.Errorf("create account %s: %w", cred.Email, err)
	}
	log.Printf("✅ Imported account %s (%s)", cred.Email, account.ID)
	return account.ID, true, nil
}
