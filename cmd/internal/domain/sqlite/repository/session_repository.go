package repository

import (
	"errors"
	"gobarber/cmd/internal/domain/entity"
	"gorm.io/gorm"
)

type DefaultSessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *DefaultSessionRepository {
	return &DefaultSessionRepository{db: db}
}

// FindByID loads a session together with its user.
func (s *DefaultSessionRepository) FindByID(id string) (*entity.Session, error) {
	var sess entity.Session
	err := s.db.Preload("User").Where("id = ?", id).First(&sess).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &sess, err
}

func (s *DefaultSessionRepository) Save(sess *entity.Session) error {
	return s.db.Omit("User").Save(sess).Error
}

func (s *DefaultSessionRepository) Delete(id string) error {
	return s.db.Where("id = ?", id).Delete(&entity.Session{}).Error
}

// DeleteExpired removes every session whose expiry is at or before nowMillis
// and returns the ids it removed.
func (s *DefaultSessionRepository) DeleteExpired(nowMillis int64) ([]string, error) {
	var ids []string
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&entity.Session{}).Where("expires_at <= ?", nowMillis).Pluck("id", &ids).Error; err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}
		return tx.Where("id IN ?", ids).Delete(&entity.Session{}).Error
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}
