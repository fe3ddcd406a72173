package entity

type Session struct {
	ID          string `gorm:"primaryKey"`
	UserID      int    `gorm:"not null;index"` // References: users(id)
	AccessToken string `gorm:"not null"`
	ExpiresAt   int64  `gorm:"not null;index"`
	CreatedAt   int64  `gorm:"not null"`

	// Relations
	User User `gorm:"foreignKey:UserID;references:ID"`
}

// Expired reports whether the session is no longer usable at nowMillis.
func (s *Session) Expired(nowMillis int64) bool {
	return s.ExpiresAt <= nowMillis
}
