package entity

// User is the local copy of an authenticated provider's profile. The identity
// provider owns the data; it is refreshed on every sign-in.
type User struct {
	ID        int    `gorm:"primaryKey"`
	Sub       string `gorm:"not null;uniqueIndex"`
	Name      string `gorm:"not null"`
	Email     string `gorm:"not null"`
	AvatarURL string
	CreatedAt int64 `gorm:"not null"`
	UpdatedAt int64 `gorm:"not null"`
}
