package repository

import "gorm.io/gorm"

// Repositories bundles all data access objects.
type Repositories struct {
	DB   *gorm.DB
	Chat *ChatRepository
	User *UserRepository
}

// NewRepositories creates all repositories over one gorm handle.
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		DB:   db,
		Chat: NewChatRepository(db),
		User: NewUserRepository(db),
	}
}
