package services

import (
	"tasknotes/backend/database"
	"tasknotes/backend/models"

	"github.com/google/uuid"
)

type UserServiceInterface interface {
	CreateUser(db *database.Database, user models.User) (models.User, error)
	GetUserById(db *database.Database, id uuid.UUID) (models.User, error)
	GetUserByEmail(db *database.Database, email string) (models.User, error)
}

type UserService struct{}

func NewUserService() *UserService {
	return &UserService{}
}

func (s *UserService) CreateUser(db *database.Database, user models.User) (models.User, error) {
	if err := db.DB.Create(&user).Error; err != nil {
		return models.User{}, translateError(err, ErrUserNotFound, "create user")
	}
	return user, nil
}

func (s *UserService) GetUserById(db *database.Database, id uuid.UUID) (models.User, error) {
	var user models.User
	if err := db.DB.First(&user, "id = ?", id).Error; err != nil {
		return models.User{}, translateError(err, ErrUserNotFound, "get user")
	}
	return user, nil
}

func (s *UserService) GetUserByEmail(db *database.Database, email string) (models.User, error) {
	var user models.User
	if err := db.DB.Where("email = ?", email).First(&user).Error; err != nil {
		return models.User{}, translateError(err, ErrUserNotFound, "get user by email")
	}
	return user, nil
}
