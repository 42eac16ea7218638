package service

import (
	"coursehub_backend/internal/model"
	"coursehub_backend/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

type UserService struct {
	UserRepo *repository.UserRepository
}

func NewUserService(userRepo *repository.UserRepository) *UserService {
	return &UserService{UserRepo: userRepo}
}

func (s *UserService) List(page, limit int, role string) ([]model.User, int64, error) {
	return s.UserRepo.List(page, limit, role)
}

func (s *UserService) Get(id uint) (*model.User, error) {
	return s.UserRepo.FindByID(id)
}

func (s *UserService) SetRole(id uint, role model.UserRole) error {
	user, err := s.UserRepo.FindByID(id)
	if err != nil {
		return err
	}
	user.Role = role
	return s.UserRepo.Update(user)
}

func (s *UserService) SetDisabled(id uint, disabled bool) error {
	user, err := s.UserRepo.FindByID(id)
	if err != nil {
		return err
	}
	user.Disabled = disabled
	return s.UserRepo.Update(user)
}

func (s *UserService) ResetPassword(id uint, newPassword string) error {
	user, err := s.UserRepo.FindByID(id)
	if err != nil {
		return err
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.Password = string(hashed)
	return s.UserRepo.Update(user)
}

func (s *UserService) Delete(id uint) error {
	return s.UserRepo.Delete(id)
}
