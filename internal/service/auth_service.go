package service

import (
	"errors"
	"time"

	"skill_matrix_backend/internal/config"
	"skill_matrix_backend/internal/model"
	"skill_matrix_backend/internal/repository"
	"skill_matrix_backend/internal/util"
	"skill_matrix_backend/pkg/logger"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthService struct {
	employeeRepo *repository.EmployeeRepository
	cfg          *config.Config
}

func NewAuthService(employeeRepo *repository.EmployeeRepository, cfg *config.Config) *AuthService {
	return &AuthService{employeeRepo: employeeRepo, cfg: cfg}
}

type RegisterReq struct {
	Email     string     `json:"email" binding:"required,email"`
	Password  string     `json:"password" binding:"required,min=8"`
	FullName  string     `json:"fullName" binding:"required"`
	JobRoleID *string    `json:"jobRoleId"`
	TeamID    *string    `json:"teamId"`
	HiredAt   *time.Time `json:"hiredAt"`
}

func (s *AuthService) Register(req *RegisterReq) (*model.Employee, error) {
	exists, err := s.employeeRepo.EmailExists(req.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, util.ErrEmailRegistered
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	emp := &model.Employee{
		Email:        req.Email,
		PasswordHash: string(hash),
		FullName:     req.FullName,
		Role:         model.RoleEmployee,
		JobRoleID:    req.JobRoleID,
		TeamID:       req.TeamID,
		HiredAt:      req.HiredAt,
	}
	if err := s.employeeRepo.Create(emp); err != nil {
		return nil, err
	}

	logger.Log.Info("Employee registered",
		zap.String("employeeId", emp.ID), zap.String("email", emp.Email))
	return emp, nil
}

type LoginReq struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResult struct {
	Token    string          `json:"token"`
	Employee *model.Employee `json:"employee"`
}

func (s *AuthService) Login(req *LoginReq) (*LoginResult, error) {
	emp, err := s.employeeRepo.FindByEmail(req.Email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(emp.PasswordHash), []byte(req.Password)); err != nil {
		return nil, util.ErrInvalidCredentials
	}

	token, err := util.GenerateJWT(emp, s.cfg.JWT.Secret, s.cfg.JWT.ExpireTime)
	if err != nil {
		return nil, err
	}

	if err := s.employeeRepo.UpdateLastSeen(emp.ID); err != nil {
		logger.Log.Warn("Failed to update last seen", zap.String("employeeId", emp.ID), zap.Error(err))
	}

	return &LoginResult{Token: token, Employee: emp}, nil
}

func (s *AuthService) GetProfile(employeeID string) (*model.Employee, error) {
	emp, err := s.employeeRepo.FindByID(employeeID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrEmployeeNotFound
	}
	if err != nil {
		return nil, err
	}
	return emp, nil
}

type UpdateProfileReq struct {
	FullName  *string `json:"fullName"`
	JobRoleID *string `json:"jobRoleId"`
	TeamID    *string `json:"teamId"`
}

func (s *AuthService) UpdateProfile(employeeID string, req *UpdateProfileReq) (*model.Employee, error) {
	emp, err := s.GetProfile(employeeID)
	if err != nil {
		return nil, err
	}

	if req.FullName != nil {
		emp.FullName = *req.FullName
	}
	if req.JobRoleID != nil {
		emp.JobRoleID = req.JobRoleID
	}
	if req.TeamID != nil {
		emp.TeamID = req.TeamID
	}

	if err := s.employeeRepo.Update(emp); err != nil {
		return nil, err
	}
	return emp, nil
}
