package customers

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/m04kA/SMC-SpaBookingService/internal/domain"
	customerRepo "github.com/m04kA/SMC-SpaBookingService/internal/infra/storage/customer"
	"github.com/m04kA/SMC-SpaBookingService/internal/service/customers/models"
)

// Service сервис регистрации клиентов
type Service struct {
	customerRepo CustomerRepository
	bcryptCost   int
	timeProvider TimeProvider
	logger       Logger
}

// NewService создает новый экземпляр сервиса клиентов
// bcryptCost вне [bcrypt.MinCost, bcrypt.MaxCost] заменяется на bcrypt.DefaultCost
func NewService(customerRepo CustomerRepository, bcryptCost int, logger Logger) *Service {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		customerRepo: customerRepo,
		bcryptCost:   bcryptCost,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// Register добавляет клиента в справочник
// Пароль сохраняется только в виде bcrypt-хеша
func (s *Service) Register(ctx context.Context, req *models.RegisterRequest) (*models.CustomerResponse, error) {
	// 1. Валидация входных данных
	req, err := validateRegister(req)
	if err != nil {
		s.logger.Warn("Register: validation failed: %v", err)
		return nil, err
	}

	s.logger.Info("Register: registering customer email=%s", req.Email)

	// 2. Проверяем, что email свободен
	_, err = s.customerRepo.GetByEmail(ctx, req.Email)
	switch {
	case err == nil:
		s.logger.Warn("Register: email=%s already registered", req.Email)
		return nil, ErrEmailTaken
	case !errors.Is(err, customerRepo.ErrCustomerNotFound):
		s.logger.Error("Register: failed to check email=%s: %v", req.Email, err)
		return nil, fmt.Errorf("%w: Register - repository error: %v", ErrInternal, err)
	}

	// 3. Хешируем пароль
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		s.logger.Error("Register: failed to hash password: %v", err)
		return nil, fmt.Errorf("%w: Register - hash password: %v", ErrInternal, err)
	}

	// 4. Сохраняем клиента, уникальность email повторно проверяет хранилище
	created, err := s.customerRepo.Create(ctx, &domain.Customer{
		ID:           uuid.NewString(),
		Email:        req.Email,
		PasswordHash: string(hash),
		Name:         req.Name,
		Phone:        req.Phone,
		CreatedAt:    s.timeProvider.Now(),
	})
	if err != nil {
		if errors.Is(err, customerRepo.ErrEmailTaken) {
			s.logger.Warn("Register: email=%s already registered", req.Email)
			return nil, ErrEmailTaken
		}
		s.logger.Error("Register: failed to create customer: %v", err)
		return nil, fmt.Errorf("%w: Register - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("Register: successfully registered customer id=%s", created.ID)
	return models.FromDomainCustomer(created), nil
}
