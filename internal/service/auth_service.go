package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/yourusername/mindquest/internal/domain/entity"
	"github.com/yourusername/mindquest/internal/domain/repository"
	"github.com/yourusername/mindquest/internal/form"
	apperrors "github.com/yourusername/mindquest/internal/pkg/errors"
)

// welcomeEmailTimeout ограничивает отправку приветственного письма
const welcomeEmailTimeout = 5 * time.Second

// AuthService отвечает за регистрацию и проверку учётных данных
type AuthService struct {
	userRepo     repository.UserRepository
	emailService EmailService
	bcryptCost   int

	// dummyHash сравнивается с паролем при неизвестном имени пользователя,
	// чтобы время ответа не выдавало существование учётной записи
	dummyHash []byte
}

// NewAuthService создает новый сервис аутентификации и возвращает ошибку при проблемах.
// bcryptCost == 0 означает bcrypt.DefaultCost.
func NewAuthService(userRepo repository.UserRepository, emailService EmailService, bcryptCost int) (*AuthService, error) {
	if userRepo == nil {
		return nil, fmt.Errorf("UserRepository is required for AuthService")
	}
	if emailService == nil {
		emailService = &NoopEmailService{}
	}
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		return nil, fmt.Errorf("invalid bcrypt cost %d", bcryptCost)
	}

	dummyHash, err := bcrypt.GenerateFromPassword([]byte("mindquest-dummy-password"), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare dummy hash: %w", err)
	}

	return &AuthService{
		userRepo:     userRepo,
		emailService: emailService,
		bcryptCost:   bcryptCost,
		dummyHash:    dummyHash,
	}, nil
}

// usernameTaken формирует ошибку поля для занятого имени
func usernameTaken() form.FieldErrors {
	errs := form.FieldErrors{}
	errs.Add("username", form.MsgUsernameTaken)
	return errs
}

// Register создает учётную запись по проверенной форме.
// Пароль хешируется ровно один раз здесь, перед единственной вставкой.
func (s *AuthService) Register(ctx context.Context, reg form.Registration) (*entity.User, error) {
	_, err := s.userRepo.GetByUsername(ctx, reg.Username)
	switch {
	case err == nil:
		return nil, usernameTaken()
	case !errors.Is(err, apperrors.ErrNotFound):
		return nil, fmt.Errorf("failed to check username: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(reg.Password), s.bcryptCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			errs := form.FieldErrors{}
			errs.Add("password1", form.MsgPasswordTooLong)
			return nil, errs
		}
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &entity.User{
		Username:     reg.Username,
		Email:        reg.Email,
		PasswordHash: string(hash),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			// Имя заняли между проверкой и вставкой
			return nil, usernameTaken()
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	log.Printf("[AuthService] Зарегистрирован пользователь ID=%d", user.ID)
	s.sendWelcome(ctx, user)
	return user, nil
}

// sendWelcome отправляет приветственное письмо; ошибки только логируются
func (s *AuthService) sendWelcome(ctx context.Context, user *entity.User) {
	if user.Email == "" {
		return
	}
	sendCtx, cancel := context.WithTimeout(ctx, welcomeEmailTimeout)
	defer cancel()

	if err := s.emailService.SendWelcome(sendCtx, user.Email, user.Username); err != nil {
		log.Printf("[AuthService] Не удалось отправить приветственное письмо пользователю ID=%d: %v", user.ID, err)
	}
}

// Authenticate проверяет имя пользователя и пароль.
// Для неизвестного имени и неверного пароля возвращается одна и та же ErrInvalidCredentials.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*entity.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
			log.Printf("[AuthService] Неудачная попытка входа: пользователь не найден")
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if !user.CheckPassword(password) {
		log.Printf("[AuthService] Неудачная попытка входа для пользователя ID=%d", user.ID)
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// GetUserByID возвращает пользователя по ID
func (s *AuthService) GetUserByID(ctx context.Context, userID uint) (*entity.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}
