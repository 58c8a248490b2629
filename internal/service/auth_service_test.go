package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/techgeo/backend/internal/models"
	"github.com/techgeo/backend/internal/pkg/apperror"
)

// mockAuthRepository реализует AuthRepository для тестов.
type mockAuthRepository struct {
	usersByName map[string]*models.User
	usersByID   map[uuid.UUID]*models.User
	sessions    map[string]*models.Session
}

func newMockAuthRepository() *mockAuthRepository {
	return &mockAuthRepository{
		usersByName: make(map[string]*models.User),
		usersByID:   make(map[uuid.UUID]*models.User),
		sessions:    make(map[string]*models.Session),
	}
}

func (m *mockAuthRepository) addUser(user *models.User) {
	m.usersByName[user.Username] = user
	m.usersByID[user.ID] = user
}

func (m *mockAuthRepository) CreateWithCascade(ctx context.Context, user *models.User) error {
	referrer, ok := m.usersByName[user.Referrer]
	if !ok || !referrer.Active {
		return apperror.ErrInvalidReferrer
	}
	if _, exists := m.usersByName[user.Username]; exists {
		return apperror.ErrUserAlreadyExists
	}

	user.ID = uuid.New()
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	referrer.TotalBalance += models.ReferralPayouts[0]
	referrer.ReferralEarnings += models.ReferralPayouts[0]
	referrer.TotalReferralCount++
	referrer.ActiveDirectReferrals++

	m.addUser(user)
	return nil
}

func (m *mockAuthRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if user, ok := m.usersByID[id]; ok {
		return user, nil
	}
	return nil, apperror.ErrUserNotFound
}

func (m *mockAuthRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	if user, ok := m.usersByName[username]; ok {
		return user, nil
	}
	return nil, apperror.ErrUserNotFound
}

func (m *mockAuthRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	if user, ok := m.usersByID[id]; ok {
		user.PasswordHash = passwordHash
	}
	return nil
}

func (m *mockAuthRepository) CreateSession(ctx context.Context, session *models.Session) error {
	session.ID = uuid.New()
	session.CreatedAt = time.Now()
	m.sessions[session.RefreshToken] = session
	return nil
}

func (m *mockAuthRepository) DeleteSession(ctx context.Context, refreshToken string) error {
	delete(m.sessions, refreshToken)
	return nil
}

func activeUser(username string) *models.User {
	return &models.User{
		ID:       uuid.New(),
		Username: username,
		Active:   true,
		Role:     models.RoleUser,
	}
}

func TestAuthService_RegisterAndLogin(t *testing.T) {
	repo := newMockAuthRepository()
	repo.addUser(activeUser("inviter"))
	tokenManager := NewTokenManager("access", "refresh", time.Minute, time.Hour)
	service := NewAuthService(repo, tokenManager)

	ctx := context.Background()
	res, err := service.Register(ctx, RegisterInput{
		Username:     "newbie",
		FullName:     "New User",
		Email:        "newbie@example.com",
		Phone:        "+59170000000",
		Password:     "password123",
		ReferrerName: "inviter",
	}, map[string]string{"ip": "127.0.0.1"})
	if err != nil {
		t.Fatalf("register вернул ошибку: %v", err)
	}

	if res.User.ID == uuid.Nil {
		t.Fatalf("user ID должен быть установлен")
	}
	if res.User.TotalBalance != 0 {
		t.Fatalf("новый пользователь начинает с нулевым балансом, получили %d", res.User.TotalBalance)
	}
	if !res.User.HasPaidJoiningFee {
		t.Fatalf("взнос считается оплаченным при регистрации")
	}

	inviter := repo.usersByName["inviter"]
	if inviter.TotalBalance != models.ReferralPayouts[0] {
		t.Fatalf("пригласивший должен получить %d, получил %d", models.ReferralPayouts[0], inviter.TotalBalance)
	}
	if inviter.ActiveDirectReferrals != 1 {
		t.Fatalf("счётчик прямых рефералов должен стать 1")
	}

	if len(repo.sessions) != 1 {
		t.Fatalf("ожидалась одна сессия, получили %d", len(repo.sessions))
	}

	loginRes, err := service.Login(ctx, "newbie", "password123", nil)
	if err != nil {
		t.Fatalf("login вернул ошибку: %v", err)
	}
	if loginRes.TokenPair.AccessToken == "" {
		t.Fatalf("ожидался access токен")
	}
}

func TestAuthService_Register_RequiresReferrer(t *testing.T) {
	repo := newMockAuthRepository()
	tokenManager := NewTokenManager("access", "refresh", time.Minute, time.Hour)
	service := NewAuthService(repo, tokenManager)

	_, err := service.Register(context.Background(), RegisterInput{
		Username: "orphan",
		FullName: "No Referrer",
		Email:    "orphan@example.com",
		Phone:    "+59170000001",
		Password: "password123",
	}, nil)
	if !apperror.Is(err, apperror.ErrCodeInvalidReferrer) {
		t.Fatalf("регистрация без реферера должна отклоняться, получили %v", err)
	}
}

func TestAuthService_Register_InactiveReferrer(t *testing.T) {
	repo := newMockAuthRepository()
	dormant := activeUser("dormant")
	dormant.Active = false
	repo.addUser(dormant)

	tokenManager := NewTokenManager("access", "refresh", time.Minute, time.Hour)
	service := NewAuthService(repo, tokenManager)

	_, err := service.Register(context.Background(), RegisterInput{
		Username:     "hopeful",
		FullName:     "Hopeful User",
		Email:        "hopeful@example.com",
		Phone:        "+59170000002",
		Password:     "password123",
		ReferrerName: "dormant",
	}, nil)
	if !apperror.Is(err, apperror.ErrCodeInvalidReferrer) {
		t.Fatalf("неактивный реферер должен отклоняться, получили %v", err)
	}
}

func TestAuthService_Register_InjectionInput(t *testing.T) {
	repo := newMockAuthRepository()
	repo.addUser(activeUser("inviter"))
	tokenManager := NewTokenManager("access", "refresh", time.Minute, time.Hour)
	service := NewAuthService(repo, tokenManager)

	_, err := service.Register(context.Background(), RegisterInput{
		Username:     "legituser",
		FullName:     "User",
		Email:        "user@example.com",
		Phone:        "+59170000003",
		Password:     "password123",
		ReferrerName: `{"$ne": null}`,
	}, nil)
	if !apperror.Is(err, apperror.ErrCodeValidation) {
		t.Fatalf("инъекция в имени реферера должна отклоняться, получили %v", err)
	}
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	repo := newMockAuthRepository()
	hash, _ := bcrypt.GenerateFromPassword([]byte("correct"), bcrypt.DefaultCost)
	user := activeUser("victim")
	user.PasswordHash = string(hash)
	repo.addUser(user)

	tokenManager := NewTokenManager("access", "refresh", time.Minute, time.Hour)
	service := NewAuthService(repo, tokenManager)

	_, err := service.Login(context.Background(), "victim", "wrong", nil)
	if !apperror.Is(err, apperror.ErrCodeUnauthorized) {
		t.Fatalf("неверный пароль должен давать unauthorized, получили %v", err)
	}

	_, err = service.Login(context.Background(), "ghost", "whatever", nil)
	if !apperror.Is(err, apperror.ErrCodeUnauthorized) {
		t.Fatalf("несуществующий пользователь должен давать unauthorized, получили %v", err)
	}
}

func TestAuthService_Refresh(t *testing.T) {
	repo := newMockAuthRepository()
	hash, _ := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	user := activeUser("rotator")
	user.PasswordHash = string(hash)
	repo.addUser(user)

	tokenManager := NewTokenManager("access-secret", "refresh-secret", time.Minute, time.Hour)
	service := NewAuthService(repo, tokenManager)

	ctx := context.Background()
	tokenPair, refreshExp, err := tokenManager.GeneratePair(user)
	if err != nil {
		t.Fatalf("не удалось сгенерировать токены: %v", err)
	}

	repo.sessions[tokenPair.RefreshToken] = &models.Session{
		ID:           uuid.New(),
		UserID:       user.ID,
		RefreshToken: tokenPair.RefreshToken,
		ExpiresAt:    refreshExp,
	}

	newPair, err := service.Refresh(ctx, tokenPair.RefreshToken, nil)
	if err != nil {
		t.Fatalf("refresh вернул ошибку: %v", err)
	}

	if newPair.RefreshToken == tokenPair.RefreshToken {
		t.Fatalf("ожидался новый refresh токен")
	}
	if _, stale := repo.sessions[tokenPair.RefreshToken]; stale {
		t.Fatalf("старая сессия должна быть удалена")
	}
}

func TestAuthService_ChangePassword(t *testing.T) {
	repo := newMockAuthRepository()
	hash, _ := bcrypt.GenerateFromPassword([]byte("oldpass"), bcrypt.DefaultCost)
	user := activeUser("switcher")
	user.PasswordHash = string(hash)
	repo.addUser(user)

	tokenManager := NewTokenManager("access", "refresh", time.Minute, time.Hour)
	service := NewAuthService(repo, tokenManager)
	ctx := context.Background()

	if err := service.ChangePassword(ctx, user.ID, "wrongpass", "newpass123"); !apperror.Is(err, apperror.ErrCodeUnauthorized) {
		t.Fatalf("смена пароля с неверным текущим должна отклоняться, получили %v", err)
	}

	if err := service.ChangePassword(ctx, user.ID, "oldpass", "newpass123"); err != nil {
		t.Fatalf("смена пароля вернула ошибку: %v", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("newpass123")); err != nil {
		t.Fatalf("новый пароль должен подходить к сохранённому хешу")
	}
}
