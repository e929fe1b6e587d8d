package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"artisan-marketplace/internal/data/entity"
	"artisan-marketplace/internal/data/repository"
	"artisan-marketplace/internal/dto/request"
	"artisan-marketplace/internal/dto/response"
	"artisan-marketplace/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type AuthService interface {
	Register(ctx context.Context, req *request.RegisterRequest, client request.ClientInfo) (*response.AuthResponse, error)
	Login(ctx context.Context, req *request.LoginRequest, client request.ClientInfo) (*response.AuthResponse, error)
	Logout(ctx context.Context, principal utils.Principal) error
	TestAuth(ctx context.Context, principal utils.Principal) (*response.TestAuthResponse, error)
}

type authService struct {
	repo     *repository.Repository // users, sessions, skills
	config   *utils.Config
	listings *listingCache
	log      *zap.Logger
	now      func() time.Time
}

func NewAuthService(
	repo *repository.Repository,
	config *utils.Config,
	listings *listingCache,
	log *zap.Logger,
) AuthService {
	return &authService{
		repo:     repo,
		config:   config,
		listings: listings,
		log:      log.With(zap.String("service", "auth")),
		now:      time.Now,
	}
}

func (s *authService) Register(ctx context.Context, req *request.RegisterRequest, client request.ClientInfo) (*response.AuthResponse, error) {
	req.Normalize()

	fields := utils.ValidateStruct(req)
	if fields == nil {
		fields = map[string]string{}
	}
	if req.Password != req.ConfirmPassword {
		fields["confirm_password"] = "Passwords do not match"
	}

	role := entity.UserRole(req.UserType)
	if role == entity.RoleArtisan {
		if req.BusinessName == "" {
			fields["business_name"] = "Business name is required for artisans"
		}
		if len(req.SkillsServices) == 0 {
			fields["skills_services"] = "At least one skill is required for artisans"
		}
	}
	if len(fields) > 0 {
		s.log.Warn("Register validation failed", zap.Any("errors", fields))
		return nil, &ValidationError{Fields: fields}
	}

	var skills []entity.Skill
	if role == entity.RoleArtisan {
		var err error
		if skills, err = s.resolveSkills(ctx, req.SkillsServices); err != nil {
			return nil, err
		}
	}

	existing, err := s.repo.User.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if existing != nil {
		return nil, newValidationError("email", "Email already registered")
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		s.log.Error("Failed to hash password", zap.Error(err))
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.now()
	user := &entity.User{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Email:        req.Email,
		PasswordHash: hashedPassword,
		Role:         role,
		FullName:     req.FullName,
		IsActive:     true,
	}

	if role == entity.RoleArtisan {
		user.BusinessName = &req.BusinessName
		artisan := newArtisanProfile(user, req, skills, now)
		err = s.repo.User.CreateWithArtisan(ctx, user, artisan)
	} else {
		err = s.repo.User.Create(ctx, user)
	}
	if err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return nil, newValidationError("email", "Email already registered")
		}
		s.log.Error("Failed to create user", zap.Error(err), zap.String("email", req.Email))
		return nil, fmt.Errorf("create account: %w", err)
	}

	if role == entity.RoleArtisan {
		s.listings.invalidate(ctx)
	}

	s.log.Info("User registered",
		zap.String("user_id", user.ID.String()),
		zap.String("role", string(user.Role)),
	)

	// registration logs the user straight in
	return s.startSession(ctx, user, client)
}

// newArtisanProfile seeds the directory entry of a freshly registered artisan.
func newArtisanProfile(user *entity.User, req *request.RegisterRequest, skills []entity.Skill, now time.Time) *entity.Artisan {
	category := req.Category
	if category == "" && len(skills) > 0 {
		category = skills[0].Category
	}
	userID := user.ID

	return &entity.Artisan{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		UserID:      &userID,
		Name:        req.BusinessName,
		Category:    category,
		Location:    req.Location,
		Rating:      0,
		IsAvailable: true,
		Skills:      skills,
	}
}

// resolveSkills maps declared skill names onto the known skill set, keeping declaration order.
func (s *authService) resolveSkills(ctx context.Context, names []string) ([]entity.Skill, error) {
	known, err := s.repo.Skill.FindByNames(ctx, names)
	if err != nil {
		return nil, fmt.Errorf("load skills: %w", err)
	}

	byName := make(map[string]entity.Skill, len(known))
	for _, sk := range known {
		byName[strings.ToLower(sk.Name)] = sk
	}

	var (
		skills  []entity.Skill
		unknown []string
		seen    = map[int]bool{}
	)
	for _, n := range names {
		sk, ok := byName[strings.ToLower(n)]
		if !ok {
			unknown = append(unknown, n)
			continue
		}
		if !seen[sk.ID] {
			seen[sk.ID] = true
			skills = append(skills, sk)
		}
	}

	if len(unknown) > 0 {
		return nil, newValidationError("skills_services", "Unknown skills: "+strings.Join(unknown, ", "))
	}
	return skills, nil
}

func (s *authService) Login(ctx context.Context, req *request.LoginRequest, client request.ClientInfo) (*response.AuthResponse, error) {
	req.Email = strings.TrimSpace(req.Email)
	if err := validate(req); err != nil {
		return nil, err
	}

	user, err := s.repo.User.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if user == nil || !utils.CheckPasswordHash(req.Password, user.PasswordHash) {
		s.log.Warn("Invalid login attempt", zap.String("email", req.Email))
		return nil, fmt.Errorf("%w: invalid credentials", ErrAuthentication)
	}
	if !user.IsActive {
		s.log.Warn("Inactive user tried to login", zap.String("user_id", user.ID.String()))
		return nil, fmt.Errorf("%w: account is deactivated", ErrAuthentication)
	}

	resp, err := s.startSession(ctx, user, client)
	if err != nil {
		return nil, err
	}

	s.log.Info("User logged in", zap.String("user_id", user.ID.String()))
	return resp, nil
}

func (s *authService) Logout(ctx context.Context, principal utils.Principal) error {
	if err := s.repo.Session.Revoke(ctx, principal.SessionID); err != nil {
		return fmt.Errorf("logout: %w", err)
	}

	s.log.Info("User logged out",
		zap.String("user_id", principal.UserID.String()),
		zap.String("session_id", principal.SessionID.String()),
	)
	return nil
}

func (s *authService) TestAuth(ctx context.Context, principal utils.Principal) (*response.TestAuthResponse, error) {
	user, err := s.repo.User.FindByID(ctx, principal.UserID)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if user == nil {
		return nil, notFound("user not found")
	}

	return &response.TestAuthResponse{
		Message: fmt.Sprintf("Hello, %s! You are authenticated.", user.FullName),
		UserID:  user.ID.String(),
		Role:    string(user.Role),
	}, nil
}

// startSession persists a session and signs a token naming it.
func (s *authService) startSession(ctx context.Context, user *entity.User, client request.ClientInfo) (*response.AuthResponse, error) {
	now := s.now()
	session := &entity.Session{
		BaseSimple: entity.BaseSimple{
			ID:        uuid.New(),
			CreatedAt: now,
		},
		UserID:    user.ID,
		UserAgent: optional(client.UserAgent),
		IPAddress: optional(client.IPAddress),
		ExpiresAt: now.Add(s.config.JWT.Expiry()),
	}

	if err := s.repo.Session.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	token, err := utils.IssueToken(s.config.JWT.Secret, user.ID, session.ID, string(user.Role), session.ExpiresAt)
	if err != nil {
		return nil, err
	}

	return &response.AuthResponse{
		User:      response.UserToResponse(user),
		Token:     token,
		TokenType: "Bearer",
		ExpiresAt: session.ExpiresAt,
	}, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
