package server

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"stackit/internal/models"
	"stackit/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	tokenTTL    = 7 * 24 * time.Hour
	wsTicketTTL = 30 * time.Second
)

func wsTicketKey(ticket string) string { return "ws_ticket:" + ticket }

func blacklistKey(jti string) string { return "blacklist:" + jti }

type signupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Signup handles POST /auth/signup
// @Summary User signup
// @Description Register a new user account
// @Tags auth
// @Accept json
// @Produce json
// @Param request body signupRequest true "Signup request"
// @Success 201 {object} object{token=string,user=models.User}
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /auth/signup [post]
func (s *Server) Signup(c *fiber.Ctx) error {
	var req signupRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	if req.Username == "" || req.Email == "" || req.Password == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Username, email, and password are required"))
	}
	for _, err := range []error{
		validation.ValidateUsername(req.Username),
		validation.ValidateEmail(req.Email),
		validation.ValidatePassword(req.Password),
	} {
		if err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError(err.Error()))
		}
	}

	ctx := c.UserContext()
	existing, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return respondErr(c, err)
	}
	if existing != nil {
		return models.RespondWithError(c, fiber.StatusConflict,
			models.NewConflictError("User already exists"))
	}
	taken, err := s.userRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		return respondErr(c, err)
	}
	if taken != nil {
		return models.RespondWithError(c, fiber.StatusConflict,
			models.NewConflictError("Username is already taken"))
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return respondErr(c, models.NewInternalError(err))
	}

	user := &models.User{
		Username: req.Username,
		Email:    req.Email,
		Password: string(hashedPassword),
		Rank:     models.RankNewbie,
		Role:     models.RoleUser,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return respondErr(c, err)
	}

	token, err := s.generateToken(user.ID, user.Username)
	if err != nil {
		return respondErr(c, models.NewInternalError(err))
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"token": token,
		"user":  user,
	})
}

// Login handles POST /auth/login
// @Summary User login
// @Description Authenticate user and return JWT token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body loginRequest true "Login credentials"
// @Success 200 {object} object{token=string,user=models.User}
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/login [post]
func (s *Server) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Email and password are required"))
	}

	user, err := s.userRepo.GetByEmail(c.UserContext(), req.Email)
	if err != nil {
		return respondErr(c, err)
	}
	if user == nil {
		return unauthorized(c, "Invalid credentials")
	}
	if cmpErr := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); cmpErr != nil {
		return unauthorized(c, "Invalid credentials")
	}

	token, err := s.generateToken(user.ID, user.Username)
	if err != nil {
		return respondErr(c, models.NewInternalError(err))
	}

	return c.JSON(fiber.Map{
		"token": token,
		"user":  user,
	})
}

// Logout handles POST /auth/logout by revoking the presented token until it expires.
// @Summary Logout
// @Tags auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} object{message=string}
// @Router /auth/logout [post]
func (s *Server) Logout(c *fiber.Ctx) error {
	jti, _ := c.Locals("jti").(string)
	exp, _ := c.Locals("tokenExp").(time.Time)
	if s.redis != nil && jti != "" {
		ttl := time.Until(exp)
		if ttl <= 0 {
			ttl = time.Minute
		}
		if err := s.redis.Set(c.UserContext(), blacklistKey(jti), "1", ttl).Err(); err != nil {
			return respondErr(c, models.NewInternalError(err))
		}
	}
	return c.JSON(fiber.Map{"message": "Logged out successfully"})
}

// GetMe handles GET /auth/me
// @Summary Current user
// @Tags auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} object{user=models.User}
// @Failure 404 {object} models.ErrorResponse
// @Router /auth/me [get]
func (s *Server) GetMe(c *fiber.Ctx) error {
	user, err := s.userService.GetUserByID(c.UserContext(), currentUserID(c))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"user": user})
}

// IssueWSTicket handles POST /ws/ticket. The ticket opens one notice stream
// within 30 seconds.
// @Summary Issue a WebSocket ticket
// @Tags realtime
// @Security BearerAuth
// @Produce json
// @Success 200 {object} object{ticket=string,expiresIn=int}
// @Failure 503 {object} models.ErrorResponse
// @Router /ws/ticket [post]
func (s *Server) IssueWSTicket(c *fiber.Ctx) error {
	if s.redis == nil {
		return models.RespondWithError(c, fiber.StatusServiceUnavailable,
			&models.AppError{Code: models.CodeUnavailable, Message: "Realtime notices are unavailable"})
	}

	ticket := uuid.NewString()
	userID := strconv.FormatUint(uint64(currentUserID(c)), 10)
	if err := s.redis.Set(c.UserContext(), wsTicketKey(ticket), userID, wsTicketTTL).Err(); err != nil {
		return respondErr(c, models.NewInternalError(err))
	}
	return c.JSON(fiber.Map{
		"ticket":    ticket,
		"expiresIn": int(wsTicketTTL.Seconds()),
	})
}

// generateToken creates a JWT token for the given user ID and username
func (s *Server) generateToken(userID uint, username string) (string, error) {
	if s.config.JWTSecret == "" {
		return "", errors.New("JWT secret not configured")
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub":      strconv.FormatUint(uint64(userID), 10),
		"username": username,
		"iss":      tokenIssuer,
		"aud":      tokenAudience,
		"exp":      now.Add(tokenTTL).Unix(),
		"iat":      now.Unix(),
		"nbf":      now.Unix(),
		"jti":      generateJTI(now),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.JWTSecret))
}

// generateJTI creates a unique JWT ID so a single token can be revoked.
func generateJTI(now time.Time) string {
	return fmt.Sprintf("%d-%s", now.Unix(), uuid.NewString())
}
