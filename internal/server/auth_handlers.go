package server

import (
	"log/slog"
	"time"

	"snapgram/internal/auth"
	"snapgram/internal/middleware"
	"snapgram/internal/models"
	"snapgram/internal/service"

	"github.com/gofiber/fiber/v2"
)

type signupRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
	Name     string `json:"name" form:"name"`
	Username string `json:"username" form:"username"`
}

type loginRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// authResponse is returned by signup and login.
type authResponse struct {
	Message string       `json:"message"`
	User    *models.User `json:"user"`
	Token   string       `json:"token"`
}

// Signup handles POST /auth/signup
func (s *Server) Signup(c *fiber.Ctx) error {
	var req signupRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	picture, closer, err := formUpload(c, "profilePicture")
	if err != nil {
		return err
	}
	defer closeQuietly(closer)

	user, err := s.userService.CreateUser(c.UserContext(), service.CreateUserInput{
		Email:          req.Email,
		Password:       req.Password,
		Name:           req.Name,
		Username:       req.Username,
		ProfilePicture: picture,
	})
	if err != nil {
		return err
	}

	token, err := s.startSession(c, user.ID, auth.SignupTTL)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(authResponse{
		Message: "User created successfully!",
		User:    user,
		Token:   token,
	})
}

// Login handles POST /auth/login
func (s *Server) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	user, err := s.userService.Authenticate(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}

	token, err := s.startSession(c, user.ID, auth.LoginTTL)
	if err != nil {
		return err
	}

	return c.JSON(authResponse{
		Message: "Login successful.",
		User:    user,
		Token:   token,
	})
}

// Logout handles GET /auth/logout. The cookie is always cleared; a valid
// token is also revoked until it would have expired.
func (s *Server) Logout(c *fiber.Ctx) error {
	if token := middleware.SessionToken(c); token != "" {
		if claims, err := s.sessions.Verify(token); err == nil {
			if err := s.revocations.Revoke(c.UserContext(), claims.ID, claims.ExpiresAt.Time); err != nil {
				middleware.Logger.WarnContext(c.UserContext(), "failed to revoke session",
					slog.String("error", err.Error()),
				)
			}
		}
	}

	c.Cookie(auth.ExpiredCookie(s.config.IsProduction()))
	return c.JSON(fiber.Map{"message": "Logout successful."})
}

func (s *Server) startSession(c *fiber.Ctx, userID string, ttl time.Duration) (string, error) {
	token, _, err := s.sessions.Issue(userID, ttl)
	if err != nil {
		return "", models.NewInternalError(err)
	}
	c.Cookie(auth.SessionCookie(token, ttl, s.config.IsProduction()))
	return token, nil
}
