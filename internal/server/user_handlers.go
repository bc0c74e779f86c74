package server

import (
	"snapgram/internal/middleware"
	"snapgram/internal/service"
	"snapgram/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// updateUserRequest uses pointers so absent keys keep their stored value.
type updateUserRequest struct {
	Email    *string `json:"email" form:"email"`
	Password *string `json:"password" form:"password"`
	Name     *string `json:"name" form:"name"`
	Username *string `json:"username" form:"username"`
}

// GetUsers handles GET /users. With ?user=<name> it searches by name.
func (s *Server) GetUsers(c *fiber.Ctx) error {
	if name := c.Query("user"); name != "" {
		return s.searchUsers(c, name)
	}
	users, err := s.userService.ListUsers(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(users)
}

// SearchUsers handles GET /users/search?user=<name>
func (s *Server) SearchUsers(c *fiber.Ctx) error {
	name := c.Query("user")
	if err := validation.Required("user", name); err != nil {
		return err
	}
	return s.searchUsers(c, name)
}

func (s *Server) searchUsers(c *fiber.Ctx, name string) error {
	users, err := s.userService.SearchUsers(c.UserContext(), name)
	if err != nil {
		return err
	}
	return c.JSON(users)
}

// GetUser handles GET /users/:id
func (s *Server) GetUser(c *fiber.Ctx) error {
	user, err := s.userService.GetUser(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(user)
}

// UpdateUser handles PATCH /users/:id
func (s *Server) UpdateUser(c *fiber.Ctx) error {
	var req updateUserRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	picture, closer, err := formUpload(c, "profilePicture")
	if err != nil {
		return err
	}
	defer closeQuietly(closer)

	user, err := s.userService.UpdateUser(c.UserContext(), service.UpdateUserInput{
		ActorID:        middleware.CurrentUserID(c),
		UserID:         c.Params("id"),
		Email:          req.Email,
		Password:       req.Password,
		Name:           req.Name,
		Username:       req.Username,
		ProfilePicture: picture,
	})
	if err != nil {
		return err
	}
	return c.JSON(user)
}

// DeleteUser handles DELETE /users/:id
func (s *Server) DeleteUser(c *fiber.Ctx) error {
	if err := s.userService.DeleteUser(c.UserContext(), middleware.CurrentUserID(c), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "User deleted successfully!"})
}
