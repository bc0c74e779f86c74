package server

import (
	"snapgram/internal/middleware"
	"snapgram/internal/service"

	"github.com/gofiber/fiber/v2"
)

type createPostRequest struct {
	Title       string   `json:"title" form:"title"`
	Description string   `json:"description" form:"description"`
	Tags        []string `json:"tags" form:"-"`
	Comments    []string `json:"comments" form:"-"`
}

// updatePostRequest has no likes field; likes change only through the toggle.
type updatePostRequest struct {
	Title       *string   `json:"title" form:"title"`
	Description *string   `json:"description" form:"description"`
	Tags        *[]string `json:"tags" form:"-"`
	Comments    *[]string `json:"comments" form:"-"`
}

type toggleLikeRequest struct {
	PostID string `json:"postId" form:"postId"`
	Action string `json:"action" form:"action"`
}

type likeResponse struct {
	Message string   `json:"message"`
	Count   int      `json:"count"`
	Users   []string `json:"users"`
}

// CreatePost handles POST /posts/add
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var req createPostRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if tags, ok := formList(c, "tags", true); ok {
		req.Tags = tags
	}
	if comments, ok := formList(c, "comments", false); ok {
		req.Comments = comments
	}

	upload, closer, err := formUpload(c, "mediaUrl")
	if err != nil {
		return err
	}
	defer closeQuietly(closer)

	post, err := s.postService.CreatePost(c.UserContext(), service.CreatePostInput{
		UserID:      middleware.CurrentUserID(c),
		Title:       req.Title,
		Description: req.Description,
		Tags:        req.Tags,
		Comments:    req.Comments,
		Media:       upload,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

// GetPosts handles GET /posts. With ?tag=<tag> only tagged posts are listed.
func (s *Server) GetPosts(c *fiber.Ctx) error {
	posts, err := s.postService.ListPosts(c.UserContext(), c.Query("tag"))
	if err != nil {
		return err
	}
	return c.JSON(posts)
}

// GetPost handles GET /posts/:id
func (s *Server) GetPost(c *fiber.Ctx) error {
	post, err := s.postService.GetPost(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(post)
}

// GetUserPosts handles GET /posts/userPost/:userId
func (s *Server) GetUserPosts(c *fiber.Ctx) error {
	posts, err := s.postService.ListUserPosts(c.UserContext(), c.Params("userId"))
	if err != nil {
		return err
	}
	return c.JSON(posts)
}

// UpdatePost handles PATCH /posts/patch/:id
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	var req updatePostRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if tags, ok := formList(c, "tags", true); ok {
		req.Tags = &tags
	}
	if comments, ok := formList(c, "comments", false); ok {
		req.Comments = &comments
	}

	upload, closer, err := formUpload(c, "mediaUrl")
	if err != nil {
		return err
	}
	defer closeQuietly(closer)

	post, err := s.postService.UpdatePost(c.UserContext(), service.UpdatePostInput{
		ActorID:     middleware.CurrentUserID(c),
		PostID:      c.Params("id"),
		Title:       req.Title,
		Description: req.Description,
		Tags:        req.Tags,
		Comments:    req.Comments,
		Media:       upload,
	})
	if err != nil {
		return err
	}
	return c.JSON(post)
}

// DeletePost handles DELETE /posts/delete/:id
func (s *Server) DeletePost(c *fiber.Ctx) error {
	if err := s.postService.DeletePost(c.UserContext(), middleware.CurrentUserID(c), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Post deleted successfully!"})
}

// ToggleLike handles PATCH /posts/like
func (s *Server) ToggleLike(c *fiber.Ctx) error {
	var req toggleLikeRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	res, err := s.postService.ToggleLike(c.UserContext(), service.ToggleLikeInput{
		PostID: req.PostID,
		UserID: middleware.CurrentUserID(c),
		Action: req.Action,
	})
	if err != nil {
		return err
	}

	msg := "Post liked successfully!"
	if req.Action == service.ActionUnlike {
		msg = "Post unliked successfully!"
	}
	return c.JSON(likeResponse{Message: msg, Count: res.Count, Users: res.Users})
}
