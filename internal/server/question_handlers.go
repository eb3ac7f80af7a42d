package server

import (
	"stackit/internal/service"

	"github.com/gofiber/fiber/v2"
)

type createQuestionRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
}

// CreateQuestion handles POST /ques/add
// @Summary Ask a question
// @Description Tags must exist in the tag directory; matching ignores case.
// @Tags questions
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body createQuestionRequest true "Question"
// @Success 201 {object} object{message=string,question=service.QuestionRecord}
// @Failure 400 {object} models.ErrorResponse
// @Router /ques/add [post]
func (s *Server) CreateQuestion(c *fiber.Ctx) error {
	var req createQuestionRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	question, err := s.questionService.CreateQuestion(c.UserContext(), service.CreateQuestionInput{
		AuthorID:    currentUserID(c),
		Title:       req.Title,
		Description: req.Description,
		Tags:        req.Tags,
	})
	if err != nil {
		return respondErr(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":  "Question created successfully",
		"question": question,
	})
}

// GetQuestions handles GET /ques/get
// @Summary List questions
// @Description Newest first, formatted for the listing page.
// @Tags questions
// @Produce json
// @Success 200 {object} object{questions=[]service.QuestionSummary}
// @Router /ques/get [get]
func (s *Server) GetQuestions(c *fiber.Ctx) error {
	questions, err := s.questionService.ListQuestions(c.UserContext())
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"questions": questions})
}

// GetQuestion handles GET /ques/get/:id
// @Summary Question detail
// @Tags questions
// @Produce json
// @Param id path int true "Question ID"
// @Success 200 {object} service.QuestionDetail
// @Failure 404 {object} models.ErrorResponse
// @Router /ques/get/{id} [get]
func (s *Server) GetQuestion(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	detail, err := s.questionService.GetQuestionDetail(c.UserContext(), id)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(detail)
}

// GetTags handles GET /ques/tags
// @Summary Tag directory
// @Tags questions
// @Produce json
// @Success 200 {object} object{message=string,tags=[]repository.TagEntry}
// @Router /ques/tags [get]
func (s *Server) GetTags(c *fiber.Ctx) error {
	tags, err := s.questionService.ListTags(c.UserContext())
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Tags fetched successfully",
		"tags":    tags,
	})
}

// LikeQuestion handles PATCH /ques/like/:id
// @Summary Like a question
// @Tags questions
// @Security BearerAuth
// @Produce json
// @Param id path int true "Question ID"
// @Success 200 {object} object{likes=int}
// @Failure 404 {object} models.ErrorResponse
// @Router /ques/like/{id} [patch]
func (s *Server) LikeQuestion(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	likes, err := s.questionService.LikeQuestion(c.UserContext(), service.LikeQuestionInput{
		UserID:     currentUserID(c),
		QuestionID: id,
	})
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"likes": likes})
}

