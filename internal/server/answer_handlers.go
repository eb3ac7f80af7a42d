package server

import (
	"fmt"

	"stackit/internal/service"

	"github.com/gofiber/fiber/v2"
)

type createAnswerRequest struct {
	Content    string `json:"content"`
	QuestionID uint   `json:"questionId"`
}

type voteRequest struct {
	VoteType string `json:"voteType"`
}

// CreateAnswer handles POST /ans/add
// @Summary Answer a question
// @Tags answers
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body createAnswerRequest true "Answer"
// @Success 201 {object} object{message=string,answer=service.AnswerRecord}
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /ans/add [post]
func (s *Server) CreateAnswer(c *fiber.Ctx) error {
	var req createAnswerRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	answer, err := s.answerService.CreateAnswer(c.UserContext(), service.CreateAnswerInput{
		AuthorID:   currentUserID(c),
		QuestionID: req.QuestionID,
		Content:    req.Content,
	})
	if err != nil {
		return respondErr(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Answer posted successfully",
		"answer":  answer,
	})
}

// VoteAnswer handles PATCH /ans/vote/:id
// @Summary Vote on an answer
// @Description voteType is upvote or downvote; votes never drop below zero.
// @Tags answers
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Answer ID"
// @Param request body voteRequest true "Vote"
// @Success 200 {object} object{message=string,votes=int,answer=service.AnswerRecord}
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /ans/vote/{id} [patch]
func (s *Server) VoteAnswer(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req voteRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	result, err := s.answerService.Vote(c.UserContext(), service.VoteInput{
		UserID:   currentUserID(c),
		AnswerID: id,
		VoteType: req.VoteType,
	})
	if err != nil {
		return respondErr(c, err)
	}

	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("Answer %sd successfully", req.VoteType),
		"votes":   result.Votes,
		"answer":  result.Answer,
	})
}

// ApproveAnswer handles PATCH /ans/approve/:id
// @Summary Accept an answer
// @Description Only the question's author may accept; the previous accepted answer is cleared.
// @Tags answers
// @Security BearerAuth
// @Produce json
// @Param id path int true "Answer ID"
// @Success 200 {object} object{message=string,acceptedAnswerId=int}
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /ans/approve/{id} [patch]
func (s *Server) ApproveAnswer(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	acceptedID, err := s.answerService.Approve(c.UserContext(), service.ApproveInput{
		UserID:   currentUserID(c),
		AnswerID: id,
	})
	if err != nil {
		return respondErr(c, err)
	}

	return c.JSON(fiber.Map{
		"message":          "Answer approved successfully",
		"acceptedAnswerId": acceptedID,
	})
}

// GetAnswer handles GET /ans/get/:answerId
// @Summary Answer with its question
// @Tags answers
// @Security BearerAuth
// @Produce json
// @Param answerId path int true "Answer ID"
// @Success 200 {object} service.AnswerLookup
// @Failure 404 {object} models.ErrorResponse
// @Router /ans/get/{answerId} [get]
func (s *Server) GetAnswer(c *fiber.Ctx) error {
	id, err := s.parseID(c, "answerId")
	if err != nil {
		return nil
	}

	lookup, err := s.answerService.GetAnswer(c.UserContext(), id)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(lookup)
}
