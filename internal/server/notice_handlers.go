package server

import (
	"github.com/gofiber/fiber/v2"
)

// GetNotifications handles GET /auth/notifications
// @Summary List notices
// @Description Notices addressed to the caller, oldest first.
// @Tags notifications
// @Security BearerAuth
// @Produce json
// @Success 200 {object} object{notifications=[]service.NoticeView}
// @Router /auth/notifications [get]
func (s *Server) GetNotifications(c *fiber.Ctx) error {
	notices, err := s.noticeService.ListNotices(c.UserContext(), currentUserID(c))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"notifications": notices})
}

// MarkAllNotificationsRead handles PATCH /auth/notifications/read
// @Summary Mark every notice read
// @Tags notifications
// @Security BearerAuth
// @Produce json
// @Success 200 {object} object{updated=int}
// @Router /auth/notifications/read [patch]
func (s *Server) MarkAllNotificationsRead(c *fiber.Ctx) error {
	updated, err := s.noticeService.MarkAllRead(c.UserContext(), currentUserID(c))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"updated": updated})
}

// MarkNotificationRead handles PATCH /auth/notifications/:id/read
// @Summary Mark one notice read
// @Tags notifications
// @Security BearerAuth
// @Produce json
// @Param id path int true "Notice ID"
// @Success 200 {object} object{message=string}
// @Failure 404 {object} models.ErrorResponse
// @Router /auth/notifications/{id}/read [patch]
func (s *Server) MarkNotificationRead(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.noticeService.MarkRead(c.UserContext(), currentUserID(c), id); err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"message": "Notification marked as read"})
}
