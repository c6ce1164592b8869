package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/campuscare/complaint-service/internal/api/dto"
	"github.com/campuscare/complaint-service/internal/auth"
	"github.com/campuscare/complaint-service/internal/domain"
	"github.com/campuscare/complaint-service/internal/service"
	apperrors "github.com/campuscare/complaint-service/pkg/util"
)

// AdminHandler manages the administrator surface: complaint moderation,
// analytics, and the user directory.
type AdminHandler struct {
	complaints *service.ComplaintService
	analytics  *service.AnalyticsService
	users      *service.AuthService
}

// NewAdminHandler constructs handler.
func NewAdminHandler(complaints *service.ComplaintService, analytics *service.AnalyticsService, users *service.AuthService) *AdminHandler {
	return &AdminHandler{complaints: complaints, analytics: analytics, users: users}
}

// ListComplaints GET /api/admin/complaints.
func (h *AdminHandler) ListComplaints(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	filter := service.AdminFilter{}
	if status := c.Query("status"); status != "" {
		parsed := domain.ComplaintStatus(status)
		if !parsed.Valid() {
			return apperrors.NewValidationError("invalid status", map[string]any{"field": "status"})
		}
		filter.Status = &parsed
	}
	if category := c.Query("category"); category != "" {
		parsed := domain.ComplaintCategory(category)
		if !parsed.Valid() {
			return apperrors.NewValidationError("invalid category", map[string]any{"field": "category"})
		}
		filter.Category = &parsed
	}
	if priority := c.Query("priority"); priority != "" {
		parsed := domain.ComplaintPriority(priority)
		if !parsed.Valid() {
			return apperrors.NewValidationError("invalid priority", map[string]any{"field": "priority"})
		}
		filter.Priority = &parsed
	}
	if search := c.Query("search"); search != "" {
		filter.Search = &search
	}

	page, pageSize := parsePagination(c)
	items, total, err := h.complaints.ListForAdmin(c.UserContext(), principalOf(principal), filter, page, pageSize)
	if err != nil {
		return err
	}
	return c.JSON(complaintListResponse(items, total, page, pageSize))
}

// UpdateStatus PUT /api/admin/complaints/:id/status.
func (h *AdminHandler) UpdateStatus(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	complaint, err := h.complaints.TransitionStatus(c.UserContext(), principalOf(principal), c.Params("id"), service.TransitionInput{
		Status:     domain.ComplaintStatus(req.Status),
		AssignedTo: req.AssignedTo,
		AdminNote:  req.AdminNote,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message":   "Complaint status updated successfully",
		"complaint": complaintResponse(complaint),
	})
}

// AddNote POST /api/admin/complaints/:id/notes.
func (h *AdminHandler) AddNote(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.AddNoteRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	notes, err := h.complaints.AddAdminNote(c.UserContext(), principalOf(principal), c.Params("id"), req.Note)
	if err != nil {
		return err
	}

	noteResponses := make([]dto.AdminNoteResponse, 0, len(notes))
	for _, note := range notes {
		noteResponses = append(noteResponses, dto.AdminNoteResponse{
			Note:    note.Note,
			AddedBy: note.AddedBy,
			Author:  note.Author,
			AddedAt: note.AddedAt,
		})
	}
	return c.JSON(fiber.Map{
		"message":    "Admin note added successfully",
		"adminNotes": noteResponses,
	})
}

// Analytics GET /api/admin/analytics.
func (h *AdminHandler) Analytics(c *fiber.Ctx) error {
	dashboard, err := h.analytics.Dashboard(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(dashboard)
}

// ListUsers GET /api/admin/users.
func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	var search *string
	if s := c.Query("search"); s != "" {
		search = &s
	}
	page, pageSize := parsePagination(c)

	users, total, err := h.users.ListUsers(c.UserContext(), search, page, pageSize)
	if err != nil {
		return err
	}

	userResponses := make([]dto.UserResponse, 0, len(users))
	for _, user := range users {
		userResponses = append(userResponses, userResponse(&user))
	}
	return c.JSON(dto.UserListResponse{
		Users:       userResponses,
		Total:       total,
		CurrentPage: page,
		TotalPages:  totalPages(total, pageSize),
	})
}

// UpdateUserRole PUT /api/admin/users/:id/role.
func (h *AdminHandler) UpdateUserRole(c *fiber.Ctx) error {
	var req dto.UpdateRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	user, err := h.users.UpdateUserRole(c.UserContext(), c.Params("id"), domain.UserRole(req.Role))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message": "User role updated successfully",
		"user":    userResponse(user),
	})
}

func userResponse(user *domain.User) dto.UserResponse {
	return dto.UserResponse{
		ID:         user.ID,
		Name:       user.Name,
		Email:      user.Email,
		Department: user.Department,
		Role:       string(user.Role),
		CreatedAt:  user.CreatedAt,
	}
}
