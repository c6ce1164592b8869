package handlers

import (
	"math"
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/campuscare/complaint-service/internal/api/dto"
	"github.com/campuscare/complaint-service/internal/auth"
	"github.com/campuscare/complaint-service/internal/domain"
	"github.com/campuscare/complaint-service/internal/service"
	apperrors "github.com/campuscare/complaint-service/pkg/util"
)

// ComplaintsHandler manages submitter-facing complaint endpoints.
type ComplaintsHandler struct {
	service *service.ComplaintService
}

// NewComplaintsHandler constructs handler.
func NewComplaintsHandler(complaintService *service.ComplaintService) *ComplaintsHandler {
	return &ComplaintsHandler{service: complaintService}
}

// Create POST /api/complaints.
func (h *ComplaintsHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CreateComplaintRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	attachments := make([]domain.Attachment, 0, len(req.Attachments))
	for _, att := range req.Attachments {
		attachments = append(attachments, domain.Attachment{
			Filename:    att.Filename,
			StoragePath: att.StoragePath,
			MimeType:    att.MimeType,
		})
	}

	complaint, err := h.service.Create(c.UserContext(), principalOf(principal), service.CreateInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    domain.ComplaintCategory(req.Category),
		Attachments: attachments,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"message":   "Complaint submitted successfully",
		"complaint": complaintResponse(complaint),
	})
}

// List GET /api/complaints.
func (h *ComplaintsHandler) List(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	filter := service.OwnerFilter{}
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

	page, pageSize := parsePagination(c)
	items, total, err := h.service.ListForOwner(c.UserContext(), principalOf(principal), filter, page, pageSize)
	if err != nil {
		return err
	}
	return c.JSON(complaintListResponse(items, total, page, pageSize))
}

// Get GET /api/complaints/:id.
func (h *ComplaintsHandler) Get(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	complaint, err := h.service.GetByID(c.UserContext(), principalOf(principal), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"complaint": complaintResponse(complaint)})
}

// Update PUT /api/complaints/:id.
func (h *ComplaintsHandler) Update(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.UpdateComplaintRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	patch := service.OwnerPatchInput{
		Title:       req.Title,
		Description: req.Description,
	}
	if req.Category != nil {
		category := domain.ComplaintCategory(*req.Category)
		patch.Category = &category
	}

	complaint, err := h.service.UpdateOwnerFields(c.UserContext(), principalOf(principal), c.Params("id"), patch)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message":   "Complaint updated successfully",
		"complaint": complaintResponse(complaint),
	})
}

func principalOf(p *auth.Principal) domain.Principal {
	return domain.Principal{ID: p.ID, Role: p.Role}
}

func parsePagination(c *fiber.Ctx) (int, int) {
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("limit"), 10)
	return page, pageSize
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func complaintResponse(complaint *domain.Complaint) dto.ComplaintResponse {
	attachments := make([]dto.AttachmentResponse, 0, len(complaint.Attachments))
	for _, att := range complaint.Attachments {
		attachments = append(attachments, dto.AttachmentResponse{
			Filename:    att.Filename,
			StoragePath: att.StoragePath,
			MimeType:    att.MimeType,
		})
	}

	notes := make([]dto.AdminNoteResponse, 0, len(complaint.AdminNotes))
	for _, note := range complaint.AdminNotes {
		notes = append(notes, dto.AdminNoteResponse{
			Note:    note.Note,
			AddedBy: note.AddedBy,
			Author:  note.Author,
			AddedAt: note.AddedAt,
		})
	}

	resp := dto.ComplaintResponse{
		ID:          complaint.ID,
		Title:       complaint.Title,
		Description: complaint.Description,
		Category:    string(complaint.Category),
		Priority:    string(complaint.Priority),
		Status:      string(complaint.Status),
		SubmittedBy: complaint.Submitter,
		AssignedTo:  complaint.Assignee,
		Attachments: attachments,
		AdminNotes:  notes,
		ResolvedAt:  complaint.ResolvedAt,
		CreatedAt:   complaint.CreatedAt,
		UpdatedAt:   complaint.UpdatedAt,
	}
	if resp.SubmittedBy == nil {
		resp.SubmittedBy = &domain.UserRef{ID: complaint.SubmittedBy}
	}
	if complaint.Sentiment != nil {
		resp.Sentiment = &dto.SentimentResponse{
			Sentiment:       string(complaint.Sentiment.Sentiment),
			Confidence:      complaint.Sentiment.Confidence,
			UrgencyKeywords: complaint.Sentiment.UrgencyKeywords,
		}
	}
	return resp
}

func complaintListResponse(items []domain.Complaint, total int64, page, pageSize int) dto.ComplaintListResponse {
	complaints := make([]dto.ComplaintResponse, 0, len(items))
	for i := range items {
		complaints = append(complaints, complaintResponse(&items[i]))
	}
	return dto.ComplaintListResponse{
		Complaints:  complaints,
		Total:       total,
		CurrentPage: page,
		TotalPages:  totalPages(total, pageSize),
	}
}

func totalPages(total int64, pageSize int) int64 {
	if pageSize <= 0 {
		return 0
	}
	return int64(math.Ceil(float64(total) / float64(pageSize)))
}
