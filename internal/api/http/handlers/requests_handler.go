package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/guardline/request-service/internal/api/dto"
	"github.com/guardline/request-service/internal/auth"
	"github.com/guardline/request-service/internal/domain"
	"github.com/guardline/request-service/internal/service"
	apperrors "github.com/guardline/request-service/pkg/util"
)

// RequestsHandler serves one request variant; the router registers an
// instance per kind under /tickets and /service-requests.
type RequestsHandler struct {
	service *service.RequestService
	kind    domain.RequestKind
}

// NewRequestsHandler constructs handler.
func NewRequestsHandler(requestService *service.RequestService, kind domain.RequestKind) *RequestsHandler {
	return &RequestsHandler{service: requestService, kind: kind}
}

// Create POST /.
func (h *RequestsHandler) Create(c *fiber.Ctx) error {
	actor, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var input service.RequestCreateInput
	switch h.kind {
	case domain.KindTicket:
		var req dto.CreateTicketRequest
		if err := c.BodyParser(&req); err != nil {
			return apperrors.NewValidationError("invalid payload", nil)
		}
		input = service.RequestCreateInput{
			Category:         req.Category,
			Title:            req.Title,
			Description:      req.Description,
			Attachments:      req.Attachments,
			PreferredVisitAt: req.PreferredVisitAt,
		}
	case domain.KindServiceRequest:
		var req dto.CreateServiceRequestRequest
		if err := c.BodyParser(&req); err != nil {
			return apperrors.NewValidationError("invalid payload", nil)
		}
		location := req.Location
		input = service.RequestCreateInput{
			Category:         req.Category,
			Title:            req.Title,
			Description:      req.Description,
			Attachments:      req.Attachments,
			PreferredVisitAt: req.PreferredVisitAt,
			Location:         &location,
			Address:          req.Address,
			OutletName:       req.OutletName,
		}
	}

	request, err := h.service.Create(c.Context(), actor, h.kind, input)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": requestDetail(request)})
}

// List GET /.
func (h *RequestsHandler) List(c *fiber.Ctx) error {
	actor, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	params := service.ListParams{
		Page:     parseIntQuery(c, "page", 1),
		PageSize: parseIntQuery(c, "page_size", 20),
		ShowAll:  c.QueryBool("all"),
	}
	page, err := h.service.List(c.Context(), actor, h.kind, params)
	if err != nil {
		return err
	}

	items := make([]dto.RequestSummary, 0, len(page.Items))
	for i := range page.Items {
		items = append(items, requestSummary(&page.Items[i]))
	}
	return c.JSON(fiber.Map{"data": dto.PageResponse{
		Items:   items,
		Total:   page.Total,
		Page:    page.Page,
		Pages:   page.Pages,
		HasMore: page.HasMore,
	}})
}

// Get GET /:id.
func (h *RequestsHandler) Get(c *fiber.Ctx) error {
	actor, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	request, err := h.service.Get(c.Context(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": requestDetail(request)})
}

// UpdateStatus PATCH /:id/status.
func (h *RequestsHandler) UpdateStatus(c *fiber.Ctx) error {
	actor, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	input := service.StatusUpdateInput{AssignedVisitAt: req.AssignedVisitAt}
	if req.Status != nil {
		status := domain.RequestStatus(*req.Status)
		input.Status = &status
	}

	request, err := h.service.UpdateStatus(c.Context(), actor, c.Params("id"), input)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": requestDetail(request)})
}

// AddComment POST /:id/comments.
func (h *RequestsHandler) AddComment(c *fiber.Ctx) error {
	actor, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.AddCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	priceList := make([]domain.PriceLine, 0, len(req.PriceList))
	for _, line := range req.PriceList {
		priceList = append(priceList, domain.PriceLine{
			SequenceNo:  line.SequenceNo,
			Description: line.Description,
			Price:       line.Price,
		})
	}

	request, err := h.service.AddComment(c.Context(), actor, c.Params("id"), service.CommentInput{
		Note:        req.Note,
		Attachments: req.Attachments,
		PriceList:   priceList,
		TotalPrice:  req.TotalPrice,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": requestDetail(request)})
}

// MarkSeen POST /:id/timeline/:index/seen.
func (h *RequestsHandler) MarkSeen(c *fiber.Ctx) error {
	actor, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	index, err := strconv.Atoi(c.Params("index"))
	if err != nil {
		return apperrors.NewValidationError("invalid timeline index", nil)
	}
	request, err := h.service.MarkSeen(c.Context(), actor, c.Params("id"), index)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": requestDetail(request)})
}

// Delete DELETE /:id.
func (h *RequestsHandler) Delete(c *fiber.Ctx) error {
	actor, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	if err := h.service.Delete(c.Context(), actor, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// MarkViewed POST /mark-viewed. Admin bulk action, tickets only.
func (h *RequestsHandler) MarkViewed(c *fiber.Ctx) error {
	actor, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.MarkViewedRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.service.MarkViewed(c.Context(), actor, req.TicketIDs); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// UnviewedCount GET /unviewed-count. Admin only, tickets only.
func (h *RequestsHandler) UnviewedCount(c *fiber.Ctx) error {
	actor, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	count, err := h.service.UnviewedTicketCount(c.Context(), actor)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"count": count}})
}

func parseIntQuery(c *fiber.Ctx, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return val
}

func requestSummary(request *domain.Request) dto.RequestSummary {
	summary := dto.RequestSummary{
		ID:              request.ID,
		HumanID:         request.HumanID,
		Category:        request.Category,
		Title:           request.Title,
		Status:          request.Status,
		AssignedVisitAt: request.AssignedVisitAt,
		CreatedAt:       request.CreatedAt,
		UpdatedAt:       request.UpdatedAt,
	}
	if request.Kind == domain.KindTicket {
		viewed := request.ViewedByAdmin
		summary.ViewedByAdmin = &viewed
	}
	return summary
}

func requestDetail(request *domain.Request) dto.RequestDetail {
	timeline := make([]dto.TimelineEntryResponse, 0, len(request.Timeline))
	for _, entry := range request.Timeline {
		priceList := make([]dto.PriceLineResponse, 0, len(entry.PriceList))
		for _, line := range entry.PriceList {
			priceList = append(priceList, dto.PriceLineResponse{
				SequenceNo:  line.SequenceNo,
				Description: line.Description,
				Price:       line.Price,
			})
		}
		timeline = append(timeline, dto.TimelineEntryResponse{
			ID:          entry.ID,
			Note:        entry.Note,
			Attachments: entry.Attachments,
			AddedBy:     entry.AddedBy,
			AddedAt:     entry.AddedAt,
			SeenBy:      entry.SeenBy,
			PriceList:   priceList,
			TotalPrice:  entry.TotalPrice,
		})
	}

	detail := dto.RequestDetail{
		ID:               request.ID,
		HumanID:          request.HumanID,
		OwnerID:          request.OwnerID,
		Category:         request.Category,
		Title:            request.Title,
		Description:      request.Description,
		Attachments:      request.Attachments,
		Status:           request.Status,
		PreferredVisitAt: request.PreferredVisitAt,
		AssignedVisitAt:  request.AssignedVisitAt,
		CompletedAt:      request.CompletedAt,
		Location:         request.Location,
		Address:          request.Address,
		OutletName:       request.OutletName,
		Timeline:         timeline,
		CreatedAt:        request.CreatedAt,
		UpdatedAt:        request.UpdatedAt,
	}
	if request.Kind == domain.KindTicket {
		viewed := request.ViewedByAdmin
		detail.ViewedByAdmin = &viewed
	}
	return detail
}
