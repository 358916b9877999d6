package controller

import (
	"errors"

	"citation-engine-be/internal/dto"
	"citation-engine-be/internal/pkg/serverutils"
	"citation-engine-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ISuggestionController interface {
	RegisterRoutes(r fiber.Router)
	Suggest(ctx *fiber.Ctx) error
	Health(ctx *fiber.Ctx) error
}

// suggestionController exposes the same suggestion pipeline the websocket
// serves, over plain HTTP. Useful for tooling and manual inspection.
type suggestionController struct {
	suggestionService service.ISuggestionService
	paperService      service.IPaperService
}

func NewSuggestionController(
	suggestionService service.ISuggestionService,
	paperService service.IPaperService,
) ISuggestionController {
	return &suggestionController{
		suggestionService: suggestionService,
		paperService:      paperService,
	}
}

func (c *suggestionController) RegisterRoutes(r fiber.Router) {
	r.Get("/health", c.Health)

	h := r.Group("/suggestions")
	h.Use(serverutils.JwtMiddleware)
	h.Post("", c.Suggest)
}

func (c *suggestionController) Suggest(ctx *fiber.Ctx) error {
	var req dto.ManualSuggestionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	results, err := c.suggestionService.Suggest(ctx.Context(), req.Text, req.Context)
	if err != nil {
		if errors.Is(err, service.ErrIndexUnavailable) {
			return fiber.NewError(fiber.StatusServiceUnavailable, "suggestion index unavailable")
		}
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success suggest citations", dto.SuggestionListResponse{Results: results}))
}

func (c *suggestionController) Health(ctx *fiber.Ctx) error {
	res := dto.HealthResponse{Status: "ok", Database: "ok"}

	count, err := c.paperService.Count(ctx.Context())
	if err != nil {
		res.Status = "degraded"
		res.Database = "unreachable"
		return ctx.Status(fiber.StatusServiceUnavailable).JSON(res)
	}

	res.PaperCount = count
	return ctx.JSON(res)
}
