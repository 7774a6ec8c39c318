package controller

import (
	"github.com/gofiber/fiber/v2"

	"paper-chat-be/internal/dto"
	"paper-chat-be/internal/pkg/serverutils"
	"paper-chat-be/pkg/content"
)

type IPaperController interface {
	RegisterRoutes(r fiber.Router)
	Index(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
}

type paperController struct {
	papers *content.Cache
}

func NewPaperController(papers *content.Cache) IPaperController {
	return &paperController{
		papers: papers,
	}
}

func (c *paperController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/papers")
	h.Get("", c.Index)
	h.Get(":paperId", c.Show)
}

func (c *paperController) Index(ctx *fiber.Ctx) error {
	papers := c.papers.Papers()
	out := make([]dto.PaperResponse, len(papers))
	for i, p := range papers {
		out[i] = toPaperResponse(p)
	}
	return ctx.JSON(serverutils.SuccessResponse("Success list papers", out))
}

func (c *paperController) Show(ctx *fiber.Ctx) error {
	paper, ok := c.papers.GetPaper(ctx.Params("paperId"))
	if !ok {
		return serverutils.NewAppError(fiber.StatusNotFound, serverutils.ErrKindNotFound, "Paper not found")
	}
	return ctx.JSON(serverutils.SuccessResponse("Success show paper", toPaperResponse(paper)))
}

func toPaperResponse(p content.Paper) dto.PaperResponse {
	return dto.PaperResponse{
		Id:            p.ID,
		Title:         p.Title,
		Authors:       p.Authors,
		Venue:         p.Venue,
		Year:          p.Year,
		URL:           p.URL,
		ChatAvailable: p.ChatAvailable,
	}
}
