package controller

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"

	"paper-chat-be/internal/dto"
	"paper-chat-be/internal/pkg/serverutils"
	"paper-chat-be/internal/service"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	SendMessage(ctx *fiber.Ctx) error
	ClearConversation(ctx *fiber.Ctx) error
}

type chatController struct {
	chatService service.IChatService
}

func NewChatController(chatService service.IChatService) IChatController {
	return &chatController{
		chatService: chatService,
	}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/papers/:paperId/chat")
	h.Use(serverutils.SessionMiddleware())
	h.Post("", c.SendMessage)
	h.Delete("", c.ClearConversation)
}

func (c *chatController) SendMessage(ctx *fiber.Ctx) error {
	sessionID := ctx.Locals("session_id").(string)
	paperID := ctx.Params("paperId")

	var req dto.SendChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.NewAppError(fiber.StatusBadRequest, serverutils.ErrKindBadRequest, "Invalid JSON body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	// The stream writer runs after this handler returns, so it cannot use
	// the request context. Cancellation flows the other way: a failed write
	// (client gone) cancels the model call.
	streamCtx, cancel := context.WithCancel(context.Background())

	events, err := c.chatService.StreamChat(streamCtx, sessionID, paperID, req.Message, ctx.IP())
	if err != nil {
		cancel()
		return err
	}

	ctx.Set(fiber.HeaderContentType, "text/event-stream")
	ctx.Set(fiber.HeaderCacheControl, "no-cache")
	ctx.Set(fiber.HeaderConnection, "keep-alive")
	ctx.Set("X-Accel-Buffering", "no")

	ctx.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer cancel()

		for ev := range events {
			payload, err := json.Marshal(ev)
			if err != nil {
				continue
			}
			if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
				return
			}
			// Flush per event: fragments must reach the client as they
			// arrive, not when the buffer happens to fill.
			if err := w.Flush(); err != nil {
				return
			}
		}
	}))

	return nil
}

func (c *chatController) ClearConversation(ctx *fiber.Ctx) error {
	sessionID := ctx.Locals("session_id").(string)
	paperID := ctx.Params("paperId")

	existed := c.chatService.ClearConversation(ctx.Context(), sessionID, paperID)
	if !existed {
		return ctx.JSON(serverutils.MessageResponse("Nothing to clear"))
	}
	return ctx.JSON(serverutils.MessageResponse("Conversation cleared"))
}
