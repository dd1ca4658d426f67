package controller

import (
	"context"
	"errors"
	"io"
	"time"

	"ai-studypal-be/internal/dto"
	"ai-studypal-be/internal/pkg/serverutils"
	"ai-studypal-be/internal/repository/memory"
	"ai-studypal-be/internal/service"
	"ai-studypal-be/pkg/store"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

type IStudyController interface {
	RegisterRoutes(r fiber.Router)
	State(ctx *fiber.Ctx) error
	Chat(ctx *fiber.Ctx) error
	Upload(ctx *fiber.Ctx) error
	Summarize(ctx *fiber.Ctx) error
	Topics(ctx *fiber.Ctx) error
	Flashcards(ctx *fiber.Ctx) error
	Ask(ctx *fiber.Ctx) error
	ExportHistory(ctx *fiber.Ctx) error
	ExportSummaryPDF(ctx *fiber.Ctx) error
	ResetDocument(ctx *fiber.Ctx) error
}

type studyController struct {
	studyService service.IStudyService
	sessionRepo  *memory.SessionRepository
}

func NewStudyController(studyService service.IStudyService, sessionRepo *memory.SessionRepository) IStudyController {
	return &studyController{
		studyService: studyService,
		sessionRepo:  sessionRepo,
	}
}

func (c *studyController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/study/v1")
	h.Use(serverutils.JwtMiddleware)

	// Generation routes share one per-client budget; the model call is the
	// expensive part, not the handler.
	generationLimiter := limiter.New(limiter.Config{
		Max:        20,
		Expiration: time.Minute,
	})

	h.Get("/state", c.State)
	h.Post("/chat", generationLimiter, c.Chat)
	h.Post("/upload", c.Upload)
	h.Post("/summary", generationLimiter, c.Summarize)
	h.Post("/topics", generationLimiter, c.Topics)
	h.Post("/flashcards", generationLimiter, c.Flashcards)
	h.Post("/ask", generationLimiter, c.Ask)
	h.Get("/history/export", c.ExportHistory)
	h.Get("/summary/export", c.ExportSummaryPDF)
	h.Delete("/document", c.ResetDocument)
}

// session resolves the caller's live session. A valid token whose session was
// evicted (TTL or logout) yields nil and a 401 has already been written.
func (c *studyController) session(ctx *fiber.Ctx) *store.Session {
	sessionID, _ := ctx.Locals("session_id").(string)
	sess, found := c.sessionRepo.Get(sessionID)
	if !found {
		return nil
	}
	c.sessionRepo.Touch(sessionID)
	return sess
}

func (c *studyController) sessionExpired(ctx *fiber.Ctx) error {
	return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"success": false,
		"code":    401,
		"message": service.ErrSessionExpired.Error(),
	})
}

func (c *studyController) State(ctx *fiber.Ctx) error {
	sess := c.session(ctx)
	if sess == nil {
		return c.sessionExpired(ctx)
	}
	return ctx.JSON(fiber.Map{
		"success": true,
		"code":    200,
		"message": "OK",
		"data":    sess.Snapshot(),
	})
}

func (c *studyController) Chat(ctx *fiber.Ctx) error {
	sess := c.session(ctx)
	if sess == nil {
		return c.sessionExpired(ctx)
	}

	var req dto.ChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.studyService.Chat(ctx.Context(), sess, req.Message)
	if err != nil {
		return err
	}
	return ctx.JSON(fiber.Map{
		"success": true,
		"code":    200,
		"message": "OK",
		"data":    res,
	})
}

func (c *studyController) Upload(ctx *fiber.Ctx) error {
	sess := c.session(ctx)
	if sess == nil {
		return c.sessionExpired(ctx)
	}

	fileHeader, err := ctx.FormFile("document")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"code":    400,
			"message": "missing form file \"document\"",
		})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return err
	}

	res, err := c.studyService.Upload(ctx.Context(), sess, fileHeader.Filename, data)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"code":    400,
			"message": err.Error(),
		})
	}
	return ctx.JSON(fiber.Map{
		"success": true,
		"code":    200,
		"message": "Document uploaded",
		"data":    res,
	})
}

func (c *studyController) Summarize(ctx *fiber.Ctx) error {
	return c.artifact(ctx, c.studyService.Summarize)
}

func (c *studyController) Topics(ctx *fiber.Ctx) error {
	return c.artifact(ctx, c.studyService.Topics)
}

func (c *studyController) Flashcards(ctx *fiber.Ctx) error {
	return c.artifact(ctx, c.studyService.Flashcards)
}

func (c *studyController) artifact(ctx *fiber.Ctx, op func(context.Context, *store.Session) (*dto.ArtifactResponse, error)) error {
	sess := c.session(ctx)
	if sess == nil {
		return c.sessionExpired(ctx)
	}

	res, err := op(ctx.Context(), sess)
	if err != nil {
		if errors.Is(err, service.ErrMissingDocument) {
			return c.missingDocument(ctx)
		}
		return err
	}
	return ctx.JSON(fiber.Map{
		"success": true,
		"code":    200,
		"message": "OK",
		"data":    res,
	})
}

func (c *studyController) Ask(ctx *fiber.Ctx) error {
	sess := c.session(ctx)
	if sess == nil {
		return c.sessionExpired(ctx)
	}

	var req dto.AskRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.studyService.Ask(ctx.Context(), sess, req.Question)
	if err != nil {
		if errors.Is(err, service.ErrMissingDocument) {
			return c.missingDocument(ctx)
		}
		return err
	}
	return ctx.JSON(fiber.Map{
		"success": true,
		"code":    200,
		"message": "OK",
		"data":    res,
	})
}

func (c *studyController) missingDocument(ctx *fiber.Ctx) error {
	return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"success": false,
		"code":    400,
		"message": service.ErrMissingDocument.Error(),
	})
}

func (c *studyController) ExportHistory(ctx *fiber.Ctx) error {
	sess := c.session(ctx)
	if sess == nil {
		return c.sessionExpired(ctx)
	}

	data, err := c.studyService.ExportHistory(sess)
	if err != nil {
		return err
	}
	ctx.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	ctx.Set(fiber.HeaderContentDisposition, `attachment; filename="history.json"`)
	return ctx.Send(data)
}

func (c *studyController) ExportSummaryPDF(ctx *fiber.Ctx) error {
	sess := c.session(ctx)
	if sess == nil {
		return c.sessionExpired(ctx)
	}

	data, err := c.studyService.ExportSummaryPDF(sess)
	if err != nil {
		if errors.Is(err, service.ErrNoSummary) {
			return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"code":    400,
				"message": err.Error(),
			})
		}
		return err
	}
	ctx.Set(fiber.HeaderContentType, "application/pdf")
	ctx.Set(fiber.HeaderContentDisposition, `attachment; filename="summary.pdf"`)
	return ctx.Send(data)
}

func (c *studyController) ResetDocument(ctx *fiber.Ctx) error {
	sess := c.session(ctx)
	if sess == nil {
		return c.sessionExpired(ctx)
	}

	c.studyService.ResetDocument(sess)
	return ctx.JSON(fiber.Map{
		"success": true,
		"code":    200,
		"message": "Document cleared",
		"data":    nil,
	})
}
