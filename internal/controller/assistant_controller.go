package controller

import (
	"strings"

	"onboarding-assistant-be/internal/dto"
	"onboarding-assistant-be/internal/pkg/serverutils"
	"onboarding-assistant-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IAssistantController interface {
	RegisterRoutes(r fiber.Router)
	Query(ctx *fiber.Ctx) error
	GetContext(ctx *fiber.Ctx) error
}

type assistantController struct {
	service service.IAssistantService
}

func NewAssistantController(service service.IAssistantService) IAssistantController {
	return &assistantController{service: service}
}

func (c *assistantController) RegisterRoutes(r fiber.Router) {
	r.Post("/query", c.Query)
	r.Get("/context", c.GetContext)
}

func (c *assistantController) Query(ctx *fiber.Ctx) error {
	var req dto.QueryRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid request body"))
	}

	if strings.TrimSpace(req.Query) == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Query cannot be empty"))
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res := c.service.Query(ctx.UserContext(), &req)
	return ctx.JSON(res)
}

func (c *assistantController) GetContext(ctx *fiber.Ctx) error {
	route := ctx.Query("route", "")
	if strings.TrimSpace(route) == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Route cannot be empty"))
	}

	return ctx.JSON(c.service.GetContext(ctx.UserContext(), route))
}
