package handlers

import (
	"github.com/ahmetcoskunkizilkaya/civic-reports/internal/dto"
	"github.com/ahmetcoskunkizilkaya/civic-reports/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/civic-reports/internal/models"
	"github.com/ahmetcoskunkizilkaya/civic-reports/internal/services"
	"github.com/gofiber/fiber/v2"
)

type ReportHandler struct {
	reportService *services.ReportService
	voteService   *services.VoteService
}

func NewReportHandler(reportService *services.ReportService, voteService *services.VoteService) *ReportHandler {
	return &ReportHandler{reportService: reportService, voteService: voteService}
}

func (h *ReportHandler) List(c *fiber.Ctx) error {
	var q dto.ListReportsQuery
	if err := parseQuery(c, &q); err != nil {
		return err
	}

	resp, err := h.reportService.List(c.UserContext(), &q, middleware.CurrentUser(c))
	if err != nil {
		return err
	}
	return respondOK(c, resp)
}

func (h *ReportHandler) Mine(c *fiber.Ctx) error {
	var q dto.ListReportsQuery
	if err := parseQuery(c, &q); err != nil {
		return err
	}

	resp, err := h.reportService.ListMine(c.UserContext(), &q, middleware.CurrentUser(c))
	if err != nil {
		return err
	}
	return respondOK(c, resp)
}

func (h *ReportHandler) Pending(c *fiber.Ctx) error {
	var q dto.PageQuery
	if err := parseQuery(c, &q); err != nil {
		return err
	}

	resp, err := h.reportService.ListPending(c.UserContext(), &q, middleware.CurrentUser(c))
	if err != nil {
		return err
	}
	return respondOK(c, resp)
}

func (h *ReportHandler) Stats(c *fiber.Ctx) error {
	resp, err := h.reportService.Stats(c.UserContext())
	if err != nil {
		return err
	}
	return respondOK(c, resp)
}

func (h *ReportHandler) Get(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}

	resp, err := h.reportService.Get(c.UserContext(), id, middleware.CurrentUser(c))
	if err != nil {
		return err
	}
	return respondOK(c, resp)
}

func (h *ReportHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateReportRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	resp, err := h.reportService.Create(c.UserContext(), middleware.CurrentUser(c), &req)
	if err != nil {
		return err
	}
	return success(c, fiber.StatusCreated, resp, "Report submitted for review")
}

func (h *ReportHandler) Update(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	var req dto.UpdateReportRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	resp, err := h.reportService.Update(c.UserContext(), id, middleware.CurrentUser(c), &req)
	if err != nil {
		return err
	}
	return success(c, fiber.StatusOK, resp, "Report updated")
}

func (h *ReportHandler) Delete(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}

	if err := h.reportService.Delete(c.UserContext(), id, middleware.CurrentUser(c)); err != nil {
		return err
	}
	return success(c, fiber.StatusOK, nil, "Report deleted")
}

func (h *ReportHandler) Vote(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	var req dto.VoteRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	resp, err := h.voteService.CastVote(c.UserContext(), id, middleware.CurrentUser(c), models.VoteType(req.Type))
	if err != nil {
		return err
	}
	return respondOK(c, resp)
}

func (h *ReportHandler) AdminAction(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	var req dto.AdminActionRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	resp, err := h.reportService.AdminAction(c.UserContext(), id, middleware.CurrentUser(c), &req)
	if err != nil {
		return err
	}
	message := "Report approved"
	if req.Action == "reject" {
		message = "Report rejected"
	}
	return success(c, fiber.StatusOK, resp, message)
}

func (h *ReportHandler) UpdateStatus(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	var req dto.UpdateStatusRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	resp, err := h.reportService.UpdateStatus(c.UserContext(), id, middleware.CurrentUser(c), &req)
	if err != nil {
		return err
	}
	return success(c, fiber.StatusOK, resp, "Report status updated")
}
