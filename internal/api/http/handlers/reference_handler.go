package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/service"
)

// ReferenceHandler serves dropdown data and its admin maintenance.
type ReferenceHandler struct {
	reference *service.ReferenceService
	workflow  *service.Workflow
}

// NewReferenceHandler constructs handler. Creating a status reloads the workflow
// so a newly added anchor takes effect.
func NewReferenceHandler(reference *service.ReferenceService, workflow *service.Workflow) *ReferenceHandler {
	return &ReferenceHandler{reference: reference, workflow: workflow}
}

func (h *ReferenceHandler) ListCategories(c *fiber.Ctx) error {
	items, err := h.reference.ListCategories(c.UserContext())
	if err != nil {
		return err
	}
	out := make([]dto.CategoryResponse, 0, len(items))
	for i := range items {
		out = append(out, categoryResponse(&items[i]))
	}
	return c.JSON(fiber.Map{"data": out})
}

func (h *ReferenceHandler) ListPriorities(c *fiber.Ctx) error {
	items, err := h.reference.ListPriorities(c.UserContext())
	if err != nil {
		return err
	}
	out := make([]dto.PriorityResponse, 0, len(items))
	for i := range items {
		out = append(out, priorityResponse(&items[i]))
	}
	return c.JSON(fiber.Map{"data": out})
}

func (h *ReferenceHandler) ListStatuses(c *fiber.Ctx) error {
	items, err := h.reference.ListStatuses(c.UserContext())
	if err != nil {
		return err
	}
	out := make([]dto.StatusResponse, 0, len(items))
	for i := range items {
		out = append(out, statusResponse(&items[i]))
	}
	return c.JSON(fiber.Map{"data": out})
}

func (h *ReferenceHandler) ListDepartments(c *fiber.Ctx) error {
	items, err := h.reference.ListDepartments(c.UserContext())
	if err != nil {
		return err
	}
	out := make([]dto.DepartmentResponse, 0, len(items))
	for i := range items {
		out = append(out, departmentResponse(&items[i]))
	}
	return c.JSON(fiber.Map{"data": out})
}

func (h *ReferenceHandler) ListTeams(c *fiber.Ctx) error {
	items, err := h.reference.ListTeams(c.UserContext())
	if err != nil {
		return err
	}
	out := make([]dto.TeamResponse, 0, len(items))
	for i := range items {
		out = append(out, teamResponse(&items[i]))
	}
	return c.JSON(fiber.Map{"data": out})
}

// CreateCategory POST /admin/categories.
func (h *ReferenceHandler) CreateCategory(c *fiber.Ctx) error {
	var req dto.CreateCategoryRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	category, err := h.reference.CreateCategory(c.UserContext(), req.Name, req.Description, req.ParentID, req.DefaultTeamID)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": categoryResponse(category)})
}

// SetCategoryParent PUT /admin/categories/:id/parent.
func (h *ReferenceHandler) SetCategoryParent(c *fiber.Ctx) error {
	var req dto.SetCategoryParentRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := h.reference.SetCategoryParent(c.UserContext(), c.Params("id"), req.ParentID); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// CreatePriority POST /admin/priorities.
func (h *ReferenceHandler) CreatePriority(c *fiber.Ctx) error {
	var req dto.CreatePriorityRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	priority, err := h.reference.CreatePriority(c.UserContext(), req.Name, req.ResponseSLAHours, req.ResolutionSLAHours, req.SortOrder)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": priorityResponse(priority)})
}

// CreateStatus POST /admin/statuses.
func (h *ReferenceHandler) CreateStatus(c *fiber.Ctx) error {
	var req dto.CreateStatusRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	status, err := h.reference.CreateStatus(c.UserContext(), req.Name, req.IsFinal, req.SortOrder)
	if err != nil {
		return err
	}
	if h.workflow != nil {
		if err := h.workflow.Reload(c.UserContext()); err != nil {
			return err
		}
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": statusResponse(status)})
}

// CreateDepartment POST /admin/departments.
func (h *ReferenceHandler) CreateDepartment(c *fiber.Ctx) error {
	var req dto.CreateDepartmentRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	dept, err := h.reference.CreateDepartment(c.UserContext(), req.Name, req.Description)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": departmentResponse(dept)})
}

// CreateTeam POST /admin/teams.
func (h *ReferenceHandler) CreateTeam(c *fiber.Ctx) error {
	var req dto.CreateTeamRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	team, err := h.reference.CreateTeam(c.UserContext(), req.Name, req.Description, req.DepartmentID, req.LeadID)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": teamResponse(team)})
}
