package imports

import (
	"errors"

	"backoffice/core/logger"
	"backoffice/core/reconcile"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"go.uber.org/zap"
)

// ImportRequest is the body of an import call. Rows are already parsed from
// the spreadsheet, one map of column name to cell value per data row.
type ImportRequest struct {
	Rows    []reconcile.Row `json:"rows"`
	DryRun  bool            `json:"dry_run"`
	Confirm bool            `json:"confirm"`
}

// ImportResponse describes the outcome of an import call.
type ImportResponse struct {
	ImportID string                      `json:"import_id,omitempty"`
	State    reconcile.State             `json:"state"`
	Result   *reconcile.Result           `json:"result,omitempty"`
	Summary  string                      `json:"summary,omitempty"`
	Errors   []reconcile.ValidationError `json:"errors,omitempty"`
	Message  string                      `json:"message,omitempty"`
}

func newResponse(out *reconcile.Outcome) ImportResponse {
	if out == nil {
		return ImportResponse{State: reconcile.StateFailed}
	}
	return ImportResponse{
		ImportID: out.ImportID,
		State:    out.State,
		Result:   out.Result,
		Summary:  out.Summary,
		Errors:   out.Errors,
	}
}

// Handler handles HTTP requests for imports.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the import routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/tenants/:tenant/imports")
	group.Post("/:entity", h.HandleImport)
	group.Get("/:entity", h.HandleHistory)
}

// HandleImport runs a bulk import.
// @Summary Run Import
// @Description Validate, plan and, when confirmed, apply a bulk import. Records absent from the rows and without dependents are deleted.
// @Tags imports
// @Accept json
// @Produce json
// @Param tenant path string true "Tenant (company) ID"
// @Param entity path string true "Entity type (e.g. 'clients', 'suppliers')"
// @Param request body ImportRequest true "Rows and options"
// @Success 200 {object} ImportResponse "Planned or applied import"
// @Failure 400 {object} map[string]string "Bad Request"
// @Failure 404 {object} map[string]string "Unknown entity type"
// @Failure 422 {object} ImportResponse "Rejected import"
// @Failure 500 {object} ImportResponse "Failed import"
// @Router /tenants/{tenant}/imports/{entity} [post]
func (h *Handler) HandleImport(c *fiber.Ctx) error {
	// Params point into the request buffer; the outcome outlives the request in the archive.
	entity, tenant := utils.CopyString(c.Params("entity")), utils.CopyString(c.Params("tenant"))
	l := logger.WithImport(logger.WithRayID(h.service.logger, c), entity, tenant)

	var req ImportRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body: " + err.Error(),
		})
	}

	opts := reconcile.Options{DryRun: req.DryRun, Confirmed: req.Confirm}
	out, err := h.service.Import(c.UserContext(), entity, tenant, req.Rows, opts)

	var rejected *reconcile.RejectedError
	switch {
	case err == nil:
		return c.JSON(newResponse(out))
	case errors.Is(err, reconcile.ErrUnknownEntity):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, reconcile.ErrMissingTenant):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.As(err, &rejected):
		resp := newResponse(out)
		resp.Message = rejected.Error()
		return c.Status(fiber.StatusUnprocessableEntity).JSON(resp)
	default:
		l.Error("Import failed", zap.Error(err))
		resp := newResponse(out)
		resp.State = reconcile.StateFailed
		resp.Message = err.Error()
		return c.Status(fiber.StatusInternalServerError).JSON(resp)
	}
}

// HandleHistory lists archived imports.
// @Summary List Imports
// @Description List the archived imports of an entity type for a tenant, newest first.
// @Tags imports
// @Produce json
// @Param tenant path string true "Tenant (company) ID"
// @Param entity path string true "Entity type (e.g. 'clients', 'suppliers')"
// @Success 200 {array} reconcile.Outcome "Archived imports"
// @Failure 404 {object} map[string]string "Unknown entity type"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /tenants/{tenant}/imports/{entity} [get]
func (h *Handler) HandleHistory(c *fiber.Ctx) error {
	entity, tenant := c.Params("entity"), c.Params("tenant")
	l := logger.WithRayID(h.service.logger, c)

	outcomes, err := h.service.History(c.UserContext(), entity, tenant)
	if err != nil {
		if errors.Is(err, reconcile.ErrUnknownEntity) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		}
		l.Error("Failed to list imports", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(outcomes)
}
