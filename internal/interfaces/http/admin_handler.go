package http

import (
	"github.com/gofiber/fiber/v2"

	appanalytics "github.com/jhoicas/inventario-pos/internal/application/analytics"
	"github.com/jhoicas/inventario-pos/internal/application/usecase"
)

// AdminHandler endpoints de administración de la plataforma (rol admin).
type AdminHandler struct {
	users     *usecase.UserUseCase
	products  *usecase.ProductUseCase
	tickets   *usecase.TicketUseCase
	dashboard *appanalytics.DashboardUseCase
}

// NewAdminHandler construye el handler.
func NewAdminHandler(users *usecase.UserUseCase, products *usecase.ProductUseCase, tickets *usecase.TicketUseCase, dashboard *appanalytics.DashboardUseCase) *AdminHandler {
	return &AdminHandler{users: users, products: products, tickets: tickets, dashboard: dashboard}
}

// ListUsers godoc
// @Summary      Listar usuarios
// @Tags         admin
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "Límite"  default(20)
// @Param        offset  query  int  false  "Offset"  default(0)
// @Success      200     {array}   dto.UserResponse
// @Failure      403     {object}  dto.ErrorResponse
// @Router       /api/admin/users [get]
func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	limit, offset := pageParams(c)
	out, err := h.users.List(c.UserContext(), limit, offset)
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(out)
}

// Stats godoc
// @Summary      Métricas de la plataforma
// @Tags         admin
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.AdminStatsDTO
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/admin/stats [get]
func (h *AdminHandler) Stats(c *fiber.Ctx) error {
	out, err := h.dashboard.GetPlatformStats(c.UserContext())
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(out)
}

// ListProducts godoc
// @Summary      Listar productos de todos los usuarios
// @Tags         admin
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "Límite"  default(20)
// @Param        offset  query  int  false  "Offset"  default(0)
// @Success      200     {object}  dto.ProductListResponse
// @Failure      403     {object}  dto.ErrorResponse
// @Router       /api/admin/products [get]
func (h *AdminHandler) ListProducts(c *fiber.Ctx) error {
	limit, offset := pageParams(c)
	out, err := h.products.ListAll(c.UserContext(), limit, offset)
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(out)
}

// ListTickets godoc
// @Summary      Listar tickets de soporte
// @Tags         admin
// @Security     Bearer
// @Produce      json
// @Param        status  query  string  false  "open | closed"
// @Param        limit   query  int     false  "Límite"  default(20)
// @Param        offset  query  int     false  "Offset"  default(0)
// @Success      200     {array}   dto.TicketResponse
// @Failure      400     {object}  dto.ErrorResponse
// @Router       /api/admin/tickets [get]
func (h *AdminHandler) ListTickets(c *fiber.Ctx) error {
	limit, offset := pageParams(c)
	out, err := h.tickets.ListAll(c.UserContext(), c.Query("status"), limit, offset)
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(out)
}

// CloseTicket godoc
// @Summary      Cerrar ticket
// @Tags         admin
// @Security     Bearer
// @Produce      json
// @Param        id   path  int  true  "ID del ticket"
// @Success      200  {object}  dto.TicketResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/admin/tickets/{id}/close [put]
func (h *AdminHandler) CloseTicket(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badID(c)
	}
	out, err := h.tickets.Close(c.UserContext(), id)
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(out)
}
