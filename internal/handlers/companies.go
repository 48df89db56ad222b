package handlers

import (
	"strings"

	"github.com/dealflow/backend/internal/middleware"
	"github.com/dealflow/backend/internal/models"
	"github.com/dealflow/backend/internal/services"
	"github.com/dealflow/backend/pkg/utils"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type CompaniesHandler struct {
	DB    *gorm.DB
	Audit *services.AuditService
}

func NewCompaniesHandler(db *gorm.DB, audit *services.AuditService) *CompaniesHandler {
	return &CompaniesHandler{DB: db, Audit: audit}
}

type createCompanyRequest struct {
	Name    string  `json:"name"`
	Website *string `json:"website"`
	Sector  *string `json:"sector"`
}

func (h *CompaniesHandler) Create(c *fiber.Ctx) error {
	userID := middleware.GetCurrentUserID(c)

	var req createCompanyRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return utils.Error(c, fiber.StatusBadRequest, "name is required")
	}

	company := models.Company{
		Name:      name,
		Website:   req.Website,
		Sector:    req.Sector,
		CreatedBy: userID,
	}
	if err := h.DB.Create(&company).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed creating company")
	}

	h.Audit.LogAsync(services.AuditEntry{
		UserID:       &userID,
		Action:       "company.create",
		ResourceType: "company",
		ResourceID:   &company.ID,
		Details: map[string]interface{}{
			"company_name": name,
		},
		IPAddress: c.IP(),
		RequestID: getRequestID(c),
	})

	return utils.Success(c, fiber.StatusCreated, company)
}

func (h *CompaniesHandler) List(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	limit := c.QueryInt("limit", 50)
	if limit < 1 || limit > 200 {
		limit = 50
	}

	var total int64
	if err := h.DB.Model(&models.Company{}).Count(&total).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed counting companies")
	}

	var companies []models.Company
	if err := h.DB.Order("name ASC").Offset((page - 1) * limit).Limit(limit).Find(&companies).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed listing companies")
	}

	return utils.Paginated(c, companies, page, limit, total)
}

func (h *CompaniesHandler) Get(c *fiber.Ctx) error {
	companyID, err := parseUUID(c.Params("companyId"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid company id")
	}

	var company models.Company
	if err := h.DB.First(&company, "id = ?", companyID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.Error(c, fiber.StatusNotFound, "company not found")
		}
		return utils.Error(c, fiber.StatusInternalServerError, "failed loading company")
	}

	return utils.Success(c, fiber.StatusOK, company)
}
