package controllers

import (
	"errors"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"cloudgreet/models"
	"cloudgreet/utils"
)

type AuthController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewAuthController(db *gorm.DB, logger *log.Logger) *AuthController {
	return &AuthController{DB: db, Logger: logger}
}

// POST /auth/register
func (ctrl *AuthController) Register(c *fiber.Ctx) error {
	input := struct {
		Email        string `json:"email" validate:"required,email"`
		Password     string `json:"password" validate:"required,min=8"`
		Name         string `json:"name" validate:"required,max=200"`
		BusinessName string `json:"businessName" validate:"required,max=200"`
		Trade        string `json:"trade" validate:"omitempty,max=100"`
		Timezone     string `json:"timezone"`
	}{}
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))

	var existing models.User
	if err := ctrl.DB.Where("email = ?", email).First(&existing).Error; err == nil {
		return utils.ErrorResponse(c, fiber.StatusConflict, "Email already registered", nil)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to check account", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create account", err)
	}

	timezone := input.Timezone
	if timezone == "" {
		timezone = "UTC"
	}

	var user models.User
	err = ctrl.DB.Transaction(func(tx *gorm.DB) error {
		business := models.Business{
			Name:     input.BusinessName,
			Trade:    input.Trade,
			Email:    email,
			Timezone: timezone,
		}
		if err := tx.Create(&business).Error; err != nil {
			return err
		}
		user = models.User{
			Email:        email,
			PasswordHash: string(hash),
			Name:         input.Name,
			Timezone:     timezone,
			Role:         "admin",
			BusinessID:   &business.ID,
			IsActive:     true,
		}
		return tx.Create(&user).Error
	})
	if err != nil {
		utils.LogError("Failed to register user", err, map[string]interface{}{"email": email})
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create account", err)
	}

	accessToken, refreshToken, err := utils.GenerateJWTToken(&user)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to issue tokens", err)
	}

	utils.LogEvent("User registered", map[string]interface{}{"user_id": user.ID})
	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(fiber.Map{
		"accessToken":  accessToken,
		"refreshToken": refreshToken,
		"user":         userPayload(&user),
	}))
}

// POST /auth/login
func (ctrl *AuthController) Login(c *fiber.Ctx) error {
	input := struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}{}
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))

	var user models.User
	if err := ctrl.DB.Where("email = ?", email).First(&user).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Invalid credentials", nil)
	}
	if !user.IsActive {
		return utils.ErrorResponse(c, fiber.StatusForbidden, "Account is deactivated", nil)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Invalid credentials", nil)
	}

	accessToken, refreshToken, err := utils.GenerateJWTToken(&user)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to issue tokens", err)
	}

	return c.JSON(utils.SuccessResponse(fiber.Map{
		"accessToken":  accessToken,
		"refreshToken": refreshToken,
		"user":         userPayload(&user),
	}))
}

// POST /auth/refresh
func (ctrl *AuthController) Refresh(c *fiber.Ctx) error {
	input := struct {
		RefreshToken string `json:"refreshToken" validate:"required"`
	}{}
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	accessToken, refreshToken, err := utils.RefreshTokens(input.RefreshToken)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Invalid refresh token", nil)
	}

	return c.JSON(utils.SuccessResponse(fiber.Map{
		"accessToken":  accessToken,
		"refreshToken": refreshToken,
	}))
}

// GET /auth/me
func (ctrl *AuthController) Me(c *fiber.Ctx) error {
	user := currentUser(c)
	if user == nil {
		return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Not authenticated", nil)
	}
	return c.JSON(utils.SuccessResponse(userPayload(user)))
}

func userPayload(user *models.User) fiber.Map {
	return fiber.Map{
		"id":         user.ID,
		"email":      user.Email,
		"name":       user.Name,
		"role":       user.Role,
		"businessId": user.BusinessID,
		"timezone":   user.Timezone,
	}
}
