package controllers

import (
	"encoding/json"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/customer"
	"github.com/stripe/stripe-go/v76/paymentintent"
	"gorm.io/gorm"

	"cloudgreet/config"
	"cloudgreet/models"
	"cloudgreet/utils"
)

// BillingController handles Stripe payments for the subscription and the
// incoming webhook feed.
type BillingController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewBillingController(db *gorm.DB, logger *log.Logger) *BillingController {
	stripe.Key = config.AppConfig.StripeSecretKey
	return &BillingController{DB: db, Logger: logger}
}

// POST /billing/payment-intent
func (ctrl *BillingController) CreatePaymentIntent(c *fiber.Ctx) error {
	user := currentUser(c)
	if user == nil || user.BusinessID == nil {
		return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Not authenticated", nil)
	}

	input := struct {
		AmountCents int64  `json:"amountCents" validate:"required,min=50"`
		Currency    string `json:"currency" validate:"omitempty,len=3"`
	}{}
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}
	if input.Currency == "" {
		input.Currency = "usd"
	}

	var business models.Business
	if err := ctrl.DB.First(&business, *user.BusinessID).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Business not found", nil)
	}

	customerID, err := ctrl.ensureStripeCustomer(&business)
	if err != nil {
		utils.LogError("Failed to create Stripe customer", err, map[string]interface{}{
			"business_id": business.ID,
		})
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to set up billing", err)
	}

	intent, err := paymentintent.New(&stripe.PaymentIntentParams{
		Amount:   stripe.Int64(input.AmountCents),
		Currency: stripe.String(input.Currency),
		Customer: stripe.String(customerID),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	})
	if err != nil {
		utils.LogError("Failed to create payment intent", err, map[string]interface{}{
			"business_id": business.ID,
		})
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create payment intent", err)
	}

	return c.JSON(utils.SuccessResponse(fiber.Map{
		"clientSecret": intent.ClientSecret,
		"intentId":     intent.ID,
	}))
}

func (ctrl *BillingController) ensureStripeCustomer(business *models.Business) (string, error) {
	if business.StripeCustomerID != nil && *business.StripeCustomerID != "" {
		return *business.StripeCustomerID, nil
	}

	cust, err := customer.New(&stripe.CustomerParams{
		Name:  stripe.String(business.Name),
		Email: stripe.String(business.Email),
	})
	if err != nil {
		return "", err
	}

	err = ctrl.DB.Model(business).Update("stripe_customer_id", cust.ID).Error
	if err != nil {
		return "", err
	}
	business.StripeCustomerID = &cust.ID
	return cust.ID, nil
}

// POST /billing/webhook
func (ctrl *BillingController) HandleWebhook(c *fiber.Ctx) error {
	event, err := utils.ConstructStripeEvent(c)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid webhook signature", err)
	}

	switch event.Type {
	case "payment_intent.succeeded":
		var intent stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid webhook payload", err)
		}
		utils.LogEvent("Payment succeeded", map[string]interface{}{
			"intent_id":    intent.ID,
			"amount_cents": intent.Amount,
		})
	case "payment_intent.payment_failed":
		var intent stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid webhook payload", err)
		}
		utils.LogEvent("Payment failed", map[string]interface{}{
			"intent_id": intent.ID,
		})
	case "customer.deleted":
		var cust stripe.Customer
		if err := json.Unmarshal(event.Data.Raw, &cust); err != nil {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid webhook payload", err)
		}
		err := ctrl.DB.Model(&models.Business{}).
			Where("stripe_customer_id = ?", cust.ID).
			Update("stripe_customer_id", nil).Error
		if err != nil {
			utils.LogWarn("Failed to clear deleted Stripe customer", err, map[string]interface{}{
				"customer_id": cust.ID,
			})
		}
	default:
		// Unhandled event types are acknowledged so Stripe stops retrying.
	}

	return c.SendStatus(fiber.StatusOK)
}
