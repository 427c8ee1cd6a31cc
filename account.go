package main

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"bitbucket.org/mmdatafocus/webshop_backend/config"
	"bitbucket.org/mmdatafocus/webshop_backend/models"
	"bitbucket.org/mmdatafocus/webshop_backend/utils"
	"bitbucket.org/mmdatafocus/webshop_backend/workflow"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const resetTokenTTL = time.Hour

func getCustomerHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := requireUsername(c); !ok {
			return
		}
		customer, err := workflow.ResolveCustomer(c.Request.Context(), config.GetDB())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, customer)
	}
}

func getCustomerAddressesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := requireUsername(c); !ok {
			return
		}
		ctx := c.Request.Context()
		db := config.GetDB()
		customer, err := workflow.ResolveCustomer(ctx, db)
		if err != nil {
			respondError(c, err)
			return
		}
		addresses, err := models.GetCustomerAddresses(ctx, db, customer.ID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"addresses": addresses})
	}
}

func createCustomerAddressHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := requireUsername(c); !ok {
			return
		}
		var address models.Address
		if err := c.ShouldBindJSON(&address); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}
		ctx := c.Request.Context()
		db := config.GetDB()
		customer, err := workflow.ResolveCustomer(ctx, db)
		if err != nil {
			respondError(c, err)
			return
		}
		address.ID = 0
		address.CustomerId = customer.ID
		if err := models.CreateCustomerAddress(ctx, db, &address); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, address)
	}
}

func updateCustomerAddressHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := requireUsername(c); !ok {
			return
		}
		var address models.Address
		if err := c.ShouldBindJSON(&address); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}
		if address.ID <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "id is required"})
			return
		}
		ctx := c.Request.Context()
		db := config.GetDB()
		customer, err := workflow.ResolveCustomer(ctx, db)
		if err != nil {
			respondError(c, err)
			return
		}
		if err := models.UpdateCustomerAddress(ctx, db, customer.ID, &address); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "address updated"})
	}
}

type deleteAddressRequest struct {
	Id int `json:"id" binding:"required"`
}

func deleteCustomerAddressHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := requireUsername(c); !ok {
			return
		}
		var req deleteAddressRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}
		ctx := c.Request.Context()
		db := config.GetDB()
		customer, err := workflow.ResolveCustomer(ctx, db)
		if err != nil {
			respondError(c, err)
			return
		}
		if err := models.DeleteCustomerAddress(ctx, db, customer.ID, req.Id); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "address deleted"})
	}
}

func getFinancialInfoHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := requireUsername(c); !ok {
			return
		}
		ctx := c.Request.Context()
		db := config.GetDB()
		customer, err := workflow.ResolveCustomer(ctx, db)
		if err != nil {
			respondError(c, err)
			return
		}
		rows, err := models.GetFinancialInfo(ctx, db, customer.ID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"companies": rows})
	}
}

// getWishlistHandler pages through the user's wishlist and reuses catalog
// assembly so each entry carries live stock status.
func getWishlistHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		username, ok := requireUsername(c)
		if !ok {
			return
		}
		ctx := c.Request.Context()
		db := config.GetDB()

		page := parsePositiveInt(c.Query("page"), 1)
		limit := parsePositiveInt(c.Query("limit"), 10)
		codes, err := models.GetWishlistItemCodes(ctx, db, username, page, limit)
		if err != nil {
			respondError(c, err)
			return
		}
		cards, err := workflow.AssembleProducts(ctx, workflow.NewCatalogFetcher(db), codes, workflow.ProductFilter{})
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"items": cards, "page": page})
	}
}

type wishlistRequest struct {
	ItemCode string `json:"item_code" binding:"required"`
}

func addToWishlistHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		username, ok := requireUsername(c)
		if !ok {
			return
		}
		var req wishlistRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}
		if err := models.AddToWishlist(c.Request.Context(), config.GetDB(), username, req.ItemCode); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "added to wishlist"})
	}
}

func removeFromWishlistHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		username, ok := requireUsername(c)
		if !ok {
			return
		}
		var req wishlistRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}
		if err := models.RemoveFromWishlist(c.Request.Context(), config.GetDB(), username, req.ItemCode); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "removed from wishlist"})
	}
}

type subscribeRequest struct {
	Email string `json:"email" binding:"required"`
}

// subscribeEmailHandler adds an address to the configured newsletter group.
// When the feature is unconfigured the response stays neutral so storefronts
// can always show the signup box.
func subscribeEmailHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req subscribeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}
		email := strings.ToLower(strings.TrimSpace(req.Email))
		if !utils.IsValidEmail(email) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid email"})
			return
		}

		ctx := c.Request.Context()
		db := config.GetDB()
		settings, err := models.GetWebsiteSettings(ctx, db)
		if err != nil {
			respondError(c, err)
			return
		}
		if settings == nil || !settings.MailEnabled || settings.EmailGroupName == "" {
			c.JSON(http.StatusOK, gin.H{"message": "subscription is not available"})
			return
		}

		subscribed, err := models.IsSubscribed(ctx, db, settings.EmailGroupName, email)
		if err != nil {
			respondError(c, err)
			return
		}
		if subscribed {
			c.JSON(http.StatusOK, gin.H{"message": "already subscribed"})
			return
		}
		if err := models.Subscribe(ctx, db, settings.EmailGroupName, email); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "subscribed"})
	}
}

type registerRequest struct {
	Email       string `json:"email" binding:"required"`
	Password    string `json:"password" binding:"required,min=8"`
	ContactName string `json:"contact_name" binding:"required"`
	Phone       string `json:"phone"`
	CompanyName string `json:"company_name"`
}

// registerHandler creates the website user, finds or creates the customer it
// shops as, links the two, and issues a session JWT in one transaction.
func registerHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req registerRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}
		email := strings.ToLower(strings.TrimSpace(req.Email))
		if !utils.IsValidEmail(email) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid email"})
			return
		}

		ctx := c.Request.Context()
		db := config.GetDB()

		exists, err := models.UserExistsByEmail(ctx, db, email)
		if err != nil {
			respondError(c, err)
			return
		}
		if exists {
			c.JSON(http.StatusConflict, gin.H{"error": "account already exists"})
			return
		}

		hashed, err := utils.HashPassword(req.Password)
		if err != nil {
			respondError(c, err)
			return
		}
		firstName, lastName := models.SplitContactName(req.ContactName)
		phone := utils.NormalizePhone(req.Phone)

		var user models.User
		err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			user = models.User{
				Username:  email,
				Email:     email,
				FirstName: firstName,
				LastName:  lastName,
				Phone:     phone,
				Password:  string(hashed),
				Enabled:   true,
				UserType:  "Website User",
			}
			if err := tx.Create(&user).Error; err != nil {
				return err
			}

			customer, err := models.GetCustomerByEmail(ctx, tx, email)
			if err != nil && !errors.Is(err, utils.ErrNotFound) {
				return err
			}
			if customer == nil {
				customerName := req.CompanyName
				customerType := "Company"
				if customerName == "" {
					customerName = req.ContactName
					customerType = "Individual"
				}
				customer = &models.Customer{
					Name:         customerName,
					CustomerType: customerType,
					Email:        email,
					MobileNo:     phone,
				}
				if err := tx.Create(customer).Error; err != nil {
					return err
				}
			}
			return models.LinkPortalUser(ctx, tx, customer.ID, user.Username)
		})
		if err != nil {
			respondError(c, err)
			return
		}

		token, err := utils.JwtGenerate(user.ID, user.Username)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"message": "registered",
			"user_id": user.ID,
			"token":   token,
		})
	}
}

// logoutHandler drops the redis session key. JWT sessions have nothing to
// revoke server-side; they just get an ok back.
func logoutHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := requireUsername(c); !ok {
			return
		}
		if token, ok := utils.GetTokenFromContext(c.Request.Context()); ok && token != "" {
			if err := config.RemoveRedisKey("Token:" + token); err != nil {
				respondError(c, err)
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"message": "logged out"})
	}
}

type resetPasswordRequest struct {
	Identifier string `json:"user" binding:"required"`
}

// resetPasswordHandler starts the reset flow. The response never reveals
// whether the account exists; a token only gets minted when it does.
func resetPasswordHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req resetPasswordRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}

		ctx := c.Request.Context()
		logger := config.GetLogger()
		user, err := models.FindEnabledUserByIdentifier(ctx, config.GetDB(), req.Identifier)
		if err != nil {
			respondError(c, err)
			return
		}
		if user != nil {
			token := uuid.NewString()
			if err := config.SetRedisValue("PwdReset:"+token, user.Username, resetTokenTTL); err != nil {
				respondError(c, err)
				return
			}
			// Mail delivery is handled by the notification pipeline; the token
			// only surfaces through logs here.
			logger.WithFields(logrus.Fields{
				"module": "account.go",
				"user":   user.Username,
			}).Info("password reset token issued")
		}
		c.JSON(http.StatusOK, gin.H{"message": "if the account exists, a password reset link has been sent"})
	}
}
