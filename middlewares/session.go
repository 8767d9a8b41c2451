package middlewares

import (
	"log"
	"strings"
	"time"

	"lottery/helpers"
	"lottery/models"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

const (
	HeaderSessionID = "X-Session-ID"
	localUser       = "user"
)

// SessionAuth resolves the X-Session-ID header to an active user and stores it in Locals.
func SessionAuth(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sid := strings.TrimSpace(c.Get(HeaderSessionID))
		if sid == "" {
			return helpers.JSONStatus(c, fiber.StatusUnauthorized, "SESSION_REQUIRED")
		}

		var session models.Session
		err := db.WithContext(c.UserContext()).
			Preload("User").
			Where("sid = ?", strings.ToLower(sid)).
			First(&session).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helpers.JSONStatus(c, fiber.StatusUnauthorized, "INVALID_SESSION")
		}
		if err != nil {
			log.Printf("❌ load session: %v", err)
			return helpers.JSONStatus(c, fiber.StatusInternalServerError, "INTERNAL_ERROR")
		}
		if session.Expired(time.Now()) {
			return helpers.JSONStatus(c, fiber.StatusUnauthorized, "SESSION_EXPIRED")
		}
		if !session.User.IsActive {
			return helpers.JSONStatus(c, fiber.StatusForbidden, "USER_INACTIVE")
		}

		c.Locals(localUser, session.User)
		return c.Next()
	}
}

// AdminOnly must run after SessionAuth.
func AdminOnly() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := CurrentUser(c)
		if !ok || !user.IsAdmin {
			return helpers.JSONStatus(c, fiber.StatusForbidden, "ADMIN_ONLY")
		}
		return c.Next()
	}
}

func CurrentUser(c *fiber.Ctx) (models.User, bool) {
	user, ok := c.Locals(localUser).(models.User)
	return user, ok
}
