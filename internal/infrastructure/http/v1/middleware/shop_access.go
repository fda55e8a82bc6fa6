package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"shopledger/internal/core/apperror"
	appctx "shopledger/internal/core/context"
	"shopledger/internal/core/id"
	"shopledger/internal/domain/shop"
)

// ShopVerifier checks that a user owns a shop.
type ShopVerifier interface {
	Verify(ctx context.Context, shopID, userID id.ID) (*shop.Shop, error)
}

// ShopAccess resolves the :shopId path parameter and rejects requests from
// users who do not own the shop. Must run after Auth.
func ShopAccess(shops ShopVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		shopID, err := id.Parse(c.Param("shopId"))
		if err != nil {
			_ = c.Error(apperror.NewValidation("invalid shop id").WithDetail("shopId", c.Param("shopId")))
			c.Abort()
			return
		}

		userID, err := id.Parse(appctx.GetUserID(c.Request.Context()))
		if err != nil {
			abortUnauthorized(c, "authentication required")
			return
		}

		sh, err := shops.Verify(c.Request.Context(), shopID, userID)
		if err != nil {
			_ = c.Error(err)
			c.Abort()
			return
		}

		c.Set(KeyShop, sh)
		c.Next()
	}
}

// CurrentShop returns the shop resolved by ShopAccess.
func CurrentShop(c *gin.Context) *shop.Shop {
	if v, ok := c.Get(KeyShop); ok {
		if sh, ok := v.(*shop.Shop); ok {
			return sh
		}
	}
	return nil
}
