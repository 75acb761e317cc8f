package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// 管理APIを許可するrole
const RoleAdmin = "ADMIN"

//AuthJWTがcontextに入れたroleを確認します。在庫・発注・注文管理のルートで使う。

func AdminRoleGuard() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			rawRole := c.Get(CtxUserRoleKey)
			role, ok := rawRole.(string)
			if !ok || role == "" {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			if role != RoleAdmin {
				return c.JSON(http.StatusForbidden, errorJSON("admin only"))
			}

			return next(c)
		}
	}
}
