package middleware

import (
	"errors"
	"net/http"

	"audioshop/internal/logging"
	repo "audioshop/internal/repository"

	"github.com/labstack/echo/v4"
)

// JWTのsubのユーザーがDBにまだ存在するか確認。
// 消されたユーザーのトークンで注文を作らせない
func UserGuard(users repo.UserRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			//AuthJWTが入れたuser_idを取得する
			userID, ok := c.Get(CtxUserIDKey).(int64)
			if !ok || userID <= 0 {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			ctx := c.Request().Context()
			_, err := users.FindByID(ctx, userID)
			if errors.Is(err, repo.ErrNotFound) {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}
			if err != nil {
				logging.FromContext(ctx).Error("user lookup failed", "user_id", userID, "err", err)
				return c.JSON(http.StatusInternalServerError, errorJSON("internal error"))
			}

			return next(c)
		}
	}
}
