package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ListUsers godoc
// @ID          listUsers
// @Summary     List users
// @Tags        Users
// @Produce     json
// @Success     200  {object}  handlers.UsersResponse
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /users [get]
func (h *Handlers) ListUsers(c *gin.Context) {
	users, err := h.users.List(c.Request.Context())
	if err != nil {
		respondErr(c, err)
		return
	}
	ok(c, http.StatusOK, UsersResponse{Users: users})
}

// GetUser godoc
// @ID          getUser
// @Summary     Get a user by username
// @Tags        Users
// @Produce     json
// @Param       username  path      string  true  "Username"  example(butter_bridge)
// @Success     200       {object}  handlers.UserResponse
// @Failure     404       {object}  handlers.ErrorResponse  "User not found"
// @Failure     500       {object}  handlers.ErrorResponse  "Internal error"
// @Router      /users/{username} [get]
func (h *Handlers) GetUser(c *gin.Context) {
	u, err := h.users.Get(c.Request.Context(), c.Param("username"))
	if err != nil {
		respondErr(c, err)
		return
	}
	ok(c, http.StatusOK, UserResponse{User: u})
}
