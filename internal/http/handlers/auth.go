package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/geocoder89/staffhub/internal/cache"
	"github.com/geocoder89/staffhub/internal/domain/user"
	"github.com/geocoder89/staffhub/internal/registration"
	"github.com/gin-gonic/gin"
)

const msgCheckEmailFailed = "Unable to check email"

type Registrar interface {
	Register(ctx context.Context, req registration.Request) (user.Public, error)
	EmailExists(ctx context.Context, email string) (bool, error)
}

type AuthHandler struct {
	svc     Registrar
	known   *cache.Cache[string, bool]
	timeout time.Duration
}

// NewAuthHandler builds the registration endpoints. known caches emails that
// are already taken; users are never deleted here so a hit stays true.
func NewAuthHandler(svc Registrar, known *cache.Cache[string, bool]) *AuthHandler {
	if known == nil {
		known = cache.New[string, bool](30 * time.Second)
	}

	return &AuthHandler{
		svc:     svc,
		known:   known,
		timeout: 5 * time.Second,
	}
}

type RegisterRequest struct {
	Email    string `json:"email" binding:"max=255"`
	Password string `json:"password"`
	Name     string `json:"name" binding:"max=100"`
}

type RegisterResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	User    user.Public `json:"user"`
}

func (h *AuthHandler) Register(ctx *gin.Context) {
	var req RegisterRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), h.timeout)
	defer cancel()

	pub, err := h.svc.Register(cctx, registration.Request{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
	})

	if err != nil {
		var (
			verr *registration.ValidationError
			cerr *registration.ConflictError
		)

		switch {
		case errors.As(err, &verr):
			RespondBadRequest(ctx, verr.Message, nil)
		case errors.As(err, &cerr):
			RespondConflict(ctx, cerr.Message)
		default:
			RespondInternal(ctx, registration.MsgStorage)
		}
		return
	}

	h.known.Set(pub.Email, true)

	ctx.JSON(http.StatusCreated, RegisterResponse{
		Success: true,
		Message: registration.MsgCreated,
		User:    pub,
	})
}

// CheckEmail reports whether an account exists for the email in the path.
// A failed lookup answers exists=false with an error field and a 500, so
// callers can tell it apart from a real "free" answer.
func (h *AuthHandler) CheckEmail(ctx *gin.Context) {
	email := strings.TrimSpace(ctx.Param("email"))

	if taken, ok := h.known.Get(email); ok && taken {
		ctx.JSON(http.StatusOK, gin.H{"exists": true})
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), h.timeout)
	defer cancel()

	exists, err := h.svc.EmailExists(cctx, email)

	if err != nil {
		var verr *registration.ValidationError

		if errors.As(err, &verr) {
			ctx.JSON(http.StatusBadRequest, gin.H{"exists": false, "error": verr.Message})
			return
		}

		ctx.JSON(http.StatusInternalServerError, gin.H{"exists": false, "error": msgCheckEmailFailed})
		return
	}

	if exists {
		h.known.Set(email, true)
	}

	ctx.JSON(http.StatusOK, gin.H{"exists": exists})
}
