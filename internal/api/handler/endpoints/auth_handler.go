package endpoints

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	skills "github.com/manarouei/agent-skills-sub004"
	"github.com/manarouei/agent-skills-sub004/internal/api/handler/request"
	"github.com/manarouei/agent-skills-sub004/internal/api/handler/response"
	"github.com/manarouei/agent-skills-sub004/pkg"
)

const adminRole = "admin"

type authHandler struct {
	logger zerolog.Logger
	config skills.AppConfig
}

func newAuthHandler() *authHandler {
	return &authHandler{
		logger: skills.Logger,
		config: skills.GetConfig(),
	}
}

func AuthHandler(router gin.IRouter) {
	h := newAuthHandler()

	auth := router.Group("/api/v1/auth")
	{
		auth.POST("/token", h.token)
	}
}

func (slf *authHandler) token(c *gin.Context) {
	if slf.config.JWTConfig.Secret == "" {
		c.JSON(http.StatusServiceUnavailable, response.APIError{Message: "Authentication is not configured"})
		return
	}

	var tokenDTO request.TokenDTO
	if err := pkg.ParseAndValidate(c, &tokenDTO); err != nil {
		slf.logger.Debug().Err(err).Msg("Error parsing and validating token DTO")
		c.JSON(http.StatusBadRequest, response.APIError{Message: "Invalid request", Data: pkg.ValidationMessages(err)})
		return
	}

	jwtConfig := slf.config.JWTConfig
	if err := pkg.CheckCredentials(jwtConfig.User, jwtConfig.PasswordHash, tokenDTO.User, tokenDTO.Password); err != nil {
		slf.logger.Warn().Str("user", tokenDTO.User).Msg("Rejected token request")
		c.JSON(http.StatusUnauthorized, response.APIError{Message: err.Error()})
		return
	}

	token, err := pkg.GenerateToken(tokenDTO.User, adminRole, jwtConfig.Secret, jwtConfig.Expiration)
	if err != nil {
		slf.logger.Error().Err(err).Msg("Error generating token")
		c.JSON(http.StatusInternalServerError, response.APIError{Message: "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, response.TokenResponseDTO{Token: token, ExpiresIn: jwtConfig.Expiration * 60})
}
