package handler

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	gorillaws "github.com/gorilla/websocket"

	"github.com/yourusername/formbuilder-api/internal/service"
	ws "github.com/yourusername/formbuilder-api/internal/websocket"
	"github.com/yourusername/formbuilder-api/pkg/auth"
)

// WSHandler обрабатывает подключения к комнатам совместного редактирования
type WSHandler struct {
	hub           *ws.Hub
	jwtService    *auth.JWTService
	accessService *service.AccessService
	clientConfig  ws.ClientConfig
	upgrader      gorillaws.Upgrader
}

// NewWSHandler создает новый обработчик websocket-подключений
func NewWSHandler(
	hub *ws.Hub,
	jwtService *auth.JWTService,
	accessService *service.AccessService,
	clientConfig ws.ClientConfig,
	allowedOrigins []string,
) *WSHandler {
	originSet := make(map[string]bool, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		originSet[origin] = true
	}
	return &WSHandler{
		hub:           hub,
		jwtService:    jwtService,
		accessService: accessService,
		clientConfig:  clientConfig,
		upgrader: gorillaws.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				return originSet["*"] || originSet[origin]
			},
		},
	}
}

// Connect подключает редактора к комнате формы.
// Браузерный websocket не умеет ставить заголовки, поэтому access-токен
// принимается query-параметром и проверяется до upgrade.
func (h *WSHandler) Connect(c *gin.Context) {
	formID := c.MustGet("formID").(uint)

	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "token is required"})
		return
	}
	claims, err := h.jwtService.ParseToken(token, auth.UsageAccess)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
		return
	}

	// Совместное редактирование доступно владельцу и редакторам
	if err := h.accessService.RequireEditor(claims.UserID, formID); err != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "Editor role required"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("[WSHandler] Ошибка upgrade для формы #%d: %v", formID, err)
		return
	}

	ws.NewClient(h.hub, conn, formID, claims.UserID, h.clientConfig)
}
