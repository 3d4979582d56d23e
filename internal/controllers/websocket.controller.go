package controllers

import (
	"log"
	"net/http"
	"strings"

	"nabz/internal/middleware"
	"nabz/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Origin filtering happens in the CORS middleware
		return true
	},
}

// HandleWebSocket handles incoming WebSocket connections
func HandleWebSocket(c *gin.Context) {
	// Extract and validate token from query parameter
	token := c.Query("token")
	if token == "" {
		if middleware.GlobalSecurityLogger != nil {
			middleware.GlobalSecurityLogger.LogFailedAuth(c.ClientIP(), "missing token")
		}
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	// Cheap format check before the signature is verified
	if !middleware.NewInputValidator().ValidateToken(token) {
		if middleware.GlobalSecurityLogger != nil {
			middleware.GlobalSecurityLogger.LogFailedAuth(c.ClientIP(), "malformed token")
		}
		c.JSON(http.StatusUnauthorized, gin.H{"error": "malformed token"})
		return
	}

	claims, err := services.ValidateToken(token)
	if err != nil {
		if middleware.GlobalSecurityLogger != nil {
			middleware.GlobalSecurityLogger.LogFailedAuth(c.ClientIP(), "invalid token: "+err.Error())
		}
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token: " + err.Error()})
		return
	}

	if middleware.GlobalSecurityLogger != nil {
		middleware.GlobalSecurityLogger.LogWebSocketConnected(c.ClientIP(), claims.ClientName)
	}
	log.Printf("[WS] New connection from %s with token for client: %s", c.ClientIP(), claims.ClientName)

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("[WS] Upgrade error: %v", err)
		return
	}

	clientID := c.ClientIP() + "-" + claims.ClientName
	client := &services.ClientConnection{
		ID:    clientID,
		IP:    c.ClientIP(),
		Conn:  ws,
		Send:  make(chan services.WebSocketMessage, 256),
		Close: make(chan bool),
	}

	hub := services.GetWebSocketHub()
	hub.Register(client)

	go readPump(client, hub)
	go writePump(client, hub)
}

// readPump reads messages from the WebSocket client
func readPump(client *services.ClientConnection, hub *services.WebSocketHub) {
	defer func() {
		hub.Unregister(client.ID)
		client.Conn.Close()
		if middleware.GlobalSecurityLogger != nil {
			middleware.GlobalSecurityLogger.LogWebSocketDisconnected(client.IP, client.ID)
		}
	}()

	client.Conn.SetPongHandler(func(string) error {
		return nil
	})

	for {
		var msg services.WebSocketMessage
		err := client.Conn.ReadJSON(&msg)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[WS] WebSocket error: %v", err)
			}
			return
		}

		switch msg.Type {
		case "auth":
			// Client re-authenticating over the open connection
			if msg.Token != "" {
				claims, err := services.ValidateToken(msg.Token)
				if err != nil {
					log.Printf("[WS-AUTH] ❌ Invalid token from client %s: %v", client.ID, err)
					if middleware.GlobalSecurityLogger != nil {
						middleware.GlobalSecurityLogger.LogFailedAuth(client.ID, "websocket auth message: "+err.Error())
					}
					select {
					case client.Send <- services.WebSocketMessage{
						Type: "auth_error",
						Data: map[string]interface{}{"error": "invalid token"},
					}:
					case <-client.Close:
						return
					}
				} else {
					log.Printf("[WS-AUTH] ✓ Client %s authenticated via WebSocket message: %s", client.ID, claims.ClientName)
					select {
					case client.Send <- services.WebSocketMessage{
						Type: "auth_success",
						Data: map[string]interface{}{"client": claims.ClientName},
					}:
					case <-client.Close:
						return
					}
				}
			}

		case "ping":
			pong := services.WebSocketMessage{
				Type: "pong",
			}
			select {
			case client.Send <- pong:
			case <-client.Close:
				return
			default:
				return
			}

		case "subscribe":
			// Already subscribed on connect
			log.Printf("[WS] Client %s subscribed to updates", client.ID)

		case "unsubscribe":
			return

		default:
			log.Printf("[WS] Unknown message type: %s", msg.Type)
		}
	}
}

// writePump writes messages to the WebSocket client
func writePump(client *services.ClientConnection, hub *services.WebSocketHub) {
	defer func() {
		client.Conn.Close()
	}()

	for {
		select {
		case msg, ok := <-client.Send:
			if !ok {
				client.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			err := client.Conn.WriteJSON(msg)
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					log.Printf("[WS] Write error: %v", err)
				}
				return
			}

		case <-client.Close:
			client.Conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}

// HandleGetToken generates a new JWT token
func HandleGetToken(c *gin.Context) {
	clientName := c.DefaultQuery("client_name", "nabz-client")

	validator := middleware.NewInputValidator()
	if !validator.ValidateClientName(clientName) {
		if middleware.GlobalSecurityLogger != nil {
			middleware.GlobalSecurityLogger.LogFailedAuth(c.ClientIP(), "invalid client name format")
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid client name format"})
		return
	}

	token, err := services.GenerateToken(clientName)
	if err != nil {
		if middleware.GlobalSecurityLogger != nil {
			middleware.GlobalSecurityLogger.LogFailedAuth(c.ClientIP(), "token generation failed")
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}

	if middleware.GlobalSecurityLogger != nil {
		middleware.GlobalSecurityLogger.LogTokenGenerated(c.ClientIP(), clientName)
	}

	expiry := services.GetTokenExpiry()
	protocol := "ws"
	if strings.HasPrefix(c.Request.Host, "https") {
		protocol = "wss"
	}

	c.JSON(http.StatusOK, gin.H{
		"token":  token,
		"url":    protocol + "://" + c.Request.Host + "/ws?token=" + token,
		"expiry": expiry,
		"client": clientName,
	})
}

// HandleTokenStatus checks the current token status
func HandleTokenStatus(c *gin.Context) {
	var token string

	// Authorization header first, query parameter as fallback
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		if len(authHeader) > 7 && authHeader[:7] == "Bearer " {
			token = authHeader[7:]
		}
	}
	if token == "" {
		token = c.Query("token")
	}

	if token == "" {
		if middleware.GlobalSecurityLogger != nil {
			middleware.GlobalSecurityLogger.LogFailedAuth(c.ClientIP(), "missing token in header or query")
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "token required in Authorization header or query parameter"})
		return
	}

	claims, err := services.ValidateToken(token)
	if err != nil {
		if middleware.GlobalSecurityLogger != nil {
			middleware.GlobalSecurityLogger.LogFailedAuth(c.ClientIP(), "invalid token: "+err.Error())
		}
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	log.Printf("[AUTH] ✓ Token valid for client: %s from %s", claims.ClientName, c.ClientIP())
	c.JSON(http.StatusOK, gin.H{
		"valid":      true,
		"client":     claims.ClientName,
		"expires_at": claims.ExpiresAt.Time,
		"issued_at":  claims.IssuedAt.Time,
	})
}
