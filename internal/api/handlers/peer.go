package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/chapas/internal/auth"
	"github.com/playmatatu/chapas/internal/config"
	"github.com/playmatatu/chapas/internal/transport"
)

// PeerRole is the only role a peer token may carry to attach to this server.
const PeerRole = "connector"

// HandlePeerWebSocket hands an authenticated connector's link to the match
// waiting on peers. peers is nil when this server does not accept over
// websocket.
func HandlePeerWebSocket(cfg *config.Config, peers *transport.WSAcceptor) gin.HandlerFunc {
	return func(c *gin.Context) {
		if peers == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "not accepting peers"})
			return
		}

		role, err := auth.VerifyPeerToken(cfg.PeerSecret, c.Query("token"))
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid peer token"})
			return
		}
		if role != PeerRole {
			c.JSON(http.StatusForbidden, gin.H{"error": "peer role not allowed"})
			return
		}

		conn, err := transport.Upgrade(c.Writer, c.Request)
		if err != nil {
			log.Printf("[PEER] Upgrade error: %v", err)
			return
		}
		if !peers.Offer(conn) {
			log.Printf("[PEER] Refused peer from %s: no match waiting", c.ClientIP())
			conn.Close()
			return
		}
		log.Printf("[PEER] Peer connected from %s", c.ClientIP())
	}
}
