package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dkeye/Scribe/internal/core"
	"github.com/dkeye/Scribe/internal/domain"
)

type roomsHandler struct {
	rooms core.RoomManager
}

func (h *roomsHandler) list(c *gin.Context) {
	rooms := h.rooms.List()
	if rooms == nil {
		rooms = []core.RoomInfo{}
	}
	c.JSON(http.StatusOK, gin.H{"rooms": rooms})
}

func (h *roomsHandler) get(c *gin.Context) {
	room, ok := h.rooms.Get(domain.RoomID(c.Param("id")))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
		return
	}
	snap, ok := room.Snapshot()
	if !ok || len(snap.Members) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
		return
	}
	c.JSON(http.StatusOK, snap)
}
