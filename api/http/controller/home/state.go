package home

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"thistoken/indexer/api/common"
	"thistoken/indexer/chain"
	"thistoken/indexer/codes"
	"thistoken/indexer/coord"
	"thistoken/indexer/game"
)

var session *chain.Session

// SetSession wires the running replay session into the read surface.
func SetSession(s *chain.Session) {
	session = s
}

func respond(c *gin.Context, code int, msg string, data interface{}) {
	c.JSON(http.StatusOK, common.Response{
		Code:      code,
		Msg:       msg,
		Timestamp: time.Now().Unix(),
		Data:      data,
	})
}

// Map returns the map descriptor and current checkpoint.
func Map(c *gin.Context) {
	if session == nil {
		respond(c, codes.CODE_ERR_UNEXPECTED, "no replay session", nil)
		return
	}
	doc := session.MapDoc()
	respond(c, codes.CODE_SUCCESS, "success", gin.H{
		"name":        doc.Name,
		"networkId":   doc.NetworkID,
		"address":     doc.Address,
		"blockNumber": doc.BlockNumber,
		"width":       doc.Width,
		"height":      doc.Height,
	})
}

// State returns the full materialized view as of the last folded block.
func State(c *gin.Context) {
	if session == nil {
		respond(c, codes.CODE_ERR_UNEXPECTED, "no replay session", nil)
		return
	}
	doc := session.MapDoc()
	snap := session.World().Snapshot(doc.NetworkID, doc.Name, doc.BlockNumber, 0)
	respond(c, codes.CODE_SUCCESS, "success", gin.H{
		"cities":  snap.Cities,
		"players": snap.Players,
		"cells":   snap.Cells,
	})
}

// Cell returns the occupancy of one coordinate. The :coord parameter
// accepts the packed decimal or hex form.
func Cell(c *gin.Context) {
	if session == nil {
		respond(c, codes.CODE_ERR_UNEXPECTED, "no replay session", nil)
		return
	}
	cell, err := coord.Parse(c.Param("coord"))
	if err != nil {
		respond(c, codes.CODE_ERR_PARAMS, err.Error(), nil)
		return
	}
	doc := session.MapDoc()
	snap := session.World().Snapshot(doc.NetworkID, doc.Name, doc.BlockNumber, 0)
	occupancy, ok := snap.Cells[game.Key(cell)]
	if !ok {
		respond(c, codes.CODE_ERR_NOT_FOUND, "cell has no recorded occupancy", nil)
		return
	}
	respond(c, codes.CODE_SUCCESS, "success", gin.H{
		"coord": cell,
		"x":     cell.X(),
		"y":     cell.Y(),
		"cell":  occupancy,
	})
}
