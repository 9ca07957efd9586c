package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rfujimura/koden-tracker/constants"
	"github.com/rfujimura/koden-tracker/internal/common"
	"github.com/rfujimura/koden-tracker/internal/extract"
)

type extractRequest struct {
	Faces     map[string]string            `json:"faces"`
	Fragments []extract.PositionedFragment `json:"fragments"`
}

// extractFields runs the extraction pipeline over already-recognized face
// texts without persisting anything. Clients that run recognition
// themselves use this to pre-fill the entry form.
func (s *Server) extractFields(c *gin.Context) {
	var req extractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, common.InvalidArgumentErrorf("invalid body: %v", err))
		return
	}
	if len(req.Faces) == 0 {
		s.respondError(c, common.InvalidArgumentErrorf("faces is required"))
		return
	}

	faceText := extract.FaceText{}
	for key, text := range req.Faces {
		face, ok := constants.ParseFace(key)
		if !ok {
			s.respondError(c, common.InvalidArgumentErrorf("unknown face %q", key))
			return
		}
		faceText[face] = text
	}

	result, trace := extract.ExtractDetailed(faceText)
	dtype := extract.ClassifyDonationType(faceText[constants.FaceFront], req.Fragments)

	c.JSON(http.StatusOK, gin.H{
		"extraction":    result,
		"donation_type": dtype,
		"sources":       trace.Sources,
	})
}
