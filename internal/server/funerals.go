package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rfujimura/koden-tracker/constants"
	"github.com/rfujimura/koden-tracker/internal/common"
	"github.com/rfujimura/koden-tracker/internal/entity"
)

type funeralRequest struct {
	FamilyName   string  `json:"family_name"`
	DeceasedName string  `json:"deceased_name"`
	Relationship *string `json:"relationship"`
	FuneralDate  string  `json:"funeral_date"`
	Venue        *string `json:"venue"`
	Notes        string  `json:"notes"`
	Status       string  `json:"status"`
}

func (r *funeralRequest) toEntity() (*entity.Funeral, error) {
	v := common.NewValidator()
	v.Field("family_name", r.FamilyName, common.Required, common.MaxLength(120))
	v.Field("deceased_name", r.DeceasedName, common.Required, common.MaxLength(120))
	v.Field("funeral_date", r.FuneralDate, common.Required)
	if err := v.Error(); err != nil {
		return nil, err
	}

	date, err := time.Parse("2006-01-02", r.FuneralDate)
	if err != nil {
		return nil, common.InvalidArgumentErrorf("funeral_date invalid (YYYY-MM-DD): %v", err)
	}
	status := constants.EventStatus(r.Status)
	if r.Status != "" && !status.Valid() {
		return nil, common.InvalidArgumentErrorf("status must be one of PLANNED, ACTIVE, COMPLETED")
	}

	return &entity.Funeral{
		FamilyName:   r.FamilyName,
		DeceasedName: r.DeceasedName,
		Relationship: r.Relationship,
		FuneralDate:  date,
		Venue:        r.Venue,
		Notes:        r.Notes,
		Status:       status,
	}, nil
}

func (s *Server) createFuneral(c *gin.Context) {
	var req funeralRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, common.InvalidArgumentErrorf("invalid body: %v", err))
		return
	}
	f, err := req.toEntity()
	if err != nil {
		s.respondError(c, err)
		return
	}
	created, err := s.funerals.Create(c.Request.Context(), f)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (s *Server) listFunerals(c *gin.Context) {
	all, err := s.funerals.List(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	if all == nil {
		all = []*entity.Funeral{}
	}
	c.JSON(http.StatusOK, gin.H{"funerals": all})
}

func (s *Server) getFuneral(c *gin.Context) {
	id, ok := s.pathUUID(c, "id")
	if !ok {
		return
	}
	f, err := s.funerals.Get(c.Request.Context(), id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, f)
}

func (s *Server) updateFuneral(c *gin.Context) {
	id, ok := s.pathUUID(c, "id")
	if !ok {
		return
	}
	var req funeralRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, common.InvalidArgumentErrorf("invalid body: %v", err))
		return
	}
	f, err := req.toEntity()
	if err != nil {
		s.respondError(c, err)
		return
	}
	f.ID = id
	if f.Status == "" {
		current, err := s.funerals.Get(c.Request.Context(), id)
		if err != nil {
			s.respondError(c, err)
			return
		}
		f.Status = current.Status
	}
	updated, err := s.funerals.Update(c.Request.Context(), f)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (s *Server) deleteFuneral(c *gin.Context) {
	id, ok := s.pathUUID(c, "id")
	if !ok {
		return
	}
	if err := s.funerals.Delete(c.Request.Context(), id); err != nil {
		s.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
