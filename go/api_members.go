package communityserver

import (
	"errors"
	"net/http"
	"os"
	"strconv"

	"github.com/gin-gonic/gin"

	petmapper "github.com/Apurer/pet-community/internal/domains/pets/adapters/http/mapper"
	usermapper "github.com/Apurer/pet-community/internal/domains/users/adapters/http/mapper"
)

// Get /api/v1/members
// Lists every other member with their pets, sorted by username
func (s *Server) ListMembers(c *gin.Context) {
	ctx := c.Request.Context()
	self := visitOf(c).user
	members, err := s.svc.Users.Directory(ctx, self.ID)
	if err != nil {
		s.respondMemberError(c, 0, err)
		return
	}
	pets, err := s.svc.Pets.List(ctx)
	if err != nil {
		s.respondMemberError(c, 0, err)
		return
	}
	c.JSON(http.StatusOK, usermapper.FromDomainUsers(members, petmapper.GroupByOwner(pets)))
}

// Get /api/v1/members/:memberId/pets
// Lists the pets of one member
func (s *Server) ListMemberPets(c *gin.Context) {
	id, ok := parseIDParam(c, "memberId")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	if _, err := s.svc.Users.GetByID(ctx, id); err != nil {
		s.respondMemberError(c, id, err)
		return
	}
	pets, err := s.svc.Pets.ListByOwner(ctx, id)
	if err != nil {
		s.respondMemberError(c, id, err)
		return
	}
	c.JSON(http.StatusOK, petmapper.FromDomainPets(pets))
}

// Get /uploads/*filepath
// Serves a stored photo
func (s *Server) ServePhoto(c *gin.Context) {
	path, err := s.svc.Photos.Path("uploads" + c.Param("filepath"))
	if err != nil {
		c.Status(http.StatusNotFound)
		return
	}
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		c.Status(http.StatusNotFound)
		return
	}
	c.Header("Cache-Control", "public, max-age=3600")
	c.File(path)
}

func parseIDParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		respondError(c, http.StatusBadRequest, errors.New(name+" must be a positive integer"))
		return 0, false
	}
	return id, true
}
