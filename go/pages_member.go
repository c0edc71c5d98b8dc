package communityserver

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	accounttypes "github.com/Apurer/pet-community/internal/domains/accounts/application/types"
	accountdomain "github.com/Apurer/pet-community/internal/domains/accounts/domain"
	petmapper "github.com/Apurer/pet-community/internal/domains/pets/adapters/http/mapper"
	petdomain "github.com/Apurer/pet-community/internal/domains/pets/domain"
	userdomain "github.com/Apurer/pet-community/internal/domains/users/domain"
	userports "github.com/Apurer/pet-community/internal/domains/users/ports"
	sharederrors "github.com/Apurer/pet-community/internal/shared/errors"
)

const (
	msgProfileUpdated = "Profile updated successfully."
	msgProfileDeleted = "Your profile has been deleted."
	msgDeleteFailed   = "Unable to delete your profile right now. Please try again."
)

type memberCard struct {
	User *userdomain.User
	Pets []*petdomain.Pet
}

type dashboardPage struct {
	User        *userdomain.User
	DisplayName string
	Pets        []*petdomain.Pet
	Members     []memberCard
}

// Dashboard shows the member's own pets and everyone else's.
func (s *Server) Dashboard(c *gin.Context) {
	ctx := c.Request.Context()
	user := visitOf(c).user
	members, err := s.svc.Users.Directory(ctx, user.ID)
	if err != nil {
		s.fail(c, "list members failed", err)
		return
	}
	pets, err := s.svc.Pets.List(ctx)
	if err != nil {
		s.fail(c, "list pets failed", err)
		return
	}
	byOwner := petmapper.GroupByOwner(pets)
	page := dashboardPage{
		User:        user,
		DisplayName: user.FullName,
		Pets:        byOwner[user.ID],
		Members:     make([]memberCard, 0, len(members)),
	}
	if page.DisplayName == "" {
		page.DisplayName = user.Username
	}
	for _, member := range members {
		page.Members = append(page.Members, memberCard{User: member, Pets: byOwner[member.ID]})
	}
	s.render(c, http.StatusOK, "dashboard", "Dashboard", nil, page)
}

func (s *Server) ShowEditProfile(c *gin.Context) {
	form, err := s.svc.Accounts.EditForm(c.Request.Context(), visitOf(c).user.ID)
	if err != nil {
		s.memberGone(c, err, "load profile failed")
		return
	}
	s.render(c, http.StatusOK, "edit_profile", "Edit Profile", nil, form)
}

// EditProfile applies the whole form or redisplays it with every problem.
func (s *Server) EditProfile(c *gin.Context) {
	ctx := c.Request.Context()
	userID := visitOf(c).user.ID
	if msg, ok := s.parseMultipart(c); !ok {
		form, err := s.svc.Accounts.EditForm(ctx, userID)
		if err != nil {
			s.memberGone(c, err, "load profile failed")
			return
		}
		s.render(c, http.StatusRequestEntityTooLarge, "edit_profile", "Edit Profile", []string{msg}, form)
		return
	}
	input := accounttypes.EditInput{
		Profile: userdomain.Profile{
			FullName: c.PostForm("full_name"),
			Email:    c.PostForm("email"),
			Phone:    c.PostForm("phone"),
		},
		NewPassword:            c.PostForm("new_password"),
		CarriedProfilePhotoRef: c.PostForm("existing_profile_photo"),
		ProfilePhoto:           formFile(c, "profile_photo"),
		Rows:                   petRows(c),
	}
	form, err := s.svc.Accounts.EditProfile(ctx, userID, input)
	switch {
	case err == nil:
		s.redirectWithFlash(c, userdomain.FlashSuccess, msgProfileUpdated, "/dashboard")
	case form == nil:
		s.memberGone(c, err, "edit profile failed")
	case errors.Is(err, accountdomain.ErrUpdateFailed):
		s.opts.Logger.ErrorContext(ctx, "edit profile failed", slog.Int64("user_id", userID), slog.String("error", err.Error()))
		s.render(c, http.StatusInternalServerError, "edit_profile", "Edit Profile", sharederrors.Messages(err), form)
	default:
		if errs, ok := s.formErrors(c, err, "edit profile failed"); ok {
			s.render(c, http.StatusUnprocessableEntity, "edit_profile", "Edit Profile", errs, form)
		}
	}
}

func (s *Server) ShowDeleteProfile(c *gin.Context) {
	s.render(c, http.StatusOK, "delete_profile", "Delete Profile", nil, struct{}{})
}

// DeleteProfile removes the member with their pets and photos, then logs
// them out.
func (s *Server) DeleteProfile(c *gin.Context) {
	ctx := c.Request.Context()
	v := visitOf(c)
	summary, err := s.svc.Accounts.DeleteAccount(ctx, v.user.ID)
	if err != nil {
		s.opts.Logger.ErrorContext(ctx, "delete profile failed", slog.Int64("user_id", v.user.ID), slog.String("error", err.Error()))
		s.render(c, http.StatusInternalServerError, "delete_profile", "Delete Profile", []string{msgDeleteFailed}, struct{}{})
		return
	}
	if summary != nil {
		s.opts.Logger.InfoContext(ctx, "profile deleted",
			slog.Int64("user_id", v.user.ID),
			slog.Int("pets", summary.Pets.Count),
			slog.Int("photos_removed", summary.PhotosRemoved),
		)
	}
	s.endOnboarding(c)
	v.session.SignOut()
	v.user = nil
	s.redirectWithFlash(c, userdomain.FlashInfo, msgProfileDeleted, "/")
}

// memberGone signs out a session whose member disappeared mid-request and
// renders the error page for anything else.
func (s *Server) memberGone(c *gin.Context, err error, msg string) {
	if errors.Is(err, userports.ErrNotFound) {
		s.endOnboarding(c)
		v := visitOf(c)
		v.session.SignOut()
		v.user = nil
		s.redirectWithFlash(c, userdomain.FlashWarning, msgSessionExpired, "/login")
		return
	}
	s.fail(c, msg, err)
}
