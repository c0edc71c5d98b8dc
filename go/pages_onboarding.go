package communityserver

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	onboardingdomain "github.com/Apurer/pet-community/internal/domains/onboarding/domain"
	onboardingports "github.com/Apurer/pet-community/internal/domains/onboarding/ports"
	pettypes "github.com/Apurer/pet-community/internal/domains/pets/application/types"
	userdomain "github.com/Apurer/pet-community/internal/domains/users/domain"
	userports "github.com/Apurer/pet-community/internal/domains/users/ports"
	sharederrors "github.com/Apurer/pet-community/internal/shared/errors"
)

const (
	msgOnboardingIncomplete = "Your onboarding data is incomplete. Please finish all steps."
	msgUsernameTaken        = "That username is already taken. Please pick another username."
	msgSaveFailed           = "Unable to save your profile. Please try again."
	msgProfileCreated       = "Profile created successfully."
)

type credentialsPage struct {
	Username string
}

type petsPage struct {
	Pets []pettypes.DraftRow
}

func stepPath(step int) string {
	return fmt.Sprintf("/onboarding/step/%d", step)
}

// gate sends the visitor back to the first earlier step that is missing data.
func (s *Server) gate(step int) gin.HandlerFunc {
	return func(c *gin.Context) {
		target, err := s.svc.Onboarding.Gate(c.Request.Context(), draftKey(c), step)
		if err != nil {
			s.fail(c, "load onboarding draft failed", err)
			return
		}
		if target != 0 {
			s.redirect(c, stepPath(target))
		}
	}
}

// formErrors extracts display messages from a rejected submission. Any
// other error renders the error page and reports false.
func (s *Server) formErrors(c *gin.Context, err error, msg string) ([]string, bool) {
	if errors.Is(err, sharederrors.ErrInvalidForm) {
		return sharederrors.Messages(err), true
	}
	s.fail(c, msg, err)
	return nil, false
}

func (s *Server) draft(c *gin.Context) (*onboardingdomain.Draft, bool) {
	draft, err := s.svc.Onboarding.Draft(c.Request.Context(), draftKey(c))
	if err != nil {
		s.fail(c, "load onboarding draft failed", err)
		return nil, false
	}
	return draft, true
}

func (s *Server) ShowCredentials(c *gin.Context) {
	draft, ok := s.draft(c)
	if !ok {
		return
	}
	s.render(c, http.StatusOK, "step1", "Onboarding - Step 1", nil, credentialsPage{Username: draft.Username})
}

func (s *Server) SubmitCredentials(c *gin.Context) {
	in := onboardingports.Credentials{
		Username:     c.PostForm("username"),
		Password:     c.PostForm("password"),
		Confirmation: c.PostForm("confirm_password"),
	}
	err := s.svc.Onboarding.SubmitCredentials(c.Request.Context(), draftKey(c), in)
	if err == nil {
		s.redirect(c, stepPath(2))
		return
	}
	if errs, ok := s.formErrors(c, err, "save onboarding credentials failed"); ok {
		s.render(c, http.StatusUnprocessableEntity, "step1", "Onboarding - Step 1", errs, credentialsPage{Username: in.Username})
	}
}

func (s *Server) ShowPersonal(c *gin.Context) {
	draft, ok := s.draft(c)
	if !ok {
		return
	}
	profile := userdomain.Profile{FullName: draft.FullName, Email: draft.Email, Phone: draft.Phone}
	s.render(c, http.StatusOK, "step2", "Onboarding - Step 2", nil, profile)
}

func (s *Server) SubmitPersonal(c *gin.Context) {
	profile := userdomain.Profile{
		FullName: c.PostForm("full_name"),
		Email:    c.PostForm("email"),
		Phone:    c.PostForm("phone"),
	}
	err := s.svc.Onboarding.SubmitPersonal(c.Request.Context(), draftKey(c), profile)
	if err == nil {
		s.redirect(c, stepPath(3))
		return
	}
	if errs, ok := s.formErrors(c, err, "save onboarding profile failed"); ok {
		s.render(c, http.StatusUnprocessableEntity, "step2", "Onboarding - Step 2", errs, profile.Normalize())
	}
}

func (s *Server) ShowProfilePhoto(c *gin.Context) {
	draft, ok := s.draft(c)
	if !ok {
		return
	}
	s.render(c, http.StatusOK, "step3", "Onboarding - Step 3", nil, draft)
}

func (s *Server) SubmitProfilePhoto(c *gin.Context) {
	var errs []string
	status := http.StatusUnprocessableEntity
	if msg, ok := s.parseMultipart(c); !ok {
		errs, status = []string{msg}, http.StatusRequestEntityTooLarge
	} else {
		err := s.svc.Onboarding.SubmitProfilePhoto(c.Request.Context(), draftKey(c), formFile(c, "profile_photo"))
		if err == nil {
			s.redirect(c, stepPath(4))
			return
		}
		if errs, ok = s.formErrors(c, err, "save onboarding photo failed"); !ok {
			return
		}
	}
	draft, ok := s.draft(c)
	if !ok {
		return
	}
	s.render(c, status, "step3", "Onboarding - Step 3", errs, draft)
}

func (s *Server) ShowPets(c *gin.Context) {
	draft, ok := s.draft(c)
	if !ok {
		return
	}
	s.render(c, http.StatusOK, "step4", "Onboarding - Step 4", nil, petsPage{Pets: withBlankRow(pettypes.DraftsFromAccepted(draft.Pets))})
}

func (s *Server) SubmitPets(c *gin.Context) {
	if msg, ok := s.parseMultipart(c); !ok {
		draft, ok := s.draft(c)
		if !ok {
			return
		}
		page := petsPage{Pets: withBlankRow(pettypes.DraftsFromAccepted(draft.Pets))}
		s.render(c, http.StatusRequestEntityTooLarge, "step4", "Onboarding - Step 4", []string{msg}, page)
		return
	}
	result, err := s.svc.Onboarding.SubmitPets(c.Request.Context(), draftKey(c), petRows(c))
	if err != nil {
		s.fail(c, "save onboarding pets failed", err)
		return
	}
	if !result.OK() {
		s.render(c, http.StatusUnprocessableEntity, "step4", "Onboarding - Step 4", result.Errors, petsPage{Pets: withBlankRow(result.Drafts)})
		return
	}
	s.redirect(c, stepPath(5))
}

func (s *Server) ShowReview(c *gin.Context) {
	draft, ok := s.draft(c)
	if !ok {
		return
	}
	s.render(c, http.StatusOK, "step5", "Onboarding - Step 5", nil, draft)
}

// CompleteOnboarding registers the member from the finished draft and logs
// them in.
func (s *Server) CompleteOnboarding(c *gin.Context) {
	ctx := c.Request.Context()
	user, err := s.svc.Onboarding.Complete(ctx, draftKey(c))
	switch {
	case errors.Is(err, onboardingdomain.ErrIncomplete):
		s.redirectWithFlash(c, userdomain.FlashDanger, msgOnboardingIncomplete, stepPath(1))
		return
	case errors.Is(err, userports.ErrUsernameTaken):
		s.redirectWithFlash(c, userdomain.FlashDanger, msgUsernameTaken, stepPath(1))
		return
	case err != nil && user == nil:
		s.opts.Logger.ErrorContext(ctx, "complete onboarding failed", slog.String("error", err.Error()))
		s.redirectWithFlash(c, userdomain.FlashDanger, msgSaveFailed, stepPath(onboardingdomain.FinalStep))
		return
	case err != nil:
		// The member exists; only the draft cleanup failed.
		s.opts.Logger.WarnContext(ctx, "complete onboarding left a draft behind", slog.Int64("user_id", user.ID), slog.String("error", err.Error()))
	}
	visitOf(c).session.SignIn(user.ID)
	s.redirectWithFlash(c, userdomain.FlashSuccess, msgProfileCreated, "/dashboard")
}

func withBlankRow(rows []pettypes.DraftRow) []pettypes.DraftRow {
	if len(rows) == 0 {
		return []pettypes.DraftRow{{}}
	}
	return rows
}
