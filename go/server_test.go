package communityserver_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	communityserver "github.com/Apurer/pet-community/go"
	accountworkflows "github.com/Apurer/pet-community/internal/domains/accounts/adapters/workflows"
	accountapp "github.com/Apurer/pet-community/internal/domains/accounts/application"
	draftmemory "github.com/Apurer/pet-community/internal/domains/onboarding/adapters/memory"
	onboardingapp "github.com/Apurer/pet-community/internal/domains/onboarding/application"
	petmemory "github.com/Apurer/pet-community/internal/domains/pets/adapters/memory"
	petapp "github.com/Apurer/pet-community/internal/domains/pets/application"
	pettypes "github.com/Apurer/pet-community/internal/domains/pets/application/types"
	usermemory "github.com/Apurer/pet-community/internal/domains/users/adapters/memory"
	userapp "github.com/Apurer/pet-community/internal/domains/users/application"
	userdomain "github.com/Apurer/pet-community/internal/domains/users/domain"
	"github.com/Apurer/pet-community/internal/platform/uploads"
)

var pngBytes = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), make([]byte, 32)...)

type testApp struct {
	t      *testing.T
	root   string
	server *httptest.Server
	users  *userapp.Service
	pets   *petapp.Service
	photos *uploads.Store
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)
	root := t.TempDir()
	photos, err := uploads.New(root)
	require.NoError(t, err)

	users := userapp.NewService(usermemory.NewRepository(), usermemory.NewSessionStore())
	pets := petapp.NewService(petmemory.NewRepository(), photos)
	onboarding := onboardingapp.NewService(draftmemory.NewDraftStore(), users, pets, photos)
	deletions := accountworkflows.NewInlineDeletionWorkflows(accountapp.NewDeletionSteps(users, pets))
	accounts := accountapp.NewService(users, pets, photos, deletions)

	router, err := communityserver.NewRouterWithGinEngine(gin.New(), communityserver.Services{
		Users:      users,
		Onboarding: onboarding,
		Pets:       pets,
		Accounts:   accounts,
		Photos:     photos,
	}, communityserver.Options{})
	require.NoError(t, err)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return &testApp{t: t, root: root, server: server, users: users, pets: pets, photos: photos}
}

// browser keeps cookies and does not follow redirects.
type browser struct {
	app    *testApp
	client *http.Client
}

func (a *testApp) browser() *browser {
	jar, err := cookiejar.New(nil)
	require.NoError(a.t, err)
	return &browser{app: a, client: &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}}
}

type page struct {
	status   int
	location string
	body     string
	header   http.Header
}

func (b *browser) do(req *http.Request) page {
	b.app.t.Helper()
	resp, err := b.client.Do(req)
	require.NoError(b.app.t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(b.app.t, err)
	return page{status: resp.StatusCode, location: resp.Header.Get("Location"), body: string(body), header: resp.Header}
}

func (b *browser) get(path string) page {
	b.app.t.Helper()
	req, err := http.NewRequest(http.MethodGet, b.app.server.URL+path, nil)
	require.NoError(b.app.t, err)
	return b.do(req)
}

func (b *browser) post(path string, values url.Values) page {
	b.app.t.Helper()
	req, err := http.NewRequest(http.MethodPost, b.app.server.URL+path, strings.NewReader(values.Encode()))
	require.NoError(b.app.t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return b.do(req)
}

type field struct {
	name  string
	value string
}

type file struct {
	field    string
	filename string
	data     []byte
}

func (b *browser) postMultipart(path string, fields []field, files []file) page {
	b.app.t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for _, f := range fields {
		require.NoError(b.app.t, w.WriteField(f.name, f.value))
	}
	for _, f := range files {
		part, err := w.CreateFormFile(f.field, f.filename)
		require.NoError(b.app.t, err)
		_, err = part.Write(f.data)
		require.NoError(b.app.t, err)
	}
	require.NoError(b.app.t, w.Close())
	req, err := http.NewRequest(http.MethodPost, b.app.server.URL+path, &body)
	require.NoError(b.app.t, err)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return b.do(req)
}

// follow asserts a See Other redirect and loads its target.
func (b *browser) follow(p page, location string) page {
	b.app.t.Helper()
	require.Equal(b.app.t, http.StatusSeeOther, p.status, p.body)
	require.Equal(b.app.t, location, p.location)
	return b.get(location)
}

func (b *browser) signUp(username, fullName string) page {
	b.app.t.Helper()
	t := b.app.t
	p := b.post("/onboarding/step/1", url.Values{"username": {username}, "password": {"secret1"}, "confirm_password": {"secret1"}})
	require.Equal(t, "/onboarding/step/2", p.location, p.body)
	p = b.post("/onboarding/step/2", url.Values{"full_name": {fullName}, "email": {strings.ToLower(username) + "@example.com"}, "phone": {"+1 555 0100"}})
	require.Equal(t, "/onboarding/step/3", p.location, p.body)
	p = b.postMultipart("/onboarding/step/3", nil, []file{{"profile_photo", "me.png", pngBytes}})
	require.Equal(t, "/onboarding/step/4", p.location, p.body)
	p = b.postMultipart("/onboarding/step/4", []field{
		{"pet_name[]", "Rex"}, {"pet_breed[]", "Beagle"}, {"pet_age[]", "3"}, {"existing_pet_photo[]", ""},
	}, []file{{"pet_photo[0]", "rex.png", pngBytes}})
	require.Equal(t, "/onboarding/step/5", p.location, p.body)
	return b.post("/onboarding/complete", url.Values{})
}

func (a *testApp) seedMember(username, fullName string, petNames ...string) *userdomain.User {
	a.t.Helper()
	ctx := context.Background()
	hash, err := userdomain.HashPassword("secret1")
	require.NoError(a.t, err)
	user, err := a.users.Register(ctx, &userdomain.User{
		Username:        username,
		PasswordHash:    hash,
		FullName:        fullName,
		Email:           strings.ToLower(username) + "@example.com",
		Phone:           "555-0100",
		ProfilePhotoRef: "uploads/profiles/" + strings.ToLower(username) + ".png",
	})
	require.NoError(a.t, err)
	accepted := make([]pettypes.AcceptedPet, 0, len(petNames))
	for _, name := range petNames {
		accepted = append(accepted, pettypes.AcceptedPet{PetName: name, Breed: "Mixed", Age: 2, PhotoRef: "uploads/pets/" + strings.ToLower(name) + ".png"})
	}
	if len(accepted) > 0 {
		_, err = a.pets.CreateForOwner(ctx, user.ID, accepted)
		require.NoError(a.t, err)
	}
	return user
}

func (b *browser) logIn(username string) {
	b.app.t.Helper()
	p := b.post("/login", url.Values{"username": {username}, "password": {"secret1"}})
	require.Equal(b.app.t, "/dashboard", p.location, p.body)
}

func storedFiles(t *testing.T, root string, category string) []string {
	t.Helper()
	entries, err := os.ReadDir(filepath.Join(root, "uploads", category))
	if os.IsNotExist(err) {
		return nil
	}
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !strings.HasPrefix(e.Name(), ".") {
			names = append(names, e.Name())
		}
	}
	return names
}

func TestWelcomeSetsSessionCookie(t *testing.T) {
	b := newTestApp(t).browser()
	p := b.get("/")
	require.Equal(t, http.StatusOK, p.status)
	assert.Contains(t, p.body, "Join a Friendly Community for Pet Lovers")
	assert.Contains(t, p.body, "Get Started")
	assert.NotContains(t, p.body, "Logout")

	cookie := p.header.Get("Set-Cookie")
	assert.Contains(t, cookie, communityserver.SessionCookie+"=")
	assert.Contains(t, cookie, "HttpOnly")
	assert.Contains(t, cookie, "SameSite=Lax")
}

func TestOnboardingCreatesMemberAndLogsIn(t *testing.T) {
	app := newTestApp(t)
	b := app.browser()

	p := b.post("/onboarding/step/1", url.Values{"username": {"Alice_1"}, "password": {"secret1"}, "confirm_password": {"secret1"}})
	p = b.follow(p, "/onboarding/step/2")
	assert.Contains(t, p.body, "Step 2 of 5")

	p = b.post("/onboarding/step/2", url.Values{"full_name": {"  Alice Liddell "}, "email": {"alice@example.com"}, "phone": {"+1 (555) 0100"}})
	p = b.follow(p, "/onboarding/step/3")

	p = b.postMultipart("/onboarding/step/3", nil, []file{{"profile_photo", "me.png", pngBytes}})
	p = b.follow(p, "/onboarding/step/4")

	// The second row has no photo input at all, the third row's photo is numbered.
	p = b.postMultipart("/onboarding/step/4", []field{
		{"pet_name[]", "Rex"}, {"pet_breed[]", "Beagle"}, {"pet_age[]", "3"}, {"existing_pet_photo[]", ""},
		{"pet_name[]", ""}, {"pet_breed[]", ""}, {"pet_age[]", ""}, {"existing_pet_photo[]", ""},
		{"pet_name[]", "Tom"}, {"pet_breed[]", "Tabby"}, {"pet_age[]", "7"}, {"existing_pet_photo[]", ""},
	}, []file{
		{"pet_photo[0]", "rex.png", pngBytes},
		{"pet_photo[2]", "tom.png", pngBytes},
	})
	p = b.follow(p, "/onboarding/step/5")
	assert.Contains(t, p.body, "Alice_1")
	assert.Contains(t, p.body, "Alice Liddell")
	assert.Contains(t, p.body, "Rex")
	assert.Contains(t, p.body, "Tom")

	p = b.post("/onboarding/complete", url.Values{})
	p = b.follow(p, "/dashboard")
	require.Equal(t, http.StatusOK, p.status)
	assert.Contains(t, p.body, "Profile created successfully.")
	assert.Contains(t, p.body, "Welcome, Alice Liddell")
	assert.Contains(t, p.body, "Logout")

	assert.Len(t, storedFiles(t, app.root, "profiles"), 1)
	assert.Len(t, storedFiles(t, app.root, "pets"), 2)

	// The flash is shown once.
	p = b.get("/dashboard")
	assert.NotContains(t, p.body, "Profile created successfully.")

	// Members are sent away from the wizard.
	p = b.get("/onboarding/step/1")
	assert.Equal(t, "/dashboard", p.location)
}

func TestOnboardingGateRedirectsToFirstMissingStep(t *testing.T) {
	b := newTestApp(t).browser()
	p := b.get("/onboarding/step/4")
	assert.Equal(t, http.StatusSeeOther, p.status)
	assert.Equal(t, "/onboarding/step/1", p.location)

	b.post("/onboarding/step/1", url.Values{"username": {"bob"}, "password": {"secret1"}, "confirm_password": {"secret1"}})
	p = b.get("/onboarding/step/5")
	assert.Equal(t, "/onboarding/step/2", p.location)

	// Going back is always allowed.
	p = b.get("/onboarding/step/1")
	require.Equal(t, http.StatusOK, p.status)
	assert.Contains(t, p.body, `value="bob"`)
}

func TestOnboardingCredentialsRejected(t *testing.T) {
	app := newTestApp(t)
	app.seedMember("Taken", "Someone")
	b := app.browser()

	p := b.post("/onboarding/step/1", url.Values{"username": {"a!"}, "password": {"secret1"}, "confirm_password": {"secret1"}})
	assert.Equal(t, http.StatusUnprocessableEntity, p.status)
	assert.Contains(t, p.body, "Username must be 3-20 characters and use only letters, numbers, or underscores.")

	p = b.post("/onboarding/step/1", url.Values{"username": {"taken"}, "password": {"secret1"}, "confirm_password": {"secret1"}})
	assert.Equal(t, http.StatusUnprocessableEntity, p.status)
	assert.Contains(t, p.body, "That username is already taken. Please choose another.")
	assert.Contains(t, p.body, `value="taken"`)

	p = b.post("/onboarding/step/1", url.Values{"username": {"fresh"}, "password": {"secret1"}, "confirm_password": {"secret2"}})
	assert.Contains(t, p.body, "Password confirmation does not match.")
}

func TestOnboardingPetsRedisplayRows(t *testing.T) {
	app := newTestApp(t)
	b := app.browser()
	b.post("/onboarding/step/1", url.Values{"username": {"carol"}, "password": {"secret1"}, "confirm_password": {"secret1"}})
	b.post("/onboarding/step/2", url.Values{"full_name": {"Carol"}, "email": {"carol@example.com"}, "phone": {"5550100"}})
	b.postMultipart("/onboarding/step/3", nil, []file{{"profile_photo", "me.png", pngBytes}})

	p := b.postMultipart("/onboarding/step/4", []field{
		{"pet_name[]", "Rex"}, {"pet_breed[]", ""}, {"pet_age[]", "3"}, {"existing_pet_photo[]", ""},
	}, []file{{"pet_photo[0]", "rex.png", pngBytes}})
	require.Equal(t, http.StatusUnprocessableEntity, p.status)
	assert.Contains(t, p.body, "Pet #1: breed is required.")
	assert.Contains(t, p.body, "Please add at least one pet with complete details.")
	assert.Contains(t, p.body, `value="Rex"`)

	// The stored photo is carried by the redisplayed row.
	stored := storedFiles(t, app.root, "pets")
	require.Len(t, stored, 1)
	assert.Contains(t, p.body, `value="uploads/pets/`+stored[0]+`"`)

	p = b.postMultipart("/onboarding/step/4", []field{
		{"pet_name[]", "Rex"}, {"pet_breed[]", "Beagle"}, {"pet_age[]", "3"}, {"existing_pet_photo[]", "uploads/pets/" + stored[0]},
	}, nil)
	assert.Equal(t, "/onboarding/step/5", p.location, p.body)
}

func TestOnboardingPhotoRequired(t *testing.T) {
	b := newTestApp(t).browser()
	b.post("/onboarding/step/1", url.Values{"username": {"dave"}, "password": {"secret1"}, "confirm_password": {"secret1"}})
	b.post("/onboarding/step/2", url.Values{"full_name": {"Dave"}, "email": {"dave@example.com"}, "phone": {"5550100"}})

	p := b.postMultipart("/onboarding/step/3", []field{{"noop", "1"}}, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, p.status)
	assert.Contains(t, p.body, "Please upload a profile photo before continuing.")

	p = b.postMultipart("/onboarding/step/3", nil, []file{{"profile_photo", "notes.txt", []byte("plain text")}})
	assert.Equal(t, http.StatusUnprocessableEntity, p.status)
	assert.Contains(t, p.body, "Allowed image types: JPG, PNG, GIF, WEBP.")
}

func TestCompleteWithIncompleteDraft(t *testing.T) {
	b := newTestApp(t).browser()
	p := b.post("/onboarding/complete", url.Values{})
	p = b.follow(p, "/onboarding/step/1")
	assert.Contains(t, p.body, "Your onboarding data is incomplete. Please finish all steps.")
	assert.Contains(t, p.body, "alert-danger")
}

func TestCompleteWhenUsernameWasTakenMeanwhile(t *testing.T) {
	app := newTestApp(t)
	b := app.browser()
	b.post("/onboarding/step/1", url.Values{"username": {"erin"}, "password": {"secret1"}, "confirm_password": {"secret1"}})
	b.post("/onboarding/step/2", url.Values{"full_name": {"Erin"}, "email": {"erin@example.com"}, "phone": {"5550100"}})
	b.postMultipart("/onboarding/step/3", nil, []file{{"profile_photo", "me.png", pngBytes}})
	b.postMultipart("/onboarding/step/4", []field{
		{"pet_name[]", "Rex"}, {"pet_breed[]", "Beagle"}, {"pet_age[]", "3"},
	}, []file{{"pet_photo[0]", "rex.png", pngBytes}})

	app.seedMember("ERIN", "Other Erin")

	p := b.post("/onboarding/complete", url.Values{})
	p = b.follow(p, "/onboarding/step/1")
	assert.Contains(t, p.body, "That username is already taken. Please pick another username.")
}

func TestLoginAndLogout(t *testing.T) {
	app := newTestApp(t)
	app.seedMember("frank", "Frank Ocean", "Buddy")
	b := app.browser()

	p := b.post("/login", url.Values{"username": {"frank"}, "password": {"wrong"}})
	assert.Equal(t, http.StatusUnauthorized, p.status)
	assert.Contains(t, p.body, "Invalid username or password.")
	assert.Contains(t, p.body, `value="frank"`)

	p = b.post("/login", url.Values{"username": {"FRANK"}, "password": {"secret1"}})
	p = b.follow(p, "/dashboard")
	assert.Contains(t, p.body, "Welcome back!")
	assert.Contains(t, p.body, "Welcome, Frank Ocean")
	assert.Contains(t, p.body, "Buddy")

	p = b.get("/login")
	assert.Equal(t, "/dashboard", p.location)

	p = b.get("/logout")
	p = b.follow(p, "/login")
	assert.Contains(t, p.body, "You have been logged out.")

	p = b.get("/dashboard")
	p = b.follow(p, "/login")
	assert.Contains(t, p.body, "Please log in first.")
}

func TestDeletedMemberSessionExpires(t *testing.T) {
	app := newTestApp(t)
	user := app.seedMember("gina", "Gina")
	b := app.browser()
	b.logIn("gina")

	_, err := app.users.Delete(context.Background(), user.ID)
	require.NoError(t, err)

	p := b.get("/profile/edit")
	p = b.follow(p, "/login")
	assert.Contains(t, p.body, "Your session expired. Please log in again.")
	assert.Contains(t, p.body, "Get Started")
}

func TestDashboardListsOtherMembersByUsername(t *testing.T) {
	app := newTestApp(t)
	app.seedMember("zed", "Zed Z", "Zippy")
	app.seedMember("Hank", "Hank H")
	app.seedMember("bea", "Bea B", "Biscuit", "Bolt")
	b := app.browser()
	b.logIn("hank")

	p := b.get("/dashboard")
	require.Equal(t, http.StatusOK, p.status)
	assert.Contains(t, p.body, "You have not added any pets yet.")
	bea := strings.Index(p.body, "@bea")
	zed := strings.Index(p.body, "@zed")
	require.Positive(t, bea)
	require.Positive(t, zed)
	assert.Less(t, bea, zed)
	assert.NotContains(t, p.body, "@Hank")
	assert.Contains(t, p.body, "Biscuit")
	assert.Contains(t, p.body, "Zippy")
}

func TestEditProfile(t *testing.T) {
	app := newTestApp(t)
	b := app.browser()
	b.signUp("ivy", "Ivy Green")
	user, err := app.users.Authenticate(context.Background(), "ivy", "secret1")
	require.NoError(t, err)
	oldPhoto := user.ProfilePhotoRef

	p := b.get("/profile/edit")
	require.Equal(t, http.StatusOK, p.status)
	assert.Contains(t, p.body, `value="Ivy Green"`)
	assert.Contains(t, p.body, `value="Rex"`)

	pets, err := app.pets.ListByOwner(context.Background(), user.ID)
	require.NoError(t, err)
	require.Len(t, pets, 1)
	rexPhoto := pets[0].PhotoRef

	p = b.postMultipart("/profile/edit", []field{
		{"full_name", ""}, {"email", "nope"}, {"phone", "5550100"}, {"new_password", "abc"},
		{"existing_profile_photo", oldPhoto},
	}, nil)
	require.Equal(t, http.StatusUnprocessableEntity, p.status)
	for _, msg := range []string{
		"Name is required.",
		"Please enter a valid email address.",
		"New password must be at least 6 characters.",
		"Please add at least one pet with complete details.",
	} {
		assert.Contains(t, p.body, msg)
	}

	p = b.postMultipart("/profile/edit", []field{
		{"full_name", "Ivy Rose"}, {"email", "ivy@example.org"}, {"phone", "5550199"}, {"new_password", "newsecret"},
		{"existing_profile_photo", oldPhoto},
		{"pet_name[]", "Rex"}, {"pet_breed[]", "Beagle"}, {"pet_age[]", "4"}, {"existing_pet_photo[]", rexPhoto},
		{"pet_name[]", "Nova"}, {"pet_breed[]", "Husky"}, {"pet_age[]", "1"}, {"existing_pet_photo[]", ""},
	}, []file{
		{"profile_photo", "new.png", pngBytes},
		{"pet_photo[1]", "nova.png", pngBytes},
	})
	p = b.follow(p, "/dashboard")
	assert.Contains(t, p.body, "Profile updated successfully.")
	assert.Contains(t, p.body, "Welcome, Ivy Rose")
	assert.Contains(t, p.body, "Nova")

	updated, err := app.users.Authenticate(context.Background(), "ivy", "newsecret")
	require.NoError(t, err)
	assert.Equal(t, "ivy@example.org", updated.Email)
	assert.NotEqual(t, oldPhoto, updated.ProfilePhotoRef)

	_, err = os.Stat(filepath.Join(app.root, filepath.FromSlash(oldPhoto)))
	assert.True(t, os.IsNotExist(err), "superseded profile photo is removed")
	_, err = os.Stat(filepath.Join(app.root, filepath.FromSlash(rexPhoto)))
	assert.NoError(t, err, "kept pet photo stays")
}

func TestDeleteProfile(t *testing.T) {
	app := newTestApp(t)
	app.seedMember("judy", "Judy")
	b := app.browser()
	b.signUp("kate", "Kate")

	p := b.get("/profile/delete")
	require.Equal(t, http.StatusOK, p.status)
	assert.Contains(t, p.body, "Delete My Profile")

	p = b.post("/profile/delete", url.Values{})
	p = b.follow(p, "/")
	assert.Contains(t, p.body, "Your profile has been deleted.")

	_, err := app.users.Authenticate(context.Background(), "kate", "secret1")
	assert.ErrorIs(t, err, userapp.ErrAuthentication)
	pets, err := app.pets.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, pets)
	assert.Empty(t, storedFiles(t, app.root, "profiles"))
	assert.Empty(t, storedFiles(t, app.root, "pets"))

	p = b.get("/dashboard")
	assert.Equal(t, "/login", p.location)
}

func TestMembersAPI(t *testing.T) {
	app := newTestApp(t)
	lena := app.seedMember("lena", "Lena", "Luna")
	app.seedMember("mike", "Mike")
	b := app.browser()

	p := b.get("/api/v1/members")
	require.Equal(t, http.StatusUnauthorized, p.status)
	assert.Equal(t, "application/problem+json", p.header.Get("Content-Type"))

	b.logIn("mike")
	p = b.get("/api/v1/members")
	require.Equal(t, http.StatusOK, p.status)
	var members []struct {
		ID       int64  `json:"id"`
		Username string `json:"username"`
		PhotoURL string `json:"photoUrl"`
		Email    string `json:"email"`
		Pets     []struct {
			Name     string `json:"name"`
			PhotoURL string `json:"photoUrl"`
		} `json:"pets"`
	}
	require.NoError(t, json.Unmarshal([]byte(p.body), &members))
	require.Len(t, members, 1)
	assert.Equal(t, "lena", members[0].Username)
	assert.Equal(t, "/uploads/profiles/lena.png", members[0].PhotoURL)
	assert.Empty(t, members[0].Email)
	require.Len(t, members[0].Pets, 1)
	assert.Equal(t, "Luna", members[0].Pets[0].Name)
	assert.NotContains(t, p.body, "password")

	p = b.get("/api/v1/members/" + jsonID(lena.ID) + "/pets")
	require.Equal(t, http.StatusOK, p.status)
	assert.Contains(t, p.body, `"name":"Luna"`)

	p = b.get("/api/v1/members/999/pets")
	require.Equal(t, http.StatusNotFound, p.status)
	assert.Contains(t, p.body, `"type":"/problems/not-found"`)

	p = b.get("/api/v1/members/abc/pets")
	assert.Equal(t, http.StatusBadRequest, p.status)
}

func TestServePhoto(t *testing.T) {
	app := newTestApp(t)
	b := app.browser()
	b.signUp("nina", "Nina")
	user, err := app.users.Authenticate(context.Background(), "nina", "secret1")
	require.NoError(t, err)

	p := b.get("/" + user.ProfilePhotoRef)
	require.Equal(t, http.StatusOK, p.status)
	assert.Equal(t, string(pngBytes), p.body)

	p = b.get("/uploads/profiles/missing.png")
	assert.Equal(t, http.StatusNotFound, p.status)
	p = b.get("/uploads/%2e%2e/%2e%2e/etc/passwd")
	assert.Equal(t, http.StatusNotFound, p.status)
}

func TestUnknownRoute(t *testing.T) {
	b := newTestApp(t).browser()
	p := b.get("/nowhere")
	assert.Equal(t, http.StatusNotFound, p.status)
	assert.Contains(t, p.body, "The page you requested does not exist.")
}

func jsonID(id int64) string {
	raw, _ := json.Marshal(id)
	return string(raw)
}
