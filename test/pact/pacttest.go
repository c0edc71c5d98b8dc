//go:build pact
// +build pact

package pacttest

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

const (
	ProviderName = "pet-community-web"
	ConsumerName = "member-directory-widget"

	StateMemberWithPets = "member 1 is logged in and owns two pets"
	StateMemberMissing  = "member 1 is logged in and no member 404 exists"
	StateNoSession      = "no session is active"
)

const (
	ExistingMemberID int64 = 1
	MissingMemberID  int64 = 404
)

const (
	// SessionToken is bound to the logged in member by the provider states.
	SessionToken   = "pact-session-token"
	SessionCookie  = "community_session=" + SessionToken
	MemberUsername = "pact_member"
)

// ExamplePets are the rows the provider seeds for the logged in member.
func ExamplePets() []map[string]any {
	return []map[string]any{
		{"name": "Fluffy", "breed": "Persian", "age": 3, "photoUrl": "/uploads/pets/fluffy.png"},
		{"name": "Rex", "breed": "Beagle", "age": 5, "photoUrl": "/uploads/pets/rex.png"},
	}
}

// PactDir returns the workspace-level directory for generated pact files.
func PactDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "pacts")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact dir: %v", err)
	}
	return dir
}

// PactFile returns the canonical pact file path for the directory widget.
func PactFile(t testing.TB) string {
	t.Helper()
	return filepath.Join(PactDir(t), ConsumerName+"-"+ProviderName+".json")
}

// LogDir returns the log output directory for pact-go.
func LogDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "bin", "pact-logs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact log dir: %v", err)
	}
	return dir
}

// projectRoot walks up from this file to the workspace root.
func projectRoot(t testing.TB) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("cannot determine caller for pact paths")
	}
	return filepath.Clean(filepath.Join(filepath.Dir(file), "..", ".."))
}
