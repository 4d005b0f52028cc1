package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/paperbark/kindwords/internal/auth"
	"github.com/paperbark/kindwords/internal/database"
	"github.com/paperbark/kindwords/internal/model"
	"github.com/paperbark/kindwords/internal/session"
	"github.com/paperbark/kindwords/internal/store"
)

func setupAuthTest(t *testing.T) (*session.Manager, *store.UserStore, *model.User) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	users := store.NewUserStore(db)
	hash, err := bcrypt.GenerateFromPassword([]byte("password1"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user, err := users.Create("alice@example.com", string(hash))
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	return session.NewManager([]byte("test-secret"), false), users, user
}

func requireAuthHandler(sessions *session.Manager, users *store.UserStore, saw *auth.Context) http.Handler {
	return RequireAuth(sessions, users)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if saw != nil {
			*saw, _ = auth.FromContext(r.Context())
		}
		w.WriteHeader(http.StatusOK)
	}))
}

func TestRequireAuthNoCookie(t *testing.T) {
	sessions, users, _ := setupAuthTest(t)
	handler := requireAuthHandler(sessions, users, nil)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestRequireAuthBadToken(t *testing.T) {
	sessions, users, _ := setupAuthTest(t)
	handler := requireAuthHandler(sessions, users, nil)

	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: "garbage"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestRequireAuthValidToken(t *testing.T) {
	sessions, users, user := setupAuthTest(t)

	var saw auth.Context
	handler := requireAuthHandler(sessions, users, &saw)

	token, err := sessions.Issue(user.ID)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: token})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if saw.UserID != user.ID {
		t.Errorf("context user = %q, want %q", saw.UserID, user.ID)
	}
	if saw.Email != "alice@example.com" {
		t.Errorf("context email = %q, want %q", saw.Email, "alice@example.com")
	}
}

func TestRequireAuthDeletedUser(t *testing.T) {
	sessions, users, user := setupAuthTest(t)
	handler := requireAuthHandler(sessions, users, nil)

	token, err := sessions.Issue(user.ID)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	if _, err := users.Delete(user.ID); err != nil {
		t.Fatalf("delete user: %v", err)
	}

	// The token is still cryptographically valid; the dead user lookup
	// is what rejects it.
	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: token})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}
