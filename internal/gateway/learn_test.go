package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"gradebook-extract/internal/config"
	xerrors "gradebook-extract/pkg/errors"

	"github.com/rs/zerolog"
)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.Disabled)
	os.Exit(m.Run())
}

func testServer(t *testing.T, handler http.Handler) (*httptest.Server, *config.Config) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := &config.Config{
		Learn: config.LearnConfig{
			BaseURL:        srv.URL,
			AuthEndpoint:   "/learn/api/auth/login",
			LogoutEndpoint: "/learn/api/auth/logout",
			Username:       "svc-extract",
			Password:       "secret",
			Timeout:        5 * time.Second,
		},
	}
	return srv, cfg
}

func loginHandler(mux *http.ServeMux) {
	mux.HandleFunc("/learn/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var creds map[string]string
		_ = json.NewDecoder(r.Body).Decode(&creds)
		if creds["username"] != "svc-extract" || creds["password"] != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"token": "tok-1", "expires_in": 3600})
	})
}

func TestClient_RequiresSessionForReads(t *testing.T) {
	_, cfg := testServer(t, http.NewServeMux())
	client := NewClient(cfg)

	if _, err := client.AllCourses(context.Background()); !errors.Is(err, xerrors.ErrNoSession) {
		t.Errorf("AllCourses without login = %v, want ErrNoSession", err)
	}
}

func TestClient_LogoutWithoutSessionIsNoop(t *testing.T) {
	// No server: a no-op logout must not even try the network.
	client := NewClient(&config.Config{Learn: config.LearnConfig{BaseURL: "http://127.0.0.1:1"}})
	if err := client.Logout(context.Background()); err != nil {
		t.Errorf("Logout on a never-opened gateway = %v, want nil", err)
	}
}

func TestClient_LoginThenFetchSendsBearerToken(t *testing.T) {
	mux := http.NewServeMux()
	loginHandler(mux)

	var gotAuth string
	mux.HandleFunc("/learn/api/courses", func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`[{"id":"pk1","courseId":"GO101"}]`))
	})

	_, cfg := testServer(t, mux)
	client := NewClient(cfg)
	if err := client.Login(context.Background()); err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	courses, err := client.AllCourses(context.Background())
	if err != nil {
		t.Fatalf("AllCourses failed: %v", err)
	}
	if gotAuth != "Bearer tok-1" {
		t.Errorf("Authorization = %q, want the session token", gotAuth)
	}
	if len(courses) != 1 || courses[0].CourseID != "GO101" {
		t.Errorf("courses = %+v", courses)
	}
}

func TestClient_BadCredentials(t *testing.T) {
	mux := http.NewServeMux()
	loginHandler(mux)

	_, cfg := testServer(t, mux)
	cfg.Learn.Password = "wrong"

	if err := NewClient(cfg).Login(context.Background()); !errors.Is(err, xerrors.ErrAuthenticationFailed) {
		t.Errorf("Login = %v, want ErrAuthenticationFailed", err)
	}
}

func TestClient_EmptyListsAreNeverNil(t *testing.T) {
	mux := http.NewServeMux()
	loginHandler(mux)
	mux.HandleFunc("/learn/api/courses/pk1/gradebook/scores", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	})
	mux.HandleFunc("/learn/api/courses/pk1/users", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`null`))
	})

	_, cfg := testServer(t, mux)
	client := NewClient(cfg)
	if err := client.Login(context.Background()); err != nil {
		t.Fatal(err)
	}

	scores, err := client.Scores(context.Background(), "pk1")
	if err != nil {
		t.Fatalf("Scores failed: %v", err)
	}
	if scores == nil {
		t.Error("empty score list decoded to nil")
	}

	users, err := client.Users(context.Background(), "pk1")
	if err != nil {
		t.Fatalf("Users failed: %v", err)
	}
	if users == nil {
		t.Error("null user list decoded to nil")
	}
}

func TestClient_EnrollmentsCarryRoleFilter(t *testing.T) {
	mux := http.NewServeMux()
	loginHandler(mux)

	var gotRoles []string
	mux.HandleFunc("/learn/api/courses/pk1/memberships", func(w http.ResponseWriter, r *http.Request) {
		gotRoles = r.URL.Query()["role"]
		_, _ = w.Write([]byte(`[]`))
	})

	_, cfg := testServer(t, mux)
	client := NewClient(cfg)
	if err := client.Login(context.Background()); err != nil {
		t.Fatal(err)
	}
	if _, err := client.Enrollments(context.Background(), "pk1", []string{"S"}); err != nil {
		t.Fatalf("Enrollments failed: %v", err)
	}

	if len(gotRoles) != 1 || gotRoles[0] != "S" {
		t.Errorf("role filter = %v, want [S]", gotRoles)
	}
}

func TestClient_ServerFaultSurfacesAsRemoteError(t *testing.T) {
	mux := http.NewServeMux()
	loginHandler(mux)
	mux.HandleFunc("/learn/api/courses", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, cfg := testServer(t, mux)
	client := NewClient(cfg)
	if err := client.Login(context.Background()); err != nil {
		t.Fatal(err)
	}

	_, err := client.AllCourses(context.Background())
	if !errors.Is(err, xerrors.ErrRemoteFault) {
		t.Errorf("AllCourses = %v, want ErrRemoteFault", err)
	}
	var remote xerrors.RemoteError
	if !errors.As(err, &remote) || remote.StatusCode != http.StatusInternalServerError {
		t.Errorf("err = %#v, want a RemoteError with the HTTP status", err)
	}
}

func TestClient_SecondLogoutIsNoop(t *testing.T) {
	mux := http.NewServeMux()
	loginHandler(mux)
	logouts := 0
	mux.HandleFunc("/learn/api/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		logouts++
		w.WriteHeader(http.StatusNoContent)
	})

	_, cfg := testServer(t, mux)
	client := NewClient(cfg)
	if err := client.Login(context.Background()); err != nil {
		t.Fatal(err)
	}

	if err := client.Logout(context.Background()); err != nil {
		t.Fatalf("first Logout failed: %v", err)
	}
	if err := client.Logout(context.Background()); err != nil {
		t.Fatalf("second Logout failed: %v", err)
	}
	if logouts != 1 {
		t.Errorf("logout endpoint hit %d times, want 1", logouts)
	}
}
