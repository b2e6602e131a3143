package handlers_test

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"commerce/internal/config"
	"commerce/internal/http/handlers"
	"commerce/internal/repos"
)

func authApp(t *testing.T) *fiber.App {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	cfg := config.Config{JWTSecret: "test-secret", JWTTTL: time.Hour}
	deps := handlers.NewAuthDeps(db, cfg)

	app := fiber.New()
	api := app.Group("/api")
	api.Post("/auth/register", deps.AuthHandler.Register)
	api.Post("/auth/login", deps.AuthHandler.Login)
	api.Get("/auth/validate", deps.AuthHandler.Validate)
	api.Get("/users/:id", handlers.RequireUser(deps.AuthService), deps.AuthHandler.GetUser)
	return app
}

func postJSON(t *testing.T, app *fiber.App, path, body, bearer string) (int, []byte) {
	t.Helper()
	req := httptest.NewRequest("POST", path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", bearer)
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request %s: %v", path, err)
	}
	b, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, b
}

func getJSON(t *testing.T, app *fiber.App, path, bearer string) (int, []byte) {
	t.Helper()
	req := httptest.NewRequest("GET", path, nil)
	if bearer != "" {
		req.Header.Set("Authorization", bearer)
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request %s: %v", path, err)
	}
	b, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, b
}

func TestAuthAPI_RegisterLoginValidateRoundTrip(t *testing.T) {
	app := authApp(t)

	code, body := postJSON(t, app, "/api/auth/register",
		`{"username":"dana","email":"dana@example.com","password":"s3cret!"}`, "")
	if code != 200 {
		t.Fatalf("register: want 200, got %d (%s)", code, body)
	}
	var registered struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &registered); err != nil || registered.ID == "" {
		t.Fatalf("bad register body: %s", body)
	}

	code, body = postJSON(t, app, "/api/auth/login",
		`{"username":"dana","password":"s3cret!"}`, "")
	if code != 200 {
		t.Fatalf("login: want 200, got %d (%s)", code, body)
	}
	var login struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(body, &login); err != nil || login.Token == "" {
		t.Fatalf("bad login body: %s", body)
	}

	code, body = getJSON(t, app, "/api/auth/validate", "Bearer "+login.Token)
	if code != 200 {
		t.Fatalf("validate: want 200, got %d (%s)", code, body)
	}
	var identity struct {
		ID       string `json:"id"`
		Username string `json:"username"`
	}
	if err := json.Unmarshal(body, &identity); err != nil {
		t.Fatal(err)
	}
	if identity.ID != registered.ID || identity.Username != "dana" {
		t.Fatalf("bad identity: %s", body)
	}

	code, _ = getJSON(t, app, "/api/users/"+registered.ID, "Bearer "+login.Token)
	if code != 200 {
		t.Fatalf("get user: want 200, got %d", code)
	}
	code, _ = getJSON(t, app, "/api/users/no-such-user", "Bearer "+login.Token)
	if code != 404 {
		t.Fatalf("unknown user: want 404, got %d", code)
	}
}

func TestAuthAPI_ValidateRejectsBadBearer(t *testing.T) {
	app := authApp(t)

	code, _ := getJSON(t, app, "/api/auth/validate", "Bearer bogus")
	if code != 401 {
		t.Fatalf("want 401, got %d", code)
	}
	code, _ = getJSON(t, app, "/api/users/u-1", "")
	if code != 401 {
		t.Fatalf("missing bearer: want 401, got %d", code)
	}
}

func TestAuthAPI_BadLogin(t *testing.T) {
	app := authApp(t)

	postJSON(t, app, "/api/auth/register",
		`{"username":"dana","email":"dana@example.com","password":"s3cret!"}`, "")
	code, _ := postJSON(t, app, "/api/auth/login",
		`{"username":"dana","password":"wrong"}`, "")
	if code != 401 {
		t.Fatalf("want 401, got %d", code)
	}
}
