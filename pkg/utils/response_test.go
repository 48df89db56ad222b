package utils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func setupResponseTestApp() *fiber.App {
	app := fiber.New()

	app.Get("/success", func(c *fiber.Ctx) error {
		return Success(c, fiber.StatusCreated, fiber.Map{"id": "123"})
	})

	app.Get("/warnings", func(c *fiber.Ctx) error {
		return SuccessWithWarnings(c, fiber.StatusOK, fiber.Map{"id": "123"}, []string{"failed deleting blob a/b"})
	})

	app.Get("/no-warnings", func(c *fiber.Ctx) error {
		return SuccessWithWarnings(c, fiber.StatusOK, fiber.Map{"id": "123"}, nil)
	})

	app.Get("/error", func(c *fiber.Ctx) error {
		return Error(c, fiber.StatusBadRequest, "invalid input")
	})

	app.Get("/paginated", func(c *fiber.Ctx) error {
		return Paginated(c, []string{"a", "b"}, 2, 20, 45)
	})

	return app
}

func performResponseTestRequest(t *testing.T, app *fiber.App, path string) (int, map[string]any) {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, path, nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request to %s failed: %v", path, err)
	}
	defer resp.Body.Close()

	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("failed decoding %s response body: %v", path, err)
	}

	return resp.StatusCode, body
}

func TestResponseHelpers(t *testing.T) {
	app := setupResponseTestApp()

	t.Run("Success envelope", func(t *testing.T) {
		status, body := performResponseTestRequest(t, app, "/success")
		if status != fiber.StatusCreated {
			t.Fatalf("expected status %d, got %d", fiber.StatusCreated, status)
		}
		if success, _ := body["success"].(bool); !success {
			t.Fatalf("expected success=true, got %v", body["success"])
		}
		data, ok := body["data"].(map[string]any)
		if !ok || data["id"] != "123" {
			t.Fatalf("unexpected data %v", body["data"])
		}
	})

	t.Run("SuccessWithWarnings includes warnings", func(t *testing.T) {
		status, body := performResponseTestRequest(t, app, "/warnings")
		if status != fiber.StatusOK {
			t.Fatalf("expected status %d, got %d", fiber.StatusOK, status)
		}
		warnings, ok := body["warnings"].([]any)
		if !ok || len(warnings) != 1 || warnings[0] != "failed deleting blob a/b" {
			t.Fatalf("unexpected warnings %v", body["warnings"])
		}
	})

	t.Run("SuccessWithWarnings omits empty warnings", func(t *testing.T) {
		_, body := performResponseTestRequest(t, app, "/no-warnings")
		if _, present := body["warnings"]; present {
			t.Fatalf("expected warnings field omitted, got %v", body["warnings"])
		}
	})

	t.Run("Error envelope", func(t *testing.T) {
		status, body := performResponseTestRequest(t, app, "/error")
		if status != fiber.StatusBadRequest {
			t.Fatalf("expected status %d, got %d", fiber.StatusBadRequest, status)
		}
		if success, _ := body["success"].(bool); success {
			t.Fatalf("expected success=false, got %v", body["success"])
		}
		if body["error"] != "invalid input" {
			t.Fatalf("unexpected error %v", body["error"])
		}
	})

	t.Run("Paginated envelope", func(t *testing.T) {
		status, body := performResponseTestRequest(t, app, "/paginated")
		if status != fiber.StatusOK {
			t.Fatalf("expected status %d, got %d", fiber.StatusOK, status)
		}
		pagination, ok := body["pagination"].(map[string]any)
		if !ok {
			t.Fatalf("expected pagination object, got %v", body["pagination"])
		}
		if pagination["page"].(float64) != 2 || pagination["limit"].(float64) != 20 {
			t.Fatalf("unexpected page/limit %v", pagination)
		}
		if pagination["total"].(float64) != 45 || pagination["totalPages"].(float64) != 3 {
			t.Fatalf("unexpected total/totalPages %v", pagination)
		}
	})
}
