package app

import (
	"strings"
	"testing"

	"quizhub_backend/internal/config"

	"github.com/gin-gonic/gin"
)

// registeredRoutes 只注册路由表，不发请求，handler 可以为空
func registeredRoutes(t *testing.T) map[string]bool {
	t.Helper()
	gin.SetMode(gin.TestMode)

	router := gin.New()
	a := &App{}
	a.registerRoutes(router, &controllers{}, &repositories{}, &config.Config{})

	set := make(map[string]bool, len(router.Routes()))
	for _, r := range router.Routes() {
		set[r.Method+" "+r.Path] = true
	}
	return set
}

func TestQuizResultsPathServesReport(t *testing.T) {
	routes := registeredRoutes(t)

	if !routes["GET /api/results/quiz/:quizId"] {
		t.Fatal("GET /api/results/quiz/:quizId must be registered")
	}
	for route := range routes {
		if strings.HasSuffix(route, "/report") {
			t.Fatalf("unexpected report sub-path %q; the quiz report lives at /results/quiz/:quizId", route)
		}
	}
	// 本人成绩改走列表接口的 quizId 过滤
	if !routes["GET /api/results/"] {
		t.Fatal("GET /api/results/ must be registered")
	}
}

func TestAttemptAndAdminRoutesRegistered(t *testing.T) {
	routes := registeredRoutes(t)

	expected := []string{
		"POST /api/quizzes/:quizId/attempt/start",
		"PUT /api/quizzes/:quizId/attempt/answer",
		"PUT /api/quizzes/:quizId/attempt/navigate",
		"PUT /api/quizzes/:quizId/attempt/time",
		"POST /api/quizzes/:quizId/attempt/violation",
		"POST /api/quizzes/:quizId/attempt/reload",
		"POST /api/quizzes/:quizId/attempt/submit",
		"GET /api/admin",
		"GET /api/admin/users",
		"PUT /api/admin/users/:id/role",
	}
	for _, route := range expected {
		if !routes[route] {
			t.Errorf("route %q not registered", route)
		}
	}
}
