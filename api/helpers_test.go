package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"budget/ledger"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setUserIDMiddleware(userID uint) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("userID", userID)
		c.Next()
	}
}

// ledgerRouter 以指定用户身份挂载账本相关路由
func ledgerRouter(svc *ledger.Service, userID uint) *gin.Engine {
	router := gin.New()
	router.Use(setUserIDMiddleware(userID))

	expenses := NewExpenseHandler(svc)
	router.POST("/expenses", expenses.Create)
	router.GET("/expenses", expenses.List)
	router.GET("/expenses/:id", expenses.Get)
	router.PUT("/expenses/:id", expenses.Update)
	router.DELETE("/expenses/:id", expenses.Delete)

	incomes := NewIncomeHandler(svc)
	router.POST("/incomes", incomes.Create)
	router.GET("/incomes", incomes.List)
	router.DELETE("/incomes", incomes.Reset)
	router.GET("/incomes/:id", incomes.Get)
	router.DELETE("/incomes/:id", incomes.Delete)

	dashboard := NewDashboardHandler(svc)
	router.GET("/dashboard", dashboard.Dashboard)
	router.GET("/categories", dashboard.Categories)
	return router
}

func doJSON(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder, data interface{}) envelope {
	t.Helper()
	var resp envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	if data != nil {
		require.NoError(t, json.Unmarshal(resp.Data, data))
	}
	return resp
}

func newAuthedRequest(method, path, body, token string) *http.Request {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func serve(router *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}
