package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"budgety/internal/auth"
	"budgety/internal/cache"
	"budgety/internal/core"
	"budgety/internal/services"
	"budgety/internal/storage"
)

func newTestServer(t *testing.T) (*gin.Engine, *storage.Repository) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store, err := storage.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	server := NewServer(Options{
		Store:     store,
		Tokens:    auth.NewTokenManager("test-secret-0123456789", time.Hour),
		Authn:     auth.NewAuthenticator(store),
		Families:  services.NewFamilyService(store, nil),
		Expenses:  services.NewExpenseService(store, nil),
		Recurring: services.NewRecurringService(store),
		Reports:   services.NewReportService(store),
		Roles:     cache.NewLRU[core.Role](100, time.Minute),
	})
	return server.Router(), store
}

func doJSON(t *testing.T, router *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
}

// registerUser registers a user and returns their token and id.
func registerUser(t *testing.T, router *gin.Engine, email string) (string, string) {
	t.Helper()
	w := doJSON(t, router, http.MethodPost, "/auth/register", "", gin.H{
		"email":    email,
		"name":     "Test User",
		"password": "supersecret",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("register = %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Token string `json:"token"`
		User  struct {
			ID string `json:"id"`
		} `json:"user"`
	}
	decode(t, w, &resp)
	return resp.Token, resp.User.ID
}

func createFamily(t *testing.T, router *gin.Engine, token string) string {
	t.Helper()
	w := doJSON(t, router, http.MethodPost, "/families", token, gin.H{"name": "Test Family"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create family = %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		ID string `json:"id"`
	}
	decode(t, w, &resp)
	return resp.ID
}

func createCategory(t *testing.T, router *gin.Engine, token, familyID string) string {
	t.Helper()
	w := doJSON(t, router, http.MethodPost, "/families/"+familyID+"/categories", token, gin.H{"name": "Groceries"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create category = %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		ID string `json:"id"`
	}
	decode(t, w, &resp)
	return resp.ID
}

func TestAuthFlow(t *testing.T) {
	router, _ := newTestServer(t)

	token, _ := registerUser(t, router, "anna@example.com")

	w := doJSON(t, router, http.MethodGet, "/me", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("/me = %d: %s", w.Code, w.Body.String())
	}

	if w := doJSON(t, router, http.MethodGet, "/me", "", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("/me without token = %d, want 401", w.Code)
	}
	if w := doJSON(t, router, http.MethodGet, "/me", "bogus", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("/me with bad token = %d, want 401", w.Code)
	}

	// Duplicate email.
	w = doJSON(t, router, http.MethodPost, "/auth/register", "", gin.H{
		"email": "anna@example.com", "name": "Dup", "password": "supersecret",
	})
	if w.Code != http.StatusConflict {
		t.Errorf("duplicate register = %d, want 409", w.Code)
	}

	// Wrong password.
	w = doJSON(t, router, http.MethodPost, "/auth/login", "", gin.H{
		"email": "anna@example.com", "password": "wrongpassword",
	})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("bad login = %d, want 401", w.Code)
	}
}

func TestFamilyScopeHiddenFromNonMembers(t *testing.T) {
	router, _ := newTestServer(t)

	ownerToken, _ := registerUser(t, router, "owner@example.com")
	outsiderToken, _ := registerUser(t, router, "outsider@example.com")
	familyID := createFamily(t, router, ownerToken)

	if w := doJSON(t, router, http.MethodGet, "/families/"+familyID, ownerToken, nil); w.Code != http.StatusOK {
		t.Errorf("member get family = %d, want 200", w.Code)
	}
	if w := doJSON(t, router, http.MethodGet, "/families/"+familyID, outsiderToken, nil); w.Code != http.StatusNotFound {
		t.Errorf("outsider get family = %d, want 404", w.Code)
	}
}

func TestExpenseAmountTruncated(t *testing.T) {
	router, _ := newTestServer(t)

	token, _ := registerUser(t, router, "anna@example.com")
	familyID := createFamily(t, router, token)
	categoryID := createCategory(t, router, token, familyID)

	w := doJSON(t, router, http.MethodPost, "/families/"+familyID+"/expenses", token, gin.H{
		"amount":      "29.999",
		"description": "groceries",
		"date":        "2025-05-10",
		"categoryId":  categoryID,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create expense = %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Amount string `json:"amount"`
	}
	decode(t, w, &resp)
	if resp.Amount != "29.99" {
		t.Errorf("amount = %q, want \"29.99\" (truncated, not rounded)", resp.Amount)
	}

	// Non-positive amounts are rejected.
	w = doJSON(t, router, http.MethodPost, "/families/"+familyID+"/expenses", token, gin.H{
		"amount":      "-5.00",
		"description": "refund",
		"date":        "2025-05-10",
		"categoryId":  categoryID,
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("negative amount = %d, want 400", w.Code)
	}
}

func TestRecurringCreateSetsCursorToStartDate(t *testing.T) {
	router, _ := newTestServer(t)

	token, _ := registerUser(t, router, "anna@example.com")
	familyID := createFamily(t, router, token)
	categoryID := createCategory(t, router, token, familyID)

	w := doJSON(t, router, http.MethodPost, "/families/"+familyID+"/recurring-expenses", token, gin.H{
		"amount":      "12.99",
		"description": "Streaming",
		"frequency":   "MONTHLY",
		"startDate":   "2025-06-01",
		"categoryId":  categoryID,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create recurring = %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		NextDueDate string `json:"nextDueDate"`
		IsActive    bool   `json:"isActive"`
	}
	decode(t, w, &resp)
	if resp.NextDueDate != "2025-06-01" {
		t.Errorf("nextDueDate = %q, want startDate", resp.NextDueDate)
	}
	if !resp.IsActive {
		t.Error("new template should be active")
	}

	w = doJSON(t, router, http.MethodPost, "/families/"+familyID+"/recurring-expenses", token, gin.H{
		"amount":      "12.99",
		"description": "Bad",
		"frequency":   "FORTNIGHTLY",
		"startDate":   "2025-06-01",
		"categoryId":  categoryID,
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad frequency = %d, want 400", w.Code)
	}
}

func TestRecurringMutationOwnershipRule(t *testing.T) {
	router, _ := newTestServer(t)

	adminToken, _ := registerUser(t, router, "admin@example.com")
	memberToken, _ := registerUser(t, router, "member@example.com")
	otherToken, _ := registerUser(t, router, "other@example.com")
	familyID := createFamily(t, router, adminToken)
	categoryID := createCategory(t, router, adminToken, familyID)

	// Add both users as plain members.
	for _, email := range []string{"member@example.com", "other@example.com"} {
		w := doJSON(t, router, http.MethodPost, "/families/"+familyID+"/members", adminToken, gin.H{"email": email})
		if w.Code != http.StatusCreated {
			t.Fatalf("add member = %d: %s", w.Code, w.Body.String())
		}
	}
	// A member creates a template.
	w := doJSON(t, router, http.MethodPost, "/families/"+familyID+"/recurring-expenses", memberToken, gin.H{
		"amount":      "9.99",
		"description": "Music",
		"frequency":   "MONTHLY",
		"startDate":   "2025-06-01",
		"categoryId":  categoryID,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create recurring = %d: %s", w.Code, w.Body.String())
	}
	var created struct {
		ID string `json:"id"`
	}
	decode(t, w, &created)
	path := "/families/" + familyID + "/recurring-expenses/" + created.ID

	// Another plain member may not touch it.
	if w := doJSON(t, router, http.MethodPatch, path, otherToken, gin.H{"description": "hijack"}); w.Code != http.StatusForbidden {
		t.Errorf("non-creator member patch = %d, want 403", w.Code)
	}
	if w := doJSON(t, router, http.MethodDelete, path, otherToken, nil); w.Code != http.StatusForbidden {
		t.Errorf("non-creator member delete = %d, want 403", w.Code)
	}

	// The creator may.
	if w := doJSON(t, router, http.MethodPatch, path, memberToken, gin.H{"isActive": false}); w.Code != http.StatusOK {
		t.Errorf("creator patch = %d: %s", w.Code, w.Body.String())
	}
	// An admin may too.
	if w := doJSON(t, router, http.MethodDelete, path, adminToken, nil); w.Code != http.StatusNoContent {
		t.Errorf("admin delete = %d, want 204", w.Code)
	}
}

func TestMemberManagementRequiresAdmin(t *testing.T) {
	router, _ := newTestServer(t)

	adminToken, _ := registerUser(t, router, "admin@example.com")
	memberToken, _ := registerUser(t, router, "member@example.com")
	registerUser(t, router, "stranger@example.com")
	familyID := createFamily(t, router, adminToken)

	w := doJSON(t, router, http.MethodPost, "/families/"+familyID+"/members", adminToken, gin.H{"email": "member@example.com"})
	if w.Code != http.StatusCreated {
		t.Fatalf("add member = %d: %s", w.Code, w.Body.String())
	}

	w = doJSON(t, router, http.MethodPost, "/families/"+familyID+"/members", memberToken, gin.H{"email": "stranger@example.com"})
	if w.Code != http.StatusForbidden {
		t.Errorf("member adding member = %d, want 403", w.Code)
	}
}

func TestCategoryAndBudgetManagementRequiresAdmin(t *testing.T) {
	router, _ := newTestServer(t)

	adminToken, _ := registerUser(t, router, "admin@example.com")
	memberToken, _ := registerUser(t, router, "member@example.com")
	familyID := createFamily(t, router, adminToken)
	categoryID := createCategory(t, router, adminToken, familyID)

	w := doJSON(t, router, http.MethodPost, "/families/"+familyID+"/members", adminToken, gin.H{"email": "member@example.com"})
	if w.Code != http.StatusCreated {
		t.Fatalf("add member = %d: %s", w.Code, w.Body.String())
	}

	w = doJSON(t, router, http.MethodPost, "/families/"+familyID+"/budgets", adminToken, gin.H{
		"month":      "2025-06",
		"amount":     "100.00",
		"categoryId": categoryID,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("admin create budget = %d: %s", w.Code, w.Body.String())
	}
	var budget struct {
		ID string `json:"id"`
	}
	decode(t, w, &budget)

	cases := []struct {
		name   string
		method string
		path   string
		body   any
	}{
		{"create category", http.MethodPost, "/families/" + familyID + "/categories", gin.H{"name": "Toys"}},
		{"update category", http.MethodPatch, "/families/" + familyID + "/categories/" + categoryID, gin.H{"name": "Renamed"}},
		{"delete category", http.MethodDelete, "/families/" + familyID + "/categories/" + categoryID, nil},
		{"create budget", http.MethodPost, "/families/" + familyID + "/budgets", gin.H{"month": "2025-07", "amount": "50.00", "categoryId": categoryID}},
		{"update budget", http.MethodPatch, "/families/" + familyID + "/budgets/" + budget.ID, gin.H{"amount": "75.00"}},
		{"delete budget", http.MethodDelete, "/families/" + familyID + "/budgets/" + budget.ID, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if w := doJSON(t, router, tc.method, tc.path, memberToken, tc.body); w.Code != http.StatusForbidden {
				t.Errorf("member %s = %d, want 403", tc.name, w.Code)
			}
		})
	}

	// Reads stay open to plain members.
	if w := doJSON(t, router, http.MethodGet, "/families/"+familyID+"/categories", memberToken, nil); w.Code != http.StatusOK {
		t.Errorf("member list categories = %d, want 200", w.Code)
	}
	if w := doJSON(t, router, http.MethodGet, "/families/"+familyID+"/budgets", memberToken, nil); w.Code != http.StatusOK {
		t.Errorf("member list budgets = %d, want 200", w.Code)
	}
}

func TestReportEndpoints(t *testing.T) {
	router, _ := newTestServer(t)

	token, _ := registerUser(t, router, "anna@example.com")
	familyID := createFamily(t, router, token)
	categoryID := createCategory(t, router, token, familyID)

	for _, amount := range []string{"10.00", "30.00"} {
		w := doJSON(t, router, http.MethodPost, "/families/"+familyID+"/expenses", token, gin.H{
			"amount":      amount,
			"description": "item",
			"date":        "2025-05-10",
			"categoryId":  categoryID,
		})
		if w.Code != http.StatusCreated {
			t.Fatalf("create expense = %d: %s", w.Code, w.Body.String())
		}
	}

	w := doJSON(t, router, http.MethodGet, "/families/"+familyID+"/reports/category-split?month=2025-05", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("category-split = %d: %s", w.Code, w.Body.String())
	}
	var split struct {
		Total      string `json:"total"`
		Categories []struct {
			PercentOfTotal float64 `json:"percentOfTotal"`
		} `json:"categories"`
	}
	decode(t, w, &split)
	if split.Total != "40.00" {
		t.Errorf("total = %q, want \"40.00\"", split.Total)
	}
	if len(split.Categories) != 1 || split.Categories[0].PercentOfTotal != 100.0 {
		t.Errorf("categories = %+v, want one at 100%%", split.Categories)
	}

	w = doJSON(t, router, http.MethodGet, "/families/"+familyID+"/reports/member-spending?month=2025-05", token, nil)
	if w.Code != http.StatusOK {
		t.Errorf("member-spending = %d: %s", w.Code, w.Body.String())
	}
	w = doJSON(t, router, http.MethodGet, "/families/"+familyID+"/reports/monthly-trend?months=0", token, nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("monthly-trend months=0 = %d, want 400", w.Code)
	}
	w = doJSON(t, router, http.MethodGet, "/families/"+familyID+"/reports/member-spending?month=not-a-month", token, nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad month = %d, want 400", w.Code)
	}

	// Export is not configured in tests.
	w = doJSON(t, router, http.MethodPost, "/families/"+familyID+"/reports/export?month=2025-05", token, nil)
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("export without exporter = %d, want 503", w.Code)
	}
}

func TestHealthEndpoints(t *testing.T) {
	router, _ := newTestServer(t)

	if w := doJSON(t, router, http.MethodGet, "/healthz", "", nil); w.Code != http.StatusOK {
		t.Errorf("/healthz = %d, want 200", w.Code)
	}
	if w := doJSON(t, router, http.MethodGet, "/readyz", "", nil); w.Code != http.StatusOK {
		t.Errorf("/readyz = %d, want 200", w.Code)
	}
}
