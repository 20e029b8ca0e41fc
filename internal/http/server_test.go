package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"spendtrack/internal/auth"
	"spendtrack/internal/config"
	"spendtrack/internal/log"
	"spendtrack/internal/services"
	"spendtrack/internal/store/file"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.Config{
		Port:      "0",
		DataDir:   dir,
		JWTSecret: "test-secret",
		TokenTTL:  time.Hour,
		AdminUser: "root",
		AdminPass: "root-pass",
	}
	st, err := file.New(dir)
	if err != nil {
		t.Fatalf("file store: %v", err)
	}
	creds := auth.NewCredentialStore(dir)
	logger := log.New(log.Config{Level: slog.LevelError, Component: log.ComponentHTTP})
	ledger := services.NewLedgerService(st, nil, logger)
	admin := services.NewAdminService(creds, st, logger)

	s := NewServer(cfg, creds, ledger, admin, logger)
	t.Cleanup(func() { s.limiter.Stop() })
	return s
}

func doJSON(t *testing.T, s *Server, method, path, token string, body any) *httptest.ResponseRecorder {
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
	rr := httptest.NewRecorder()
	s.Handler.ServeHTTP(rr, req)
	return rr
}

func signupAndLogin(t *testing.T, s *Server, username, password string) string {
	t.Helper()
	if rr := doJSON(t, s, http.MethodPost, "/auth/signup", "", credentialsRequest{Username: username, Password: password}); rr.Code != http.StatusCreated {
		t.Fatalf("signup status = %d: %s", rr.Code, rr.Body.String())
	}
	rr := doJSON(t, s, http.MethodPost, "/auth/login", "", credentialsRequest{Username: username, Password: password})
	if rr.Code != http.StatusOK {
		t.Fatalf("login status = %d: %s", rr.Code, rr.Body.String())
	}
	var resp tokenResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode token: %v", err)
	}
	return resp.Token
}

func adminLogin(t *testing.T, s *Server) string {
	t.Helper()
	rr := doJSON(t, s, http.MethodPost, "/auth/admin/login", "", credentialsRequest{Username: "root", Password: "root-pass"})
	if rr.Code != http.StatusOK {
		t.Fatalf("admin login status = %d: %s", rr.Code, rr.Body.String())
	}
	var resp tokenResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode token: %v", err)
	}
	return resp.Token
}

func TestHealthEndpoints(t *testing.T) {
	s := newTestServer(t)
	for _, path := range []string{"/healthz", "/readyz"} {
		rr := doJSON(t, s, http.MethodGet, path, "", nil)
		if rr.Code != http.StatusOK {
			t.Errorf("%s status = %d", path, rr.Code)
		}
	}
}

func TestSignupConflictsAndBadInput(t *testing.T) {
	s := newTestServer(t)

	if rr := doJSON(t, s, http.MethodPost, "/auth/signup", "", credentialsRequest{Username: "alice", Password: "pw1"}); rr.Code != http.StatusCreated {
		t.Fatalf("signup status = %d", rr.Code)
	}
	if rr := doJSON(t, s, http.MethodPost, "/auth/signup", "", credentialsRequest{Username: "alice", Password: "other"}); rr.Code != http.StatusConflict {
		t.Errorf("duplicate signup status = %d", rr.Code)
	}
	if rr := doJSON(t, s, http.MethodPost, "/auth/signup", "", credentialsRequest{Username: "", Password: "pw"}); rr.Code != http.StatusBadRequest {
		t.Errorf("empty username status = %d", rr.Code)
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	s := newTestServer(t)
	signupAndLogin(t, s, "alice", "pw1")

	rr := doJSON(t, s, http.MethodPost, "/auth/login", "", credentialsRequest{Username: "alice", Password: "wrong"})
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("wrong password status = %d", rr.Code)
	}
	// Unknown user gets the identical response
	rr2 := doJSON(t, s, http.MethodPost, "/auth/login", "", credentialsRequest{Username: "nobody", Password: "pw"})
	if rr2.Code != http.StatusUnauthorized || rr2.Body.String() != rr.Body.String() {
		t.Errorf("unknown user response differs: %d %s", rr2.Code, rr2.Body.String())
	}
}

func TestAPIRequiresToken(t *testing.T) {
	s := newTestServer(t)

	if rr := doJSON(t, s, http.MethodGet, "/api/expenses", "", nil); rr.Code != http.StatusUnauthorized {
		t.Errorf("missing token status = %d", rr.Code)
	}
	if rr := doJSON(t, s, http.MethodGet, "/api/expenses", "garbage", nil); rr.Code != http.StatusUnauthorized {
		t.Errorf("garbage token status = %d", rr.Code)
	}
}

func TestExpenseLifecycle(t *testing.T) {
	s := newTestServer(t)
	token := signupAndLogin(t, s, "alice", "pw1")

	rr := doJSON(t, s, http.MethodPost, "/api/expenses", token, createExpenseRequest{
		Category:    "Food",
		Description: "lunch",
		Amount:      "12.50",
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("create status = %d: %s", rr.Code, rr.Body.String())
	}
	var created createExpenseResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.Record.Amount.Cents != 1250 || created.Budget != nil {
		t.Errorf("created = %+v", created)
	}
	// No date was sent, so the response must echo the stamped time
	if created.Record.Time.IsZero() {
		t.Errorf("created record has the zero timestamp")
	}

	rr = doJSON(t, s, http.MethodGet, "/api/expenses", token, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("list status = %d", rr.Code)
	}
	var listed listExpensesResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &listed); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if listed.Count != 1 || listed.TotalCents != 1250 {
		t.Errorf("listed = %+v", listed)
	}

	if rr := doJSON(t, s, http.MethodDelete, "/api/expenses", token, nil); rr.Code != http.StatusNoContent {
		t.Fatalf("clear status = %d", rr.Code)
	}
	rr = doJSON(t, s, http.MethodGet, "/api/expenses", token, nil)
	if err := json.Unmarshal(rr.Body.Bytes(), &listed); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if listed.Count != 0 {
		t.Errorf("count after clear = %d", listed.Count)
	}
}

func TestCreateExpenseValidation(t *testing.T) {
	s := newTestServer(t)
	token := signupAndLogin(t, s, "alice", "pw1")

	cases := []struct {
		name string
		req  createExpenseRequest
		want int
	}{
		{"bad amount", createExpenseRequest{Category: "Food", Amount: "abc"}, http.StatusUnprocessableEntity},
		{"negative amount", createExpenseRequest{Category: "Food", Amount: "-5"}, http.StatusUnprocessableEntity},
		{"empty category", createExpenseRequest{Category: "", Amount: "1.00"}, http.StatusUnprocessableEntity},
		{"bad date", createExpenseRequest{Category: "Food", Amount: "1.00", Date: "yesterday"}, http.StatusUnprocessableEntity},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if rr := doJSON(t, s, http.MethodPost, "/api/expenses", token, tc.req); rr.Code != tc.want {
				t.Errorf("status = %d, want %d", rr.Code, tc.want)
			}
		})
	}
}

func TestExpenseFilters(t *testing.T) {
	s := newTestServer(t)
	token := signupAndLogin(t, s, "alice", "pw1")

	add := func(date, category, desc, amount string) {
		rr := doJSON(t, s, http.MethodPost, "/api/expenses", token, createExpenseRequest{
			Date: date, Category: category, Description: desc, Amount: amount,
		})
		if rr.Code != http.StatusCreated {
			t.Fatalf("create status = %d", rr.Code)
		}
	}
	add("2024-03-10 12:00:00", "Food", "lunch", "10.00")
	add("2024-03-20 12:00:00", "Transport", "bus", "2.00")
	add("2024-04-01 12:00:00", "Food", "groceries", "30.00")

	cases := []struct {
		query string
		count int
	}{
		{"category=Food", 2},
		{"q=bus", 1},
		{"from=2024-03-15&to=2024-03-31", 1},
		{"month=2024-03", 2},
		{"month=2024-04&category=Food", 1},
	}
	for _, tc := range cases {
		rr := doJSON(t, s, http.MethodGet, "/api/expenses?"+tc.query, token, nil)
		if rr.Code != http.StatusOK {
			t.Fatalf("%s status = %d", tc.query, rr.Code)
		}
		var listed listExpensesResponse
		if err := json.Unmarshal(rr.Body.Bytes(), &listed); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if listed.Count != tc.count {
			t.Errorf("%s count = %d, want %d", tc.query, listed.Count, tc.count)
		}
	}

	if rr := doJSON(t, s, http.MethodGet, "/api/expenses?from=notadate", token, nil); rr.Code != http.StatusBadRequest {
		t.Errorf("bad filter status = %d", rr.Code)
	}
}

func TestBudgetEndpoints(t *testing.T) {
	s := newTestServer(t)
	token := signupAndLogin(t, s, "alice", "pw1")

	if rr := doJSON(t, s, http.MethodGet, "/api/budgets/status?category=Food", token, nil); rr.Code != http.StatusNotFound {
		t.Errorf("status without budget = %d", rr.Code)
	}

	if rr := doJSON(t, s, http.MethodPut, "/api/budgets", token, setBudgetRequest{Category: "Food", Limit: "100.00"}); rr.Code != http.StatusOK {
		t.Fatalf("set budget status = %d: %s", rr.Code, rr.Body.String())
	}
	if rr := doJSON(t, s, http.MethodPut, "/api/budgets", token, setBudgetRequest{Category: "Food", Limit: "-5"}); rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("negative limit status = %d", rr.Code)
	}

	now := time.Now().Format("2006-01-02 15:04:05")
	rr := doJSON(t, s, http.MethodPost, "/api/expenses", token, createExpenseRequest{
		Date: now, Category: "Food", Description: "feast", Amount: "120.00",
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("create status = %d", rr.Code)
	}
	var created createExpenseResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.Budget == nil || !created.Budget.Exceeded {
		t.Errorf("budget after overspend = %+v", created.Budget)
	}

	rr = doJSON(t, s, http.MethodGet, "/api/budgets/status?category=Food", token, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var status services.BudgetStatus
	if err := json.Unmarshal(rr.Body.Bytes(), &status); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if status.SpentCents != 12000 || !status.Exceeded {
		t.Errorf("status = %+v", status)
	}

	rr = doJSON(t, s, http.MethodGet, "/api/budgets/progress", token, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("progress status = %d", rr.Code)
	}
	var progress []services.BudgetProgress
	if err := json.Unmarshal(rr.Body.Bytes(), &progress); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(progress) != 1 || progress[0].Percent != 120 {
		t.Errorf("progress = %+v", progress)
	}
}

func TestBudgetProgressWithZeroLimit(t *testing.T) {
	s := newTestServer(t)
	token := signupAndLogin(t, s, "alice", "pw1")

	if rr := doJSON(t, s, http.MethodPut, "/api/budgets", token, setBudgetRequest{Category: "Food", Limit: "0"}); rr.Code != http.StatusOK {
		t.Fatalf("set zero budget status = %d: %s", rr.Code, rr.Body.String())
	}
	doJSON(t, s, http.MethodPost, "/api/expenses", token, createExpenseRequest{
		Category: "Food", Description: "snack", Amount: "1.00",
	})

	rr := doJSON(t, s, http.MethodGet, "/api/budgets/progress", token, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("progress status = %d", rr.Code)
	}
	var progress []services.BudgetProgress
	if err := json.Unmarshal(rr.Body.Bytes(), &progress); err != nil {
		t.Fatalf("decode: %v (body %q)", err, rr.Body.String())
	}
	if len(progress) != 1 || progress[0].Percent != 0 || !progress[0].Exceeded {
		t.Errorf("progress = %+v", progress)
	}
}

func TestExportCSV(t *testing.T) {
	s := newTestServer(t)
	token := signupAndLogin(t, s, "alice", "pw1")

	doJSON(t, s, http.MethodPost, "/api/expenses", token, createExpenseRequest{
		Date: "2024-03-10 12:00:00", Category: "Food", Description: "lunch", Amount: "12.50",
	})

	rr := doJSON(t, s, http.MethodGet, "/api/export?format=csv", token, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("export status = %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "text/csv" {
		t.Errorf("content type = %q", ct)
	}
	if cd := rr.Header().Get("Content-Disposition"); cd != `attachment; filename="expenses_alice.csv"` {
		t.Errorf("content disposition = %q", cd)
	}
	want := "Date,Category,Description,Amount\n2024-03-10 12:00:00,Food,lunch,12.50\n"
	if rr.Body.String() != want {
		t.Errorf("body = %q", rr.Body.String())
	}

	if rr := doJSON(t, s, http.MethodGet, "/api/export?format=doc", token, nil); rr.Code != http.StatusBadRequest {
		t.Errorf("bad format status = %d", rr.Code)
	}
}

func TestAdminEndpoints(t *testing.T) {
	s := newTestServer(t)
	userToken := signupAndLogin(t, s, "alice", "pw1")
	signupAndLogin(t, s, "bob", "pw2")
	adminToken := adminLogin(t, s)

	// A user token cannot reach admin routes
	if rr := doJSON(t, s, http.MethodGet, "/api/admin/users", userToken, nil); rr.Code != http.StatusForbidden {
		t.Errorf("user on admin route status = %d", rr.Code)
	}

	rr := doJSON(t, s, http.MethodGet, "/api/admin/users", adminToken, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("list users status = %d", rr.Code)
	}
	var users map[string][]string
	if err := json.Unmarshal(rr.Body.Bytes(), &users); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(users["users"]) != 2 || users["users"][0] != "alice" {
		t.Errorf("users = %v", users)
	}

	doJSON(t, s, http.MethodPost, "/api/expenses", userToken, createExpenseRequest{
		Category: "Food", Description: "lunch", Amount: "10.00",
	})

	rr = doJSON(t, s, http.MethodGet, "/api/admin/expenses", adminToken, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("aggregate status = %d", rr.Code)
	}
	var agg struct {
		Count int `json:"count"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &agg); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if agg.Count != 1 {
		t.Errorf("aggregate count = %d", agg.Count)
	}

	if rr := doJSON(t, s, http.MethodDelete, "/api/admin/users/alice/expenses", adminToken, nil); rr.Code != http.StatusNoContent {
		t.Fatalf("purge status = %d", rr.Code)
	}
	rr = doJSON(t, s, http.MethodGet, "/api/admin/expenses", adminToken, nil)
	if err := json.Unmarshal(rr.Body.Bytes(), &agg); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if agg.Count != 0 {
		t.Errorf("aggregate count after purge = %d", agg.Count)
	}
}

func TestAdminLoginFailsClosedWithoutConfig(t *testing.T) {
	s := newTestServer(t)
	s.cfg.AdminUser = ""
	s.cfg.AdminPass = ""

	rr := doJSON(t, s, http.MethodPost, "/auth/admin/login", "", credentialsRequest{Username: "", Password: ""})
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("unconfigured admin login status = %d", rr.Code)
	}
}

func TestDeleteAccount(t *testing.T) {
	s := newTestServer(t)
	token := signupAndLogin(t, s, "alice", "pw1")
	adminToken := adminLogin(t, s)

	doJSON(t, s, http.MethodPost, "/api/expenses", token, createExpenseRequest{
		Category: "Food", Description: "lunch", Amount: "10.00",
	})

	if rr := doJSON(t, s, http.MethodDelete, "/auth/account", token, nil); rr.Code != http.StatusNoContent {
		t.Fatalf("delete account status = %d", rr.Code)
	}

	// Admin sessions are not tied to an account
	if rr := doJSON(t, s, http.MethodDelete, "/auth/account", adminToken, nil); rr.Code != http.StatusForbidden {
		t.Errorf("admin delete account status = %d", rr.Code)
	}

	rr := doJSON(t, s, http.MethodPost, "/auth/login", "", credentialsRequest{Username: "alice", Password: "pw1"})
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("login after deletion status = %d", rr.Code)
	}
}

func TestRateLimitOnMutations(t *testing.T) {
	s := newTestServer(t)
	token := signupAndLogin(t, s, "alice", "pw1")

	var limited bool
	for i := 0; i < 70; i++ {
		rr := doJSON(t, s, http.MethodPost, "/api/expenses", token, createExpenseRequest{
			Category: "Food", Description: fmt.Sprintf("n%d", i), Amount: "1.00",
		})
		if rr.Code == http.StatusTooManyRequests {
			limited = true
			break
		}
	}
	if !limited {
		t.Error("mutation burst was never rate limited")
	}
	// Reads stay unthrottled
	if rr := doJSON(t, s, http.MethodGet, "/api/expenses", token, nil); rr.Code != http.StatusOK {
		t.Errorf("read during limit status = %d", rr.Code)
	}
}
