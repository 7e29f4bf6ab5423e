package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
)

type stubChecker struct {
	name string
	err  error
}

func (s stubChecker) Name() string                    { return s.name }
func (s stubChecker) Check(ctx context.Context) error { return s.err }

func TestStatusWithoutCheckers(t *testing.T) {
	report := NewService().Status(context.Background())
	if !report.OK || report.Checks != nil {
		t.Fatalf("unexpected report %+v", report)
	}
}

func TestStatusReportsFailingDependency(t *testing.T) {
	svc := NewService(stubChecker{name: "postgres"}, nil, stubChecker{name: "mongo", err: errors.New("timeout")})
	report := svc.Status(context.Background())
	if report.OK {
		t.Fatalf("expected not ok")
	}
	if report.Checks["postgres"] != "up" || report.Checks["mongo"] != "down" {
		t.Fatalf("unexpected checks %+v", report.Checks)
	}
	if names := svc.Names(); len(names) != 2 || names[0] != "mongo" {
		t.Fatalf("unexpected names %v", names)
	}
}

func TestSQLCheckerPings(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()
	mock.ExpectPing()

	if err := (SQLChecker{DB: db}).Check(context.Background()); err != nil {
		t.Fatalf("Check: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestHandlerStatusCodes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tests := []struct {
		name   string
		svc    *Service
		status int
	}{
		{"healthy", NewService(stubChecker{name: "postgres"}), http.StatusOK},
		{"degraded", NewService(stubChecker{name: "postgres", err: errors.New("down")}), http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			NewHandler(tt.svc).RegisterRoutes(r.Group("/api/v1"))
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
			if rec.Code != tt.status {
				t.Fatalf("expected %d, got %d", tt.status, rec.Code)
			}
			var body Report
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.OK != (tt.status == http.StatusOK) {
				t.Fatalf("unexpected body %+v", body)
			}
		})
	}
}
