package health

import (
	"context"
	"database/sql"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
)

const checkTimeout = 2 * time.Second

// Checker reports whether one dependency is reachable.
type Checker interface {
	Name() string
	Check(ctx context.Context) error
}

// Service runs the registered checkers.
type Service struct {
	checkers []Checker
}

// Report is the health payload. OK is false when any check failed.
type Report struct {
	OK     bool              `json:"ok"`
	Checks map[string]string `json:"checks,omitempty"`
}

// NewService constructs a health service over the given checkers.
func NewService(checkers ...Checker) *Service {
	var kept []Checker
	for _, c := range checkers {
		if c != nil {
			kept = append(kept, c)
		}
	}
	return &Service{checkers: kept}
}

// Status runs every checker with a short timeout.
func (s *Service) Status(ctx context.Context) Report {
	report := Report{OK: true}
	if s == nil || len(s.checkers) == 0 {
		return report
	}
	report.Checks = make(map[string]string, len(s.checkers))
	for _, c := range s.checkers {
		cctx, cancel := context.WithTimeout(ctx, checkTimeout)
		err := c.Check(cctx)
		cancel()
		if err != nil {
			report.OK = false
			report.Checks[c.Name()] = "down"
			continue
		}
		report.Checks[c.Name()] = "up"
	}
	return report
}

// Names lists the registered checker names in order.
func (s *Service) Names() []string {
	names := make([]string, 0, len(s.checkers))
	for _, c := range s.checkers {
		names = append(names, c.Name())
	}
	sort.Strings(names)
	return names
}

// SQLChecker pings a database/sql pool.
type SQLChecker struct {
	DB *sql.DB
}

func (SQLChecker) Name() string { return "postgres" }

func (c SQLChecker) Check(ctx context.Context) error {
	return c.DB.PingContext(ctx)
}

// MongoChecker pings the Mongo primary.
type MongoChecker struct {
	Client *mongo.Client
}

func (MongoChecker) Name() string { return "mongo" }

func (c MongoChecker) Check(ctx context.Context) error {
	return c.Client.Ping(ctx, nil)
}
