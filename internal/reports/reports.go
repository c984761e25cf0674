// Package reports emails the operator a daily sales summary on a schedule.
package reports

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/01moynul/hidaaya-golang/internal/email"
	"github.com/01moynul/hidaaya-golang/internal/orders"
)

// SummarySource aggregates a day of orders.
type SummarySource interface {
	DailySummary(ctx context.Context, day time.Time) (orders.Summary, error)
}

// ReportMailer sends a rendered summary.
type ReportMailer interface {
	SendSalesReport(ctx context.Context, recipient string, sum orders.Summary) (email.Result, error)
}

var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// Scheduler runs the daily report.
type Scheduler struct {
	Orders    SummarySource
	Mailer    ReportMailer
	Recipient string
	Location  *time.Location
	Logger    *zap.Logger
	Now       func() time.Time

	sched *cron.Cron
}

func NewScheduler(source SummarySource, mailer ReportMailer, recipient string, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		Orders:    source,
		Mailer:    mailer,
		Recipient: recipient,
		Location:  time.Local,
		Logger:    logger,
		Now:       time.Now,
	}
}

// Report is the outcome of one run.
type Report struct {
	Summary orders.Summary `json:"summary"`
	Status  email.Status   `json:"emailStatus"`
}

// Run summarizes day and emails it. Only a failure to build the summary is
// returned; delivery problems are reported through Status.
func (s *Scheduler) Run(ctx context.Context, day time.Time) (Report, error) {
	sum, err := s.Orders.DailySummary(ctx, day.In(s.Location))
	if err != nil {
		return Report{}, fmt.Errorf("daily summary: %w", err)
	}

	res, err := s.Mailer.SendSalesReport(ctx, s.Recipient, sum)
	status := email.Classify(res, err)
	if status != email.StatusSuccess {
		s.Logger.Warn("sales report not delivered",
			zap.Time("day", sum.From),
			zap.String("status", string(status)),
			zap.String("detail", res.Failures()),
			zap.Error(err),
		)
	}
	return Report{Summary: sum, Status: status}, nil
}

// Start schedules a report for the previous day on the given cron expression.
func (s *Scheduler) Start(schedule string) error {
	s.sched = cron.New(cron.WithLocation(s.Location), cron.WithParser(cronParser))
	_, err := s.sched.AddFunc(schedule, func() {
		defer func() {
			if r := recover(); r != nil {
				s.Logger.Error("sales report job panicked", zap.Any("panic", r))
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		yesterday := s.Now().In(s.Location).AddDate(0, 0, -1)
		report, err := s.Run(ctx, yesterday)
		if err != nil {
			s.Logger.Error("sales report failed", zap.Error(err))
			return
		}
		s.Logger.Info("sales report sent",
			zap.Int("orders", report.Summary.OrderCount),
			zap.Int64("revenue", report.Summary.Revenue),
			zap.String("status", string(report.Status)),
		)
	})
	if err != nil {
		return fmt.Errorf("schedule sales report %q: %w", schedule, err)
	}
	s.sched.Start()
	return nil
}

// Stop halts the schedule and waits for a running report to finish.
func (s *Scheduler) Stop() {
	if s.sched == nil {
		return
	}
	<-s.sched.Stop().Done()
}
