package service

import (
	"math"
	"time"

	"github.com/spec-kit/gatelaunch/internal/auth"
	"github.com/spec-kit/gatelaunch/internal/domain"
)

// Health levels.
const (
	LevelHealthy  = "healthy"
	LevelWatch    = "watch"
	LevelCritical = "critical"
)

const (
	recsPendingOrders = "Increase order review throughput to reduce pending queue."
	recsOpenTickets   = "Prioritize ticket triage for SLA stability."
	recsApprovalRate  = "Review payment quality checks to improve approval quality."
	recsVelocity      = "High order velocity detected. Add a temporary reviewer shift."
	recsStable        = "Operations are stable. Keep current cadence and monitor every cycle."
)

// Health is the derived operational score.
type Health struct {
	Score         int    `json:"score"`
	Level         string `json:"level"`
	PendingOrders int    `json:"pendingOrders"`
	OpenTickets   int    `json:"openTickets"`
	ApprovalRate  int    `json:"approvalRate"`
}

// Platform is the raw volume block.
type Platform struct {
	Users           int `json:"users"`
	Orders          int `json:"orders"`
	Tickets         int `json:"tickets"`
	Receipts        int `json:"receipts"`
	OrdersLast24h   int `json:"ordersLast24h"`
	ReceiptsLast24h int `json:"receiptsLast24h"`
	AvgOrderAmount  int `json:"avgOrderAmount"`
}

// UserInsight summarizes the caller's own records.
type UserInsight struct {
	Orders         int        `json:"orders"`
	Receipts       int        `json:"receipts"`
	PendingOrders  int        `json:"pendingOrders"`
	ApprovedOrders int        `json:"approvedOrders"`
	LastOrderAt    *time.Time `json:"lastOrderAt"`
}

// Insights is the full aggregator output.
type Insights struct {
	GeneratedAt     time.Time    `json:"generatedAt"`
	Scope           string       `json:"scope"`
	Health          Health       `json:"health"`
	Platform        Platform     `json:"platform"`
	Recommendations []string     `json:"recommendations"`
	User            *UserInsight `json:"user,omitempty"`
}

// Signature is the dedupe key used by the scheduled sync.
func (i Insights) Signature() string {
	return formatSignature(i.Health.PendingOrders, i.Health.OpenTickets, i.Platform.OrdersLast24h, i.Platform.ReceiptsLast24h)
}

// Snapshot is the repository state insights are derived from.
type Snapshot struct {
	Users    int
	Orders   []domain.Order
	Tickets  []domain.Ticket
	Receipts []domain.Receipt
}

// HealthScore applies the score formula: 100 minus weighted order backlog,
// ticket pressure and a small penalty per receipt in the last day, clamped to [0,100].
func HealthScore(totalOrders, pendingOrders, totalTickets, openTickets, receipts24h int) int {
	var backlog, pressure float64
	if totalOrders > 0 {
		backlog = float64(pendingOrders) / float64(totalOrders)
	}
	if totalTickets > 0 {
		pressure = float64(openTickets) / float64(totalTickets)
	}
	return pct(100 - (backlog*45 + pressure*35 + float64(min(receipts24h, 100))*0.2))
}

// HealthLevel maps a score onto healthy, watch or critical.
func HealthLevel(score int) string {
	switch {
	case score >= 75:
		return LevelHealthy
	case score >= 45:
		return LevelWatch
	}
	return LevelCritical
}

// ComputeInsights derives insights from snap. Non-staff callers also get their own block.
func ComputeInsights(snap Snapshot, now time.Time, caller *auth.Principal) Insights {
	day := 24 * time.Hour
	var pending, approved, rejected, recentOrders int
	var amountSum float64
	for _, o := range snap.Orders {
		switch o.Status {
		case domain.ReviewPending:
			pending++
		case domain.ReviewApproved:
			approved++
		case domain.ReviewRejected:
			rejected++
		}
		if within(o.CreatedAt, now, day) {
			recentOrders++
		}
		amountSum += o.Amount
	}
	var open int
	for _, t := range snap.Tickets {
		if t.Status == domain.TicketStatusOpen {
			open++
		}
	}
	var recentReceipts int
	for _, r := range snap.Receipts {
		if within(r.CreatedAt, now, day) {
			recentReceipts++
		}
	}

	moderated := approved + rejected
	approvalRate := 0
	if moderated > 0 {
		approvalRate = pct(float64(approved) / float64(moderated) * 100)
	}
	avgAmount := 0
	if len(snap.Orders) > 0 {
		avgAmount = int(math.Round(amountSum / float64(len(snap.Orders))))
	}
	score := HealthScore(len(snap.Orders), pending, len(snap.Tickets), open, recentReceipts)

	var recs []string
	if pending >= 8 {
		recs = append(recs, recsPendingOrders)
	}
	if open >= 6 {
		recs = append(recs, recsOpenTickets)
	}
	if approvalRate < 60 && moderated >= 4 {
		recs = append(recs, recsApprovalRate)
	}
	if recentOrders >= 12 {
		recs = append(recs, recsVelocity)
	}
	if len(recs) == 0 {
		recs = append(recs, recsStable)
	}

	out := Insights{
		GeneratedAt: now.UTC(),
		Scope:       "user",
		Health: Health{
			Score:         score,
			Level:         HealthLevel(score),
			PendingOrders: pending,
			OpenTickets:   open,
			ApprovalRate:  approvalRate,
		},
		Platform: Platform{
			Users:           snap.Users,
			Orders:          len(snap.Orders),
			Tickets:         len(snap.Tickets),
			Receipts:        len(snap.Receipts),
			OrdersLast24h:   recentOrders,
			ReceiptsLast24h: recentReceipts,
			AvgOrderAmount:  avgAmount,
		},
		Recommendations: recs,
	}
	if caller.IsStaff() {
		out.Scope = "staff"
	}
	if caller == nil || caller.IsStaff() {
		return out
	}

	mine := &UserInsight{}
	for _, o := range snap.Orders {
		if o.UserID != caller.User.ID {
			continue
		}
		if mine.LastOrderAt == nil {
			at := o.CreatedAt
			mine.LastOrderAt = &at
		}
		mine.Orders++
		switch o.Status {
		case domain.ReviewPending:
			mine.PendingOrders++
		case domain.ReviewApproved:
			mine.ApprovedOrders++
		}
	}
	for _, r := range snap.Receipts {
		if r.UserID == caller.User.ID {
			mine.Receipts++
		}
	}
	out.User = mine
	return out
}

func within(t, now time.Time, window time.Duration) bool {
	return !t.IsZero() && now.Sub(t) <= window
}

func pct(v float64) int {
	return int(math.Max(0, math.Min(100, math.Round(v))))
}
