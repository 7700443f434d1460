package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mechanix/shop-reports/internal/domain"
	platformMongo "github.com/mechanix/shop-reports/internal/platform/database/mongodb"
	"github.com/mechanix/shop-reports/internal/platform/errors"
	"github.com/mechanix/shop-reports/internal/platform/observability/logging"
	"github.com/mechanix/shop-reports/internal/repository/interfaces"
)

const reportsCollection = "monthly_reports"

// reportDocument is the MongoDB document model for a monthly report.
type reportDocument struct {
	ID                  string                         `bson:"_id"`
	Year                int                            `bson:"year"`
	Month               int                            `bson:"month"`
	MechanicPerformance map[string]performanceDocument `bson:"mechanic_performance"`
	WeeklyThroughput    map[string]int                 `bson:"weekly_throughput"`
}

type performanceDocument struct {
	TotalOrders          int            `bson:"total_orders"`
	AverageHoursPerOrder float64        `bson:"average_hours_per_order"`
	ServicesBreakdown    map[string]int `bson:"services_breakdown"`
}

// ReportRepository implements interfaces.ReportRepository over MongoDB.
type ReportRepository struct {
	collection *mongo.Collection
	logger     logging.Logger
}

// NewReportRepository creates a new MongoDB report repository
func NewReportRepository(conn *platformMongo.Connection, logger logging.Logger) interfaces.ReportRepository {
	return &ReportRepository{
		collection: conn.Collection(reportsCollection),
		logger:     logger,
	}
}

// Save upserts the report under its derived id, replacing any prior value.
func (r *ReportRepository) Save(ctx context.Context, report *domain.MonthlyReport) error {
	doc := toDocument(report)

	opts := options.Replace().SetUpsert(true)
	if _, err := r.collection.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, opts); err != nil {
		r.logger.Error(ctx, "Failed to save monthly report", err, map[string]interface{}{
			"report_id": doc.ID,
		})
		return errors.Wrap(err, "failed to save monthly report")
	}

	r.logger.Info(ctx, "Monthly report saved", map[string]interface{}{
		"report_id": doc.ID,
		"mechanics": len(report.MechanicPerformance),
	})
	return nil
}

// Get returns the stored report for the period, or a not-found error.
func (r *ReportRepository) Get(ctx context.Context, year, month int) (*domain.MonthlyReport, error) {
	reportID := domain.BuildReportID(year, month)

	var doc reportDocument
	err := r.collection.FindOne(ctx, bson.M{"_id": reportID}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, errors.NewNotFound("report not found for requested period")
	}
	if err != nil {
		r.logger.Error(ctx, "Failed to get monthly report", err, map[string]interface{}{
			"report_id": reportID,
		})
		return nil, errors.Wrap(err, "failed to get monthly report")
	}

	return fromDocument(&doc), nil
}

func toDocument(report *domain.MonthlyReport) *reportDocument {
	performance := make(map[string]performanceDocument, len(report.MechanicPerformance))
	for mechanicID, perf := range report.MechanicPerformance {
		performance[mechanicID] = performanceDocument{
			TotalOrders:          perf.TotalOrders,
			AverageHoursPerOrder: perf.AverageHoursPerOrder,
			ServicesBreakdown:    perf.ServicesBreakdown,
		}
	}

	return &reportDocument{
		ID:                  report.ReportID(),
		Year:                report.Year,
		Month:               report.Month,
		MechanicPerformance: performance,
		WeeklyThroughput:    report.WeeklyThroughput,
	}
}

func fromDocument(doc *reportDocument) *domain.MonthlyReport {
	performance := make(map[string]domain.MechanicPerformance, len(doc.MechanicPerformance))
	for mechanicID, perf := range doc.MechanicPerformance {
		performance[mechanicID] = domain.MechanicPerformance{
			TotalOrders:          perf.TotalOrders,
			AverageHoursPerOrder: perf.AverageHoursPerOrder,
			ServicesBreakdown:    perf.ServicesBreakdown,
		}
	}

	return &domain.MonthlyReport{
		Year:                doc.Year,
		Month:               doc.Month,
		MechanicPerformance: performance,
		WeeklyThroughput:    doc.WeeklyThroughput,
	}
}
