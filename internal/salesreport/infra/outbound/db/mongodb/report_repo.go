package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	reportDomain "github.com/davicafu/hexaprojector/internal/salesreport/domain"
	"github.com/davicafu/hexaprojector/internal/shared/infra/store/mongostore"
)

// ReportRepoMongoDB lee los buckets del informe que escribe mongostore.
type ReportRepoMongoDB struct {
	collection *mongo.Collection
}

var _ reportDomain.ReportReadRepository = (*ReportRepoMongoDB)(nil)

func NewReportRepoMongoDB(store *mongostore.Store) *ReportRepoMongoDB {
	return &ReportRepoMongoDB{collection: store.Collection(reportDomain.EntitySalesReport)}
}

// EnsureIndexes indexa por fecha de snapshot, la única consulta del informe.
func (r *ReportRepoMongoDB) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: reportDomain.ColReportDate, Value: 1}},
	})
	return err
}

func (r *ReportRepoMongoDB) GetReport(ctx context.Context, date string) (*reportDomain.SalesReport, error) {
	opts := options.Find().SetSort(bson.D{{Key: reportDomain.ColCategory, Value: 1}, {Key: reportDomain.ColRegion, Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{reportDomain.ColReportDate: date}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	report := reportDomain.NewSalesReport(date)
	found := false
	for cursor.Next(ctx) {
		var doc bson.M
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		category, _ := doc[reportDomain.ColCategory].(string)
		region, _ := doc[reportDomain.ColRegion].(string)
		report.Put(category, region, reportDomain.RegionSalesFromRow(fromMongo(doc)))
		found = true
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	if !found {
		return nil, reportDomain.ErrReportNotFound
	}
	return report, nil
}

// fromMongo normaliza los tipos BSON (Decimal128, DateTime) de un documento.
func fromMongo(doc bson.M) map[string]interface{} {
	row := make(map[string]interface{}, len(doc))
	for k, v := range doc {
		row[k] = mongostore.FromBSON(v)
	}
	return row
}
