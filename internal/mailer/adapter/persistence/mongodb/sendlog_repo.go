package mongodb

import (
	"context"
	"time"

	"edwin/internal/mailer/domain/model"
	"edwin/internal/shared/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const sendLogsCollection = "email_send_logs"

// MongoSendLogRepository implements repository.SendLogRepository.
type MongoSendLogRepository struct {
	logs *mongo.Collection
}

// NewMongoSendLogRepository creates the repository and its indexes.
func NewMongoSendLogRepository(ctx context.Context, db *mongo.Database) (*MongoSendLogRepository, error) {
	repo := &MongoSendLogRepository{logs: db.Collection(sendLogsCollection)}
	if err := database.EnsureIndexes(ctx, repo.logs, database.Index("createdAt"), database.Index("campaign", "createdAt")); err != nil {
		return nil, err
	}
	return repo, nil
}

func (r *MongoSendLogRepository) Create(ctx context.Context, l *model.EmailSendLog) error {
	if l.ID.IsZero() {
		l.ID = primitive.NewObjectID()
	}
	l.CreatedAt = time.Now().UTC()
	_, err := r.logs.InsertOne(ctx, l)
	return err
}

func countIf(status string) bson.D {
	return bson.D{{Key: "$sum", Value: bson.D{{Key: "$cond", Value: bson.A{
		bson.D{{Key: "$eq", Value: bson.A{"$status", status}}}, 1, 0,
	}}}}}
}

// Analytics runs the three breakdowns in one $facet stage.
func (r *MongoSendLogRepository) Analytics(ctx context.Context, since time.Time) (*model.Analytics, error) {
	outcome := bson.D{
		{Key: "sent", Value: countIf(model.SendSent)},
		{Key: "failed", Value: countIf(model.SendFailed)},
	}
	group := func(id interface{}) bson.D {
		return append(bson.D{{Key: "_id", Value: id}}, outcome...)
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "createdAt", Value: bson.D{{Key: "$gte", Value: since}}}}}},
		{{Key: "$facet", Value: bson.D{
			{Key: "totals", Value: bson.A{
				bson.D{{Key: "$group", Value: group(nil)}},
			}},
			{Key: "byCampaign", Value: bson.A{
				bson.D{{Key: "$match", Value: bson.D{{Key: "campaign", Value: bson.D{{Key: "$ne", Value: nil}}}}}},
				bson.D{{Key: "$group", Value: group("$campaign")}},
				bson.D{{Key: "$lookup", Value: bson.D{
					{Key: "from", Value: campaignsCollection},
					{Key: "localField", Value: "_id"},
					{Key: "foreignField", Value: "_id"},
					{Key: "as", Value: "campaign"},
				}}},
				bson.D{{Key: "$addFields", Value: bson.D{
					{Key: "name", Value: bson.D{{Key: "$ifNull", Value: bson.A{
						bson.D{{Key: "$arrayElemAt", Value: bson.A{"$campaign.name", 0}}}, "",
					}}}},
				}}},
				bson.D{{Key: "$project", Value: bson.D{{Key: "campaign", Value: 0}}}},
				bson.D{{Key: "$sort", Value: bson.D{{Key: "sent", Value: -1}, {Key: "_id", Value: 1}}}},
			}},
			{Key: "daily", Value: bson.A{
				bson.D{{Key: "$group", Value: group(bson.D{{Key: "$dateToString", Value: bson.D{
					{Key: "format", Value: "%Y-%m-%d"},
					{Key: "date", Value: "$createdAt"},
				}}})}},
				bson.D{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
			}},
		}}},
	}

	cur, err := r.logs.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	var rows []struct {
		Totals     []model.SendTotals     `bson:"totals"`
		ByCampaign []model.CampaignTotals `bson:"byCampaign"`
		Daily      []model.DailyTotals    `bson:"daily"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}

	out := &model.Analytics{ByCampaign: []model.CampaignTotals{}, Daily: []model.DailyTotals{}}
	if len(rows) == 0 {
		return out, nil
	}
	if len(rows[0].Totals) > 0 {
		out.Totals = rows[0].Totals[0]
	}
	if rows[0].ByCampaign != nil {
		out.ByCampaign = rows[0].ByCampaign
	}
	if rows[0].Daily != nil {
		out.Daily = rows[0].Daily
	}
	return out, nil
}
