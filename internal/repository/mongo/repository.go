package mongo

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"vodstream/internal/domain"
)

type Repository struct {
	collection *mongo.Collection
}

type renditionDoc struct {
	Path      string `bson:"path"`
	Ready     bool   `bson:"ready"`
	Error     string `bson:"error,omitempty"`
	UpdatedAt int64  `bson:"updatedAt"`
}

type videoDoc struct {
	ID              string                  `bson:"_id"`
	Title           string                  `bson:"title"`
	Description     string                  `bson:"description,omitempty"`
	Status          string                  `bson:"status"`
	SourceName      string                  `bson:"sourceName,omitempty"`
	DurationSeconds int                     `bson:"durationSeconds"`
	ThumbnailPath   string                  `bson:"thumbnailPath,omitempty"`
	Renditions      map[string]renditionDoc `bson:"renditions,omitempty"`
	ViewCount       int64                   `bson:"viewCount"`
	CreatedAt       int64                   `bson:"createdAt"`
	UpdatedAt       int64                   `bson:"updatedAt"`
}

func NewRepository(client *mongo.Client, dbName, collectionName string) *Repository {
	return &Repository{collection: client.Database(dbName).Collection(collectionName)}
}

func Connect(ctx context.Context, uri string, extra ...*options.ClientOptions) (*mongo.Client, error) {
	opts := append([]*options.ClientOptions{options.Client().ApplyURI(uri)}, extra...)
	client, err := mongo.Connect(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return client, nil
}

func (r *Repository) EnsureIndexes(ctx context.Context) error {
	if r == nil || r.collection == nil {
		return nil
	}
	// Title search runs as a case-insensitive regex, which no index can
	// serve, so only the filter and sort fields are indexed.
	models := []mongo.IndexModel{
		{Keys: bson.D{{Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
	}
	_, err := r.collection.Indexes().CreateMany(ctx, models)
	return err
}

func (r *Repository) Create(ctx context.Context, v domain.VideoRecord) error {
	_, err := r.collection.InsertOne(ctx, toDoc(v))
	if err != nil && mongo.IsDuplicateKeyError(err) {
		return domain.ErrAlreadyExists
	}
	return err
}

func (r *Repository) Update(ctx context.Context, v domain.VideoRecord) error {
	doc := toDoc(v)
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": doc.ID}, bson.M{"$set": bson.M{
		"title":           doc.Title,
		"description":     doc.Description,
		"status":          doc.Status,
		"sourceName":      doc.SourceName,
		"durationSeconds": doc.DurationSeconds,
		"thumbnailPath":   doc.ThumbnailPath,
		"renditions":      doc.Renditions,
		"updatedAt":       time.Now().UTC().Unix(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *Repository) Get(ctx context.Context, id domain.VideoID) (domain.VideoRecord, error) {
	var doc videoDoc
	if err := r.collection.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.VideoRecord{}, domain.ErrNotFound
		}
		return domain.VideoRecord{}, err
	}
	return fromDoc(doc), nil
}

func (r *Repository) List(ctx context.Context, filter domain.VideoFilter) ([]domain.VideoRecord, error) {
	query := bson.M{}
	if filter.Status != nil {
		query["status"] = string(*filter.Status)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		query["title"] = bson.M{
			"$regex":   regexp.QuoteMeta(search),
			"$options": "i",
		}
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if filter.Offset > 0 {
		opts.SetSkip(int64(filter.Offset))
	}
	if filter.Limit > 0 {
		opts.SetLimit(int64(filter.Limit))
	}

	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []videoDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	records := make([]domain.VideoRecord, 0, len(docs))
	for _, doc := range docs {
		records = append(records, fromDoc(doc))
	}
	return records, nil
}

func (r *Repository) Delete(ctx context.Context, id domain.VideoID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": string(id)})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *Repository) UpdateStatus(ctx context.Context, id domain.VideoID, status domain.VideoStatus) error {
	return r.setFields(ctx, id, bson.M{"status": string(status)})
}

func (r *Repository) UpdateDuration(ctx context.Context, id domain.VideoID, seconds int) error {
	return r.setFields(ctx, id, bson.M{"durationSeconds": seconds})
}

func (r *Repository) UpdateThumbnail(ctx context.Context, id domain.VideoID, path string) error {
	return r.setFields(ctx, id, bson.M{"thumbnailPath": path})
}

func (r *Repository) UpdateRendition(ctx context.Context, id domain.VideoID, res domain.Resolution, rendition domain.Rendition) error {
	return r.setFields(ctx, id, bson.M{"renditions." + string(res): renditionDoc{
		Path:      rendition.Path,
		Ready:     rendition.Ready,
		Error:     rendition.Error,
		UpdatedAt: rendition.UpdatedAt.Unix(),
	}})
}

func (r *Repository) IncrementViews(ctx context.Context, id domain.VideoID) error {
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": string(id)}, bson.M{"$inc": bson.M{"viewCount": 1}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *Repository) setFields(ctx context.Context, id domain.VideoID, fields bson.M) error {
	fields["updatedAt"] = time.Now().UTC().Unix()
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": string(id)}, bson.M{"$set": fields})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func toDoc(v domain.VideoRecord) videoDoc {
	var renditions map[string]renditionDoc
	if len(v.Renditions) > 0 {
		renditions = make(map[string]renditionDoc, len(v.Renditions))
		for res, rendition := range v.Renditions {
			renditions[string(res)] = renditionDoc{
				Path:      rendition.Path,
				Ready:     rendition.Ready,
				Error:     rendition.Error,
				UpdatedAt: rendition.UpdatedAt.Unix(),
			}
		}
	}

	return videoDoc{
		ID:              string(v.ID),
		Title:           v.Title,
		Description:     v.Description,
		Status:          string(v.Status),
		SourceName:      v.SourceName,
		DurationSeconds: v.DurationSeconds,
		ThumbnailPath:   v.ThumbnailPath,
		Renditions:      renditions,
		ViewCount:       v.ViewCount,
		CreatedAt:       v.CreatedAt.Unix(),
		UpdatedAt:       v.UpdatedAt.Unix(),
	}
}

func fromDoc(doc videoDoc) domain.VideoRecord {
	var renditions map[domain.Resolution]domain.Rendition
	if len(doc.Renditions) > 0 {
		renditions = make(map[domain.Resolution]domain.Rendition, len(doc.Renditions))
		for res, rendition := range doc.Renditions {
			renditions[domain.Resolution(res)] = domain.Rendition{
				Path:      rendition.Path,
				Ready:     rendition.Ready,
				Error:     rendition.Error,
				UpdatedAt: timeFromUnix(rendition.UpdatedAt),
			}
		}
	}

	return domain.VideoRecord{
		ID:              domain.VideoID(doc.ID),
		Title:           doc.Title,
		Description:     doc.Description,
		Status:          domain.VideoStatus(doc.Status),
		SourceName:      doc.SourceName,
		DurationSeconds: doc.DurationSeconds,
		ThumbnailPath:   doc.ThumbnailPath,
		Renditions:      renditions,
		ViewCount:       doc.ViewCount,
		CreatedAt:       timeFromUnix(doc.CreatedAt),
		UpdatedAt:       timeFromUnix(doc.UpdatedAt),
	}
}

func timeFromUnix(value int64) time.Time {
	return time.Unix(value, 0).UTC()
}
