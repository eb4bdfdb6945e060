package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/spendline/expense-approval/internal/core/domain"
)

const collectionUsers = "users"

// UserRepository stores the tenant directory. Updates are plain overwrites.
type UserRepository struct {
	coll *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{coll: db.Collection(collectionUsers)}
}

func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, toUserDoc(u)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrUserExists
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc userDoc
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *UserRepository) find(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cursor, err := r.coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, fmt.Errorf("find users: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []userDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	users := make([]*domain.User, 0, len(docs))
	for _, d := range docs {
		users = append(users, d.toDomain())
	}
	return users, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *UserRepository) FindByExternalID(ctx context.Context, subject string) (*domain.User, error) {
	if subject == "" {
		return nil, domain.ErrUserNotFound
	}
	return r.findOne(ctx, bson.M{"external_id": subject})
}

func (r *UserRepository) FindByEmail(ctx context.Context, companyID, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"company_id": companyID, "email": domain.NormalizeEmail(email)})
}

func (r *UserRepository) FindUnlinkedByEmail(ctx context.Context, email string) ([]*domain.User, error) {
	return r.find(ctx, bson.M{
		"email":       domain.NormalizeEmail(email),
		"external_id": bson.M{"$exists": false},
	})
}

func (r *UserRepository) ListByCompany(ctx context.Context, companyID string) ([]*domain.User, error) {
	return r.find(ctx, bson.M{"company_id": companyID}, options.Find().SetSort(bson.D{{Key: "email", Value: 1}}))
}

func (r *UserRepository) CountReports(ctx context.Context, managerID string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.coll.CountDocuments(ctx, bson.M{"manager_id": managerID})
	if err != nil {
		return 0, fmt.Errorf("count reports: %w", err)
	}
	return n, nil
}

// LinkExternalID only matches a user that has no subject yet, so two
// registrations racing for the same invitation cannot both win.
func (r *UserRepository) LinkExternalID(ctx context.Context, userID, subject string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": userID, "external_id": bson.M{"$exists": false}},
		bson.M{"$set": bson.M{"external_id": subject}},
	)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("link user: %w", err)
	}
	if res.MatchedCount == 0 {
		if _, err := r.FindByID(ctx, userID); err != nil {
			return err
		}
		return domain.ErrConflict
	}
	return nil
}

func (r *UserRepository) update(ctx context.Context, userID string, set bson.M) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) UpdateRole(ctx context.Context, userID string, role domain.Role) error {
	return r.update(ctx, userID, bson.M{"role": string(role)})
}

func (r *UserRepository) UpdateManager(ctx context.Context, userID string, managerID *string) error {
	return r.update(ctx, userID, bson.M{"manager_id": managerID})
}

// EnsureIndexes creates the directory indexes. The external_id index is
// sparse so any number of invited, unlinked users can coexist.
func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "company_id", Value: 1}, {Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "external_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true),
		},
		{Keys: bson.D{{Key: "manager_id", Value: 1}}},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexes)
	return err
}
