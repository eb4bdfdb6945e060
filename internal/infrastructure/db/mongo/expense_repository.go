package mongo

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/spendline/expense-approval/internal/core/domain"
)

const collectionExpenses = "expenses"

// ExpenseRepository implements ports.ExpenseRepository on MongoDB.
type ExpenseRepository struct {
	coll *mongo.Collection
}

func NewExpenseRepository(db *mongo.Database) *ExpenseRepository {
	return &ExpenseRepository{coll: db.Collection(collectionExpenses)}
}

// Create inserts a new expense document.
func (r *ExpenseRepository) Create(ctx context.Context, e *domain.Expense) error {
	doc, err := toExpenseDoc(e)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert expense: %w", err)
	}
	return nil
}

// GetByID is not tenant-scoped; callers compare the tenant themselves so a
// cross-tenant access is reported as such rather than as a missing record.
func (r *ExpenseRepository) GetByID(ctx context.Context, id string) (*domain.Expense, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc expenseDoc
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrExpenseNotFound
		}
		return nil, fmt.Errorf("find expense: %w", err)
	}
	return doc.toDomain()
}

func (r *ExpenseRepository) QueryByEmployee(ctx context.Context, companyID, employeeID string) iter.Seq2[*domain.Expense, error] {
	return r.query(ctx, bson.M{"company_id": companyID, "employee_id": employeeID})
}

func (r *ExpenseRepository) QueryByCurrentApprover(ctx context.Context, companyID, approverID string) iter.Seq2[*domain.Expense, error] {
	return r.query(ctx, bson.M{
		"company_id":          companyID,
		"current_approver_id": approverID,
		"status":              string(domain.StatusPending),
	})
}

func (r *ExpenseRepository) QueryByManager(ctx context.Context, companyID, managerID string) iter.Seq2[*domain.Expense, error] {
	return r.query(ctx, bson.M{"company_id": companyID, "manager_id": managerID})
}

func (r *ExpenseRepository) QueryByCompany(ctx context.Context, companyID string) iter.Seq2[*domain.Expense, error] {
	return r.query(ctx, bson.M{"company_id": companyID})
}

// query returns a sequence that runs the Find when ranged over and streams
// documents off the cursor. Every range runs the query again.
func (r *ExpenseRepository) query(ctx context.Context, filter bson.M) iter.Seq2[*domain.Expense, error] {
	opts := options.Find().SetSort(bson.D{
		{Key: "date", Value: -1},
		{Key: "created_at", Value: -1},
	})

	return func(yield func(*domain.Expense, error) bool) {
		cursor, err := r.coll.Find(ctx, filter, opts)
		if err != nil {
			yield(nil, fmt.Errorf("find expenses: %w", err))
			return
		}
		defer cursor.Close(context.WithoutCancel(ctx))

		for cursor.Next(ctx) {
			var doc expenseDoc
			if err := cursor.Decode(&doc); err != nil {
				yield(nil, fmt.Errorf("decode expense: %w", err))
				return
			}
			e, err := doc.toDomain()
			if !yield(e, err) || err != nil {
				return
			}
		}
		if err := cursor.Err(); err != nil {
			yield(nil, fmt.Errorf("iterate expenses: %w", err))
		}
	}
}

// ConditionalUpdate applies m only if the stored status and revision still
// equal expected. The filter, $set, $inc and $push run as one atomic
// document update.
func (r *ExpenseRepository) ConditionalUpdate(ctx context.Context, id string, expected domain.ExpectedState, m domain.ExpenseMutation) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{
		"_id":      id,
		"status":   string(expected.Status),
		"revision": expected.Revision,
	}
	update := bson.M{
		"$set": bson.M{
			"status":              string(m.Status),
			"current_approver_id": m.CurrentApproverID,
			"approval_step":       m.ApprovalStep,
		},
		"$inc": bson.M{"revision": 1},
	}
	if m.Append != nil {
		update["$push"] = bson.M{"approval_history": toEntryDoc(*m.Append)}
	}

	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("update expense: %w", err)
	}
	if res.MatchedCount == 1 {
		return nil
	}

	n, err := r.coll.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("update expense: %w", err)
	}
	if n == 0 {
		return domain.ErrExpenseNotFound
	}
	return domain.ErrConflict
}

// EnsureIndexes creates one compound index per query view, each ending in
// the sort keys.
func (r *ExpenseRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	sortKeys := bson.D{{Key: "date", Value: -1}, {Key: "created_at", Value: -1}}
	withSort := func(keys ...bson.E) bson.D {
		return append(bson.D(keys), sortKeys...)
	}

	indexes := []mongo.IndexModel{
		{Keys: withSort(bson.E{Key: "company_id", Value: 1}, bson.E{Key: "employee_id", Value: 1})},
		{Keys: withSort(bson.E{Key: "company_id", Value: 1}, bson.E{Key: "current_approver_id", Value: 1}, bson.E{Key: "status", Value: 1})},
		{Keys: withSort(bson.E{Key: "company_id", Value: 1}, bson.E{Key: "manager_id", Value: 1})},
		{Keys: withSort(bson.E{Key: "company_id", Value: 1})},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexes)
	return err
}
