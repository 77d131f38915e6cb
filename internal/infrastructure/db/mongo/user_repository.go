package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/deliverly/marketplace-api/internal/core/domain"
)

const usersCollection = "users"

// UserRepository persists platform accounts in MongoDB. Emails are stored
// lowercased so lookups are case-insensitive without a collation index.
type UserRepository struct {
	coll *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{coll: db.Collection(usersCollection)}
}

type mongoUser struct {
	ID           int64    `bson:"_id"`
	Name         string   `bson:"name"`
	Email        string   `bson:"email"`
	PasswordHash string   `bson:"password_hash"`
	Phone        string   `bson:"phone,omitempty"`
	Active       bool     `bson:"active"`
	Roles        []string `bson:"roles"`
	MerchantID   *int64   `bson:"merchant_id,omitempty"`
	DriverID     *int64   `bson:"driver_id,omitempty"`
	CreatedAt    int64    `bson:"created_at"`
	UpdatedAt    int64    `bson:"updated_at"`
	LastLoginAt  int64    `bson:"last_login_at,omitempty"`
}

// Create inserts a new account, allocating the next numeric id from a
// counters document. A duplicate email maps to domain.ErrUserExists.
func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	email := strings.ToLower(user.Email)
	if existing := r.coll.FindOne(ctx, bson.M{"email": email}); existing.Err() == nil {
		return nil, domain.ErrUserExists
	}

	id, err := r.nextID(ctx)
	if err != nil {
		return nil, err
	}

	doc := toMongoUser(user)
	doc.ID = id
	doc.Email = email

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrUserExists
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	return r.FindByID(ctx, id)
}

// FindByEmail looks an account up by email, case-insensitively.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	var mu mongoUser
	err := r.coll.FindOne(ctx, bson.M{"email": strings.ToLower(email)}).Decode(&mu)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return fromMongoUser(&mu), nil
}

func (r *UserRepository) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	var mu mongoUser
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&mu)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return fromMongoUser(&mu), nil
}

func (r *UserRepository) List(ctx context.Context) ([]*domain.User, error) {
	cursor, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.M{"_id": 1}))
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer cursor.Close(ctx)

	var users []*domain.User
	for cursor.Next(ctx) {
		var mu mongoUser
		if err := cursor.Decode(&mu); err != nil {
			return nil, fmt.Errorf("decode user: %w", err)
		}
		users = append(users, fromMongoUser(&mu))
	}
	return users, cursor.Err()
}

func (r *UserRepository) Update(ctx context.Context, user *domain.User) (*domain.User, error) {
	doc := toMongoUser(user)
	doc.UpdatedAt = time.Now().UTC().Unix()

	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": user.ID}, doc)
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	if res.MatchedCount == 0 {
		return nil, domain.ErrUserNotFound
	}
	return r.FindByID(ctx, user.ID)
}

func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) UpdateLastLogin(ctx context.Context, id int64) error {
	_, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{"last_login_at": time.Now().UTC().Unix()},
	})
	if err != nil {
		return fmt.Errorf("update last login: %w", err)
	}
	return nil
}

// nextID increments the users counter document and returns the new value.
func (r *UserRepository) nextID(ctx context.Context) (int64, error) {
	counters := r.coll.Database().Collection("counters")

	var out struct {
		Seq int64 `bson:"seq"`
	}
	err := counters.FindOneAndUpdate(ctx,
		bson.M{"_id": usersCollection},
		bson.M{"$inc": bson.M{"seq": 1}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&out)
	if err != nil {
		return 0, fmt.Errorf("allocate user id: %w", err)
	}
	return out.Seq, nil
}

func toMongoUser(u *domain.User) *mongoUser {
	mu := &mongoUser{
		ID:           u.ID,
		Name:         u.Name,
		Email:        strings.ToLower(u.Email),
		PasswordHash: u.PasswordHash,
		Phone:        u.Phone,
		Active:       u.Active,
		Roles:        u.RoleNames(),
		MerchantID:   u.MerchantID,
		DriverID:     u.DriverID,
		CreatedAt:    u.CreatedAt.Unix(),
		UpdatedAt:    u.UpdatedAt.Unix(),
	}
	if u.LastLoginAt != nil {
		mu.LastLoginAt = u.LastLoginAt.Unix()
	}
	return mu
}

func fromMongoUser(mu *mongoUser) *domain.User {
	roles := make([]domain.Role, 0, len(mu.Roles))
	for _, name := range mu.Roles {
		if r, ok := domain.ParseRole(name); ok {
			roles = append(roles, r)
		}
	}

	u := &domain.User{
		ID:           mu.ID,
		Name:         mu.Name,
		Email:        mu.Email,
		PasswordHash: mu.PasswordHash,
		Phone:        mu.Phone,
		Active:       mu.Active,
		Roles:        roles,
		MerchantID:   mu.MerchantID,
		DriverID:     mu.DriverID,
		CreatedAt:    unixToTime(mu.CreatedAt),
		UpdatedAt:    unixToTime(mu.UpdatedAt),
	}
	if mu.LastLoginAt != 0 {
		t := unixToTime(mu.LastLoginAt)
		u.LastLoginAt = &t
	}
	return u
}

func unixToTime(ts int64) time.Time {
	if ts == 0 {
		return time.Time{}
	}
	return time.Unix(ts, 0).UTC()
}
