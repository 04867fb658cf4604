package userinfra

import (
	"context"
	"errors"
	"time"

	"github.com/Abraxas-365/quizcraft/pkg/errx"
	"github.com/Abraxas-365/quizcraft/pkg/iam/user"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

const usersCollection = "users"

// MongoUserRepository stores one document per identity in the users
// collection, keyed by a unique index on email.
type MongoUserRepository struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// ConnectMongo dials uri and verifies the connection.
func ConnectMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri).SetServerSelectionTimeout(10 * time.Second))
	if err != nil {
		return nil, errx.Wrap(err, "failed to connect to mongo", errx.TypeInternal)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, errx.Wrap(err, "failed to ping mongo", errx.TypeInternal)
	}
	return client, nil
}

func NewMongoUserRepository(client *mongo.Client, database string) *MongoUserRepository {
	return &MongoUserRepository{
		client: client,
		coll:   client.Database(database).Collection(usersCollection),
	}
}

var _ user.Repository = (*MongoUserRepository)(nil)

// EnsureIndexes creates the unique email index. Concurrent registrations for
// the same address rely on it.
func (r *MongoUserRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("uniq_email"),
	})
	if err != nil {
		return errx.Wrap(err, "failed to create users email index", errx.TypeInternal)
	}
	return nil
}

func (r *MongoUserRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	var u user.User
	err := r.coll.FindOne(ctx, bson.M{"email": email}).Decode(&u)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, user.ErrUserNotFound().WithDetail("email", email)
		}
		return nil, errx.Wrap(err, "failed to find user", errx.TypeInternal)
	}
	return &u, nil
}

func (r *MongoUserRepository) Create(ctx context.Context, u *user.User) error {
	if _, err := r.coll.InsertOne(ctx, u); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return user.ErrDuplicateEmail().WithDetail("email", u.Email).WithCause(err)
		}
		return errx.Wrap(err, "failed to create user", errx.TypeInternal)
	}
	return nil
}

func (r *MongoUserRepository) DeleteByEmail(ctx context.Context, email string) error {
	if _, err := r.coll.DeleteOne(ctx, bson.M{"email": email}); err != nil {
		return errx.Wrap(err, "failed to delete user", errx.TypeInternal)
	}
	return nil
}

// patchDocument converts a Patch into a $set/$unset update.
func patchDocument(p user.Patch) bson.M {
	set := bson.M{}
	if p.Name != nil {
		set["name"] = *p.Name
	}
	if p.Image != nil {
		set["image"] = *p.Image
	}
	if p.Role != nil {
		set["role"] = *p.Role
	}
	if p.PasswordHash != nil {
		set["password_hash"] = *p.PasswordHash
	}
	if p.Salt != nil {
		set["salt"] = *p.Salt
	}
	if p.EmailVerified != nil {
		set["email_verified"] = *p.EmailVerified
	}
	if p.ExternalBillingID != nil {
		set["external_billing_id"] = *p.ExternalBillingID
	}
	if !p.UpdatedAt.IsZero() {
		set["updated_at"] = p.UpdatedAt
	}

	if p.ClearVerifyCode {
		set["verify_code_hash"] = nil
	} else if p.VerifyCodeHash != nil {
		set["verify_code_hash"] = *p.VerifyCodeHash
	}

	return bson.M{"$set": set}
}

func (r *MongoUserRepository) Update(ctx context.Context, email string, patch user.Patch) (*user.User, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var u user.User
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"email": email}, patchDocument(patch), opts).Decode(&u)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, user.ErrUserNotFound().WithDetail("email", email)
		}
		return nil, errx.Wrap(err, "failed to update user", errx.TypeInternal)
	}
	return &u, nil
}

func (r *MongoUserRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx, readpref.Primary())
}
