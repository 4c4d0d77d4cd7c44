package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/marketbase/identity-service/internal/core/domain"
	"github.com/marketbase/identity-service/internal/core/ports"
)

const userCollection = "users"

// UserRepository implements ports.UserRepository over MongoDB. Email
// uniqueness is enforced by the unique index created in EnsureIndexes; a
// duplicate-key error on insert maps to domain.ErrEmailTaken.
type UserRepository struct {
	coll *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{coll: db.Collection(userCollection)}
}

// EnsureIndexes creates the unique email index. Called once at startup;
// failure aborts boot because uniqueness is a correctness requirement, not
// an optimization.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(userCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create email index: %w", err)
	}
	return nil
}

type mongoProfile struct {
	Phone        string `bson:"phone,omitempty"`
	Address      string `bson:"address,omitempty"`
	City         string `bson:"city,omitempty"`
	Country      string `bson:"country,omitempty"`
	ZipCode      string `bson:"zip_code,omitempty"`
	ProfileImage string `bson:"profile_image,omitempty"`
}

type mongoUser struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	Name          string             `bson:"name"`
	Email         string             `bson:"email"`
	PasswordHash  string             `bson:"password_hash"`
	Role          string             `bson:"role"`
	Active        bool               `bson:"is_active"`
	EmailVerified bool               `bson:"is_email_verified"`
	Profile       mongoProfile       `bson:"profile,omitempty"`
	CreatedAt     time.Time          `bson:"created_at"`
	UpdatedAt     time.Time          `bson:"updated_at"`
	LastLogin     time.Time          `bson:"last_login,omitempty"`
}

func (r *UserRepository) Insert(ctx context.Context, user *domain.User) (*domain.User, error) {
	doc := toMongoUser(user)
	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrEmailTaken
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	id, _ := res.InsertedID.(primitive.ObjectID)
	created := *user
	created.ID = id.Hex()
	return &created, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

// Update applies the non-nil fields atomically and returns the updated
// document.
func (r *UserRepository) Update(ctx context.Context, id string, fields ports.UserUpdate) (*domain.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}

	set := bson.M{"updated_at": time.Now().UTC()}
	if fields.Name != nil {
		set["name"] = *fields.Name
	}
	if fields.Profile != nil {
		set["profile"] = mongoProfile{
			Phone:        fields.Profile.Phone,
			Address:      fields.Profile.Address,
			City:         fields.Profile.City,
			Country:      fields.Profile.Country,
			ZipCode:      fields.Profile.ZipCode,
			ProfileImage: fields.Profile.ProfileImage,
		}
	}
	if fields.PasswordHash != nil {
		set["password_hash"] = *fields.PasswordHash
	}
	if fields.LastLogin != nil {
		set["last_login"] = fields.LastLogin.UTC()
	}
	if fields.Active != nil {
		set["is_active"] = *fields.Active
	}
	if fields.EmailVerified != nil {
		set["is_email_verified"] = *fields.EmailVerified
	}

	var mu mongoUser
	err = r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&mu)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	return fromMongoUser(&mu), nil
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	var mu mongoUser
	if err := r.coll.FindOne(ctx, filter).Decode(&mu); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return fromMongoUser(&mu), nil
}

func toMongoUser(u *domain.User) mongoUser {
	return mongoUser{
		Name:          u.Name,
		Email:         u.Email,
		PasswordHash:  u.PasswordHash,
		Role:          string(u.Role),
		Active:        u.Active,
		EmailVerified: u.EmailVerified,
		Profile: mongoProfile{
			Phone:        u.Profile.Phone,
			Address:      u.Profile.Address,
			City:         u.Profile.City,
			Country:      u.Profile.Country,
			ZipCode:      u.Profile.ZipCode,
			ProfileImage: u.Profile.ProfileImage,
		},
		CreatedAt: u.CreatedAt.UTC(),
		UpdatedAt: u.UpdatedAt.UTC(),
		LastLogin: u.LastLogin,
	}
}

func fromMongoUser(mu *mongoUser) *domain.User {
	return &domain.User{
		ID:            mu.ID.Hex(),
		Name:          mu.Name,
		Email:         mu.Email,
		PasswordHash:  mu.PasswordHash,
		Role:          domain.Role(mu.Role),
		Active:        mu.Active,
		EmailVerified: mu.EmailVerified,
		Profile: domain.Profile{
			Phone:        mu.Profile.Phone,
			Address:      mu.Profile.Address,
			City:         mu.Profile.City,
			Country:      mu.Profile.Country,
			ZipCode:      mu.Profile.ZipCode,
			ProfileImage: mu.Profile.ProfileImage,
		},
		CreatedAt: mu.CreatedAt,
		UpdatedAt: mu.UpdatedAt,
		LastLogin: mu.LastLogin,
	}
}
