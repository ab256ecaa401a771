// internal/app/store/properties/propertystore.go
package propertystore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/vitrine/internal/app/catalog"
	"github.com/dalemusser/vitrine/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection is the name of the Mongo collection holding properties.
const Collection = "properties"

// ErrDuplicateID is returned when an insert collides with an existing _id.
var ErrDuplicateID = errors.New("a property with this id already exists")

// Store implements catalog.Store on MongoDB.
type Store struct {
	c *mongo.Collection
}

var _ catalog.Store = (*Store)(nil)

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(Collection)}
}

// Select returns every property ordered by creation time.
func (s *Store) Select(ctx context.Context) ([]models.Property, error) {
	opts := options.Find().SetSort(bson.D{
		{Key: "created_at", Value: 1},
		{Key: "_id", Value: 1},
	})
	cur, err := s.c.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Property
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []models.Property{}
	}
	return out, nil
}

// Insert stores p under a fresh id with Version 1.
func (s *Store) Insert(ctx context.Context, p models.Property) (models.Property, error) {
	now := time.Now().UTC()

	p.ID = primitive.NewObjectID().Hex()
	p.TitleCI = text.Fold(p.Title)
	p.Version = 1
	p.CreatedAt = now
	p.UpdatedAt = now
	if p.Images == nil {
		p.Images = []string{}
	}

	if _, err := s.c.InsertOne(ctx, p); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Property{}, ErrDuplicateID
		}
		return models.Property{}, err
	}
	return p, nil
}

// Update applies patch with a single FindOneAndUpdate. A non-zero
// expectedVersion is part of the filter, so a stale write matches nothing.
func (s *Store) Update(ctx context.Context, id string, patch catalog.Patch, expectedVersion int64) (models.Property, error) {
	filter := bson.M{"_id": id}
	if expectedVersion > 0 {
		filter["version"] = expectedVersion
	}

	set := setFields(patch)
	set["updated_at"] = time.Now().UTC()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var out models.Property
	err := s.c.FindOneAndUpdate(ctx, filter, bson.M{
		"$set": set,
		"$inc": bson.M{"version": 1},
	}, opts).Decode(&out)
	if err == nil {
		return out, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return models.Property{}, err
	}

	// Nothing matched: tell a missing id apart from a stale version.
	n, cerr := s.c.CountDocuments(ctx, bson.M{"_id": id})
	if cerr != nil {
		return models.Property{}, cerr
	}
	if n == 0 {
		return models.Property{}, catalog.ErrNotFound
	}
	return models.Property{}, fmt.Errorf("property %s: %w", id, catalog.ErrConflict)
}

// setFields builds a selective $set so flag-only patches leave the rest alone.
func setFields(patch catalog.Patch) bson.M {
	set := bson.M{}
	if d := patch.Draft; d != nil {
		images := d.Images
		if images == nil {
			images = []string{}
		}
		set["title"] = d.Title
		set["title_ci"] = text.Fold(d.Title)
		set["public_address"] = d.PublicAddress
		set["full_address"] = d.FullAddress
		set["price"] = d.Price
		set["kind"] = d.Kind
		set["bedrooms"] = d.Bedrooms
		set["bathrooms"] = d.Bathrooms
		set["area_sq_meters"] = d.AreaSqMeters
		set["primary_image"] = d.PrimaryImage
		set["images"] = images
		set["description"] = d.Description
		set["status"] = d.Status
		set["is_public"] = d.IsPublic
		set["featured"] = d.Featured
		set["contact_phone"] = d.ContactPhone
		set["contact_email"] = d.ContactEmail
	}
	if patch.IsPublic != nil {
		set["is_public"] = *patch.IsPublic
	}
	if patch.Featured != nil {
		set["featured"] = *patch.Featured
	}
	if patch.Status != nil {
		set["status"] = *patch.Status
	}
	return set
}

// Delete removes a property by id.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return catalog.ErrNotFound
	}
	return nil
}

// Ping checks the connection behind the collection.
func (s *Store) Ping(ctx context.Context) error {
	return s.c.Database().Client().Ping(ctx, nil)
}

// GetByID returns a single property.
func (s *Store) GetByID(ctx context.Context, id string) (models.Property, error) {
	var p models.Property
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Property{}, catalog.ErrNotFound
	}
	if err != nil {
		return models.Property{}, err
	}
	return p, nil
}

// Count returns the number of stored properties.
func (s *Store) Count(ctx context.Context) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{})
}
