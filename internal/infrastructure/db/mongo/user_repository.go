package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/aslbekqoziboyev536-star/LC-Studio/internal/core/domain"
	"github.com/aslbekqoziboyev536-star/LC-Studio/internal/core/ports"
)

// UserRepository implements ports.UserRepository using MongoDB.
type UserRepository struct {
	coll *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{coll: db.Collection(collectionUsers)}
}

type mongoDevice struct {
	ID        string    `bson:"id"`
	Name      string    `bson:"name"`
	LastLogin time.Time `bson:"lastLogin"`
	IP        string    `bson:"ip"`
	IsCurrent bool      `bson:"isCurrent"`
}

type mongoUser struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	Role          string             `bson:"role"`
	Name          string             `bson:"name"`
	Username      string             `bson:"username"`
	PasswordHash  string             `bson:"passwordHash"`
	// Password is the plaintext field of records created before hashing.
	Password      string             `bson:"password,omitempty"`
	CenterName    string             `bson:"centerName"`
	CourseName    string             `bson:"courseName,omitempty"`
	CoursePrice   float64            `bson:"coursePrice,omitempty"`
	MonthlySalary float64            `bson:"monthlySalary,omitempty"`
	SalaryPaid    bool               `bson:"salaryPaid"`
	JoinDate      string             `bson:"joinDate,omitempty"`
	IsLeft        bool               `bson:"isLeft"`
	Devices       []mongoDevice      `bson:"devices"`
	CreatedAt     time.Time          `bson:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt"`
}

func toMongoDevices(devices []domain.Device) []mongoDevice {
	out := make([]mongoDevice, 0, len(devices))
	for _, d := range devices {
		out = append(out, mongoDevice{
			ID:        d.ID,
			Name:      d.Name,
			LastLogin: d.LastLogin.UTC(),
			IP:        d.IP,
			IsCurrent: d.IsCurrent,
		})
	}
	return out
}

func (mu *mongoUser) toDomain() *domain.User {
	devices := make([]domain.Device, 0, len(mu.Devices))
	for _, d := range mu.Devices {
		devices = append(devices, domain.Device{
			ID:        d.ID,
			Name:      d.Name,
			LastLogin: d.LastLogin.UTC(),
			IP:        d.IP,
			IsCurrent: d.IsCurrent,
		})
	}
	return &domain.User{
		ID:             mu.ID.Hex(),
		Role:           domain.Role(mu.Role),
		Name:           mu.Name,
		Username:       mu.Username,
		PasswordHash:   mu.PasswordHash,
		LegacyPassword: mu.Password,
		CenterName:     mu.CenterName,
		CourseName:     mu.CourseName,
		CoursePrice:    mu.CoursePrice,
		MonthlySalary:  mu.MonthlySalary,
		SalaryPaid:     mu.SalaryPaid,
		JoinDate:       mu.JoinDate,
		IsLeft:         mu.IsLeft,
		Devices:        devices,
		CreatedAt:      mu.CreatedAt.UTC(),
		UpdatedAt:      mu.UpdatedAt.UTC(),
	}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := mongoUser{
		Role:          string(user.Role),
		Name:          user.Name,
		Username:      user.Username,
		PasswordHash:  user.PasswordHash,
		CenterName:    user.CenterName,
		CourseName:    user.CourseName,
		CoursePrice:   user.CoursePrice,
		MonthlySalary: user.MonthlySalary,
		SalaryPaid:    user.SalaryPaid,
		JoinDate:      user.JoinDate,
		IsLeft:        user.IsLeft,
		Devices:       toMongoDevices(user.Devices),
		CreatedAt:     user.CreatedAt.UTC(),
		UpdatedAt:     user.UpdatedAt.UTC(),
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrUsernameTaken
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		doc.ID = oid
	}
	return doc.toDomain(), nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var mu mongoUser
	if err := r.coll.FindOne(ctx, filter).Decode(&mu); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return mu.toDomain(), nil
}

func (r *UserRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, bson.M{"username": username})
}

func (r *UserRepository) CenterExists(ctx context.Context, centerName string) (bool, error) {
	return r.exists(ctx, bson.M{"centerName": centerName})
}

func (r *UserRepository) exists(ctx context.Context, filter bson.M) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.coll.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *UserRepository) List(ctx context.Context, scope ports.TenantScope) ([]*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.coll.Find(ctx, tenantFilter(scope), options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	var docs []mongoUser
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}

	users := make([]*domain.User, 0, len(docs))
	for i := range docs {
		users = append(users, docs[i].toDomain())
	}
	return users, nil
}

// Update overwrites every mutable field except devices, which only change
// through AddCurrentDevice and RemoveDevice.
func (r *UserRepository) Update(ctx context.Context, user *domain.User) error {
	oid, err := objectID(user.ID)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	set := bson.M{
		"role":          string(user.Role),
		"name":          user.Name,
		"username":      user.Username,
		"passwordHash":  user.PasswordHash,
		"centerName":    user.CenterName,
		"courseName":    user.CourseName,
		"coursePrice":   user.CoursePrice,
		"monthlySalary": user.MonthlySalary,
		"salaryPaid":    user.SalaryPaid,
		"joinDate":      user.JoinDate,
		"isLeft":        user.IsLeft,
		"updatedAt":     user.UpdatedAt.UTC(),
	}
	update := bson.M{"$set": set}
	if user.LegacyPassword == "" {
		update["$unset"] = bson.M{"password": ""}
	}
	res, err := r.coll.UpdateByID(ctx, oid, update)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrUsernameTaken
		}
		return fmt.Errorf("update user: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// AddCurrentDevice runs as one pipeline update, so a concurrent login or
// device removal on the same user cannot be overwritten.
func (r *UserRepository) AddCurrentDevice(ctx context.Context, id string, d domain.Device) (*domain.User, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	d.IsCurrent = true
	update := mongo.Pipeline{{{Key: "$set", Value: bson.D{{Key: "devices", Value: addCurrentDeviceExpr(d)}}}}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var mu mongoUser
	if err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&mu); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("add device: %w", err)
	}
	return mu.toDomain(), nil
}

// addCurrentDeviceExpr rewrites devices as every stored device with
// isCurrent=false followed by d. d is wrapped in $literal so request-derived
// strings such as the IP are never read as field paths.
func addCurrentDeviceExpr(d domain.Device) bson.D {
	cleared := bson.D{{Key: "$map", Value: bson.D{
		{Key: "input", Value: bson.D{{Key: "$ifNull", Value: bson.A{"$devices", bson.A{}}}}},
		{Key: "in", Value: bson.D{{Key: "$mergeObjects", Value: bson.A{"$$this", bson.D{{Key: "isCurrent", Value: false}}}}}},
	}}}
	added := bson.D{{Key: "$literal", Value: bson.A{toMongoDevices([]domain.Device{d})[0]}}}
	return bson.D{{Key: "$concatArrays", Value: bson.A{cleared, added}}}
}

func (r *UserRepository) RemoveDevice(ctx context.Context, id, deviceID string) (*domain.User, bool, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, false, err
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"_id": oid, "devices.id": deviceID}
	update := bson.M{"$pull": bson.M{"devices": bson.M{"id": deviceID}}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var mu mongoUser
	err = r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&mu)
	if errors.Is(err, mongo.ErrNoDocuments) {
		// Unknown user, or the device is already gone.
		u, err := r.FindByID(ctx, id)
		return u, false, err
	}
	if err != nil {
		return nil, false, fmt.Errorf("remove device: %w", err)
	}
	return mu.toDomain(), true, nil
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	return r.coll.CountDocuments(ctx, bson.M{})
}

func (r *UserRepository) RenameCenter(ctx context.Context, from, to string) (int64, error) {
	return renameCenter(ctx, r.coll, from, to)
}
