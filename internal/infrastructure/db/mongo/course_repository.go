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

// CourseRepository implements ports.CourseRepository using MongoDB.
type CourseRepository struct {
	coll *mongo.Collection
}

func NewCourseRepository(db *mongo.Database) *CourseRepository {
	return &CourseRepository{coll: db.Collection(collectionCourses)}
}

type mongoLesson struct {
	Date      string    `bson:"date"`
	Topic     string    `bson:"topic"`
	CreatedAt time.Time `bson:"createdAt"`
}

type mongoCourse struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	Name       string             `bson:"name"`
	TeacherID  string             `bson:"teacherId,omitempty"`
	Schedule   string             `bson:"schedule"`
	Price      float64            `bson:"price"`
	CenterName string             `bson:"centerName"`
	Lessons    []mongoLesson      `bson:"lessons"`
}

func (mc *mongoCourse) toDomain() *domain.Course {
	lessons := make([]domain.Lesson, 0, len(mc.Lessons))
	for _, l := range mc.Lessons {
		lessons = append(lessons, domain.Lesson{Date: l.Date, Topic: l.Topic, CreatedAt: l.CreatedAt.UTC()})
	}
	return &domain.Course{
		ID:         mc.ID.Hex(),
		Name:       mc.Name,
		TeacherID:  mc.TeacherID,
		Schedule:   mc.Schedule,
		Price:      mc.Price,
		CenterName: mc.CenterName,
		Lessons:    lessons,
	}
}

func (r *CourseRepository) Create(ctx context.Context, c *domain.Course) (*domain.Course, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := mongoCourse{
		Name:       c.Name,
		TeacherID:  c.TeacherID,
		Schedule:   c.Schedule,
		Price:      c.Price,
		CenterName: c.CenterName,
		Lessons:    make([]mongoLesson, 0, len(c.Lessons)),
	}
	for _, l := range c.Lessons {
		doc.Lessons = append(doc.Lessons, mongoLesson{Date: l.Date, Topic: l.Topic, CreatedAt: l.CreatedAt.UTC()})
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("insert course: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		doc.ID = oid
	}
	return doc.toDomain(), nil
}

func (r *CourseRepository) FindByID(ctx context.Context, id string) (*domain.Course, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var mc mongoCourse
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&mc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrCourseNotFound
		}
		return nil, fmt.Errorf("find course: %w", err)
	}
	return mc.toDomain(), nil
}

func (r *CourseRepository) List(ctx context.Context, scope ports.TenantScope) ([]*domain.Course, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.coll.Find(ctx, tenantFilter(scope), options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	var docs []mongoCourse
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode courses: %w", err)
	}

	courses := make([]*domain.Course, 0, len(docs))
	for i := range docs {
		courses = append(courses, docs[i].toDomain())
	}
	return courses, nil
}

// Update overwrites every field except lessons, which are append-only.
func (r *CourseRepository) Update(ctx context.Context, c *domain.Course) error {
	oid, err := objectID(c.ID)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	set := bson.M{
		"name":       c.Name,
		"teacherId":  c.TeacherID,
		"schedule":   c.Schedule,
		"price":      c.Price,
		"centerName": c.CenterName,
	}
	res, err := r.coll.UpdateByID(ctx, oid, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("update course: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrCourseNotFound
	}
	return nil
}

// AppendLesson pushes lesson onto the course in one atomic update.
func (r *CourseRepository) AppendLesson(ctx context.Context, id string, lesson domain.Lesson) (*domain.Course, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	update := bson.M{"$push": bson.M{"lessons": mongoLesson{
		Date:      lesson.Date,
		Topic:     lesson.Topic,
		CreatedAt: lesson.CreatedAt.UTC(),
	}}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var mc mongoCourse
	if err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&mc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrCourseNotFound
		}
		return nil, fmt.Errorf("append lesson: %w", err)
	}
	return mc.toDomain(), nil
}

func (r *CourseRepository) Delete(ctx context.Context, id string) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete course: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrCourseNotFound
	}
	return nil
}

func (r *CourseRepository) RenameCenter(ctx context.Context, from, to string) (int64, error) {
	return renameCenter(ctx, r.coll, from, to)
}
