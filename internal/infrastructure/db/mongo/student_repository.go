package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/aslbekqoziboyev536-star/LC-Studio/internal/core/domain"
	"github.com/aslbekqoziboyev536-star/LC-Studio/internal/core/ports"
)

// StudentRepository implements ports.StudentRepository using MongoDB.
type StudentRepository struct {
	coll *mongo.Collection
}

func NewStudentRepository(db *mongo.Database) *StudentRepository {
	return &StudentRepository{coll: db.Collection(collectionStudents)}
}

type mongoAttendance struct {
	Status string `bson:"status"`
	Reason string `bson:"reason,omitempty"`
}

type mongoStudent struct {
	ID         primitive.ObjectID         `bson:"_id,omitempty"`
	Name       string                     `bson:"name"`
	TeacherID  string                     `bson:"teacherId"`
	CourseName string                     `bson:"courseName"`
	Paid       bool                       `bson:"paid"`
	CenterName string                     `bson:"centerName"`
	Attendance map[string]mongoAttendance `bson:"attendance"`
}

func toMongoAttendance(a domain.Attendance) map[string]mongoAttendance {
	out := make(map[string]mongoAttendance, len(a))
	for date, rec := range a {
		out[date] = mongoAttendance{Status: string(rec.Status), Reason: rec.Reason}
	}
	return out
}

func (ms *mongoStudent) toDomain() *domain.Student {
	att := make(domain.Attendance, len(ms.Attendance))
	for date, rec := range ms.Attendance {
		att[date] = domain.AttendanceRecord{Status: domain.AttendanceStatus(rec.Status), Reason: rec.Reason}
	}
	return &domain.Student{
		ID:         ms.ID.Hex(),
		Name:       ms.Name,
		TeacherID:  ms.TeacherID,
		CourseName: ms.CourseName,
		Paid:       ms.Paid,
		CenterName: ms.CenterName,
		Attendance: att,
	}
}

func (r *StudentRepository) Create(ctx context.Context, s *domain.Student) (*domain.Student, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := mongoStudent{
		Name:       s.Name,
		TeacherID:  s.TeacherID,
		CourseName: s.CourseName,
		Paid:       s.Paid,
		CenterName: s.CenterName,
		Attendance: toMongoAttendance(s.Attendance),
	}
	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("insert student: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		doc.ID = oid
	}
	return doc.toDomain(), nil
}

func (r *StudentRepository) FindByID(ctx context.Context, id string) (*domain.Student, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var ms mongoStudent
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&ms); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrStudentNotFound
		}
		return nil, fmt.Errorf("find student: %w", err)
	}
	return ms.toDomain(), nil
}

func (r *StudentRepository) List(ctx context.Context, scope ports.TenantScope) ([]*domain.Student, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.coll.Find(ctx, tenantFilter(scope), options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	var docs []mongoStudent
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode students: %w", err)
	}

	students := make([]*domain.Student, 0, len(docs))
	for i := range docs {
		students = append(students, docs[i].toDomain())
	}
	return students, nil
}

func (r *StudentRepository) Update(ctx context.Context, s *domain.Student) error {
	oid, err := objectID(s.ID)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	set := bson.M{
		"name":       s.Name,
		"teacherId":  s.TeacherID,
		"courseName": s.CourseName,
		"paid":       s.Paid,
		"centerName": s.CenterName,
		"attendance": toMongoAttendance(s.Attendance),
	}
	res, err := r.coll.UpdateByID(ctx, oid, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("update student: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrStudentNotFound
	}
	return nil
}

// MergeAttendance sets one attendance.<date> path per entry, so dates not in
// partial are left as stored and concurrent writers to different dates do
// not overwrite each other.
func (r *StudentRepository) MergeAttendance(ctx context.Context, id string, partial domain.Attendance) (*domain.Student, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	if len(partial) == 0 {
		return r.FindByID(ctx, id)
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	set := bson.M{}
	for date, rec := range partial {
		set["attendance."+date] = mongoAttendance{Status: string(rec.Status), Reason: rec.Reason}
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var ms mongoStudent
	if err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, opts).Decode(&ms); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrStudentNotFound
		}
		return nil, fmt.Errorf("merge attendance: %w", err)
	}
	return ms.toDomain(), nil
}

func (r *StudentRepository) Delete(ctx context.Context, id string) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete student: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrStudentNotFound
	}
	return nil
}

func (r *StudentRepository) RenameCenter(ctx context.Context, from, to string) (int64, error) {
	return renameCenter(ctx, r.coll, from, to)
}
