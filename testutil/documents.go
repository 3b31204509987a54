package testutil

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"sync"

	recordsRepo "nestmart/database/repository/records"
	"nestmart/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryDocuments is an in-memory DocumentRepository. Filters support plain
// equality and the case-insensitive $regex form built by TitleSearch.
type MemoryDocuments struct {
	mu   sync.Mutex
	docs map[primitive.ObjectID]bson.M
}

// NewMemoryDocuments creates an empty collection.
func NewMemoryDocuments() *MemoryDocuments {
	return &MemoryDocuments{docs: make(map[primitive.ObjectID]bson.M)}
}

func (m *MemoryDocuments) Find(_ context.Context, filter bson.M) ([]bson.M, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := []bson.M{}
	for _, d := range m.docs {
		ok, err := matches(d, filter)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, copyDoc(d))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a := out[i]["_id"].(primitive.ObjectID)
		b := out[j]["_id"].(primitive.ObjectID)
		return a.Hex() > b.Hex()
	})
	return out, nil
}

func (m *MemoryDocuments) FindOne(ctx context.Context, filter bson.M) (bson.M, error) {
	docs, err := m.Find(ctx, filter)
	if err != nil || len(docs) == 0 {
		return nil, err
	}
	return docs[0], nil
}

func (m *MemoryDocuments) FindByID(_ context.Context, id string) (bson.M, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, recordsRepo.ErrInvalidID
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.docs[oid]
	if !ok {
		return nil, nil
	}
	return copyDoc(d), nil
}

func (m *MemoryDocuments) Insert(_ context.Context, doc bson.M) (models.InsertResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	d := copyDoc(doc)
	oid := primitive.NewObjectID()
	d["_id"] = oid
	m.docs[oid] = d
	return models.InsertResult{Acknowledged: true, InsertedID: oid}, nil
}

func (m *MemoryDocuments) UpdateByID(_ context.Context, id string, fields bson.M) (models.UpdateResult, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return models.UpdateResult{}, recordsRepo.ErrInvalidID
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	d, ok := m.docs[oid]
	if !ok {
		return models.UpdateResult{Acknowledged: true}, nil
	}
	for k, v := range fields {
		if k == "_id" {
			continue
		}
		d[k] = v
	}
	return models.UpdateResult{Acknowledged: true, MatchedCount: 1, ModifiedCount: 1}, nil
}

func (m *MemoryDocuments) DeleteByID(_ context.Context, id string) (models.DeleteResult, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return models.DeleteResult{}, recordsRepo.ErrInvalidID
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.docs[oid]; !ok {
		return models.DeleteResult{Acknowledged: true}, nil
	}
	delete(m.docs, oid)
	return models.DeleteResult{Acknowledged: true, DeletedCount: 1}, nil
}

func (m *MemoryDocuments) EstimatedCount(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.docs)), nil
}

func matches(doc, filter bson.M) (bool, error) {
	for k, want := range filter {
		got := doc[k]
		if cond, ok := want.(bson.M); ok {
			pattern, _ := cond["$regex"].(string)
			if opts, _ := cond["$options"].(string); opts == "i" {
				pattern = "(?i)" + pattern
			}
			re, err := regexp.Compile(pattern)
			if err != nil {
				return false, err
			}
			s, ok := got.(string)
			if !ok || !re.MatchString(s) {
				return false, nil
			}
			continue
		}
		if fmt.Sprint(got) != fmt.Sprint(want) {
			return false, nil
		}
	}
	return true, nil
}

func copyDoc(d bson.M) bson.M {
	out := make(bson.M, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}
